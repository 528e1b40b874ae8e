package repository

import (
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	createdAt := time.Unix(0, 1724749200123456789)
	cursor := encodeCursor(createdAt, "doc-42")

	gotTime, gotID, err := decodeCursor(cursor)
	require.NoError(t, err)
	assert.True(t, createdAt.Equal(gotTime))
	assert.Equal(t, "doc-42", gotID)
}

func TestDecodeCursorRejectsMalformedInput(t *testing.T) {
	cases := []struct {
		name   string
		cursor string
	}{
		{"not base64", "!!!!not-base64"},
		{"missing separator", base64.RawURLEncoding.EncodeToString([]byte("12345"))},
		{"non-numeric timestamp", base64.RawURLEncoding.EncodeToString([]byte("abc|doc-1"))},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := decodeCursor(tc.cursor)
			assert.True(t, errors.Is(err, ErrInvalidCursor))
		})
	}
}
