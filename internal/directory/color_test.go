package directory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPresenceColorDeterministic(t *testing.T) {
	first := PresenceColor("Ada")
	for i := 0; i < 10; i++ {
		// Interleave other names to show there is no hidden state.
		PresenceColor("Grace")
		assert.Equal(t, first, PresenceColor("Ada"))
	}
}

func TestPresenceColorKnownValues(t *testing.T) {
	// "Ada" = 65+100+97 = 262
	assert.Equal(t, "hsl(262, 80%, 60%)", PresenceColor("Ada"))
	assert.Equal(t, "hsl(0, 80%, 60%)", PresenceColor(""))
}
