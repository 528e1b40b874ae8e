package http

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/collab-access/internal/observability"
	apperrors "github.com/spec-kit/collab-access/pkg/util"
)

func TestRequestLoggerRecordsMappedStatus(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)

	app := fiber.New()
	RegisterMiddlewares(app, logger, observability.NewMetrics(), time.Second)
	app.Get("/denied", func(c *fiber.Ctx) error {
		return apperrors.NewForbidden()
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/denied", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	assert.EqualValues(t, fiber.StatusForbidden, entries[0].ContextMap()["status"])
}

func TestErrorMiddlewareKeepsCauseOutOfResponse(t *testing.T) {
	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), time.Second)
	app.Get("/boom", func(c *fiber.Ctx) error {
		return apperrors.NewUpstreamUnavailable(assert.AnError)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	body := make([]byte, 1024)
	n, _ := resp.Body.Read(body)
	assert.Contains(t, string(body[:n]), "UPSTREAM_UNAVAILABLE")
	assert.NotContains(t, string(body[:n]), assert.AnError.Error())
}
