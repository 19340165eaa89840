package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lexiapi/internal/logging"
)

func echoRequestIDApp() *fiber.App {
	app := fiber.New()
	app.Use(RequestID())
	app.Get("/documents", func(c *fiber.Ctx) error {
		return c.SendString(RequestIDFromCtx(c))
	})
	return app
}

func TestRequestID(t *testing.T) {
	app := echoRequestIDApp()

	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{name: "generated when absent", incoming: "", keep: false},
		{name: "caller id preserved", incoming: "lexi-req-42", keep: true},
		{name: "oversized id replaced", incoming: strings.Repeat("a", 200), keep: false},
		{name: "id with spaces replaced", incoming: "two words", keep: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/documents", nil)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)

			header := resp.Header.Get(RequestIDHeader)
			body, _ := io.ReadAll(resp.Body)

			assert.NotEmpty(t, header)
			assert.Equal(t, header, string(body))
			if tt.keep {
				assert.Equal(t, tt.incoming, header)
			} else {
				assert.NotEqual(t, tt.incoming, header)
			}
		})
	}
}

func TestRequestIDFromCtx_WithoutMiddleware(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("[" + RequestIDFromCtx(c) + "]")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "[]", string(body))
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	app := fiber.New()
	loc := time.FixedZone("WIB", 7*60*60)

	app.Use(RequestID())
	app.Use(Logger(logging.New(&buf, "info", loc)))

	app.Get("/documents", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusAccepted)
	})

	req := httptest.NewRequest("GET", "/documents?x=1", nil)
	req.Header.Set(RequestIDHeader, "log-test-1")
	resp, _ := app.Test(req)

	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)

	var logData map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logData))

	assert.Equal(t, "log-test-1", logData["request_id"])
	assert.Equal(t, "GET", logData["method"])
	assert.Equal(t, "/documents", logData["path"])
	assert.Equal(t, float64(fiber.StatusAccepted), logData["status"])
	assert.Equal(t, "INFO", logData["level"])
	assert.NotNil(t, logData["latency"])

	ts, ok := logData["ts"].(string)
	require.True(t, ok)
	assert.True(t, strings.HasSuffix(ts, "+07:00"), "ts %q should be rendered in the configured zone", ts)
}

func TestLogger_ServerErrorStatus(t *testing.T) {
	var buf bytes.Buffer
	app := fiber.New()
	app.Use(Logger(logging.New(&buf, "info", time.UTC)))

	app.Post("/chat", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusBadGateway, "upstream")
	})

	req := httptest.NewRequest("POST", "/chat", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)

	var logData map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logData))
	assert.Equal(t, float64(fiber.StatusBadGateway), logData["status"])
	assert.Equal(t, "ERROR", logData["level"])
	assert.Equal(t, "http_request", logData["msg"])
	assert.Equal(t, "", logData["request_id"])
}
