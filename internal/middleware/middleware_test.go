package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"snapgram/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCtxHandler_AddsContextValues(t *testing.T) {
	var buf bytes.Buffer
	SetupLogger("production", &buf)
	t.Cleanup(func() { SetupLogger(os.Getenv("APP_ENV"), os.Stdout) })

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-1")
	ctx = context.WithValue(ctx, TraceIDKey, "trace-1")
	ctx = WithUserID(ctx, "user-1")
	Logger.With(slog.String("component", "test")).InfoContext(ctx, "hello")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "hello", rec["msg"])
	assert.Equal(t, "req-1", rec["request_id"])
	assert.Equal(t, "trace-1", rec["trace_id"])
	assert.Equal(t, "user-1", rec["user_id"])
	assert.Equal(t, "test", rec["component"])
}

func TestErrorHandler(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/notfound", func(c *fiber.Ctx) error {
		return models.NewNotFoundError("Post", "p1")
	})
	app.Get("/conflict", func(c *fiber.Ctx) error {
		return models.NewConflictError("User has already liked this post!")
	})
	app.Get("/fiber", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusBadRequest, "bad body")
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return errors.New("db exploded")
	})

	tests := []struct {
		path    string
		status  int
		message string
		code    string
	}{
		{"/notfound", http.StatusNotFound, "Post with ID p1 not found", "NOT_FOUND"},
		{"/conflict", http.StatusConflict, "User has already liked this post!", "CONFLICT"},
		{"/fiber", http.StatusBadRequest, "bad body", "BAD_REQUEST"},
		{"/boom", http.StatusInternalServerError, "500: Internal Server Error!", "INTERNAL_ERROR"},
		{"/missing-route", http.StatusNotFound, "Cannot GET /missing-route", "NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.status, resp.StatusCode)

			var body models.ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.message, body.Message)
			assert.Equal(t, tt.code, body.Code)
		})
	}
}

func TestContextMiddleware_CarriesRequestID(t *testing.T) {
	app := fiber.New()
	app.Use(requestid.New())
	app.Use(ContextMiddleware())
	app.Get("/", func(c *fiber.Ctx) error {
		rid, _ := c.UserContext().Value(RequestIDKey).(string)
		return c.SendString(rid)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(fiber.HeaderXRequestID, "abc-123")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "abc-123", buf.String())
}
