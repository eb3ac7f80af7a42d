package models

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondWithError(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		err         error
		wantMessage string
		wantCode    string
	}{
		{"validation keeps message", fiber.StatusBadRequest, NewValidationError("Invalid vote type"), "Invalid vote type", CodeValidation},
		{"unavailable keeps code on 503", fiber.StatusServiceUnavailable, &AppError{Code: CodeUnavailable, Message: "Realtime notices are unavailable"}, "Realtime notices are unavailable", CodeUnavailable},
		{"internal app error is generic", fiber.StatusInternalServerError, NewInternalError(errors.New("pq: deadlock")), "Server error", CodeInternal},
		{"raw 5xx error is generic", fiber.StatusBadGateway, errors.New("upstream: dial tcp"), "Server error", CodeInternal},
		{"raw 4xx error passes through", fiber.StatusBadRequest, errors.New("bad body"), "bad body", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error { return RespondWithError(c, tt.status, tt.err) })

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.status, resp.StatusCode)

			raw, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(raw, &body))
			assert.Equal(t, tt.wantMessage, body.Message)
			assert.Equal(t, tt.wantCode, body.Code)
		})
	}
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, fiber.StatusNotFound, StatusFor(NewNotFoundError("Question", 9)))
	assert.Equal(t, fiber.StatusBadRequest, StatusFor(NewInvalidTagError([]string{"Rust"})))
	assert.Equal(t, fiber.StatusInternalServerError, StatusFor(errors.New("boom")))
}
