package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"stylesync/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePage(t *testing.T) {
	tests := []struct {
		query   string
		want    models.Page
		wantErr bool
	}{
		{query: "", want: models.Page{}},
		{query: "limit=10", want: models.Page{Limit: 10}},
		{query: "limit=5&offset=20", want: models.Page{Limit: 5, Offset: 20}},
		{query: "offset=0", want: models.Page{}},
		{query: "limit=-1", wantErr: true},
		{query: "offset=two", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			app := fiber.New()
			var got models.Page
			var gotErr error
			app.Get("/", func(c *fiber.Ctx) error {
				got, gotErr = parsePage(c)
				return c.SendStatus(fiber.StatusNoContent)
			})

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil), -1)
			require.NoError(t, err)
			resp.Body.Close()

			if tt.wantErr {
				assert.Error(t, gotErr)
				return
			}
			require.NoError(t, gotErr)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEnvelopeShapes(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/null", func(c *fiber.Ctx) error {
		return respond(c, fiber.StatusOK, "Product not found", (*models.Product)(nil))
	})
	app.Get("/nodata", func(c *fiber.Ctx) error {
		return respond(c, fiber.StatusCreated, "User registered successfully", nil)
	})
	app.Get("/fail", func(c *fiber.Ctx) error {
		return fail(c, fiber.StatusBadRequest, "Bad", errors.New("boom"))
	})
	app.Get("/error", func(c *fiber.Ctx) error {
		return errors.New("unexpected")
	})

	tests := []struct {
		path       string
		wantStatus int
		wantBody   string
	}{
		{"/null", http.StatusOK, `{"success":true,"message":"Product not found","data":null}`},
		{"/nodata", http.StatusCreated, `{"success":true,"message":"User registered successfully"}`},
		{"/fail", http.StatusBadRequest, `{"success":false,"message":"Bad","error":"boom"}`},
		{"/error", http.StatusInternalServerError, `{"success":false,"message":"Internal server error","error":"unexpected"}`},
		{"/missing", http.StatusNotFound, `{"success":false,"message":"Cannot GET /missing","error":"Cannot GET /missing"}`},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.path, nil), -1)
			require.NoError(t, err)
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.JSONEq(t, tt.wantBody, string(body))
		})
	}
}

func TestHandleHealth(t *testing.T) {
	app := fiber.New()
	app.Get("/", HandleHealth)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env struct {
		Success   bool           `json:"success"`
		Message   string         `json:"message"`
		Timestamp string         `json:"timestamp"`
		Data      map[string]any `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	assert.True(t, env.Success)
	assert.Equal(t, "Server is running smoothly", env.Message)
	assert.Equal(t, env.Timestamp, env.Data["timestamp"])

	ts, err := time.Parse(time.RFC3339, env.Timestamp)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), ts, time.Minute)
}
