package utils_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dsbe-portal-api/internal/csvimport"
	"github.com/noah-isme/dsbe-portal-api/internal/dto"
	"github.com/noah-isme/dsbe-portal-api/internal/utils"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    json.RawMessage `json:"meta"`
	Details json.RawMessage `json:"details"`
}

func serve(t *testing.T, handler fiber.Handler) (*http.Response, envelope) {
	t.Helper()
	app := fiber.New()
	app.Get("/", handler)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var payload envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	return resp, payload
}

func TestOKCarriesPaginationMeta(t *testing.T) {
	resp, payload := serve(t, func(c *fiber.Ctx) error {
		items := []map[string]string{{"reference_id": "FORM-1"}}
		meta := dto.PaginationMeta{Page: 2, PageSize: 10, TotalItems: 11, TotalPages: 2}
		return utils.OK(c, items, "", meta)
	})

	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.True(t, payload.Success)
	require.Equal(t, "success", payload.Message)
	require.JSONEq(t, `[{"reference_id":"FORM-1"}]`, string(payload.Data))
	require.JSONEq(t, `{"page":2,"page_size":10,"total_items":11,"total_pages":2}`, string(payload.Meta))
	require.Empty(t, payload.Details)
}

func TestOKOmitsNilMeta(t *testing.T) {
	_, payload := serve(t, func(c *fiber.Ctx) error {
		return utils.OK(c, map[string]int{"pending": 3}, "Dashboard loaded", nil)
	})

	require.Equal(t, "Dashboard loaded", payload.Message)
	require.Empty(t, payload.Meta)
}

func TestFailCarriesImportReport(t *testing.T) {
	resp, payload := serve(t, func(c *fiber.Ctx) error {
		report := dto.ImportErrorResponse{
			Kind:   "results",
			Errors: []csvimport.RowError{{Row: 3, Errors: []string{"Percentage must be a number"}}},
		}
		return utils.Fail(c, fiber.StatusUnprocessableEntity, "Row 3: Percentage must be a number", report)
	})

	require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	require.False(t, payload.Success)
	require.Equal(t, "Row 3: Percentage must be a number", payload.Message)
	require.JSONEq(t, `{"kind":"results","errors":[{"row":3,"errors":["Percentage must be a number"]}]}`, string(payload.Details))
	require.Empty(t, payload.Data)
}

func TestFailDefaults(t *testing.T) {
	cases := []struct {
		name       string
		handler    fiber.Handler
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "zero status becomes internal error",
			handler:    func(c *fiber.Ctx) error { return utils.Fail(c, 0, "", nil) },
			wantStatus: fiber.StatusInternalServerError,
			wantMsg:    "error",
		},
		{
			name:       "send error has no details",
			handler:    func(c *fiber.Ctx) error { return utils.SendError(c, fiber.StatusNotFound, "Form not found") },
			wantStatus: fiber.StatusNotFound,
			wantMsg:    "Form not found",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, payload := serve(t, tc.handler)
			require.Equal(t, tc.wantStatus, resp.StatusCode)
			require.False(t, payload.Success)
			require.Equal(t, tc.wantMsg, payload.Message)
			require.Empty(t, payload.Details)
		})
	}
}

func TestSendSuccessWithStatus(t *testing.T) {
	resp, payload := serve(t, func(c *fiber.Ctx) error {
		return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "", map[string]string{"id": "VER-1"})
	})

	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	require.True(t, payload.Success)
	require.Equal(t, "success", payload.Message)
	require.JSONEq(t, `{"id":"VER-1"}`, string(payload.Data))
}
