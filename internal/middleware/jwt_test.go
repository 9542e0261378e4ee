package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func newJWTApp() *fiber.App {
	app := fiber.New()
	app.Get("/me", JWTProtected(testSecret), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"id":    c.Locals(LocalUserID),
			"email": c.Locals(LocalUserEmail),
			"name":  c.Locals(LocalUserName),
			"role":  c.Locals(LocalUserRole),
		})
	})
	return app
}

func TestJWTProtectedPopulatesLocals(t *testing.T) {
	token := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
		"sub":   "42",
		"email": "Asha@Example.com",
		"name":  "Asha",
		"role":  "Student",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "bearer "+token)
	resp, err := newJWTApp().Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.Equal(t, "42", payload["id"])
	require.Equal(t, "asha@example.com", payload["email"])
	require.Equal(t, "Asha", payload["name"])
	require.Equal(t, "student", payload["role"])
}

func TestJWTProtectedRejectsBadTokens(t *testing.T) {
	expired := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
		"sub": "1",
		"exp": time.Now().Add(-time.Minute).Unix(),
	})
	wrongKey := signToken(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{"sub": "1"})

	cases := map[string]string{
		"missing":   "",
		"scheme":    "Basic abc",
		"empty":     "Bearer   ",
		"expired":   "Bearer " + expired,
		"wrong key": "Bearer " + wrongKey,
	}

	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			resp, err := newJWTApp().Test(req, -1)
			require.NoError(t, err)
			require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		})
	}
}

func TestJWTProtectedQueryAcceptsTokenParam(t *testing.T) {
	token := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"sub": "7", "roles": []string{"Admin"}})

	app := fiber.New()
	app.Get("/feed", JWTProtectedQuery(testSecret, "token"), func(c *fiber.Ctx) error {
		return c.SendString(c.Locals(LocalUserRole).(string))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/feed?token="+token, nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, "admin", string(body))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/feed", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/feed?token=garbage", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
