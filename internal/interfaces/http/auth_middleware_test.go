package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/jhoicas/leads-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/leads-api/pkg/jwt"
)

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testEmail     = "ventas@example.com"
	testIssuer    = "leads-api-test"
	testExpMin    = 60
)

func meApp(secret string) *fiber.App {
	app := fiber.New()
	app.Get("/me", apphttp.AuthMiddleware(secret), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"user_id": apphttp.GetUserID(c), "email": apphttp.GetEmail(c)})
	})
	return app
}

func get(t *testing.T, app *fiber.App, authHeader string) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func TestAuthMiddleware_ExtraeClaims(t *testing.T) {
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, testEmail, testIssuer, testExpMin)
	require.NoError(t, err)

	resp, body := get(t, meApp(testJWTSecret), "Bearer "+tok)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got map[string]string
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	assert.Equal(t, testUserID, got["user_id"])
	assert.Equal(t, testEmail, got["email"])
}

func TestAuthMiddleware_SinHeader401(t *testing.T) {
	resp, body := get(t, meApp(testJWTSecret), "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, body, "MISSING_TOKEN")
}

func TestAuthMiddleware_FormatoInvalido401(t *testing.T) {
	resp, body := get(t, meApp(testJWTSecret), "Token abc")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, body, "INVALID_TOKEN")
}

func TestAuthMiddleware_SecretIncorrecto401(t *testing.T) {
	tok, err := pkgjwt.Generate("otro-secret", testUserID, testEmail, testIssuer, testExpMin)
	require.NoError(t, err)

	resp, _ := get(t, meApp(testJWTSecret), "Bearer "+tok)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_TokenExpirado401(t *testing.T) {
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, testEmail, testIssuer, -1)
	require.NoError(t, err)

	resp, _ := get(t, meApp(testJWTSecret), "Bearer "+tok)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_SinSecretEsAbierto(t *testing.T) {
	resp, _ := get(t, meApp(""), "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouter_ProtegidoConSecret(t *testing.T) {
	app := buildApp(t, appOpts{secret: testJWTSecret})

	resp, _ := do(t, app, http.MethodGet, "/api/leads", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, testEmail, testIssuer, testExpMin)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/api/leads", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	r, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, r.StatusCode)
}
