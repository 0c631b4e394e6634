package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-test-secret-test-secret"

func sign(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func userClaims(userID string) jwt.MapClaims {
	return jwt.MapClaims{"user_id": userID, "exp": time.Now().Add(time.Hour).Unix()}
}

func authApp() *fiber.App {
	app := fiber.New()
	whoami := func(c *fiber.Ctx) error {
		id, err := GetUserID(c)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"userId": id, "admin": IsAdmin(c), "canActForU2": CanActFor(c, "u2")})
	}
	app.Get("/user", AuthMiddleware(testSecret), whoami)
	app.Get("/admin", AdminAuthMiddleware(testSecret), whoami)
	app.Get("/ws", WebSocketAuthMiddleware(testSecret), whoami)
	return app
}

func status(t *testing.T, app *fiber.App, path, token string) int {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestAuthMiddleware(t *testing.T) {
	app := authApp()

	assert.Equal(t, 401, status(t, app, "/user", ""))
	assert.Equal(t, 401, status(t, app, "/user", "garbage"))
	assert.Equal(t, 401, status(t, app, "/user", sign(t, userClaims("u1"), "other-secret")))
	assert.Equal(t, 401, status(t, app, "/user", sign(t, jwt.MapClaims{"user_id": "u1"}, testSecret)), "exp is required")
	assert.Equal(t, 401, status(t, app, "/user", sign(t, jwt.MapClaims{"user_id": "u1", "exp": time.Now().Add(-time.Minute).Unix()}, testSecret)))
	assert.Equal(t, 401, status(t, app, "/user", sign(t, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()}, testSecret)))
	assert.Equal(t, 200, status(t, app, "/user", sign(t, userClaims("u1"), testSecret)))
}

func TestAdminAuthMiddleware(t *testing.T) {
	app := authApp()

	assert.Equal(t, 403, status(t, app, "/admin", sign(t, userClaims("u1"), testSecret)))

	admin := userClaims("root")
	admin["is_admin"] = true
	assert.Equal(t, 200, status(t, app, "/admin", sign(t, admin, testSecret)))
}

func TestWebSocketAuthMiddleware_QueryToken(t *testing.T) {
	app := authApp()
	token := sign(t, userClaims("u1"), testSecret)

	assert.Equal(t, 200, status(t, app, "/ws?token="+token, ""))
	assert.Equal(t, 200, status(t, app, "/ws", token))
	assert.Equal(t, 401, status(t, app, "/ws", ""))
}

func TestCanActFor(t *testing.T) {
	app := fiber.New()
	var got []bool
	app.Get("/", AuthMiddleware(testSecret), func(c *fiber.Ctx) error {
		got = append(got, CanActFor(c, "u2"))
		return nil
	})

	for _, claims := range []jwt.MapClaims{
		userClaims("u1"),
		userClaims("u2"),
		func() jwt.MapClaims { c := userClaims("svc"); c["is_service"] = true; return c }(),
	} {
		assert.Equal(t, 200, status(t, app, "/", sign(t, claims, testSecret)))
	}
	assert.Equal(t, []bool{false, true, true}, got)
}
