// middleware/auth.go
package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

var errMissingToken = errors.New("missing token")

// parseToken validates an HS256 token and returns its claims. Expiry is
// enforced by the jwt parser.
func parseToken(tokenString, secret string) (jwt.MapClaims, error) {
	if tokenString == "" {
		return nil, errMissingToken
	}
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(401, "Invalid signing method")
		}
		return []byte(secret), nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	if sub, _ := claims["user_id"].(string); sub == "" {
		return nil, errors.New("token has no user_id")
	}
	return claims, nil
}

func bearerToken(c *fiber.Ctx) (string, bool) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

func storeClaims(c *fiber.Ctx, claims jwt.MapClaims) {
	isAdmin, _ := claims["is_admin"].(bool)
	isService, _ := claims["is_service"].(bool)
	c.Locals("userId", claims["user_id"])
	c.Locals("isAdmin", isAdmin)
	c.Locals("isService", isService)
}

// AuthMiddleware requires a valid bearer token.
func AuthMiddleware(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, ok := bearerToken(c)
		if !ok {
			return c.Status(401).JSON(fiber.Map{"success": false, "error": "Missing or malformed authorization header"})
		}
		claims, err := parseToken(tokenString, secret)
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"success": false, "error": "Invalid or expired token"})
		}
		storeClaims(c, claims)
		return c.Next()
	}
}

// AdminAuthMiddleware requires a valid token carrying is_admin.
func AdminAuthMiddleware(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, ok := bearerToken(c)
		if !ok {
			return c.Status(401).JSON(fiber.Map{"success": false, "error": "Missing or malformed authorization header"})
		}
		claims, err := parseToken(tokenString, secret)
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"success": false, "error": "Invalid or expired token"})
		}
		if isAdmin, _ := claims["is_admin"].(bool); !isAdmin {
			return c.Status(403).JSON(fiber.Map{"success": false, "error": "Access denied. Admin privileges required."})
		}
		storeClaims(c, claims)
		return c.Next()
	}
}

// WebSocketAuthMiddleware accepts the token from the Authorization header or
// the token query parameter, since browsers cannot set headers on upgrades.
func WebSocketAuthMiddleware(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, ok := bearerToken(c)
		if !ok {
			tokenString = c.Query("token")
		}
		claims, err := parseToken(tokenString, secret)
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"success": false, "error": "Invalid or expired token"})
		}
		storeClaims(c, claims)
		return c.Next()
	}
}

func GetUserID(c *fiber.Ctx) (string, error) {
	userID, ok := c.Locals("userId").(string)
	if !ok || userID == "" {
		return "", fiber.NewError(401, "User not authenticated")
	}
	return userID, nil
}

func IsAdmin(c *fiber.Ctx) bool {
	v, _ := c.Locals("isAdmin").(bool)
	return v
}

// IsService marks tokens issued to upstream producers of the action feed.
func IsService(c *fiber.Ctx) bool {
	v, _ := c.Locals("isService").(bool)
	return v
}

// CanActFor reports whether the caller may read or write userID's data.
func CanActFor(c *fiber.Ctx, userID string) bool {
	if IsAdmin(c) || IsService(c) {
		return true
	}
	caller, err := GetUserID(c)
	return err == nil && caller == userID
}
