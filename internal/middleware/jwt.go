package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/dsbe-portal-api/internal/utils"
)

// Locals keys populated from a verified access token.
const (
	LocalUserID    = "user_id"
	LocalUserEmail = "user_email"
	LocalUserName  = "user_name"
	LocalUserRole  = "user_role"
)

// JWTProtected returns a middleware that validates JWT bearer tokens.
func JWTProtected(secret string) fiber.Handler {
	return jwtMiddleware(secret, func(c *fiber.Ctx) (string, error) {
		return bearerToken(c.Get("Authorization"))
	})
}

// JWTProtectedQuery accepts the token from the Authorization header or, when
// absent, from the named query parameter. Browsers cannot set headers on
// websocket upgrades.
func JWTProtectedQuery(secret, param string) fiber.Handler {
	return jwtMiddleware(secret, func(c *fiber.Ctx) (string, error) {
		if header := c.Get("Authorization"); header != "" {
			return bearerToken(header)
		}
		token := strings.TrimSpace(c.Query(param))
		if token == "" {
			return "", fmt.Errorf("token missing")
		}
		return token, nil
	})
}

func jwtMiddleware(secret string, extract func(c *fiber.Ctx) (string, error)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, err := extract(c)
		if err != nil {
			return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
		}

		claims, err := parseClaims(tokenString, secret)
		if err != nil {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		if subject := stringClaim(claims, "sub", "user_id", "id"); subject != "" {
			c.Locals(LocalUserID, subject)
		}
		if email := stringClaim(claims, "email"); email != "" {
			c.Locals(LocalUserEmail, strings.ToLower(email))
		}
		if name := stringClaim(claims, "name"); name != "" {
			c.Locals(LocalUserName, name)
		}
		if role := extractUserRoleFromClaims(claims); role != "" {
			c.Locals(LocalUserRole, role)
		}

		return c.Next()
	}
}

func bearerToken(authorization string) (string, error) {
	if authorization == "" {
		return "", fmt.Errorf("authorization header missing")
	}

	const bearer = "Bearer "
	if len(authorization) < len(bearer) || !strings.EqualFold(authorization[:len(bearer)], bearer) {
		return "", fmt.Errorf("invalid authorization header")
	}

	token := strings.TrimSpace(authorization[len(bearer):])
	if token == "" {
		return "", fmt.Errorf("invalid token")
	}
	return token, nil
}

func parseClaims(tokenString, secret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

func stringClaim(claims jwt.MapClaims, keys ...string) string {
	for _, key := range keys {
		value, ok := claims[key]
		if !ok {
			continue
		}
		switch v := value.(type) {
		case string:
			if trimmed := strings.TrimSpace(v); trimmed != "" {
				return trimmed
			}
		case float64:
			return fmt.Sprintf("%.0f", v)
		}
	}
	return ""
}

func extractUserRoleFromClaims(claims jwt.MapClaims) string {
	candidates := []string{"role", "roles"}
	for _, key := range candidates {
		if value, ok := claims[key]; ok {
			if role := normalizeRole(value); role != "" {
				return role
			}
		}
	}
	return ""
}

func normalizeRole(value interface{}) string {
	switch v := value.(type) {
	case string:
		return strings.ToLower(strings.TrimSpace(v))
	case []interface{}:
		for _, item := range v {
			if str, ok := item.(string); ok {
				role := strings.ToLower(strings.TrimSpace(str))
				if role != "" {
					return role
				}
			}
		}
	}
	return ""
}
