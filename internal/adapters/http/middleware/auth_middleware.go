package middleware

import (
	"strings"

	"devicepay/internal/config"
	"devicepay/internal/core/domain"
	"devicepay/internal/pkg/jwt"
	"devicepay/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware creates authentication middleware
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var accessToken string

		// 1. Try to get token from cookie first
		accessToken = c.Cookies("access_token")

		// 2. If not in cookie, try Authorization header
		if accessToken == "" {
			authHeader := c.Get("Authorization")
			if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
				accessToken = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		// 3. No token found
		if accessToken == "" {
			return response.Unauthorized(c, "Access token required")
		}

		// 4. Validate token
		claims, err := jwt.ValidateAccessToken(accessToken, cfg.JWT.Secret)
		if err != nil {
			if err == jwt.ErrTokenExpired {
				return response.Unauthorized(c, "Access token expired")
			}
			return response.Unauthorized(c, "Invalid access token")
		}

		// 5. Set caller identity in context. merchantID stays nil for
		// platform admins; handlers treat nil as unscoped.
		c.Locals("userID", claims.UserID)
		c.Locals("merchantID", claims.MerchantID)
		c.Locals("username", claims.Username)
		c.Locals("role", claims.Role)

		return c.Next()
	}
}

// RoleMiddleware creates role-based authorization middleware
func RoleMiddleware(allowedRoles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals("role").(string)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}

		for _, allowedRole := range allowedRoles {
			if role == allowedRole {
				return c.Next()
			}
		}

		return response.Forbidden(c, "You don't have permission to access this resource")
	}
}

// AdminOnly middleware allows only the platform ADMIN role
func AdminOnly() fiber.Handler {
	return RoleMiddleware(string(domain.RoleAdmin))
}

// MerchantOnly middleware allows only merchant staff. Origination is a
// merchant act; platform admins observe but do not sell.
func MerchantOnly() fiber.Handler {
	return RoleMiddleware(string(domain.RoleMerchant))
}

// CallerMerchantID returns the caller's merchant scope from the request
// context, nil for platform admins.
func CallerMerchantID(c *fiber.Ctx) *uint {
	if merchantID, ok := c.Locals("merchantID").(*uint); ok {
		return merchantID
	}
	return nil
}
