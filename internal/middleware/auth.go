package middleware

import (
	"log/slog"
	"strings"

	"snapgram/internal/auth"
	"snapgram/internal/cache"
	"snapgram/internal/models"

	"github.com/gofiber/fiber/v2"
)

// LocalUserID is the Locals key AuthRequired stores the session user under.
const LocalUserID = "userID"

// AuthRequired enforces a valid session on protected routes. The token is read
// from the session cookie, falling back to an "Authorization: Bearer" header.
// Revoked tokens are rejected; a revocation lookup failure lets the request
// through and is logged.
func AuthRequired(sessions *auth.SessionIssuer, revocations *cache.RevocationList) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := SessionToken(c)
		if token == "" {
			return models.NewUnauthorizedError("Authentication required")
		}

		claims, err := sessions.Verify(token)
		if err != nil {
			return err
		}

		revoked, err := revocations.IsRevoked(c.UserContext(), claims.ID)
		if err != nil {
			Logger.WarnContext(c.UserContext(), "revocation lookup failed",
				slog.String("error", err.Error()),
			)
		}
		if revoked {
			return models.NewUnauthorizedError("Session has been revoked")
		}

		c.Locals(LocalUserID, claims.UserID())
		c.SetUserContext(WithUserID(c.UserContext(), claims.UserID()))
		return c.Next()
	}
}

// SessionToken returns the raw session token sent with the request, if any.
func SessionToken(c *fiber.Ctx) string {
	if token := c.Cookies(auth.CookieName); token != "" {
		return token
	}
	parts := strings.Fields(c.Get(fiber.HeaderAuthorization))
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return ""
}

// CurrentUserID returns the id AuthRequired stored for this request.
func CurrentUserID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalUserID).(string)
	return id
}
