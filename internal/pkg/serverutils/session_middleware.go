package serverutils

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// SessionCookieName holds the visitor's opaque chat session token.
const SessionCookieName = "paper_chat_session"

const sessionCookieMaxAge = 30 * 24 * time.Hour

// SessionMiddleware recognizes a visitor across requests via an opaque
// cookie token. The token is minted here and only here; it identifies a
// browser session and is not authentication.
func SessionMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		sessionID := ctx.Cookies(SessionCookieName)
		if sessionID == "" {
			sessionID = uuid.NewString()
			ctx.Cookie(&fiber.Cookie{
				Name:     SessionCookieName,
				Value:    sessionID,
				Expires:  time.Now().Add(sessionCookieMaxAge),
				HTTPOnly: true,
				SameSite: fiber.CookieSameSiteLaxMode,
				Path:     "/",
			})
		}

		ctx.Locals("session_id", sessionID)
		return ctx.Next()
	}
}
