package identity

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// CookieMaxAge keeps issued fingerprints around for a year.
const CookieMaxAge = 365 * 24 * time.Hour

// Middleware resolves the caller's fingerprint from the X-Fingerprint
// header, then the named cookie, and stores it in c.Locals(LocalsKey).
func Middleware(cookieName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Get(HeaderName)
		if raw == "" {
			raw = c.Cookies(cookieName)
		}
		c.Locals(LocalsKey, Sanitize(raw))
		return c.Next()
	}
}

// Issue creates a fingerprint and sets it as a cookie on the response.
func Issue(c *fiber.Ctx, cookieName string, secure bool) (string, error) {
	fp, err := NewFingerprint()
	if err != nil {
		return "", err
	}
	c.Cookie(&fiber.Cookie{
		Name:     cookieName,
		Value:    fp,
		Path:     "/",
		Expires:  now().Add(CookieMaxAge),
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	c.Locals(LocalsKey, fp)
	return fp, nil
}
