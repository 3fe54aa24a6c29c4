package session

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// Cookie names for the three session secrets.
const (
	StateCookie    = "oauth_state"
	VerifierCookie = "code_verifier"
	TokenCookie    = "access_token"
)

// FlowTTL bounds how long the state/verifier pair stays valid before the
// callback has to arrive.
const FlowTTL = 10 * time.Minute

// Store abstracts where the per-browser session secrets live, so the cookie
// implementation can be swapped for server-side storage without touching the
// handlers.
type Store interface {
	Get(c *fiber.Ctx, name string) string
	Set(c *fiber.Ctx, name string, value string, ttl time.Duration)
	Clear(c *fiber.Ctx, name string)
}

// CookieStore keeps secrets in http-only cookies; the server itself persists
// nothing between requests.
type CookieStore struct {
	Secure bool
}

func NewCookieStore(secure bool) *CookieStore {
	return &CookieStore{Secure: secure}
}

func (s *CookieStore) Get(c *fiber.Ctx, name string) string {
	return c.Cookies(name)
}

// Set writes an http-only cookie. A zero ttl makes it a session cookie.
func (s *CookieStore) Set(c *fiber.Ctx, name string, value string, ttl time.Duration) {
	cookie := &fiber.Cookie{
		Name:     name,
		Value:    value,
		HTTPOnly: true,
		Secure:   s.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
	if ttl > 0 {
		cookie.Expires = time.Now().Add(ttl)
	}
	c.Cookie(cookie)
}

func (s *CookieStore) Clear(c *fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   s.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

var _ Store = (*CookieStore)(nil)
