// Package auth provides the session HTTP handlers.
// The HTTP methods are implemented in separate files:
// - register.go: Handler.Register
// - login.go:    Handler.Login
// - logout.go:   Handler.Logout
// - me.go:       Handler.Me
package auth

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	jwtauth "github.com/Jeomhps/formation-admin/internal/auth"
	"github.com/Jeomhps/formation-admin/internal/middleware"
	"github.com/Jeomhps/formation-admin/internal/store"
)

// Handler wires auth endpoints to the user store and token manager.
type Handler struct {
	store  *store.Store
	tokens *jwtauth.TokenManager
	secure bool
}

// New returns a new auth handler. secure sets the cookie Secure flag.
func New(s *store.Store, tm *jwtauth.TokenManager, secure bool) *Handler {
	return &Handler{store: s, tokens: tm, secure: secure}
}

func (h *Handler) setCookie(c *gin.Context, value string, maxAge time.Duration) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.CookieName, value, int(maxAge.Seconds()), "/", "", h.secure, true)
}

func (h *Handler) clearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.CookieName, "", -1, "/", "", h.secure, true)
}
