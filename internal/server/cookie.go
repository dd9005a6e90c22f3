package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/verte-zerg/typeline/internal/config"
)

// Session cookie names set by the auth library.
const (
	devCookieName    = "authjs.session-token"
	secureCookieName = "__Secure-authjs.session-token"
)

// CookiePolicy holds the session cookie attributes for one environment.
type CookiePolicy struct {
	Name     string
	Domain   string
	Secure   bool
	SameSite http.SameSite
}

// PolicyFor returns the cookie policy of cfg's environment. Production
// cookies are cross-site and bound to the configured domain.
func PolicyFor(cfg config.ServerConfig) CookiePolicy {
	if cfg.IsProduction() {
		return CookiePolicy{
			Name:     secureCookieName,
			Domain:   cfg.CookieDomain,
			Secure:   true,
			SameSite: http.SameSiteNoneMode,
		}
	}
	return CookiePolicy{
		Name:     devCookieName,
		SameSite: http.SameSiteLaxMode,
	}
}

// Read returns the trimmed session cookie value when present.
func (p CookiePolicy) Read(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(p.Name)
	if err != nil || cookie == nil {
		return "", false
	}
	value := strings.TrimSpace(cookie.Value)
	if value == "" {
		return "", false
	}
	return value, true
}

// Cookie builds a session cookie with the policy attributes.
func (p CookiePolicy) Cookie(value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     p.Name,
		Value:    value,
		Path:     "/",
		Domain:   p.Domain,
		Expires:  expires,
		HttpOnly: true,
		Secure:   p.Secure,
		SameSite: p.SameSite,
	}
}

// Clear expires the session cookie. Browsers only drop it when the
// attributes match the ones it was set with.
func (p CookiePolicy) Clear(w http.ResponseWriter) {
	c := p.Cookie("", time.Unix(0, 0))
	c.MaxAge = -1
	http.SetCookie(w, c)
}
