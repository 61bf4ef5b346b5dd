// Package visitor identifies the browser behind a request.
//
// A visitor id is the server-side stand-in for a browser's local storage key:
// sessions, listing views and booking drafts are all keyed by it.
package visitor

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mssola/useragent"

	"pawhub/pkg/requestcontext"
)

// DefaultCookieName is used when Config.CookieName is empty.
const DefaultCookieName = "pawhub_vid"

// Config holds configuration for the visitor middleware.
type Config struct {
	CookieName string
	MaxAge     time.Duration
	Secure     bool
}

// Middleware reads the visitor cookie, minting a new id when it is missing or
// malformed, and stores the id plus a device label in the request context.
func Middleware(cfg Config) func(http.Handler) http.Handler {
	name := cfg.CookieName
	if name == "" {
		name = DefaultCookieName
	}
	maxAge := cfg.MaxAge
	if maxAge <= 0 {
		maxAge = 365 * 24 * time.Hour
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if c, err := r.Cookie(name); err == nil {
				if parsed, err := uuid.Parse(c.Value); err == nil {
					id = parsed.String()
				}
			}
			if id == "" {
				id = uuid.New().String()
				http.SetCookie(w, &http.Cookie{
					Name:     name,
					Value:    id,
					Path:     "/",
					MaxAge:   int(maxAge.Seconds()),
					HttpOnly: true,
					Secure:   cfg.Secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := requestcontext.WithVisitorID(r.Context(), id)
			ctx = requestcontext.WithDevice(ctx, DeviceLabel(r.Header.Get("User-Agent")))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// DeviceLabel renders a User-Agent as "Browser on OS".
func DeviceLabel(userAgent string) string {
	if userAgent == "" {
		return "Unknown Device"
	}

	ua := useragent.New(userAgent)
	browser, _ := ua.Browser()
	os := ua.OS()

	if ua.Mobile() {
		if platform := ua.Platform(); platform != "" {
			return strings.TrimSpace(browser + " on " + platform)
		}
	}
	if browser == "" {
		browser = "Unknown Browser"
	}
	if os == "" {
		os = "Unknown OS"
	}
	return strings.TrimSpace(browser + " on " + os)
}
