package request

import (
	"mime"
	"net/http"
	"time"

	dErrors "pawhub/pkg/domain-errors"
	"pawhub/pkg/platform/httputil"
)

// Timeout answers 503 when a handler runs longer than d.
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if d <= 0 {
			return next
		}
		return http.TimeoutHandler(next, d, "The request took too long. Please try again.")
	}
}

// RequireJSON rejects write requests whose declared body is not JSON. Requests
// without a Content-Type pass through; the decoder rejects bad bodies.
func RequireJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			if ct := r.Header.Get("Content-Type"); ct != "" {
				mt, _, err := mime.ParseMediaType(ct)
				if err != nil || mt != "application/json" {
					httputil.WriteJSON(w, http.StatusUnsupportedMediaType, httputil.ErrorBody{
						Error:   string(dErrors.CodeBadRequest),
						Message: "request body must be application/json",
					})
					return
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}
