package request

import (
	"net/http"
	"regexp"

	"github.com/google/uuid"

	"pawhub/pkg/requestcontext"
)

// Header carries the request id between the site, the API client and the API.
const Header = "X-Request-ID"

// MaxRequestIDLength caps an id accepted from an inbound header.
const MaxRequestIDLength = 128

var idPattern = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,128}$`)

// RequestID stores a request id on the context and echoes it in the response.
// An id forwarded by the caller is kept when it is short and log-safe, so a
// page render and the API calls it makes share one id.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(Header)
		if !idPattern.MatchString(id) {
			id = uuid.NewString()
		}
		w.Header().Set(Header, id)
		next.ServeHTTP(w, r.WithContext(requestcontext.WithRequestID(r.Context(), id)))
	})
}
