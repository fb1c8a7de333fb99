package http

import (
	"net/http"
	"strings"

	"github.com/vetty/storefront/pkg/httputil"
)

const userIDHeader = "X-User-ID"

// RequireUserID rejects requests without an X-User-ID header. Identity is
// established upstream by the API gateway; this service only trusts the
// header it forwards.
func RequireUserID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(userIDHeader) == "" {
			httputil.WriteJSON(w, http.StatusUnauthorized, httputil.Response{
				Error: &httputil.ErrorResponse{
					Code:    "UNAUTHORIZED",
					Message: "missing " + userIDHeader + " header",
				},
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func userID(r *http.Request) string {
	return r.Header.Get(userIDHeader)
}

// authToken extracts the bearer token from the Authorization header, for
// passthrough to the backend. Empty when absent.
func authToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return after
	}
	return ""
}

// ContentTypeJSON rejects mutating requests whose body is not declared as
// JSON.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			ct := r.Header.Get("Content-Type")
			if ct != "" && !strings.HasPrefix(ct, "application/json") {
				httputil.WriteJSON(w, http.StatusUnsupportedMediaType, httputil.Response{
					Error: &httputil.ErrorResponse{
						Code:    "UNSUPPORTED_MEDIA_TYPE",
						Message: "content type must be application/json",
					},
				})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
