// Package requesttime pins one "now" per HTTP request so audit
// timestamps, memory creation times, and grant expiry checks inside a
// single request never disagree.
package requesttime

import (
	"net/http"
	"time"

	"memscope/pkg/requestcontext"
)

// Middleware captures the current time at the start of the request and
// stores it in the context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
