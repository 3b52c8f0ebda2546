package middleware

import (
	"net/http"
	"time"

	"medichart/pkg/requestcontext"
)

// RequestTime captures the current time at the start of the request and
// stores it in the context so every operation within one request sees the
// same "now" in timestamps and change events.
func RequestTime(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
