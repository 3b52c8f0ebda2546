package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"medichart/pkg/requestcontext"
)

// TokenValidator resolves a bearer token to an acting user. Implemented by
// the identity service; declared here so the middleware does not depend on
// its concrete type.
type TokenValidator interface {
	Validate(token string) (requestcontext.ActorInfo, error)
}

// Actor resolves the Authorization header to an actor in the request
// context. Requests without a (valid) token pass through unauthenticated;
// individual routes decide whether an actor is required.
func Actor(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if token, ok := strings.CutPrefix(header, "Bearer "); ok {
				if actor, err := validator.Validate(token); err == nil {
					r = r.WithContext(requestcontext.WithActor(r.Context(), actor))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireActor rejects requests that did not resolve to an actor.
func RequireActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requestcontext.Actor(r.Context()); !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
