package testutil

import (
	"context"
	"net/http"
	"time"

	"medichart/pkg/domain"
	"medichart/pkg/requestcontext"
)

// WithActor adds an acting user to the request context, simulating what the
// identity middleware does for authenticated requests.
func WithActor(req *http.Request, id domain.UserID, role domain.Role) *http.Request {
	actor := requestcontext.ActorInfo{ID: id, Role: role}
	return req.WithContext(requestcontext.WithActor(req.Context(), actor))
}

// FrozenContext returns a context with a fixed request time, for tests that
// assert on timestamps.
func FrozenContext(t time.Time) context.Context {
	return requestcontext.WithTime(context.Background(), t)
}
