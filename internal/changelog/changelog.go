// Package changelog publishes mutation events. The service emits one event
// per applied mutation; sinks are pluggable so deployments can log locally,
// stream to Kafka, or both.
package changelog

import (
	"context"
	"encoding/json"
	"time"

	"medichart/pkg/domain"
)

type Op string

const (
	OpCreate   Op = "create"
	OpUpdate   Op = "update"
	OpDelete   Op = "delete"
	OpAssign   Op = "assign"
	OpUnassign Op = "unassign"
)

// Event describes one applied mutation. Before and After are the JSON forms
// of the entity around the change; either may be absent (create has no
// Before, delete has no After).
type Event struct {
	Entity    string          `json:"entity"`
	Op        Op              `json:"op"`
	ID        string          `json:"id"`
	ActorID   domain.UserID   `json:"actorId,omitempty"`
	ActorRole domain.Role     `json:"actorRole,omitempty"`
	Before    json.RawMessage `json:"before,omitempty"`
	After     json.RawMessage `json:"after,omitempty"`
	At        time.Time       `json:"at"`
	RequestID string          `json:"requestId,omitempty"`
}

// Publisher delivers events. Delivery is best effort from the caller's point
// of view: the mutation has already been applied and persisted when Publish
// runs, so implementations report errors but must not block the store.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Fanout delivers each event to every sink, returning the first error after
// all sinks have been attempted.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, event Event) error {
	var first error
	for _, p := range f {
		if err := p.Publish(ctx, event); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Marshal renders an entity for Event.Before or Event.After, swallowing the
// impossible encode error so call sites stay flat.
func Marshal(v any) json.RawMessage {
	blob, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return blob
}
