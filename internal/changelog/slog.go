package changelog

import (
	"context"
	"log/slog"
)

// SlogPublisher writes every event to the structured log. Always-on sink;
// the Kafka sink is layered on top when brokers are configured.
type SlogPublisher struct {
	log *slog.Logger
}

func NewSlogPublisher(log *slog.Logger) *SlogPublisher {
	return &SlogPublisher{log: log}
}

func (p *SlogPublisher) Publish(ctx context.Context, event Event) error {
	p.log.InfoContext(ctx, "entity changed",
		slog.String("entity", event.Entity),
		slog.String("op", string(event.Op)),
		slog.String("id", event.ID),
		slog.String("actor_id", string(event.ActorID)),
		slog.String("actor_role", event.ActorRole.String()),
		slog.String("request_id", event.RequestID),
		slog.Time("at", event.At),
	)
	return nil
}
