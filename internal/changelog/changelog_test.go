package changelog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medichart/pkg/domain"
)

type recordingPublisher struct {
	events []Event
	err    error
}

func (r *recordingPublisher) Publish(_ context.Context, event Event) error {
	r.events = append(r.events, event)
	return r.err
}

func TestFanout_DeliversToAllSinks(t *testing.T) {
	first := &recordingPublisher{err: errors.New("sink down")}
	second := &recordingPublisher{}

	event := Event{Entity: "patients", Op: OpCreate, ID: "p-1", At: time.Now()}
	err := Fanout{first, second}.Publish(context.Background(), event)

	require.Error(t, err)
	assert.Len(t, first.events, 1)
	assert.Len(t, second.events, 1)
}

func TestSlogPublisher_WritesStructuredFields(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))

	event := Event{
		Entity:    "appointments",
		Op:        OpUpdate,
		ID:        "a-1",
		ActorID:   domain.UserID("u-1"),
		ActorRole: domain.RoleDoctor,
		At:        time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC),
		RequestID: "req-1",
	}
	require.NoError(t, NewSlogPublisher(log).Publish(context.Background(), event))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "entity changed", line["msg"])
	assert.Equal(t, "appointments", line["entity"])
	assert.Equal(t, "update", line["op"])
	assert.Equal(t, "doctor", line["actor_role"])
	assert.Equal(t, "req-1", line["request_id"])
}

func TestMarshal_RoundTrips(t *testing.T) {
	blob := Marshal(map[string]string{"id": "x"})
	require.NotNil(t, blob)
	assert.JSONEq(t, `{"id":"x"}`, string(blob))
}
