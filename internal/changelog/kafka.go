package changelog

import (
	"context"
	"encoding/json"

	"github.com/twmb/franz-go/pkg/kgo"

	derrors "medichart/pkg/domain-errors"
)

// KafkaPublisher streams events to a Kafka topic, keyed by entity id so all
// changes to one entity land in one partition, in order.
type KafkaPublisher struct {
	client *kgo.Client
}

func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.AllowAutoTopicCreation(),
	)
	if err != nil {
		return nil, derrors.Wrap(err, derrors.CodeUnavailable, "connect kafka")
	}
	return &KafkaPublisher{client: client}, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return derrors.Wrap(err, derrors.CodeInternal, "encode changelog event")
	}
	record := &kgo.Record{Key: []byte(event.Entity + ":" + event.ID), Value: value}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return derrors.Wrap(err, derrors.CodeUnavailable, "produce changelog event")
	}
	return nil
}

func (p *KafkaPublisher) Close() {
	p.client.Close()
}
