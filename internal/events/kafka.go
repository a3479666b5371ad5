package events

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
)

const entryPostedTopic = "statement.entry_posted"

// KafkaPublisher writes entry-posted events to Kafka. Messages are keyed
// by account so all events for one account land on the same partition in
// commit order.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    entryPostedTopic,
			Balancer: &kafka.Hash{},
		},
	}
}

func (p *KafkaPublisher) PublishEntryPosted(event EntryPosted) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(
		context.Background(),
		kafka.Message{
			Key:   []byte(event.AccountID.String()),
			Value: data,
		},
	)
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
