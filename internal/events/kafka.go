package events

import (
	"context"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// DefaultKafkaTopic receives every event when KAFKA_TOPIC is unset
const DefaultKafkaTopic = "snapgram.activity"

// KafkaPublisher writes events to a single topic keyed by entity id,
// so events about the same post or user stay ordered within a partition.
type KafkaPublisher struct {
	w *kafka.Writer
}

// NewKafkaPublisher creates a writer for brokers, a comma-separated list
func NewKafkaPublisher(brokers, topic string) *KafkaPublisher {
	if topic == "" {
		topic = DefaultKafkaTopic
	}
	var addrs []string
	for _, b := range strings.Split(brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			addrs = append(addrs, b)
		}
	}

	return &KafkaPublisher{w: &kafka.Writer{
		Addr:                   kafka.TCP(addrs...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           50 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}}
}

func (p *KafkaPublisher) Publish(ctx context.Context, eventType Type, key string, data []byte) error {
	return p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(eventType)},
		},
	})
}

func (p *KafkaPublisher) Close() error { return p.w.Close() }
