package repository

import (
	"context"
	"time"

	"WatchPull/internal/domain/repository"
	pkgkafka "WatchPull/pkg/kafka"
)

// KafkaNotifier publishes notification texts to a Kafka topic. A downstream
// relay owns the final delivery channel (chat, email, pager).
type KafkaNotifier struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaNotifier creates a Kafka-backed notifier.
func NewKafkaNotifier(producer *pkgkafka.Producer, topic string) repository.Notifier {
	return &KafkaNotifier{producer: producer, topic: topic}
}

func (n *KafkaNotifier) Send(ctx context.Context, text string) error {
	return n.producer.Publish(ctx, n.topic, []byte("notify"), map[string]interface{}{
		"text": text,
		"ts":   time.Now().Unix(),
	})
}

func (n *KafkaNotifier) Close() error {
	if n.producer != nil {
		return n.producer.Close()
	}
	return nil
}
