// Package notify publishes entry events to Kafka for downstream consumers.
package notify

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/allhaile/puppyTrackr-sub000/internal/events"
)

// EntryEventsTopic carries import notifications.
const EntryEventsTopic = "entry_events"

// KafkaNotifier publishes entry events, lazily managing one writer per topic.
type KafkaNotifier struct {
	brokers []string
	mu      sync.Mutex
	writers map[string]*kafka.Writer
}

// NewKafkaNotifier creates a KafkaNotifier.
func NewKafkaNotifier(brokers []string) *KafkaNotifier {
	return &KafkaNotifier{
		brokers: brokers,
		writers: make(map[string]*kafka.Writer),
	}
}

// EntriesImported publishes the import event keyed by pet so consumers for the
// same pet observe imports in order.
func (n *KafkaNotifier) EntriesImported(ctx context.Context, event events.EntriesImported) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(event.PetID),
		Value: body,
		Time:  time.Now().UTC(),
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("entries.imported")},
		},
	}

	if err := n.writerForTopic(EntryEventsTopic).WriteMessages(ctx, msg); err != nil {
		publishFailedCounter.WithLabelValues(EntryEventsTopic).Inc()
		return err
	}
	publishedCounter.WithLabelValues(EntryEventsTopic).Inc()
	return nil
}

func (n *KafkaNotifier) writerForTopic(topic string) *kafka.Writer {
	n.mu.Lock()
	defer n.mu.Unlock()

	if writer, ok := n.writers[topic]; ok {
		return writer
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(n.brokers...),
		Topic:        topic,
		RequiredAcks: kafka.RequireAll,
		Compression:  kafka.Snappy,
		Async:        false,
	}
	n.writers[topic] = writer
	return writer
}

// Close releases all writers.
func (n *KafkaNotifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	var firstErr error
	for topic, writer := range n.writers {
		if err := writer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(n.writers, topic)
	}
	return firstErr
}
