// Package publisher announces ingestion and report events on Kafka.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/okian/ritmo/pkg/metrics"
)

// Event types.
const (
	TypeResultsIngested = "results.ingested"
	TypeReportSaved     = "report.saved"
)

// Event is one message to publish. Key selects the partition.
type Event struct {
	Type string
	Key  string
	Data any
	Time time.Time
}

// ResultsIngested is the payload of TypeResultsIngested.
type ResultsIngested struct {
	RaceID   int64    `json:"raceId"`
	Race     string   `json:"nombre"`
	Inserted int      `json:"inserted"`
	Omitted  int      `json:"omitted"`
	Columns  []string `json:"columns"`
}

// ReportSaved is the payload of TypeReportSaved.
type ReportSaved struct {
	ReportID string `json:"reportId"`
	Name     string `json:"nombre"`
	RowCount int    `json:"rowCount"`
}

type envelope struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurredAt"`
	Data       any       `json:"data"`
}

// Publisher delivers events.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// New returns a Kafka publisher, or a no-op one when brokers is empty.
func New(brokers []string, topic string) Publisher {
	if len(brokers) == 0 {
		return NopPublisher{}
	}
	return NewKafkaPublisher(NewKafkaProducer(brokers), topic)
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }

type messageWriter interface {
	WriteMessages(context.Context, string, ...kafka.Message) error
	Close() error
}

// KafkaPublisher encodes events as JSON envelopes on one topic.
type KafkaPublisher struct {
	topic  string
	writer messageWriter
	now    func() time.Time
}

// NewKafkaPublisher wraps w, publishing to topic.
func NewKafkaPublisher(w messageWriter, topic string) *KafkaPublisher {
	return &KafkaPublisher{topic: topic, writer: w, now: time.Now}
}

func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	at := e.Time
	if at.IsZero() {
		at = p.now()
	}
	value, err := json.Marshal(envelope{Type: e.Type, OccurredAt: at.UTC(), Data: e.Data})
	if err != nil {
		metrics.RecordEventPublished(e.Type, false)
		return fmt.Errorf("encode %s: %w", e.Type, err)
	}
	msg := kafka.Message{
		Key:     []byte(e.Key),
		Value:   value,
		Time:    at.UTC(),
		Headers: []kafka.Header{{Key: "event-type", Value: []byte(e.Type)}},
	}
	if err := p.writer.WriteMessages(ctx, p.topic, msg); err != nil {
		metrics.RecordEventPublished(e.Type, false)
		return fmt.Errorf("publish %s: %w", e.Type, err)
	}
	metrics.RecordEventPublished(e.Type, true)
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// KafkaProducer lazily manages writers per topic.
type KafkaProducer struct {
	brokers []string
	mu      sync.Mutex
	writers map[string]*kafka.Writer
}

// NewKafkaProducer creates a KafkaProducer.
func NewKafkaProducer(brokers []string) *KafkaProducer {
	return &KafkaProducer{
		brokers: brokers,
		writers: make(map[string]*kafka.Writer),
	}
}

// WriteMessages writes messages to topic, creating its writer on first use.
func (p *KafkaProducer) WriteMessages(ctx context.Context, topic string, msgs ...kafka.Message) error {
	return p.writerForTopic(topic).WriteMessages(ctx, msgs...)
}

func (p *KafkaProducer) writerForTopic(topic string) *kafka.Writer {
	p.mu.Lock()
	defer p.mu.Unlock()

	if w, ok := p.writers[topic]; ok {
		return w
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(p.brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Compression:  kafka.Snappy,
	}
	p.writers[topic] = w
	return w
}

// Close releases all writers.
func (p *KafkaProducer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	for topic, w := range p.writers {
		if err := w.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(p.writers, topic)
	}
	return firstErr
}
