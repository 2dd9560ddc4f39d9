package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/kalpovskii/todolist/internal/app/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

var eventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "todo_events_published_total",
	Help: "Todo lifecycle events handed to Kafka, by action and result.",
}, []string{"action", "result"})

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes todo events to a Kafka topic. Writes are asynchronous;
// delivery failures are logged and counted, never returned to the caller.
type Producer struct {
	writer messageWriter
	log    logrus.FieldLogger
}

func NewProducer(broker, topic string, log logrus.FieldLogger) *Producer {
	p := &Producer{log: log}
	p.writer = &kafka.Writer{
		Addr:                   kafka.TCP(broker),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		Async:                  true,
		AllowAutoTopicCreation: true,
		Completion:             p.completed,
	}
	return p
}

func (p *Producer) Publish(ctx context.Context, event models.TodoEvent) {
	msg, err := encodeEvent(event)
	if err != nil {
		p.log.WithError(err).WithField("action", event.Action).Error("encode todo event")
		eventsPublished.WithLabelValues(event.Action, "error").Inc()
		return
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.completed([]kafka.Message{msg}, err)
	}
}

func (p *Producer) completed(messages []kafka.Message, err error) {
	for _, m := range messages {
		action := headerValue(m, "action")
		if err != nil {
			p.log.WithError(err).WithField("action", action).Warn("failed to write kafka message")
			eventsPublished.WithLabelValues(action, "error").Inc()
			continue
		}
		eventsPublished.WithLabelValues(action, "ok").Inc()
	}
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

func encodeEvent(event models.TodoEvent) (kafka.Message, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:     []byte(event.TodoID),
		Value:   value,
		Time:    event.At,
		Headers: []kafka.Header{{Key: "action", Value: []byte(event.Action)}},
	}, nil
}

// DecodeEvent parses a message value written by Producer.
func DecodeEvent(value []byte) (models.TodoEvent, error) {
	var event models.TodoEvent
	err := json.Unmarshal(value, &event)
	return event, err
}

func headerValue(m kafka.Message, key string) string {
	for _, h := range m.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}
