package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kalpovskii/todolist/internal/config"
	todokafka "github.com/kalpovskii/todolist/internal/kafka"
	"github.com/kalpovskii/todolist/internal/logging"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}

	if cfg.Kafka.Broker == "" || cfg.Kafka.LogFile == "" {
		logrus.Fatal("kafka.broker or kafka.log_file is not configured")
	}

	file, err := os.OpenFile(cfg.Kafka.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		logrus.Fatalf("failed to open log file: %v", err)
	}
	defer file.Close()

	// events go to the file as JSON lines, diagnostics to stderr
	events, err := logging.New("info", "json", file)
	if err != nil {
		logrus.Fatalf("logging: %v", err)
	}
	log, err := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	if err != nil {
		logrus.Fatalf("logging: %v", err)
	}

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers: []string{cfg.Kafka.Broker},
		Topic:   cfg.Kafka.Topic,
		GroupID: cfg.Kafka.GroupID,
	})
	defer r.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(logrus.Fields{"topic": cfg.Kafka.Topic, "file": cfg.Kafka.LogFile}).Info("Kafka logger started")
	consume(ctx, r, events, log)
	log.Info("Kafka logger stopped")
}

// readRetryDelay is how long consume waits after a failed read before
// asking the broker again.
var readRetryDelay = time.Second

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

func consume(ctx context.Context, r messageReader, events, log logrus.FieldLogger) {
	for {
		m, err := r.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				return
			}
			log.WithError(err).Error("error reading message")
			select {
			case <-ctx.Done():
				return
			case <-time.After(readRetryDelay):
			}
			continue
		}

		event, err := todokafka.DecodeEvent(m.Value)
		if err != nil {
			log.WithError(err).WithField("offset", m.Offset).Warn("skipping undecodable message")
			continue
		}

		events.WithFields(logrus.Fields{
			"action":    event.Action,
			"todo_id":   event.TodoID,
			"title":     event.Title,
			"at":        event.At,
			"partition": m.Partition,
			"offset":    m.Offset,
		}).Info("todo event")
	}
}
