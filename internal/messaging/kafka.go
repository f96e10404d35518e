package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/solistra/profiler/internal/config"
	"github.com/solistra/profiler/pkg/models"
)

const (
	dlqSuffix     = "-dlq"
	consumerGroup = "profile-builders"
)

// SnapshotHandler processes one decoded snapshot message. Returning an
// error sends the message to the dead-letter topic.
type SnapshotHandler func(ctx context.Context, msg models.SnapshotMessage) error

// MessageBus carries interaction snapshots: producers publish one message
// per user snapshot, the consumer runs the profile pipeline over each.
type MessageBus struct {
	writer    *kafka.Writer
	reader    *kafka.Reader
	dlqWriter *kafka.Writer
	logger    *logrus.Logger
}

func NewMessageBus(cfg *config.Config, logger *logrus.Logger) (*MessageBus, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		return nil, fmt.Errorf("no kafka brokers configured")
	}
	topic := cfg.Kafka.Topics.InteractionSnapshots

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Kafka.Brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{}, // key by user id so one user's snapshots stay ordered
		RequiredAcks: kafka.RequireOne,
		Async:        false,
		BatchTimeout: 10 * time.Millisecond,
		BatchSize:    100,
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Kafka.Brokers,
		Topic:          topic,
		GroupID:        consumerGroup,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		CommitInterval: time.Second,
		StartOffset:    kafka.LastOffset,
	})

	dlqWriter := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Kafka.Brokers...),
		Topic:        topic + dlqSuffix,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}

	return &MessageBus{
		writer:    writer,
		reader:    reader,
		dlqWriter: dlqWriter,
		logger:    logger,
	}, nil
}

// PublishSnapshot enqueues one user's interaction snapshot for profiling.
func (mb *MessageBus) PublishSnapshot(ctx context.Context, userID uuid.UUID, interactions []models.InteractionRecord) (uuid.UUID, error) {
	msg := models.SnapshotMessage{
		JobID:        uuid.New(),
		UserID:       userID,
		Interactions: interactions,
		Timestamp:    time.Now(),
	}

	value, err := json.Marshal(msg)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal snapshot message: %w", err)
	}

	err = mb.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(userID.String()),
		Value: value,
		Headers: []kafka.Header{
			{Key: "job_id", Value: []byte(msg.JobID.String())},
			{Key: "timestamp", Value: []byte(msg.Timestamp.Format(time.RFC3339))},
		},
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to publish snapshot: %w", err)
	}

	mb.logger.WithFields(logrus.Fields{
		"job_id":       msg.JobID,
		"user_id":      userID,
		"interactions": len(interactions),
	}).Info("Published interaction snapshot")

	return msg.JobID, nil
}

// Consume reads snapshot messages until the context is canceled.
// Undecodable messages and handler failures go to the DLQ; consumption
// itself keeps going.
func (mb *MessageBus) Consume(ctx context.Context, handler SnapshotHandler) error {
	for {
		raw, err := mb.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("failed to read snapshot message: %w", err)
		}

		var msg models.SnapshotMessage
		if err := json.Unmarshal(raw.Value, &msg); err != nil {
			mb.logger.WithError(err).WithField("offset", raw.Offset).
				Warn("Dead-lettering undecodable snapshot message")
			mb.deadLetter(ctx, raw)
			continue
		}

		if err := handler(ctx, msg); err != nil {
			mb.logger.WithError(err).WithFields(logrus.Fields{
				"job_id":  msg.JobID,
				"user_id": msg.UserID,
			}).Error("Snapshot handler failed, dead-lettering message")
			mb.deadLetter(ctx, raw)
		}
	}
}

func (mb *MessageBus) deadLetter(ctx context.Context, raw kafka.Message) {
	dlqMsg := kafka.Message{
		Key:     raw.Key,
		Value:   raw.Value,
		Headers: append(raw.Headers, kafka.Header{Key: "dead_lettered_at", Value: []byte(time.Now().Format(time.RFC3339))}),
	}
	if err := mb.dlqWriter.WriteMessages(ctx, dlqMsg); err != nil {
		mb.logger.WithError(err).Error("Failed to write to DLQ")
	}
}

func (mb *MessageBus) Close() error {
	var firstErr error
	if err := mb.reader.Close(); err != nil {
		firstErr = err
	}
	if err := mb.writer.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := mb.dlqWriter.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
