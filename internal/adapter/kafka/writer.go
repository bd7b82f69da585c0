package kafka

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/wheat-yield-etl/internal/config"
	"github.com/couchcryptid/wheat-yield-etl/internal/domain"
)

// Writer publishes every table row as one JSON message.
// It implements pipeline.Loader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// Name identifies the sink in logs and metrics.
func (w *Writer) Name() string {
	return "kafka"
}

// Load serializes and publishes all rows of a table in a single
// WriteMessages call.
func (w *Writer) Load(ctx context.Context, t *domain.Table) error {
	if t.Len() == 0 {
		return nil
	}
	loadedAt := domain.Now()
	msgs := make([]kafkago.Message, t.Len())
	for i := range t.Rows {
		msg, err := serializeToMessage(t, i, loadedAt)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish %s: %w", t.Name, err)
	}
	w.logger.Debug("table published", "table", t.Name, "messages", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals row i into a Kafka message. The key is the
// table name plus a digest of the row, so replays of the same data produce
// the same keys.
func serializeToMessage(t *domain.Table, i int, loadedAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(t.Record(i))
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize %s row %d: %w", t.Name, i, err)
	}
	sum := sha256.Sum256(data)
	return kafkago.Message{
		Key:   []byte(t.Name + "-" + hex.EncodeToString(sum[:8])),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "table", Value: []byte(t.Name)},
			{Key: "loaded_at", Value: []byte(loadedAt.Format(time.RFC3339))},
		},
	}, nil
}
