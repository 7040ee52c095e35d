// Package kafka publishes risk alerts to a Kafka topic when a run detects
// qualifying clusters. The feature is flag-gated; most deployments run the
// pipeline without a broker.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/disaster-event-etl/internal/domain"
)

// Writer produces risk-alert messages to a Kafka topic.
// It implements pipeline.AlertPublisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the alert topic.
func NewWriter(brokers []string, topic string, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishAlerts serializes every qualifying cluster in the report, primary
// first, and publishes them in a single WriteMessages call.
func (w *Writer) PublishAlerts(ctx context.Context, report domain.RiskReport) error {
	if !report.HasAlerts() {
		return nil
	}

	msgs := make([]kafkago.Message, 0, 1+len(report.Secondary))
	msg, err := serializeAlert(*report.Primary, "primary", report.GeneratedAt)
	if err != nil {
		return err
	}
	msgs = append(msgs, msg)

	for _, cluster := range report.Secondary {
		msg, err := serializeAlert(cluster, "secondary", report.GeneratedAt)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}

	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish %d risk alerts: %w", len(msgs), err)
	}
	w.logger.Info("risk alerts published", "count", len(msgs), "topic", w.writer.Topic)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeAlert marshals one risk cluster into a Kafka message. The key is
// the centroid so alerts for the same area land on the same partition.
func serializeAlert(cluster domain.RiskCluster, rank string, generatedAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(cluster)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize risk alert: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(fmt.Sprintf("%.4f,%.4f", cluster.CentroidLat, cluster.CentroidLon)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "alert_rank", Value: []byte(rank)},
			{Key: "generated_at", Value: []byte(generatedAt.Format(time.RFC3339))},
		},
	}, nil
}
