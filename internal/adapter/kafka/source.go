// Package kafka adapts a Kafka topic into an ingestion source. An upstream
// collector publishes one raw FIRMS record per message; one fetch drains a
// bounded batch so the coordinator sees the same array-like shape the HTTP
// source produces.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/patagoniaverde/firewatch/internal/domain"
	"github.com/patagoniaverde/firewatch/internal/ingest"
)

// SourceConfig holds the consumer settings.
type SourceConfig struct {
	Brokers     []string
	Topic       string
	GroupID     string
	BatchSize   int           // max records per fetch
	PollTimeout time.Duration // how long one fetch waits for the batch to fill
}

// Source consumes raw records from a topic. It implements ingest.Source.
type Source struct {
	reader      *kafkago.Reader
	batchSize   int
	pollTimeout time.Duration
	logger      *slog.Logger
}

// NewSource creates a Kafka consumer for the configured source topic.
func NewSource(cfg SourceConfig, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{
		reader: kafkago.NewReader(kafkago.ReaderConfig{
			Brokers:     cfg.Brokers,
			Topic:       cfg.Topic,
			GroupID:     cfg.GroupID,
			StartOffset: kafkago.FirstOffset,
		}),
		batchSize:   cfg.BatchSize,
		pollTimeout: cfg.PollTimeout,
		logger:      logger,
	}
}

// FetchRecords reads up to BatchSize messages, stopping early when the poll
// window closes. A malformed message is skipped, not fatal; an empty window
// is reported as a transport failure so the coordinator keeps its
// last-known-good collection instead of adopting a phantom empty snapshot.
func (s *Source) FetchRecords(ctx context.Context) ([]domain.RawRecord, error) {
	pollCtx, cancel := context.WithTimeout(ctx, s.pollTimeout)
	defer cancel()

	records := make([]domain.RawRecord, 0, s.batchSize)
	for len(records) < s.batchSize {
		msg, err := s.reader.ReadMessage(pollCtx)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				break
			}
			return nil, fmt.Errorf("%w: read message: %v", ingest.ErrTransport, err)
		}

		rec, err := mapMessageToRecord(msg)
		if err != nil {
			s.logger.Warn("skipping undecodable message",
				"error", err,
				"topic", msg.Topic,
				"partition", msg.Partition,
				"offset", msg.Offset,
			)
			continue
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: no records within %s poll window", ingest.ErrTransport, s.pollTimeout)
	}
	return records, nil
}

// Close releases the underlying consumer.
func (s *Source) Close() error {
	return s.reader.Close()
}

// mapMessageToRecord decodes one message payload into a raw record. Records
// published without any date inherit the acquisition day from the Kafka
// message timestamp, which the collector sets from the source file date.
func mapMessageToRecord(msg kafkago.Message) (domain.RawRecord, error) {
	var rec domain.RawRecord
	if err := json.Unmarshal(msg.Value, &rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}

	if _, hasDate := rec["date"]; !hasDate {
		if _, hasAcq := rec["acq_date"]; !hasAcq && !msg.Time.IsZero() {
			rec["acq_date"] = msg.Time.UTC().Format("2006-01-02")
		}
	}
	return rec, nil
}
