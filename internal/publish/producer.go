// Package publish sends simulation events to Kafka.
package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/iwvelando/selic-window/internal/simulation"
	"github.com/iwvelando/selic-window/internal/window"
	"github.com/iwvelando/selic-window/pkg/constants"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// EventSimulationCompleted is the type of every event this package publishes.
const EventSimulationCompleted = "SIMULATION_COMPLETED"

// SimulationEvent summarizes a completed simulation.
type SimulationEvent struct {
	EventType        string          `json:"eventType"`
	StartDate        string          `json:"startDate"`
	EndDate          string          `json:"endDate"`
	InitialCapital   decimal.Decimal `json:"initialCapital"`
	Frequency        string          `json:"frequency"`
	WindowLengthDays int             `json:"windowLengthDays"`
	Snapshots        int             `json:"snapshots"`
	FinalCapital     decimal.Decimal `json:"finalCapital"`
	WindowFound      bool            `json:"windowFound"`
	Window           *window.Window  `json:"window,omitempty"`
	Timestamp        time.Time       `json:"timestamp"`
}

// messageWriter is the part of kafka.Writer used by Producer.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer handles publishing events to Kafka
type Producer struct {
	writer messageWriter
	topic  string
	logger *zap.Logger
	now    func() time.Time
}

// NewProducer creates a new Kafka producer. If logger is nil, it will use a
// no-op logger.
func NewProducer(logger *zap.Logger, brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	}
	return newProducer(logger, writer, topic)
}

func newProducer(logger *zap.Logger, writer messageWriter, topic string) *Producer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Producer{
		writer: writer,
		topic:  topic,
		logger: logger,
		now:    time.Now,
	}
}

// SimulationCompleted publishes a SIMULATION_COMPLETED event keyed by the
// simulated period.
func (p *Producer) SimulationCompleted(ctx context.Context, result simulation.Result) error {
	params := result.Parameters
	event := SimulationEvent{
		EventType:        EventSimulationCompleted,
		StartDate:        params.StartDate.Format(constants.DateLayout),
		EndDate:          params.EndDate.Format(constants.DateLayout),
		InitialCapital:   params.InitialCapital,
		Frequency:        string(params.Frequency),
		WindowLengthDays: params.WindowLengthDays,
		Snapshots:        len(result.Snapshots),
		FinalCapital:     result.Summary.FinalCapital,
		WindowFound:      result.Window != nil,
		Window:           result.Window,
		Timestamp:        p.now(),
	}
	return p.publish(ctx, EventKey(result), event)
}

// EventKey identifies the simulated period of a result.
func EventKey(result simulation.Result) string {
	params := result.Parameters
	return fmt.Sprintf("%s:%s:%d",
		params.StartDate.Format(constants.DateLayout), params.EndDate.Format(constants.DateLayout), params.WindowLengthDays)
}

func (p *Producer) publish(ctx context.Context, key string, event SimulationEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: data,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}

	p.logger.Debug("published event",
		zap.String("op", "publish.Producer.publish"),
		zap.String("topic", p.topic),
		zap.String("eventType", event.EventType),
		zap.String("key", key),
	)
	return nil
}

// Close closes the Kafka producer
func (p *Producer) Close() error {
	return p.writer.Close()
}
