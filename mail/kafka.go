package mail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"
)

// NotificationEvent is the payload published for a downstream notification
// service to deliver.
type NotificationEvent struct {
	Type       string       `json:"type"`
	Subject    string       `json:"subject"`
	Template   string       `json:"template"`
	Data       TemplateData `json:"data"`
	Message    string       `json:"message,omitempty"`
	Recipients []string     `json:"recipients"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSender hands messages to a notification service through Kafka. The
// writer is synchronous so a failed publish fails the OTP operation.
type KafkaSender struct {
	l        *slog.Logger
	w        messageWriter
	renderer *Renderer
}

// NewKafkaSender publishes to topic. When renderer is non-nil the rendered
// HTML body is included in the event.
func NewKafkaSender(l *slog.Logger, brokers []string, topic string, renderer *Renderer) (*KafkaSender, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka sender requires at least one broker")
	}
	if topic == "" {
		return nil, errors.New("kafka sender requires a topic")
	}
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	l = l.WithGroup("kafka").With("topic", topic)

	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		RequiredAcks:           kafka.RequireOne,
		Async:                  false,
		AllowAutoTopicCreation: true,
		Logger: kafka.LoggerFunc(func(msg string, args ...any) {
			l.Debug(fmt.Sprintf(msg, args...))
		}),
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...any) {
			l.Error(fmt.Sprintf(msg, args...))
		}),
	}

	return &KafkaSender{l: l, w: w, renderer: renderer}, nil
}

func (s *KafkaSender) Send(ctx context.Context, msg Message) error {
	event := NotificationEvent{
		Type:       "email",
		Subject:    msg.Subject,
		Template:   msg.Template,
		Data:       msg.Data,
		Recipients: []string{msg.To},
	}
	if s.renderer != nil {
		body, err := s.renderer.Render(msg)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrSendFailed, err)
		}
		event.Message = body
	}

	b, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%w: marshal event: %v", ErrSendFailed, err)
	}

	err = s.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(msg.To),
		Value: b,
	})
	if err != nil {
		return fmt.Errorf("%w: write kafka message: %v", ErrSendFailed, err)
	}
	return nil
}

func (s *KafkaSender) Close() error {
	if err := s.w.Close(); err != nil {
		s.l.Error("close kafka writer", "error", err)
		return err
	}
	return nil
}
