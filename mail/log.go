package mail

import (
	"context"
	"log/slog"
)

// LogSender writes messages to a logger instead of delivering them. It prints
// the OTP and exists for local development only.
type LogSender struct {
	l *slog.Logger
}

func NewLogSender(l *slog.Logger) *LogSender {
	if l == nil {
		l = slog.Default()
	}
	return &LogSender{l: l}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.l.InfoContext(ctx, "otp mail",
		"to", msg.To,
		"subject", msg.Subject,
		"template", msg.Template,
		"otp", msg.Data.OTP,
	)
	return nil
}
