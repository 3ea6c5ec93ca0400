package mailer

import (
	"context"
	"log/slog"
)

// LogSender writes messages to the log instead of delivering them. It is
// the development default.
type LogSender struct {
	log *slog.Logger
}

func NewLogSender(log *slog.Logger) *LogSender {
	return &LogSender{log: log}
}

func (l *LogSender) Send(ctx context.Context, msg Message) error {
	l.log.Info("email not delivered, log mail mode",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.String("body", msg.Text))
	return nil
}
