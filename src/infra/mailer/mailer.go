package mailer

import (
	"context"
	"log/slog"
)

type Email struct {
	To      string
	Locale  string
	Subject string
	Body    string
}

// LogMailer só registra o email. A entrega real é responsabilidade de outro serviço.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, email Email) error {
	m.logger.InfoContext(ctx, "email sent",
		"to", email.To,
		"locale", email.Locale,
		"subject", email.Subject,
		"body_length", len(email.Body),
	)
	return nil
}
