package infra

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"

	"github.com/CSKCREATIONS/ola-sub000/internal/config"
)

// Mailer wraps SMTP configuration for sending document emails.
// It satisfies the service.Mailer interface; sends are synchronous because
// the cotización transition is gated on delivery.
type Mailer struct {
	host     string
	port     int
	user     string
	password string
	addr     string
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
	}
}

// EnviarDocumento sends a plain-text document email to the client.
func (m *Mailer) EnviarDocumento(ctx context.Context, destinatario, asunto, cuerpo string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e := email.NewEmail()
	e.From = m.user
	e.To = []string{destinatario}
	e.Subject = asunto
	e.Text = []byte(cuerpo)

	auth := smtp.PlainAuth("", m.user, m.password, m.host)
	return e.Send(m.addr, auth)
}
