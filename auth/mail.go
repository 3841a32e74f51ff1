package auth

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

// Mailer delivers verification codes.
type Mailer interface {
	SendCode(ctx context.Context, to, code string) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	from := cfg.From
	if from == "" {
		from = cfg.User
	}
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   from,
	}
}

func (m *SMTPMailer) SendCode(ctx context.Context, to, code string) error {
	message := codeMessage(m.from, to, code)
	if err := m.dialer.DialAndSend(message); err != nil {
		return fmt.Errorf("error sending verification mail: %w", err)
	}
	return nil
}

func codeMessage(from, to, code string) *gomail.Message {
	message := gomail.NewMessage()
	message.SetHeader("From", from)
	message.SetHeader("To", to)
	message.SetHeader("Subject", "Edirne Events yönetici doğrulama kodu")
	message.SetBody("text/plain", fmt.Sprintf("Doğrulama kodunuz: %s\n\nBu kod kısa süre içinde geçersiz olacaktır.", code))
	message.AddAlternative("text/html", `
		<div style="font-family: Arial, sans-serif; max-width: 480px; margin: auto; padding: 20px;">
			<h2 style="color: #333;">Yönetici girişi</h2>
			<p>Doğrulama kodunuz:</p>
			<p style="font-size: 28px; letter-spacing: 6px; font-weight: bold;">`+code+`</p>
			<p>Bu kod kısa süre içinde geçersiz olacaktır.</p>
		</div>
	`)
	return message
}
