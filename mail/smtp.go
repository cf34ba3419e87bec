package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"

	"gopkg.in/gomail.v2"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

type smtpDialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPSender renders each message and delivers it over SMTP.
type SMTPSender struct {
	cfg      SMTPConfig
	dialer   smtpDialer
	renderer *Renderer
}

func NewSMTPSender(cfg SMTPConfig, renderer *Renderer) (*SMTPSender, error) {
	if cfg.Host == "" {
		return nil, errors.New("smtp host is required")
	}
	if cfg.From == "" {
		return nil, errors.New("smtp from address is required")
	}
	if renderer == nil {
		return nil, errors.New("smtp sender requires a renderer")
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}

	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	dialer.TLSConfig = &tls.Config{
		ServerName: cfg.Host,
		MinVersion: tls.VersionTLS12,
	}

	return &SMTPSender{
		cfg:      cfg,
		dialer:   dialer,
		renderer: renderer,
	}, nil
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := s.renderer.Render(msg)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}

	m := gomail.NewMessage(
		gomail.SetCharset("UTF-8"),
		gomail.SetEncoding(gomail.Base64),
	)
	m.SetAddressHeader("From", s.cfg.From, s.cfg.FromName)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	return nil
}
