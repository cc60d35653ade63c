// Package sender delivers rendered emails.
package sender

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"time"

	"edwin/internal/mailer/domain/model"
	"edwin/internal/shared/logger"

	"github.com/google/uuid"
)

// SMTPConfig is the relay the SMTP sender talks to.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// SMTPSender sends multipart/alternative mail through a relay.
type SMTPSender struct {
	cfg  SMTPConfig
	addr string
	auth smtp.Auth
	log  logger.Logger
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPSender creates a sender. Auth is skipped when no username is set.
func NewSMTPSender(cfg SMTPConfig, log logger.Logger) *SMTPSender {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &SMTPSender{
		cfg:  cfg,
		addr: net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		auth: auth,
		log:  log.WithComponent("smtp_sender"),
		send: smtp.SendMail,
	}
}

func (s *SMTPSender) Send(ctx context.Context, msg model.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := mail.ParseAddress(msg.To); err != nil {
		return fmt.Errorf("invalid recipient %q: %w", msg.To, err)
	}
	body := buildMessage(s.cfg.From, s.cfg.FromName, msg, time.Now())
	if err := s.send(s.addr, s.auth, s.cfg.From, []string{msg.To}, body); err != nil {
		return fmt.Errorf("smtp send to %s: %w", msg.To, err)
	}
	s.log.WithFields(map[string]interface{}{"to": msg.To}).Debug("email sent")
	return nil
}

func buildMessage(from, fromName string, msg model.Message, now time.Time) []byte {
	boundary := "edwin-" + uuid.NewString()
	sender := (&mail.Address{Name: fromName, Address: from}).String()
	to := (&mail.Address{Name: msg.ToName, Address: msg.To}).String()

	text := msg.TextBody
	if text == "" {
		text = "Please view this email in an HTML-capable email client."
	}

	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", sender)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	fmt.Fprintf(&b, "Date: %s\r\n", now.Format(time.RFC1123Z))
	fmt.Fprintf(&b, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	fmt.Fprintf(&b, "Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	fmt.Fprintf(&b, "%s\r\n\r\n", text)

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	fmt.Fprintf(&b, "Content-Type: text/html; charset=UTF-8\r\n\r\n")
	fmt.Fprintf(&b, "%s\r\n\r\n", msg.HTMLBody)
	fmt.Fprintf(&b, "--%s--\r\n", boundary)
	return b.Bytes()
}
