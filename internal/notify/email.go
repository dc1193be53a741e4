// Package notify renders refund receipts and delivers them over SMTP.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strconv"

	"github.com/orderdesk/refundflow/internal/logging"
)

// ErrNotConfigured is returned when SMTP credentials are absent.
// Callers treat it like any other delivery failure: logged, not fatal.
var ErrNotConfigured = errors.New("smtp credentials not configured")

// Sender delivers receipts through an SMTP relay.
type Sender struct {
	host     string
	port     int
	from     string
	password string
	logger   *slog.Logger
}

// SenderOption configures the Sender.
type SenderOption func(*Sender)

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) SenderOption {
	return func(s *Sender) {
		s.logger = logger
	}
}

// NewSender creates an SMTP receipt sender.
func NewSender(host string, port int, from, password string, opts ...SenderOption) *Sender {
	s := &Sender{
		host:     host,
		port:     port,
		from:     from,
		password: password,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.from == "" || s.password == "" {
		s.logger.Warn("email credentials not configured, receipt delivery disabled")
	}
	return s
}

// Send delivers the rendered receipt to the recipient.
func (s *Sender) Send(ctx context.Context, recipient, body, orderID string) error {
	if s.from == "" || s.password == "" {
		return ErrNotConfigured
	}
	if recipient == "" {
		return errors.New("no recipient email provided")
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: Refund Approved - Order %s\r\n\r\n%s",
		s.from, recipient, orderID, body)

	auth := smtp.PlainAuth("", s.from, s.password, s.host)
	addr := net.JoinHostPort(s.host, strconv.Itoa(s.port))

	if err := smtp.SendMail(addr, auth, s.from, []string{recipient}, []byte(msg)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	s.logger.Info("receipt sent", "recipient", recipient, "order_id", orderID)
	return nil
}
