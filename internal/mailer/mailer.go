// Package mailer delivers transactional email.
package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"phishguard/internal/config"
)

// Message is one outgoing email.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// New returns the sender selected by cfg.
func New(cfg config.MailConfig, log *slog.Logger) (Sender, error) {
	switch cfg.Mode {
	case config.MailModeSendGrid:
		return NewSendGridSender(cfg.SendGridKey, cfg.FromName, cfg.FromAddress), nil
	case config.MailModeLog, "":
		return NewLogSender(log), nil
	default:
		return nil, fmt.Errorf("unknown mail mode '%s'", cfg.Mode)
	}
}

// OTPMessage builds the password reset email carrying otp.
func OTPMessage(appName, to, otp string, ttl time.Duration) Message {
	minutes := int(ttl.Minutes())

	text := fmt.Sprintf(`You requested to reset your password.

Your one-time code is: %s

This code will expire in %d minutes.
If you didn't request this, please ignore this email.

%s - Email Security Scanner`, otp, minutes, appName)

	html := fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #6366f1;">Password Reset Request</h2>
  <p>You requested to reset your password. Use the following code to complete the process:</p>
  <div style="background: #f3f4f6; padding: 20px; text-align: center; margin: 20px 0; border-radius: 8px;">
    <h1 style="color: #1f2937; margin: 0; font-size: 32px; letter-spacing: 8px;">%s</h1>
  </div>
  <p>This code will expire in %d minutes.</p>
  <p>If you didn't request this, please ignore this email.</p>
  <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 20px 0;">
  <p style="color: #6b7280; font-size: 12px;">%s - Email Security Scanner</p>
</div>`, otp, minutes, appName)

	return Message{
		To:      to,
		Subject: appName + " - Password Reset OTP",
		Text:    text,
		HTML:    html,
	}
}
