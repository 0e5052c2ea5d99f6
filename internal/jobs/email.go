// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
)

// VerificationEmailParams is the params object of [CommandSendVerificationEmail].
type VerificationEmailParams struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Secret   string `json:"secret"`
}

// Map renders the params as the envelope's named-argument object.
func (params VerificationEmailParams) Map() map[string]any {
	return map[string]any{
		"username": params.Username,
		"email":    params.Email,
		"secret":   params.Secret,
	}
}

// Message is one outbound email.
type Message struct {
	From    string
	To      string
	Subject string
	Body    string
}

// Mailer delivers rendered messages. Template rendering and SMTP transport
// live behind this seam.
type Mailer interface {
	Send(context context.Context, message Message) error
}

// LogMailer writes messages to the structured log instead of sending them.
//
// It is meant for development only: the message body, including the
// verification link and its secret, is logged at INFO.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer constructs a new [LogMailer].
func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (mailer *LogMailer) Send(context context.Context, message Message) error {
	mailer.logger.InfoContext(context, "email_sent",
		slog.String("from", message.From),
		slog.String("to", message.To),
		slog.String("subject", message.Subject),
		slog.String("body", message.Body),
	)
	return nil
}

// VerificationSender composes verification emails.
type VerificationSender struct {
	mailer          Mailer
	from            string
	siteName        string
	verificationURL string
}

/*
NewVerificationSender constructs a new [VerificationSender].

Parameters:
  - mailer: Mailer
  - from: string (sender address)
  - siteName: string (display name used in the subject)
  - verificationURL: string (front-facing page that accepts the secret)

Returns:
  - *VerificationSender
*/
func NewVerificationSender(mailer Mailer, from, siteName, verificationURL string) *VerificationSender {
	return &VerificationSender{
		mailer:          mailer,
		from:            from,
		siteName:        siteName,
		verificationURL: verificationURL,
	}
}

// Link returns the verification link carrying secret.
func (sender *VerificationSender) Link(secret string) string {
	separator := "?"
	if strings.Contains(sender.verificationURL, "?") {
		separator = "&"
	}
	return sender.verificationURL + separator + "secret=" + url.QueryEscape(secret)
}

// Send is the handler bound to [CommandSendVerificationEmail].
func (sender *VerificationSender) Send(context context.Context, params VerificationEmailParams) error {
	if params.Email == "" {
		return fmt.Errorf("jobs: verification email has no recipient")
	}

	message := Message{
		From:    sender.from,
		To:      params.Email,
		Subject: fmt.Sprintf("Verify your %s account", sender.siteName),
		Body: fmt.Sprintf(
			"Hi %s,\n\nConfirm your email address by opening the link below:\n\n%s\n",
			params.Username, sender.Link(params.Secret),
		),
	}

	if err := sender.mailer.Send(context, message); err != nil {
		return fmt.Errorf("jobs: send verification email: %w", err)
	}
	return nil
}
