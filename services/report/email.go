package report

import (
	"fmt"

	"gopkg.in/mail.v2"

	"sjsage522/listingwatch/config"
	"sjsage522/listingwatch/internal/listing"
	"sjsage522/listingwatch/logger"
	"sjsage522/listingwatch/pkg/errors"
)

// Sender delivers composed messages. Implemented by *mail.Dialer.
type Sender interface {
	DialAndSend(m ...*mail.Message) error
}

// EmailReporter mails records to one recipient
type EmailReporter struct {
	Config config.MailConfig
	To     string
	Format Format

	// Subject replaces the configured subject when set
	Subject string
	// CategoryID and Expression describe the search in product mails
	CategoryID int
	Expression string

	sender Sender
}

// NewEmailReporter creates a reporter sending through the configured SMTP
// server
func NewEmailReporter(cfg config.MailConfig, to string, format Format) *EmailReporter {
	dialer := mail.NewDialer(cfg.Server, cfg.Port, cfg.Username, cfg.Password)
	if cfg.TLS {
		dialer.StartTLSPolicy = mail.MandatoryStartTLS
	} else {
		dialer.StartTLSPolicy = mail.OpportunisticStartTLS
	}

	return &EmailReporter{
		Config: cfg,
		To:     to,
		Format: format,
		sender: dialer,
	}
}

// ProductsMessage composes the subject and body of a product mail. The
// subject tag tells apart mails with and without results.
func (e *EmailReporter) ProductsMessage(records []listing.Record) (string, string) {
	tag := e.Config.NoResultsTag
	if len(records) > 0 {
		tag = e.Config.GotResultsTag
	}

	subject := fmt.Sprintf("%s %s (%d-%d)", tag, e.subject(e.Config.Subject), e.CategoryID, len(records))
	body := fmt.Sprintf("Got %d results for products in category %d.\nUsing filter expression: \"%s\"\n\n",
		len(records), e.CategoryID, e.Expression)
	body += ProductsText(records) + e.Config.Signature

	return subject, body
}

// ReviewsMessage composes the subject and body of a reviews mail
func (e *EmailReporter) ReviewsMessage(records []listing.Record) (string, string) {
	subject := e.Config.ReviewsTag + " " + e.subject(e.Config.ReviewsSubject)
	body := fmt.Sprintf("Got %d templates with suggestions that needs to be approved.\n\n", len(records))
	body += ReviewsText(records) + e.Config.Signature

	return subject, body
}

func (e *EmailReporter) subject(fallback string) string {
	if e.Subject != "" {
		return e.Subject
	}
	return fallback
}

// Report mails the records. Product mails are sent even without results,
// review mails only when something waits for review.
func (e *EmailReporter) Report(source string, records []listing.Record) error {
	var subject, body string
	switch e.Format {
	case Reviews:
		if len(records) == 0 {
			logger.ForReport().Debug().Str("source", source).Msg("No reviews, skipping email")
			return nil
		}
		subject, body = e.ReviewsMessage(records)
	default:
		subject, body = e.ProductsMessage(records)
	}

	return e.Send(source, subject, body)
}

// Send delivers a plain text message
func (e *EmailReporter) Send(source, subject, body string) error {
	m := mail.NewMessage()
	m.SetHeader("From", e.Config.From)
	m.SetHeader("To", e.To)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := e.sender.DialAndSend(m); err != nil {
		return errors.NewReport(source, fmt.Sprintf("could not send email through %s:%d", e.Config.Server, e.Config.Port), err)
	}

	logger.ForReport().Info().
		Str("source", source).
		Str("to", e.To).
		Str("subject", subject).
		Msg("Email sent")
	return nil
}
