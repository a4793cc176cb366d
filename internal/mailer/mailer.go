// Package mailer sends transactional email through the SendGrid API.
package mailer

import (
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"rental-service/pkg/config"
)

var (
	ErrNotConfigured = errors.New("sendgrid api key is not configured")
	ErrSendFailed    = errors.New("email delivery failed")
)

// Mailer delivers HTML email with optional file attachments
type Mailer struct {
	apiKey string
	from   string
	log    *zap.Logger
}

// NewMailer creates a SendGrid-backed mailer
func NewMailer(cfg *config.MailConfig, log *zap.Logger) *Mailer {
	return &Mailer{
		apiKey: cfg.SendGridAPIKey,
		from:   cfg.FromAddress,
		log:    log,
	}
}

// Send delivers an HTML email. Attachment paths that do not exist are
// skipped with a warning. Success is a 2xx-class response status.
func (m *Mailer) Send(toEmail, subject, htmlContent string, attachmentPaths []string) error {
	if m.apiKey == "" {
		m.log.Error("SendGrid API key not configured")
		return ErrNotConfigured
	}

	from := mail.NewEmail("", m.from)
	to := mail.NewEmail("", toEmail)
	message := mail.NewSingleEmail(from, subject, to, "", htmlContent)

	for _, path := range attachmentPaths {
		attachment, err := buildAttachment(path)
		if err != nil {
			m.log.Warn("Skipping attachment", zap.String("path", path), zap.Error(err))
			continue
		}
		message.AddAttachment(attachment)
	}

	client := sendgrid.NewSendClient(m.apiKey)
	response, err := client.Send(message)
	if err != nil {
		m.log.Error("Failed to send email", zap.String("to", toEmail), zap.Error(err))
		return ErrSendFailed
	}
	if response.StatusCode < 200 || response.StatusCode > 299 {
		m.log.Error("Email delivery rejected",
			zap.String("to", toEmail),
			zap.Int("status", response.StatusCode),
			zap.String("body", response.Body))
		return ErrSendFailed
	}

	m.log.Info("Email sent", zap.String("to", toEmail), zap.Int("status", response.StatusCode))
	return nil
}

func buildAttachment(path string) (*mail.Attachment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	filename := filepath.Base(path)
	attachment := mail.NewAttachment()
	attachment.SetContent(base64.StdEncoding.EncodeToString(data))
	attachment.SetFilename(filename)
	attachment.SetType(contentTypeByExtension(filename))
	attachment.SetDisposition("attachment")
	attachment.SetContentID(filename)
	return attachment, nil
}

func contentTypeByExtension(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return "application/pdf"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	default:
		return "application/octet-stream"
	}
}
