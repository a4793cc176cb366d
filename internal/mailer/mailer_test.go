package mailer

import (
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"rental-service/pkg/config"
)

func TestSendWithoutAPIKey(t *testing.T) {
	m := NewMailer(&config.MailConfig{FromAddress: "noreply@example.com"}, zap.NewNop())

	err := m.Send("to@example.com", "subject", "<p>body</p>", nil)
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
}

func TestBuildAttachment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.pdf")
	if err := os.WriteFile(path, []byte("pdf bytes"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	attachment, err := buildAttachment(path)
	if err != nil {
		t.Fatalf("buildAttachment returned error: %v", err)
	}

	if attachment.Filename != "report.pdf" {
		t.Errorf("filename = %q, want report.pdf", attachment.Filename)
	}
	if attachment.Type != "application/pdf" {
		t.Errorf("type = %q, want application/pdf", attachment.Type)
	}
	if attachment.Disposition != "attachment" {
		t.Errorf("disposition = %q, want attachment", attachment.Disposition)
	}
	decoded, err := base64.StdEncoding.DecodeString(attachment.Content)
	if err != nil {
		t.Fatalf("decode content: %v", err)
	}
	if string(decoded) != "pdf bytes" {
		t.Errorf("content = %q, want pdf bytes", decoded)
	}
}

func TestBuildAttachmentMissingFile(t *testing.T) {
	if _, err := buildAttachment(filepath.Join(t.TempDir(), "gone.pdf")); err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}

func TestContentTypeByExtension(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"report.pdf", "application/pdf"},
		{"photo.jpg", "image/jpeg"},
		{"photo.JPEG", "image/jpeg"},
		{"scan.png", "image/png"},
		{"anim.gif", "image/gif"},
		{"data.bin", "application/octet-stream"},
		{"noextension", "application/octet-stream"},
	}
	for _, tt := range tests {
		if got := contentTypeByExtension(tt.filename); got != tt.want {
			t.Errorf("contentTypeByExtension(%q) = %q, want %q", tt.filename, got, tt.want)
		}
	}
}
