package parser

import (
	"strings"
	"testing"

	"github.com/synergitech/postal-relay/internal/email"
)

func TestParsePlainTextEmail(t *testing.T) {
	t.Parallel()

	raw := []byte(strings.Join([]string{
		"From: sender@example.com",
		"To: recipient@example.com",
		"Subject: Test Subject",
		"Content-Type: text/plain",
		"",
		"Hello, this is a plain text email.",
	}, "\r\n"))

	msg, err := Parse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(msg.From) != 1 || msg.From[0].Email != "sender@example.com" {
		t.Errorf("From: got %v, want [sender@example.com]", msg.From)
	}
	if len(msg.To) != 1 || msg.To[0].Email != "recipient@example.com" {
		t.Errorf("To: got %v, want [recipient@example.com]", msg.To)
	}
	if msg.Subject != "Test Subject" {
		t.Errorf("Subject: got %q, want %q", msg.Subject, "Test Subject")
	}
	if msg.TextBody != "Hello, this is a plain text email." {
		t.Errorf("TextBody: got %q", msg.TextBody)
	}
	if msg.HtmlBody != "" {
		t.Errorf("HtmlBody: got %q, want empty", msg.HtmlBody)
	}
	if len(msg.Attachments) != 0 {
		t.Errorf("Attachments: got %d, want 0", len(msg.Attachments))
	}
}

func TestParseKeepsDisplayNamesAndCasing(t *testing.T) {
	t.Parallel()

	raw := []byte(strings.Join([]string{
		`From: "Al Sender" <Al@Example.com>`,
		`To: "Jo Bloggs" <Jo.Bloggs@Example.com>, bob@example.com`,
		"Reply-To: replies@example.com",
		"Subject: Names",
		"Content-Type: text/plain",
		"",
		"body",
	}, "\r\n"))

	msg, err := Parse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(msg.From) != 1 {
		t.Fatalf("From: got %d entries, want 1", len(msg.From))
	}
	want := email.Address{Name: "Al Sender", Email: "Al@Example.com"}
	if msg.From[0] != want {
		t.Errorf("From: got %+v, want %+v", msg.From[0], want)
	}

	if len(msg.To) != 2 {
		t.Fatalf("To: got %d entries, want 2", len(msg.To))
	}
	if msg.To[0].Name != "Jo Bloggs" || msg.To[0].Email != "Jo.Bloggs@Example.com" {
		t.Errorf("To[0]: got %+v, want Jo Bloggs <Jo.Bloggs@Example.com>", msg.To[0])
	}
	if msg.To[1].Name != "" || msg.To[1].Email != "bob@example.com" {
		t.Errorf("To[1]: got %+v, want bare bob@example.com", msg.To[1])
	}

	if len(msg.ReplyTo) != 1 || msg.ReplyTo[0].Email != "replies@example.com" {
		t.Errorf("ReplyTo: got %v", msg.ReplyTo)
	}
}

func TestParseMultipartTextAndHTML(t *testing.T) {
	t.Parallel()

	raw := []byte(strings.Join([]string{
		"From: sender@example.com",
		"To: alice@example.com, bob@example.com",
		"Cc: carol@example.com",
		"Subject: Multipart Test",
		"Content-Type: multipart/alternative; boundary=boundary123",
		"",
		"--boundary123",
		"Content-Type: text/plain",
		"",
		"Plain text body",
		"--boundary123",
		"Content-Type: text/html",
		"",
		"<html><body><p>HTML body</p></body></html>",
		"--boundary123--",
	}, "\r\n"))

	msg, err := Parse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(msg.To) != 2 {
		t.Fatalf("To: got %d recipients, want 2", len(msg.To))
	}
	if len(msg.Cc) != 1 || msg.Cc[0].Email != "carol@example.com" {
		t.Errorf("Cc: got %v, want [carol@example.com]", msg.Cc)
	}
	if msg.TextBody != "Plain text body" {
		t.Errorf("TextBody: got %q, want %q", msg.TextBody, "Plain text body")
	}
	if !strings.Contains(msg.HtmlBody, "<p>HTML body</p>") {
		t.Errorf("HtmlBody: got %q, want HTML content", msg.HtmlBody)
	}
}

func TestParseAttachment(t *testing.T) {
	t.Parallel()

	raw := []byte(strings.Join([]string{
		"From: sender@example.com",
		"To: recipient@example.com",
		"Subject: With Attachment",
		"Content-Type: multipart/mixed; boundary=mixed123",
		"",
		"--mixed123",
		"Content-Type: text/plain",
		"",
		"See attached.",
		"--mixed123",
		"Content-Type: application/pdf",
		"Content-Disposition: attachment; filename=report.pdf",
		"Content-Transfer-Encoding: base64",
		"",
		"aGVsbG8gcGRm",
		"--mixed123--",
	}, "\r\n"))

	msg, err := Parse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(msg.Attachments) != 1 {
		t.Fatalf("Attachments: got %d, want 1", len(msg.Attachments))
	}
	att := msg.Attachments[0]
	if att.Filename != "report.pdf" {
		t.Errorf("Filename: got %q, want %q", att.Filename, "report.pdf")
	}
	if att.ContentType != "application/pdf" {
		t.Errorf("ContentType: got %q, want %q", att.ContentType, "application/pdf")
	}
	if string(att.Content) != "hello pdf" {
		t.Errorf("Content: got %q, want %q", att.Content, "hello pdf")
	}
}

func TestParseAttachmentWithoutFilename(t *testing.T) {
	t.Parallel()

	raw := []byte(strings.Join([]string{
		"From: sender@example.com",
		"To: recipient@example.com",
		"Subject: Nameless",
		"Content-Type: multipart/mixed; boundary=mixed123",
		"",
		"--mixed123",
		"Content-Type: text/plain",
		"",
		"body",
		"--mixed123",
		"Content-Type: application/octet-stream",
		"Content-Disposition: attachment",
		"",
		"rawdata",
		"--mixed123--",
	}, "\r\n"))

	msg, err := Parse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(msg.Attachments) != 1 {
		t.Fatalf("Attachments: got %d, want 1", len(msg.Attachments))
	}
	// No filename anywhere on the part: left empty for backends to name
	if msg.Attachments[0].Filename != "" {
		t.Errorf("Filename: got %q, want empty", msg.Attachments[0].Filename)
	}
}

func TestParseRawHeaderLines(t *testing.T) {
	t.Parallel()

	raw := []byte(strings.Join([]string{
		"From: sender@example.com",
		"To: recipient@example.com",
		"Subject: folded",
		" continues here",
		"X-Custom: one",
		"X-Custom: two",
		"",
		"body",
	}, "\r\n"))

	msg, err := Parse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{
		"From: sender@example.com",
		"To: recipient@example.com",
		"Subject: folded continues here",
		"X-Custom: one",
		"X-Custom: two",
	}
	if len(msg.Headers) != len(want) {
		t.Fatalf("Headers: got %d lines %v, want %d", len(msg.Headers), msg.Headers, len(want))
	}
	for i, line := range want {
		if msg.Headers[i] != line {
			t.Errorf("Headers[%d]: got %q, want %q", i, msg.Headers[i], line)
		}
	}
}

func TestParseInvalidMessage(t *testing.T) {
	t.Parallel()

	if _, err := Parse([]byte("not an email at all")); err == nil {
		t.Error("expected error for invalid message, got nil")
	}
}

func TestParseMissingBoundary(t *testing.T) {
	t.Parallel()

	raw := []byte(strings.Join([]string{
		"From: sender@example.com",
		"To: recipient@example.com",
		"Content-Type: multipart/mixed",
		"",
		"body",
	}, "\r\n"))

	if _, err := Parse(raw); err == nil {
		t.Error("expected error for multipart without boundary, got nil")
	}
}

func TestParseMalformedAddressListFallsBack(t *testing.T) {
	t.Parallel()

	raw := []byte(strings.Join([]string{
		"From: sender@example.com",
		"To: not,,a valid <list",
		"Content-Type: text/plain",
		"",
		"body",
	}, "\r\n"))

	msg, err := Parse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(msg.To) == 0 {
		t.Error("expected fallback recipients from comma split, got none")
	}
}
