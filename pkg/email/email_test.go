package email

import (
	"bytes"
	"encoding/base64"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"strings"
	"testing"
	"time"
)

func newTestService() *EmailService {
	s := NewEmailService(Config{
		Host:      "localhost",
		Port:      587,
		FromEmail: "noreply@restaurant.com",
		FromName:  "RestoPOS",
	})
	s.now = func() time.Time { return time.Date(2025, 3, 9, 22, 0, 0, 0, time.UTC) }
	return s
}

func TestComposePlain(t *testing.T) {
	raw, err := newTestService().Compose(Message{
		To:      "owner@example.com",
		Subject: "Daily Sales Report",
		Body:    "line one\nline two",
	})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}

	m, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := m.Header.Get("To"); got != "owner@example.com" {
		t.Fatalf("unexpected To %q", got)
	}
	body, _ := io.ReadAll(m.Body)
	if string(body) != "line one\r\nline two" {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestComposeWithAttachment(t *testing.T) {
	data := []byte("SALES TRANSACTIONS\nBillNumber,Date\n")
	raw, err := newTestService().Compose(Message{
		To:      "owner@example.com",
		Subject: "Weekly All Report",
		Body:    "summary",
		Attachments: []Attachment{
			{Filename: "Weekly_All_Report_20250309_20250310.csv", ContentType: "text/csv", Data: data},
		},
	})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}

	m, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	mediaType, params, err := mime.ParseMediaType(m.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/mixed" {
		t.Fatalf("unexpected content type %q (%v)", mediaType, err)
	}

	r := multipart.NewReader(m.Body, params["boundary"])
	text, err := r.NextPart()
	if err != nil {
		t.Fatalf("text part: %v", err)
	}
	if b, _ := io.ReadAll(text); string(b) != "summary" {
		t.Fatalf("unexpected text part %q", b)
	}

	att, err := r.NextPart()
	if err != nil {
		t.Fatalf("attachment part: %v", err)
	}
	if att.FileName() != "Weekly_All_Report_20250309_20250310.csv" {
		t.Fatalf("unexpected filename %q", att.FileName())
	}
	encoded, _ := io.ReadAll(att)
	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(string(encoded), "\r\n", ""))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !bytes.Equal(decoded, data) {
		t.Fatalf("attachment mismatch: %q", decoded)
	}
}
