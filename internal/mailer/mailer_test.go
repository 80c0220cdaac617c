package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fdg312/weekplan/internal/config"
)

func TestNewSenderFromConfig(t *testing.T) {
	t.Run("local by default", func(t *testing.T) {
		s, err := NewSenderFromConfig(&config.Config{}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := s.(*LocalSender); !ok {
			t.Fatalf("expected *LocalSender, got %T", s)
		}
	})

	t.Run("smtp requires host", func(t *testing.T) {
		if _, err := NewSenderFromConfig(&config.Config{EmailSenderMode: "smtp", SMTPPort: 587}, nil); err == nil {
			t.Fatal("expected error without SMTP_HOST")
		}
	})

	t.Run("resend requires key", func(t *testing.T) {
		if _, err := NewSenderFromConfig(&config.Config{EmailSenderMode: "resend"}, nil); err == nil {
			t.Fatal("expected error without RESEND_API_KEY")
		}
	})

	t.Run("smtp requires valid from", func(t *testing.T) {
		cfg := &config.Config{EmailSenderMode: "smtp", SMTPHost: "mail", SMTPPort: 587, SMTPFrom: "not an address"}
		if _, err := NewSenderFromConfig(cfg, nil); err == nil {
			t.Fatal("expected error for invalid SMTP_FROM")
		}
	})

	t.Run("unknown mode", func(t *testing.T) {
		if _, err := NewSenderFromConfig(&config.Config{EmailSenderMode: "pigeon"}, nil); err == nil {
			t.Fatal("expected error for unknown mode")
		}
	})
}

func TestLocalSenderLogs(t *testing.T) {
	var buf bytes.Buffer
	s := NewLocalSender(log.New(&buf, "", 0))
	if err := s.Send(context.Background(), Message{To: "a@b.c", Subject: "Hi", Text: "body"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if !strings.Contains(buf.String(), "to=a@b.c") {
		t.Errorf("expected recipient in log, got %q", buf.String())
	}
}

func TestWelcomeMessage(t *testing.T) {
	msg, err := WelcomeMessage("cook@example.com", "https://weekplan.ai")
	if err != nil {
		t.Fatalf("WelcomeMessage: %v", err)
	}
	if msg.To != "cook@example.com" || msg.Subject == "" {
		t.Errorf("unexpected message header: %+v", msg)
	}
	if !strings.Contains(msg.Text, "https://weekplan.ai/weekplan.html") {
		t.Errorf("expected planner link in body, got %q", msg.Text)
	}
	if !strings.Contains(msg.HTML, `href="https://weekplan.ai/weekplan.html"`) {
		t.Errorf("expected planner link in html, got %q", msg.HTML)
	}

	escaped, err := WelcomeMessage("<b>x</b>@example.com", "https://weekplan.ai")
	if err != nil {
		t.Fatalf("WelcomeMessage: %v", err)
	}
	if strings.Contains(escaped.HTML, "<b>x</b>") {
		t.Errorf("email must be escaped in html body")
	}
}

func TestBuildMessageStripsHeaderInjection(t *testing.T) {
	raw, err := buildMessage("Weekplan <no-reply@weekplan.ai>", Message{
		To:      "a@b.c\r\nBcc: evil@x.y",
		Subject: "Hello\r\nX-Injected: 1",
		Text:    "body",
	})
	if err != nil {
		t.Fatalf("buildMessage: %v", err)
	}
	out := string(raw)
	if strings.Contains(out, "\r\nBcc:") || strings.Contains(out, "\r\nX-Injected:") {
		t.Fatalf("header injection not stripped: %q", out)
	}
	if !strings.HasSuffix(out, "\r\n\r\nbody") {
		t.Errorf("body not appended after blank line: %q", out)
	}
}

func TestBuildMessageWithHTMLIsMultipart(t *testing.T) {
	msg, err := WelcomeMessage("kari@example.com", "https://weekplan.ai")
	if err != nil {
		t.Fatalf("WelcomeMessage: %v", err)
	}
	raw, err := buildMessage("no-reply@weekplan.ai", msg)
	if err != nil {
		t.Fatalf("buildMessage: %v", err)
	}
	out := string(raw)
	if !strings.Contains(out, "Content-Type: multipart/alternative; boundary=") {
		t.Fatalf("expected multipart/alternative, got %q", out)
	}
	if !strings.Contains(out, "text/plain; charset=UTF-8") || !strings.Contains(out, "text/html; charset=UTF-8") {
		t.Errorf("expected both text and html parts")
	}
}

func TestBuildMessageEncodesNonASCIISubject(t *testing.T) {
	raw, err := buildMessage("no-reply@weekplan.ai", Message{To: "a@b.c", Subject: "Ukeplan for fårikål", Text: "x"})
	if err != nil {
		t.Fatalf("buildMessage: %v", err)
	}
	if !strings.Contains(string(raw), "Subject: =?utf-8?q?") {
		t.Errorf("expected Q-encoded subject, got %q", raw)
	}
}

func TestResendSender(t *testing.T) {
	var got resendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer key" {
			t.Errorf("missing bearer token")
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"id":"1"}`))
	}))
	defer srv.Close()

	s := NewResendSender(ResendConfig{APIKey: "key", From: "Weekplan <x@y.z>", URL: srv.URL})
	if err := s.Send(context.Background(), Message{To: "a@b.c", Subject: "S", Text: "T", HTML: "<p>T</p>"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(got.To) != 1 || got.To[0] != "a@b.c" || got.Subject != "S" || got.HTML != "<p>T</p>" {
		t.Errorf("unexpected request: %+v", got)
	}

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"name":"validation_error","message":"bad from"}`))
	}))
	defer failing.Close()

	s = NewResendSender(ResendConfig{APIKey: "key", URL: failing.URL})
	err := s.Send(context.Background(), Message{To: "a@b.c"})
	var apiErr *ResendError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnprocessableEntity || !strings.Contains(err.Error(), "bad from") {
		t.Fatalf("expected API error, got %v", err)
	}
}
