package alerting

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"price-tracker/internal/report"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func testReport() report.Report {
	return report.Report{
		Title: "Daily Price Tracking Report",
		HTML:  "<h3>Daily Price Summary</h3><p>Widget: 999</p>",
	}
}

func TestTelegramNotifierSuccess(t *testing.T) {
	received := make(map[string]string)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "sendMessage") {
			t.Fatalf("path should contain sendMessage, got %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("decode request body: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}))
	defer srv.Close()

	notifier := NewTelegramNotifier("token", "chat", srv.URL, time.Second, testLogger())
	if err := notifier.Notify(context.Background(), testReport()); err != nil {
		t.Fatalf("Notify should succeed: %v", err)
	}

	if received["chat_id"] != "chat" {
		t.Fatalf("wrong chat_id: %#v", received)
	}
	if !strings.Contains(received["text"], "Widget: 999") {
		t.Fatalf("text should carry the report content, got %q", received["text"])
	}
	if strings.Contains(received["text"], "<h3>") {
		t.Fatalf("text should not contain raw HTML tags, got %q", received["text"])
	}
}

func TestTelegramNotifierError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": false})
	}))
	defer srv.Close()

	notifier := NewTelegramNotifier("token", "chat", srv.URL, time.Second, testLogger())
	if err := notifier.Notify(context.Background(), testReport()); err == nil {
		t.Fatal("ok=false should be an error")
	}
}

func TestEmailNotifierMessage(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte

	n := NewEmailNotifier(EmailOptions{
		Host:     "smtp.example.com",
		Port:     587,
		Sender:   "alerts@example.com",
		Receiver: "me@example.com",
	}, testLogger())
	n.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	if err := n.Notify(context.Background(), testReport()); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	if gotAddr != "smtp.example.com:587" {
		t.Errorf("addr = %q", gotAddr)
	}
	if gotFrom != "alerts@example.com" || len(gotTo) != 1 || gotTo[0] != "me@example.com" {
		t.Errorf("envelope = %q -> %v", gotFrom, gotTo)
	}

	msg := string(gotMsg)
	for _, want := range []string{
		"Subject: Daily Price Tracking Report\r\n",
		"Content-Type: text/html",
		"<h3>Daily Price Summary</h3>",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q", want)
		}
	}
}

func TestEmailNotifierTransportError(t *testing.T) {
	n := NewEmailNotifier(EmailOptions{
		Host:     "smtp.example.com",
		Sender:   "alerts@example.com",
		Receiver: "me@example.com",
	}, testLogger())
	n.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		return fmt.Errorf("connection refused")
	}

	if err := n.Notify(context.Background(), testReport()); err == nil {
		t.Fatal("transport failure should surface as an error")
	}
}

func TestEmailNotifierMissingConfig(t *testing.T) {
	n := NewEmailNotifier(EmailOptions{}, testLogger())
	if err := n.Notify(context.Background(), testReport()); err == nil {
		t.Fatal("missing host should be an error")
	}
}
