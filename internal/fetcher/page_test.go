package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func noopLogger() zerolog.Logger {
	return zerolog.Nop()
}

func TestFetchPageSuccess(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer srv.Close()

	p := NewPage(PageOptions{Timeout: time.Second, AcceptLanguage: "en-US"}, noopLogger())
	body, err := p.FetchPage(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("FetchPage returned error: %v", err)
	}
	if body != "<html><body>ok</body></html>" {
		t.Fatalf("unexpected body: %q", body)
	}
	if gotUA == "" {
		t.Fatal("User-Agent header should be set")
	}
}

func TestFetchPageStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewPage(PageOptions{Timeout: time.Second}, noopLogger())
	_, err := p.FetchPage(context.Background(), srv.URL)

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected *StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", statusErr.StatusCode)
	}
}

func TestFetchPageTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	p := NewPage(PageOptions{Timeout: 20 * time.Millisecond}, noopLogger())
	_, err := p.FetchPage(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		t.Fatal("timeout should not be reported as a status error")
	}
}
