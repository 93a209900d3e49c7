package tracker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"price-tracker/internal/scrape"
	"price-tracker/internal/storage"
)

type stubFetcher struct {
	pages map[string]string
	errs  map[string]error
}

func (f *stubFetcher) FetchPage(_ context.Context, url string) (string, error) {
	if err, ok := f.errs[url]; ok {
		return "", err
	}
	if page, ok := f.pages[url]; ok {
		return page, nil
	}
	return "", fmt.Errorf("no stub page for %s", url)
}

func amazonPage(name, price string) string {
	return fmt.Sprintf(`<html><body>
<span id="productTitle">%s</span>
<span class="a-price-whole">%s</span>
</body></html>`, name, price)
}

func newTestService(t *testing.T, urls []string, pages *stubFetcher) (*Service, *storage.Store) {
	t.Helper()
	store := storage.NewStore(filepath.Join(t.TempDir(), "history.csv"), zerolog.Nop())
	svc := New(urls, pages, scrape.NewDispatcher(), store, zerolog.Nop())
	return svc, store
}

func fixedDay(day int) func() time.Time {
	return func() time.Time {
		return time.Date(2026, time.August, day, 15, 4, 5, 0, time.UTC)
	}
}

func TestRunResilience(t *testing.T) {
	urls := []string{
		"https://www.amazon.in/dp/FAIL",
		"https://example.org/not-a-shop",
		"https://www.amazon.in/dp/OK",
	}
	pages := &stubFetcher{
		pages: map[string]string{
			"https://example.org/not-a-shop": "<html></html>",
			"https://www.amazon.in/dp/OK":    amazonPage("Widget", "999"),
		},
		errs: map[string]error{
			"https://www.amazon.in/dp/FAIL": fmt.Errorf("connection refused"),
		},
	}

	svc, store := newTestService(t, urls, pages)
	svc.now = fixedDay(30)

	result, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run must not abort on per-URL failures: %v", err)
	}
	if len(result.Summary) != 1 {
		t.Fatalf("summary length = %d, want 1", len(result.Summary))
	}
	if result.Skipped != 2 {
		t.Errorf("skipped = %d, want 2", result.Skipped)
	}

	table, err := store.Load()
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if table.Len() != 1 {
		t.Fatalf("persisted rows = %d, want exactly 1", table.Len())
	}
}

func TestRunFirstObservation(t *testing.T) {
	amazonA := "https://www.amazon.in/dp/A"
	flipkartB := "https://www.flipkart.com/b/p/itmB"
	pages := &stubFetcher{
		pages: map[string]string{
			amazonA: amazonPage("Widget", "999"),
			// price markup missing entirely
			flipkartB: `<html><body><span class="B_NuCI">Gadget</span></body></html>`,
		},
	}

	svc, store := newTestService(t, []string{amazonA, flipkartB}, pages)
	svc.now = fixedDay(30)

	result, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Summary) != 1 {
		t.Fatalf("summary length = %d, want 1", len(result.Summary))
	}
	entry := result.Summary[0]
	if entry.ProductName != "Widget" || entry.Site != "amazon" {
		t.Errorf("unexpected entry %+v", entry)
	}
	if !entry.Price.Equal(decimal.NewFromInt(999)) {
		t.Errorf("price = %s, want 999", entry.Price)
	}
	wantDate := time.Date(2026, time.August, 30, 0, 0, 0, 0, time.UTC)
	if !entry.Date.Equal(wantDate) {
		t.Errorf("date = %s, want run-start date %s", entry.Date, wantDate)
	}
	if len(result.Drops) != 0 {
		t.Errorf("no prior observation, drops = %d, want 0", len(result.Drops))
	}

	table, err := store.Load()
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if table.Len() != 1 {
		t.Fatalf("persisted rows = %d, want 1", table.Len())
	}
}

func TestRunDetectsDropAcrossRuns(t *testing.T) {
	url := "https://www.amazon.in/dp/A"

	svc, store := newTestService(t, []string{url}, &stubFetcher{
		pages: map[string]string{url: amazonPage("Widget", "1,200")},
	})
	svc.now = fixedDay(29)
	if _, err := svc.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}

	svc2 := New([]string{url}, &stubFetcher{
		pages: map[string]string{url: amazonPage("Widget", "999")},
	}, scrape.NewDispatcher(), store, zerolog.Nop())
	svc2.now = fixedDay(30)

	result, err := svc2.Run(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(result.Drops) != 1 {
		t.Fatalf("drops = %d, want exactly 1", len(result.Drops))
	}
	drop := result.Drops[0]
	if !drop.OldPrice.Equal(decimal.NewFromInt(1200)) || !drop.NewPrice.Equal(decimal.NewFromInt(999)) {
		t.Errorf("drop = old %s new %s, want old 1200 new 999", drop.OldPrice, drop.NewPrice)
	}
	if drop.URL != url {
		t.Errorf("drop URL = %q, want tracked URL", drop.URL)
	}
}

func TestRunNoDropOnEqualOrHigherPrice(t *testing.T) {
	url := "https://www.amazon.in/dp/A"

	for _, tc := range []struct {
		name     string
		newPrice string
	}{
		{"equal", "999"},
		{"higher", "1,200"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			svc, store := newTestService(t, []string{url}, &stubFetcher{
				pages: map[string]string{url: amazonPage("Widget", "999")},
			})
			svc.now = fixedDay(29)
			if _, err := svc.Run(context.Background()); err != nil {
				t.Fatalf("first run: %v", err)
			}

			svc2 := New([]string{url}, &stubFetcher{
				pages: map[string]string{url: amazonPage("Widget", tc.newPrice)},
			}, scrape.NewDispatcher(), store, zerolog.Nop())
			svc2.now = fixedDay(30)

			result, err := svc2.Run(context.Background())
			if err != nil {
				t.Fatalf("second run: %v", err)
			}
			if len(result.Drops) != 0 {
				t.Fatalf("drops are strict decreases only, got %d", len(result.Drops))
			}
		})
	}
}

func TestRunOneObservationPerIdentity(t *testing.T) {
	url := "https://www.amazon.in/dp/A"
	svc, store := newTestService(t, []string{url, url}, &stubFetcher{
		pages: map[string]string{url: amazonPage("Widget", "999")},
	})
	svc.now = fixedDay(30)

	result, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Summary) != 1 {
		t.Fatalf("summary length = %d, want 1 (one observation per identity per run)", len(result.Summary))
	}

	table, err := store.Load()
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if table.Len() != 1 {
		t.Fatalf("persisted rows = %d, want 1", table.Len())
	}
}

func TestRunAbortsOnCorruptHistory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "history.csv")
	if err := os.WriteFile(path, []byte("not,a,valid,history\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	store := storage.NewStore(path, zerolog.Nop())
	url := "https://www.amazon.in/dp/A"
	svc := New([]string{url}, &stubFetcher{
		pages: map[string]string{url: amazonPage("Widget", "999")},
	}, scrape.NewDispatcher(), store, zerolog.Nop())

	if _, err := svc.Run(context.Background()); err == nil {
		t.Fatal("corrupt history must abort the run")
	}

	// no partial writes on fatal load failure
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "not,a,valid,history\n" {
		t.Fatal("history file must be untouched after fatal load failure")
	}
}
