package news

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/MrSnakeDoc/brightfeed/internal/domain"
	"github.com/MrSnakeDoc/brightfeed/internal/logger"
)

const listing = `[
  {"category":"world","source":"BBC","headline":"Rates held","summary":"s","description":"d",
   "image":"https://img/1.jpg","sourceLink":"https://bbc/rates","date":"2025-05-01",
   "sentiment":{"headline":{"compound":0.42,"pos":0.3,"label":"positive"}}},
  {"category":"sport","source":"ESPN","headline":"Cup final","url":"https://espn/cup","timestamp":1714550400},
  "not an object",
  {"category":"tech","headline":"","sourceLink":""},
  {"category":"tech","headline":"Chips","sentiment":{"headline":{"compound":"-0.2"}, "summary": null}}
]`

func TestDecodeListing(t *testing.T) {
	got, skipped, err := DecodeListing([]byte(listing))
	if err != nil {
		t.Fatalf("DecodeListing() error = %v", err)
	}
	if skipped != 2 {
		t.Errorf("skipped = %d, want 2", skipped)
	}

	want := []domain.Article{
		{
			Category: "world", Source: "BBC", Headline: "Rates held", Summary: "s", Description: "d",
			Image: "https://img/1.jpg", SourceLink: "https://bbc/rates", Date: "2025-05-01",
			Sentiment: domain.Sentiment{"headline": {"compound": 0.42, "pos": 0.3}},
		},
		{Category: "sport", Source: "ESPN", Headline: "Cup final", SourceLink: "https://espn/cup", Date: "1714550400"},
		{Category: "tech", Headline: "Chips", Sentiment: domain.Sentiment{"headline": {"compound": -0.2}}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("DecodeListing() mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeListingRejectsNonArray(t *testing.T) {
	if _, _, err := DecodeListing([]byte(`{"error":"boom"}`)); err == nil {
		t.Error("expected error for non-array document")
	}
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != ListingPath {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(listing))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", time.Second, logger.NewNop())
	got, err := c.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(got) != 3 {
		t.Errorf("Fetch() returned %d articles, want 3", len(got))
	}
}

func TestFetchUpstreamError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, `{"error":"mongo down"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, logger.NewNop())
	_, err := c.Fetch(context.Background())
	if !errors.Is(err, ErrUpstreamStatus) {
		t.Fatalf("Fetch() error = %v, want ErrUpstreamStatus", err)
	}
	if calls != 1 {
		t.Errorf("upstream called %d times, want 1 (no retry)", calls)
	}
}

func TestFetchTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient(srv.URL, 50*time.Millisecond, logger.NewNop())
	if _, err := c.Fetch(context.Background()); err == nil {
		t.Error("Fetch() should time out")
	}
}
