package mw

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/MrSnakeDoc/brightfeed/internal/logger"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestCORS(t *testing.T) {
	h := CORS([]string{"http://localhost:3000/"})(okHandler)

	tests := []struct {
		name       string
		method     string
		origin     string
		preflight  bool
		wantCode   int
		wantOrigin string
	}{
		{"no origin", http.MethodGet, "", false, http.StatusOK, ""},
		{"allowed origin", http.MethodGet, "http://localhost:3000", false, http.StatusOK, "http://localhost:3000"},
		{"other origin gets no header", http.MethodGet, "http://evil.test", false, http.StatusOK, ""},
		{"allowed preflight", http.MethodOptions, "http://localhost:3000", true, http.StatusNoContent, "http://localhost:3000"},
		{"rejected preflight gets no allow header", http.MethodOptions, "http://evil.test", true, http.StatusNoContent, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/news", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.preflight {
				req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("allow-origin = %q, want %q", got, tt.wantOrigin)
			}
		})
	}
}

func TestCORSPreflightHeaders(t *testing.T) {
	h := CORS([]string{"http://localhost:3000"})(okHandler)

	req := httptest.NewRequest(http.MethodOptions, "/api/profiles/alice/bookmarks/toggle", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Max-Age"); got != "600" {
		t.Errorf("max-age = %q, want 600", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); got != http.MethodPost {
		t.Errorf("allow-methods = %q, want POST", got)
	}

	// Actual request exposes the rate limit headers.
	req = httptest.NewRequest(http.MethodPost, "/api/profiles/alice/bookmarks/toggle", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Expose-Headers"); !strings.Contains(got, "Retry-After") {
		t.Errorf("expose-headers = %q", got)
	}
}

func TestCORSWildcardAndEmpty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/news", nil)
	req.Header.Set("Origin", "http://anywhere.test")

	rec := httptest.NewRecorder()
	CORS([]string{"*"})(okHandler).ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("wildcard allow-origin = %q, want *", got)
	}

	rec = httptest.NewRecorder()
	CORS(nil)(okHandler).ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("empty list should not set allow-origin, got %q", got)
	}
}

func TestRateLimitRefills(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	rejected := 0
	h := RateLimit(RateLimitConfig{
		Burst:             2,
		RefillPerIPPerMin: 60,
		OnReject:          func(*http.Request) { rejected++ },
		Now:               func() time.Time { return now },
	})(okHandler)

	call := func(remoteAddr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/toggle", nil)
		req.RemoteAddr = remoteAddr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	for i := 0; i < 2; i++ {
		if rec := call("10.0.0.1:1"); rec.Code != http.StatusOK {
			t.Fatalf("call %d = %d", i, rec.Code)
		}
	}
	rec := call("10.0.0.1:2")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("third call = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "1" {
		t.Errorf("Retry-After = %q, want 1", rec.Header().Get("Retry-After"))
	}
	if rejected != 1 {
		t.Errorf("OnReject called %d times", rejected)
	}

	// Another client has its own bucket.
	if rec := call("10.0.0.2:1"); rec.Code != http.StatusOK {
		t.Errorf("other client = %d", rec.Code)
	}

	now = now.Add(time.Second)
	if rec := call("10.0.0.1:3"); rec.Code != http.StatusOK {
		t.Errorf("after refill = %d", rec.Code)
	}
}

func TestEnforceHost(t *testing.T) {
	h := EnforceHost([]string{"news.example.com", "*.example.org"}, logger.NewNop())(okHandler)

	tests := []struct {
		host string
		want int
	}{
		{"news.example.com", http.StatusOK},
		{"NEWS.example.com:8080", http.StatusOK},
		{"a.example.org", http.StatusOK},
		{"example.org", http.StatusForbidden},
		{"evil.test", http.StatusForbidden},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Host = tt.host
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != tt.want {
			t.Errorf("host %q = %d, want %d", tt.host, rec.Code, tt.want)
		}
	}
}

func TestStatusWriterFlushes(t *testing.T) {
	rec := httptest.NewRecorder()
	sw := wrap(rec)
	_, _ = sw.Write([]byte("data: x\n\n"))
	sw.Flush()

	if !rec.Flushed {
		t.Error("flush not forwarded")
	}
	if sw.status != http.StatusOK || sw.bytes != 9 {
		t.Errorf("status=%d bytes=%d", sw.status, sw.bytes)
	}
	if err := http.NewResponseController(sw).Flush(); err != nil {
		t.Errorf("response controller: %v", err)
	}
}
