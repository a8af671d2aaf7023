package config

import (
	"os"
	"testing"
	"time"
)

func TestRequireEnv(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		value     string
		shouldSet bool
		wantPanic bool
	}{
		{
			name:      "variable set",
			key:       "TEST_VAR",
			value:     "test_value",
			shouldSet: true,
			wantPanic: false,
		},
		{
			name:      "variable not set",
			key:       "TEST_VAR_MISSING",
			shouldSet: false,
			wantPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.shouldSet {
				if err := os.Setenv(tt.key, tt.value); err != nil {
					t.Fatalf("failed to set env var: %v", err)
				}
				defer func() {
					if err := os.Unsetenv(tt.key); err != nil {
						t.Errorf("failed to unset env var: %v", err)
					}
				}()
			}

			if tt.wantPanic {
				defer func() {
					if r := recover(); r == nil {
						t.Errorf("requireEnv() should have panicked")
					}
				}()
			}

			result := requireEnv(tt.key)
			if !tt.wantPanic && result != tt.value {
				t.Errorf("requireEnv() = %v, want %v", result, tt.value)
			}
		})
	}
}

func TestMustDuration(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		def      time.Duration
		expected time.Duration
	}{
		{
			name:     "valid duration",
			key:      "TEST_DURATION",
			value:    "5s",
			def:      1 * time.Second,
			expected: 5 * time.Second,
		},
		{
			name:     "invalid duration uses default",
			key:      "TEST_DURATION_INVALID",
			value:    "invalid",
			def:      10 * time.Second,
			expected: 10 * time.Second,
		},
		{
			name:     "missing variable uses default",
			key:      "TEST_DURATION_MISSING",
			value:    "",
			def:      15 * time.Second,
			expected: 15 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				if err := os.Setenv(tt.key, tt.value); err != nil {
					t.Fatalf("failed to set env var: %v", err)
				}
				defer func() {
					if err := os.Unsetenv(tt.key); err != nil {
						t.Errorf("failed to unset env var: %v", err)
					}
				}()
			}

			result := mustDuration(tt.key, tt.def)
			if result != tt.expected {
				t.Errorf("mustDuration() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestMustBool(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		def      bool
		expected bool
	}{
		{
			name:     "true value",
			key:      "TEST_BOOL",
			value:    "true",
			def:      false,
			expected: true,
		},
		{
			name:     "false value",
			key:      "TEST_BOOL_FALSE",
			value:    "false",
			def:      true,
			expected: false,
		},
		{
			name:     "invalid value uses default",
			key:      "TEST_BOOL_INVALID",
			value:    "invalid",
			def:      true,
			expected: true,
		},
		{
			name:     "missing variable uses default",
			key:      "TEST_BOOL_MISSING",
			value:    "",
			def:      false,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				if err := os.Setenv(tt.key, tt.value); err != nil {
					t.Fatalf("failed to set env var: %v", err)
				}
				defer func() {
					if err := os.Unsetenv(tt.key); err != nil {
						t.Errorf("failed to unset env var: %v", err)
					}
				}()
			}

			result := mustBool(tt.key, tt.def)
			if result != tt.expected {
				t.Errorf("mustBool() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestParseStoreKind(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		expected  string
		wantPanic bool
	}{
		{name: "redis", value: "redis", expected: StoreRedis},
		{name: "sqlite mixed case", value: " SQLite ", expected: StoreSQLite},
		{name: "memory", value: "memory", expected: StoreMemory},
		{name: "unknown", value: "mongo", wantPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.wantPanic {
				defer func() {
					if r := recover(); r == nil {
						t.Errorf("parseStoreKind(%q) should have panicked", tt.value)
					}
				}()
			}

			result := parseStoreKind(tt.value)
			if !tt.wantPanic && result != tt.expected {
				t.Errorf("parseStoreKind() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestSplitAndTrim(t *testing.T) {
	result := splitAndTrim(` "http://localhost:3000" , https://news.example.com,, `)
	expected := []string{"http://localhost:3000", "https://news.example.com"}
	if len(result) != len(expected) {
		t.Fatalf("splitAndTrim() length = %v, want %v", len(result), len(expected))
	}
	for i := range result {
		if result[i] != expected[i] {
			t.Errorf("splitAndTrim()[%d] = %v, want %v", i, result[i], expected[i])
		}
	}
}

func TestLoadMemoryStoreWithoutRedis(t *testing.T) {
	t.Setenv("BRIGHTFEED_STORE", "memory")
	t.Setenv("BRIGHTFEED_NEWS_API_URL", "http://news.local:5001/")
	t.Setenv("BRIGHTFEED_REDIS_ADDR", "")

	cfg := Load()

	if cfg.Store != StoreMemory {
		t.Errorf("Store = %v, want %v", cfg.Store, StoreMemory)
	}
	if cfg.RedisEnabled {
		t.Error("RedisEnabled should be false without an address")
	}
	if cfg.NewsAPIURL != "http://news.local:5001" {
		t.Errorf("NewsAPIURL = %v, want trailing slash trimmed", cfg.NewsAPIURL)
	}
	if cfg.ResyncInterval != 30*time.Second {
		t.Errorf("ResyncInterval = %v, want 30s", cfg.ResyncInterval)
	}
}

func TestLoadRedisStoreRequiresAddr(t *testing.T) {
	t.Setenv("BRIGHTFEED_STORE", "redis")
	t.Setenv("BRIGHTFEED_NEWS_API_URL", "http://news.local:5001")
	t.Setenv("BRIGHTFEED_REDIS_ADDR", "")

	defer func() {
		if r := recover(); r == nil {
			t.Error("Load() should panic when store=redis and no redis address is set")
		}
	}()
	Load()
}

func TestLoadRedisPasswordRequired(t *testing.T) {
	t.Setenv("BRIGHTFEED_STORE", "sqlite")
	t.Setenv("BRIGHTFEED_NEWS_API_URL", "http://news.local:5001")
	t.Setenv("BRIGHTFEED_REDIS_ADDR", "localhost:6379")
	t.Setenv("BRIGHTFEED_REDIS_PASSWORD_REQUIRED", "true")
	t.Setenv("BRIGHTFEED_REDIS_PASSWORD", "")

	defer func() {
		if r := recover(); r == nil {
			t.Error("Load() should panic when a redis password is required but missing")
		}
	}()
	Load()
}

func TestLoadStorageWithoutNewsURL(t *testing.T) {
	t.Setenv("BRIGHTFEED_STORE", "sqlite")
	t.Setenv("BRIGHTFEED_SQLITE_PATH", "/tmp/bf.db")
	t.Setenv("BRIGHTFEED_NEWS_API_URL", "")
	t.Setenv("BRIGHTFEED_REDIS_ADDR", "")

	cfg := LoadStorage()

	if cfg.Store != StoreSQLite || cfg.SQLitePath != "/tmp/bf.db" {
		t.Errorf("storage = %v %v", cfg.Store, cfg.SQLitePath)
	}
	if cfg.NewsAPIURL != "" || cfg.ListenPort != "" {
		t.Error("LoadStorage should leave server settings unset")
	}
}
