package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MrSnakeDoc/brightfeed/internal/bookmarks"
	"github.com/MrSnakeDoc/brightfeed/internal/domain"
	"github.com/MrSnakeDoc/brightfeed/internal/logger"
	"github.com/MrSnakeDoc/brightfeed/internal/store/memory"
)

func newStore() *bookmarks.Store {
	return bookmarks.NewStore(memory.New(), nil, logger.NewNop())
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := newStore()
	for _, h := range []string{"Rates held", "Rover lands"} {
		if _, err := src.Toggle(ctx, "alice", domain.Article{Category: "world", Headline: h}); err != nil {
			t.Fatalf("toggle: %v", err)
		}
	}

	var buf bytes.Buffer
	if err := exportBookmarks(ctx, src, "alice", &buf); err != nil {
		t.Fatalf("export: %v", err)
	}

	dst := newStore()
	// One record already present is skipped, not toggled off.
	if _, err := dst.Toggle(ctx, "bob", domain.Article{Category: "world", Headline: "Rover lands"}); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	added, skipped, err := importBookmarks(ctx, dst, "bob", bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if added != 1 || skipped != 1 {
		t.Errorf("added=%d skipped=%d, want 1/1", added, skipped)
	}

	list, _ := dst.List(ctx, "bob")
	if len(list) != 2 {
		t.Fatalf("bob has %d bookmarks, want 2", len(list))
	}
	if list[0].Headline != "Rover lands" || list[1].Headline != "Rates held" {
		t.Errorf("unexpected order: %q, %q", list[0].Headline, list[1].Headline)
	}
}

func TestExportEmptyProfile(t *testing.T) {
	var buf bytes.Buffer
	if err := exportBookmarks(context.Background(), newStore(), "nobody", &buf); err != nil {
		t.Fatalf("export: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("export = %q, want []", buf.String())
	}
}

func TestImportRejectsGarbage(t *testing.T) {
	_, _, err := importBookmarks(context.Background(), newStore(), "alice", strings.NewReader("{not json"))
	if err == nil {
		t.Fatal("expected decode error")
	}
}

func TestCategoriesCommand(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "categories.yaml")
	yaml := "categories:\n  - slug: tech\n    label: Technology\n    aliases: [it]\n  - slug: world\n"
	if err := os.WriteFile(file, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--env-file", "", "categories", "--file", file})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("categories: %v", err)
	}
	for _, want := range []string{"Technology", "it", "world"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestVersionCommand(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out.String(), "brightfeed ") {
		t.Errorf("version output = %q", out.String())
	}
}

func TestLoadEnvFileIgnoresMissing(t *testing.T) {
	if err := loadEnvFile(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Errorf("missing file should be ignored: %v", err)
	}
}
