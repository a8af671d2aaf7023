package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/MrSnakeDoc/brightfeed/internal/bookmarks"
)

func TestSaveCompareAndSet(t *testing.T) {
	b := New()
	ctx := context.Background()

	tests := []struct {
		name     string
		expected int64
		wantVer  int64
		wantErr  error
	}{
		{"first write", 0, 1, nil},
		{"stale version", 0, 0, bookmarks.ErrVersionConflict},
		{"current version", 1, 2, nil},
		{"future version", 5, 0, bookmarks.ErrVersionConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := b.Save(ctx, "p", []byte(tt.name), tt.expected)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Save() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.wantVer {
				t.Errorf("Save() = %d, want %d", got, tt.wantVer)
			}
		})
	}

	snap, _ := b.Load(ctx, "p")
	if string(snap.Data) != "current version" || snap.Version != 2 {
		t.Errorf("Load() = {%s %d}", snap.Data, snap.Version)
	}
}

func TestLoadReturnsCopy(t *testing.T) {
	b := New()
	ctx := context.Background()
	if _, err := b.Save(ctx, "p", []byte("abc"), 0); err != nil {
		t.Fatal(err)
	}

	snap, _ := b.Load(ctx, "p")
	snap.Data[0] = 'X'

	again, _ := b.Load(ctx, "p")
	if string(again.Data) != "abc" {
		t.Errorf("stored data mutated through Load: %s", again.Data)
	}
}

func TestSetWriteError(t *testing.T) {
	b := New()
	ctx := context.Background()
	if _, err := b.Save(ctx, "p", []byte("keep"), 0); err != nil {
		t.Fatal(err)
	}

	boom := errors.New("disk full")
	b.SetWriteError(boom)
	if _, err := b.Save(ctx, "p", []byte("lost"), 1); !errors.Is(err, boom) {
		t.Fatalf("Save() error = %v, want %v", err, boom)
	}

	b.SetWriteError(nil)
	snap, _ := b.Load(ctx, "p")
	if string(snap.Data) != "keep" || snap.Version != 1 {
		t.Errorf("Load() = {%s %d}, want {keep 1}", snap.Data, snap.Version)
	}
}

func TestCanceledContext(t *testing.T) {
	b := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := b.Load(ctx, "p"); !errors.Is(err, context.Canceled) {
		t.Errorf("Load() error = %v", err)
	}
	if _, err := b.Save(ctx, "p", nil, 0); !errors.Is(err, context.Canceled) {
		t.Errorf("Save() error = %v", err)
	}
}
