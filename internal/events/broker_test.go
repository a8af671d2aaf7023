package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/MrSnakeDoc/brightfeed/internal/bookmarks"
	"github.com/MrSnakeDoc/brightfeed/internal/logger"
)

func startBroker(t *testing.T, opts ...BrokerOption) *Broker {
	t.Helper()
	b := NewBroker(logger.NewNop(), opts...)
	if err := b.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	return b
}

func receive(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case e, ok := <-ch:
		if !ok {
			t.Fatal("channel closed while waiting for event")
		}
		return e
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
	return Event{}
}

func TestBrokerStartStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	b := startBroker(t)
	if err := b.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	// Idempotent.
	if err := b.Stop(); err != nil {
		t.Fatalf("second Stop() error = %v", err)
	}
}

func TestBrokerDeliversToProfileOnly(t *testing.T) {
	defer goleak.VerifyNone(t)

	b := startBroker(t)
	defer b.Stop()
	ctx := context.Background()

	mine, cancelMine, err := b.Subscribe(ctx, WithFilter(ForProfile("p1")))
	if err != nil {
		t.Fatal(err)
	}
	defer cancelMine()
	other, cancelOther, err := b.Subscribe(ctx, WithFilter(ForProfile("p2")))
	if err != nil {
		t.Fatal(err)
	}
	defer cancelOther()

	change := bookmarks.Change{Profile: "p1", Action: bookmarks.ActionAdded, ArticleID: "abc", Version: 3}
	if err := (Local{Broker: b}).Publish(ctx, change); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	got := receive(t, mine)
	if got.Type != EventTypeBookmarksChanged || got.ID == "" {
		t.Errorf("event = %+v", got)
	}
	if c, ok := got.Data.(bookmarks.Change); !ok || c.ArticleID != "abc" || c.Version != 3 {
		t.Errorf("event data = %#v", got.Data)
	}

	select {
	case e := <-other:
		t.Errorf("other profile received %+v", e)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBrokerEvictsSlowClient(t *testing.T) {
	defer goleak.VerifyNone(t)

	b := startBroker(t)
	defer b.Stop()
	ctx := context.Background()

	slow, cancel, err := b.Subscribe(ctx, WithBufferSize(1))
	if err != nil {
		t.Fatal(err)
	}
	defer cancel()

	for i := 0; i < 3; i++ {
		if err := b.Publish(ctx, Event{Type: "tick"}); err != nil {
			t.Fatal(err)
		}
	}

	deadline := time.After(time.Second)
	for b.ClientCount() != 0 {
		select {
		case <-deadline:
			t.Fatalf("slow client still subscribed, count = %d", b.ClientCount())
		case <-time.After(5 * time.Millisecond):
		}
	}

	// The buffered event is still readable, then the channel is closed.
	if _, ok := <-slow; !ok {
		t.Fatal("expected the buffered event before close")
	}
	if _, ok := <-slow; ok {
		t.Fatal("expected channel to be closed")
	}
}

func TestBrokerContextCancelUnsubscribes(t *testing.T) {
	defer goleak.VerifyNone(t)

	b := startBroker(t)
	defer b.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	ch, unsubscribe, err := b.Subscribe(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer unsubscribe()

	cancel()
	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("unexpected event")
		}
	case <-time.After(time.Second):
		t.Fatal("channel not closed after context cancel")
	}
	if n := b.ClientCount(); n != 0 {
		t.Errorf("ClientCount() = %d, want 0", n)
	}
}

func TestBrokerMaxClients(t *testing.T) {
	defer goleak.VerifyNone(t)

	b := startBroker(t, WithMaxClients(1))
	defer b.Stop()
	ctx := context.Background()

	_, cancel, err := b.Subscribe(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer cancel()

	if _, _, err := b.Subscribe(ctx); !errors.Is(err, ErrTooManyClients) {
		t.Errorf("Subscribe() error = %v, want ErrTooManyClients", err)
	}
}

func TestBrokerStopClosesSubscribers(t *testing.T) {
	defer goleak.VerifyNone(t)

	b := startBroker(t)
	ch, cancel, err := b.Subscribe(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer cancel()

	if err := b.Stop(); err != nil {
		t.Fatal(err)
	}
	if _, ok := <-ch; ok {
		t.Error("expected closed channel after Stop")
	}
	if _, _, err := b.Subscribe(context.Background()); !errors.Is(err, ErrBrokerNotRunning) {
		t.Errorf("Subscribe() after Stop error = %v", err)
	}
}

func TestPublishBufferFull(t *testing.T) {
	// Not started: nothing drains the queue.
	b := NewBroker(logger.NewNop(), WithEventBufferSize(1))
	ctx := context.Background()

	if err := b.Publish(ctx, Event{Type: "a"}); err != nil {
		t.Fatal(err)
	}
	if err := b.Publish(ctx, Event{Type: "b"}); err == nil {
		t.Error("Publish() on a full queue should fail")
	}
}
