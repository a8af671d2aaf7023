package events

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/brightfeed/internal/bookmarks"
	"github.com/MrSnakeDoc/brightfeed/internal/logger"
	store "github.com/MrSnakeDoc/brightfeed/internal/store/redis"
)

func startRelay(t *testing.T, addr string) (*RedisRelay, *Broker) {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	b := startBroker(t)
	t.Cleanup(func() { _ = b.Stop() })

	r := NewRedisRelay(client, b, logger.NewNop())
	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("relay Start() error = %v", err)
	}
	t.Cleanup(func() { _ = r.Stop() })
	return r, b
}

func TestRelayReachesOtherInstance(t *testing.T) {
	mr := miniredis.RunT(t)

	sender, _ := startRelay(t, mr.Addr())
	_, receiverBroker := startRelay(t, mr.Addr())

	ch, cancel, err := receiverBroker.Subscribe(context.Background(), WithFilter(ForProfile("p1")))
	if err != nil {
		t.Fatal(err)
	}
	defer cancel()

	change := bookmarks.Change{Profile: "p1", Action: bookmarks.ActionRemoved, ArticleID: "x1", Version: 9}
	if err := sender.Publish(context.Background(), change); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	got := receive(t, ch)
	c, ok := got.Data.(bookmarks.Change)
	if !ok {
		t.Fatalf("event data = %#v", got.Data)
	}
	if c.Action != bookmarks.ActionRemoved || c.ArticleID != "x1" || c.Version != 9 {
		t.Errorf("relayed change = %+v", c)
	}
}

func TestRelayDeliversToOwnInstanceOnce(t *testing.T) {
	mr := miniredis.RunT(t)
	relay, b := startRelay(t, mr.Addr())

	ch, cancel, err := b.Subscribe(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer cancel()

	if err := relay.Publish(context.Background(), bookmarks.Change{Profile: "p1", Version: 1}); err != nil {
		t.Fatal(err)
	}
	receive(t, ch)

	select {
	case e := <-ch:
		t.Errorf("duplicate delivery: %+v", e)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRelayDropsGarbage(t *testing.T) {
	mr := miniredis.RunT(t)
	_, b := startRelay(t, mr.Addr())

	ch, cancel, err := b.Subscribe(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer cancel()

	mr.Publish(store.ChannelEvents, "{not json")
	mr.Publish(store.ChannelEvents, `{"version":1}`)
	mr.Publish(store.ChannelEvents, `{"profile":"p2","action":"added","version":2}`)

	got := receive(t, ch)
	if got.Profile != "p2" {
		t.Errorf("first delivered event = %+v, want the valid p2 change", got)
	}
}

func TestRelayFallsBackToLocal(t *testing.T) {
	mr := miniredis.RunT(t)
	relay, b := startRelay(t, mr.Addr())

	ch, cancel, err := b.Subscribe(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer cancel()

	mr.SetError("LOADING redis is loading the dataset in memory")
	defer mr.SetError("")

	err = relay.Publish(context.Background(), bookmarks.Change{Profile: "p1", Version: 4})
	if err == nil {
		t.Fatal("Publish() should report the redis failure")
	}
	if got := receive(t, ch); got.Profile != "p1" {
		t.Errorf("local fallback event = %+v", got)
	}
}
