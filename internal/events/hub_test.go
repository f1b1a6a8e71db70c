package events_test

import (
	"testing"

	"github.com/star-registry/starchain/internal/block"
	"github.com/star-registry/starchain/internal/events"
	"go.uber.org/zap"
)

func TestHub_publishReachesAllSubscribers(t *testing.T) {
	h := events.NewHub(zap.NewNop())

	ch1, cancel1 := h.Subscribe()
	ch2, cancel2 := h.Subscribe()
	defer cancel1()
	defer cancel2()

	b := &block.Block{Height: 1, Hash: "abc"}
	h.Publish(b)

	for i, ch := range []<-chan *block.Block{ch1, ch2} {
		select {
		case got := <-ch:
			if got.Hash != "abc" {
				t.Errorf("subscriber %d: got hash %q", i, got.Hash)
			}
		default:
			t.Errorf("subscriber %d received nothing", i)
		}
	}
}

func TestHub_cancelRemovesSubscriber(t *testing.T) {
	h := events.NewHub(zap.NewNop())

	ch, cancel := h.Subscribe()
	if h.Subscribers() != 1 {
		t.Fatalf("expected 1 subscriber, got %d", h.Subscribers())
	}

	cancel()
	cancel() // safe to call twice

	if h.Subscribers() != 0 {
		t.Errorf("expected 0 subscribers after cancel, got %d", h.Subscribers())
	}
	if _, open := <-ch; open {
		t.Error("channel must be closed after cancel")
	}
}

func TestHub_slowSubscriberDoesNotBlock(t *testing.T) {
	h := events.NewHub(zap.NewNop())

	_, cancel := h.Subscribe()
	defer cancel()

	// Publish far past the subscriber buffer without draining; Publish must
	// drop instead of blocking.
	for i := 0; i < 100; i++ {
		h.Publish(&block.Block{Height: i})
	}
}
