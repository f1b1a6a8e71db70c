// Package events fans newly sealed blocks out to stream subscribers.
package events

import (
	"sync"

	"github.com/star-registry/starchain/internal/block"
	"go.uber.org/zap"
)

// subscriber buffer size; a subscriber this far behind starts dropping blocks.
const subscriberBuffer = 16

// Hub broadcasts sealed blocks to all current subscribers.
// Publish never blocks on a slow subscriber.
type Hub struct {
	mu     sync.RWMutex
	subs   map[chan *block.Block]struct{}
	logger *zap.Logger
}

// NewHub creates an empty Hub.
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{subs: make(map[chan *block.Block]struct{}), logger: logger}
}

// Subscribe registers a new subscriber and returns its channel plus a cancel
// function. The channel is closed by cancel; cancel is safe to call more than
// once.
func (h *Hub) Subscribe() (<-chan *block.Block, func()) {
	ch := make(chan *block.Block, subscriberBuffer)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers b to every subscriber that has buffer room.
func (h *Hub) Publish(b *block.Block) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select {
		case ch <- b:
		default:
			h.logger.Warn("dropping block event for slow subscriber",
				zap.Int("height", b.Height))
		}
	}
}

// Subscribers returns the current subscriber count.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
