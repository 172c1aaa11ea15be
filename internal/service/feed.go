package service

import (
	"sync"
	"sync/atomic"
	"time"

	"user_management/internal/models"

	"github.com/google/uuid"
)

const defaultFeedBuffer = 32

// FeedHub fans user events out to subscribers.
// Publish never blocks: a subscriber whose buffer is full misses the event.
type FeedHub struct {
	mu      sync.Mutex
	subs    map[chan models.UserEvent]struct{}
	buffer  int
	dropped atomic.Uint64
}

func NewFeedHub(buffer int) *FeedHub {
	if buffer <= 0 {
		buffer = defaultFeedBuffer
	}
	return &FeedHub{
		subs:   make(map[chan models.UserEvent]struct{}),
		buffer: buffer,
	}
}

var _ Feed = (*FeedHub)(nil)

// Publish stamps the event id and time when missing and delivers it.
// With no subscribers the event is discarded and not counted as dropped.
func (h *FeedHub) Publish(e models.UserEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.subs) == 0 {
		return
	}

	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	for ch := range h.subs {
		select {
		case ch <- e:
		default:
			h.dropped.Add(1)
		}
	}
}

// Subscribe registers a new listener. The channel is closed on cancel.
func (h *FeedHub) Subscribe() (<-chan models.UserEvent, func()) {
	ch := make(chan models.UserEvent, h.buffer)

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

// Subscribers returns the number of live subscriptions.
func (h *FeedHub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Dropped returns how many deliveries were skipped for slow subscribers.
func (h *FeedHub) Dropped() uint64 {
	return h.dropped.Load()
}
