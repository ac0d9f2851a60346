package services

import (
	"sync"

	"vehicle-storefront/models"
)

// StateFeed fans loader state snapshots out to subscribers. Publishing
// never blocks: a subscriber that falls behind only sees the newest
// snapshot.
type StateFeed struct {
	mu     sync.Mutex
	subs   map[int]chan models.LoaderState
	nextID int
	closed bool
}

// NewStateFeed creates a feed with no subscribers.
func NewStateFeed() *StateFeed {
	return &StateFeed{subs: make(map[int]chan models.LoaderState)}
}

// Subscribe registers a subscriber. The returned function unsubscribes and
// closes the channel; calling it more than once is safe.
func (f *StateFeed) Subscribe(buffer int) (<-chan models.LoaderState, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan models.LoaderState, buffer)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		close(ch)
		return ch, func() {}
	}
	id := f.nextID
	f.nextID++
	f.subs[id] = ch

	return ch, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if c, ok := f.subs[id]; ok {
			delete(f.subs, id)
			close(c)
		}
	}
}

// Publish delivers s to every subscriber.
func (f *StateFeed) Publish(s models.LoaderState) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, ch := range f.subs {
		select {
		case ch <- s:
			continue
		default:
		}
		// full: drop the oldest snapshot
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- s:
		default:
		}
	}
}

// Subscribers returns the number of live subscribers.
func (f *StateFeed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

// Close unsubscribes everyone. Later Subscribe calls get a closed channel.
func (f *StateFeed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	for id, ch := range f.subs {
		delete(f.subs, id)
		close(ch)
	}
}
