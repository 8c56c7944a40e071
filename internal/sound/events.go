package sound

import (
	"sync"
	"sync/atomic"

	"github.com/tphakala/audiosession/internal/engine"
)

// EventKind identifies a lifecycle notification.
type EventKind int

const (
	// InstanceEnded is emitted when a playback voice finishes naturally and
	// is reaped from its definition's handle list.
	InstanceEnded EventKind = iota
	// DefinitionDisposed is emitted when a sound definition and all of its
	// instances are torn down.
	DefinitionDisposed
)

// Event is one lifecycle notification. Handle is set for InstanceEnded only.
type Event struct {
	Kind   EventKind
	Hash   Hash
	Handle engine.Handle
}

// subscription is one consumer channel attached to a definition hash.
type subscription struct {
	hash Hash
	ch   chan Event
}

// eventBus delivers lifecycle events to per-definition subscribers. Publish
// never blocks: a subscriber whose buffer is full loses the event and the
// drop counter increments, matching the delivery guarantees of the rest of
// the system (ordered while the consumer keeps up, lossy when it does not).
type eventBus struct {
	mu      sync.RWMutex
	subs    map[Hash][]*subscription
	dropped atomic.Uint64
}

func newEventBus() *eventBus {
	return &eventBus{subs: make(map[Hash][]*subscription)}
}

// subscribe attaches a consumer to one definition hash. The returned cancel
// function detaches it and closes the channel.
func (b *eventBus) subscribe(hash Hash, buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	sub := &subscription{hash: hash, ch: make(chan Event, buffer)}

	b.mu.Lock()
	b.subs[hash] = append(b.subs[hash], sub)
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		list := b.subs[hash]
		for i, s := range list {
			if s == sub {
				b.subs[hash] = append(list[:i], list[i+1:]...)
				break
			}
		}
		if len(b.subs[hash]) == 0 {
			delete(b.subs, hash)
		}
		b.mu.Unlock()
		close(sub.ch)
	}
	return sub.ch, cancel
}

// publish delivers one event to every subscriber of its hash without
// blocking.
func (b *eventBus) publish(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs[ev.Hash] {
		select {
		case sub.ch <- ev:
		default:
			b.dropped.Add(1)
		}
	}
}

// droppedCount returns how many events were lost to full subscriber buffers.
func (b *eventBus) droppedCount() uint64 {
	return b.dropped.Load()
}
