package live

import "sync"

// Publisher receives change signals from a notification source.
type Publisher interface {
	// Publish signals that something under topic changed.
	Publish(topic string)
	// PublishAll signals every topic, e.g. after notifications may have been missed.
	PublishAll()
}

// Hub fans change signals out to subscribers of a topic (a namespace).
// Signals carry no payload; subscribers re-read state when woken.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[chan struct{}]struct{}
}

var _ Publisher = (*Hub)(nil)

// NewHub constructs an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[chan struct{}]struct{})}
}

// Subscribe registers for signals on topic. Signals coalesce: at most one is
// pending per subscriber. The returned cancel func must be called on teardown.
func (h *Hub) Subscribe(topic string) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	h.mu.Lock()
	set, ok := h.subs[topic]
	if !ok {
		set = make(map[chan struct{}]struct{})
		h.subs[topic] = set
	}
	set[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs[topic], ch)
			if len(h.subs[topic]) == 0 {
				delete(h.subs, topic)
			}
		})
	}
}

// Publish wakes every subscriber of topic without blocking.
func (h *Hub) Publish(topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[topic] {
		signal(ch)
	}
}

// PublishAll wakes every subscriber of every topic.
func (h *Hub) PublishAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, set := range h.subs {
		for ch := range set {
			signal(ch)
		}
	}
}

// Subscribers reports how many subscribers topic has.
func (h *Hub) Subscribers(topic string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[topic])
}

func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
