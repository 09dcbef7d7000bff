package sqlite

import "sync"

// Watch topics. Child topics are suffixed with the event id so a watcher of
// one event's todos is not woken by writes to another event.
const (
	topicEvents = "events"
	topicTodos  = "todos:"
	topicToBuys = "to_buys:"
)

// hub is a minimal in-process change notifier: mutations signal a topic,
// watchers re-run their query on each signal. Signals are coalesced (the
// subscriber channel has capacity one), so a burst of writes results in at
// least one re-read, not one per write.
type hub struct {
	mu   sync.Mutex
	subs map[string]map[chan struct{}]struct{}
}

func newHub() *hub {
	return &hub{subs: make(map[string]map[chan struct{}]struct{})}
}

func (h *hub) subscribe(topic string) chan struct{} {
	ch := make(chan struct{}, 1)
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[topic] == nil {
		h.subs[topic] = make(map[chan struct{}]struct{})
	}
	h.subs[topic][ch] = struct{}{}
	return ch
}

func (h *hub) unsubscribe(topic string, ch chan struct{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs[topic], ch)
}

func (h *hub) notify(topics ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, topic := range topics {
		for ch := range h.subs[topic] {
			select {
			case ch <- struct{}{}:
			default:
			}
		}
	}
}
