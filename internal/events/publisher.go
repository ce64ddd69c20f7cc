package events

import (
	"log"
	"sync"
)

// subscriberBuffer is the per-subscriber channel depth. A subscriber that
// falls further behind than this starts losing events rather than blocking
// the ledger.
const subscriberBuffer = 256

// Publisher fans events out to subscribers. Publishing never blocks: a full
// subscriber channel drops the event for that subscriber and logs once per
// drop. The exchange ledger publishes only after an operation has committed,
// so subscribers never observe a state change that was rolled back.
type Publisher struct {
	mu     sync.Mutex
	seq    uint64
	nextID int
	subs   map[int]chan Event
}

// NewPublisher creates a Publisher with no subscribers.
func NewPublisher() *Publisher {
	return &Publisher{subs: make(map[int]chan Event)}
}

// Subscribe registers a new subscriber. The returned cancel function closes
// the channel and removes the subscription; it is safe to call more than once.
func (p *Publisher) Subscribe() (<-chan Event, func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextID
	p.nextID++
	ch := make(chan Event, subscriberBuffer)
	p.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			if c, ok := p.subs[id]; ok {
				delete(p.subs, id)
				close(c)
			}
		})
	}
	return ch, cancel
}

// Publish stamps the event with the next sequence number and delivers it to
// every subscriber.
func (p *Publisher) Publish(ev Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.seq++
	ev.Seq = p.seq

	for id, ch := range p.subs {
		select {
		case ch <- ev:
		default:
			log.Printf("events: subscriber %d lagging, dropped %s event seq=%d", id, ev.Type, ev.Seq)
		}
	}
}

// SubscriberCount returns the number of active subscribers.
func (p *Publisher) SubscriberCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.subs)
}
