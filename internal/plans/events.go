package plans

import (
	"sync"

	"github.com/canstralian/GitUpgradeNavigator/internal/models"
)

// Broker fans progress events out to subscribers. Each subscriber
// watches a single plan; a slow subscriber drops events rather than
// blocking the toggle path.
type Broker struct {
	mu   sync.RWMutex
	subs map[int]map[chan models.ProgressEvent]struct{}
}

// NewBroker creates a new event broker
func NewBroker() *Broker {
	return &Broker{
		subs: make(map[int]map[chan models.ProgressEvent]struct{}),
	}
}

// Subscribe registers a new subscriber for the given plan ID and
// returns its event channel
func (b *Broker) Subscribe(planID int) chan models.ProgressEvent {
	ch := make(chan models.ProgressEvent, 16)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subs[planID] == nil {
		b.subs[planID] = make(map[chan models.ProgressEvent]struct{})
	}
	b.subs[planID][ch] = struct{}{}
	return ch
}

// Unsubscribe removes a subscriber and closes its channel
func (b *Broker) Unsubscribe(planID int, ch chan models.ProgressEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	set, ok := b.subs[planID]
	if !ok {
		return
	}
	if _, ok := set[ch]; !ok {
		return
	}
	delete(set, ch)
	if len(set) == 0 {
		delete(b.subs, planID)
	}
	close(ch)
}

// Publish delivers an event to all subscribers of the event's plan
func (b *Broker) Publish(event models.ProgressEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.subs[event.PlanID] {
		select {
		case ch <- event:
		default:
			// subscriber buffer full, drop
		}
	}
}
