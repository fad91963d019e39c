// Package bus relays domain status changes between live dashboards: events go
// to every subscribed role except the one that published them, in strict
// publish order. The bus owns no domain state; persistence is the host's job.
package bus

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"dashboard-session-core/role"
	"dashboard-session-core/telemetry"
)

// Status is a domain object's lifecycle status as carried on the bus.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
)

// StatusEvent is a single status change. Ephemeral: exists only for delivery.
type StatusEvent struct {
	SubjectID string
	NewStatus Status
	Origin    role.Role
	Timestamp time.Time
}

// Change is one entry of a batch publish.
type Change struct {
	SubjectID string
	NewStatus Status
}

// Callback receives a delivered event. Errors are logged and isolated; they
// never abort delivery to other callbacks or later events.
type Callback func(ctx context.Context, ev StatusEvent) error

// Stats is a diagnostic snapshot of the bus.
type Stats struct {
	// Subscribers is the callback count per role.
	Subscribers map[role.Role]int
	// QueueDepth is the number of events waiting for delivery.
	QueueDepth int
	// Draining reports whether the drain loop is running.
	Draining bool
}

type subscriber struct {
	id string
	cb Callback
}

// Bus is an explicitly constructed relay; hosts and tests create as many
// independent instances as they need.
type Bus struct {
	emitter telemetry.EventEmitter
	nowF    func() time.Time

	mu       sync.Mutex
	subs     map[role.Role][]subscriber
	queue    []StatusEvent
	draining bool
	idle     *sync.Cond // broadcast whenever a drain pass finishes
}

// New returns an empty Bus. emitter may be nil to disable telemetry.
func New(emitter telemetry.EventEmitter) *Bus {
	if emitter == nil {
		emitter = telemetry.Nop()
	}
	b := &Bus{
		emitter: emitter,
		nowF:    time.Now().UTC,
		subs:    make(map[role.Role][]subscriber),
	}
	b.idle = sync.NewCond(&b.mu)
	return b
}

// Subscribe registers cb for events visible to r and returns a subscription
// id for Unsubscribe. Many callbacks may register per role.
func (b *Bus) Subscribe(r role.Role, cb Callback) string {
	id := uuid.New().String()
	b.mu.Lock()
	b.subs[r] = append(b.subs[r], subscriber{id: id, cb: cb})
	b.mu.Unlock()
	return id
}

// Unsubscribe removes the subscription id from r. Unknown ids are a no-op.
func (b *Bus) Unsubscribe(r role.Role, id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	list := b.subs[r]
	for i, s := range list {
		if s.id == id {
			b.subs[r] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}

// Publish enqueues one status change from origin and starts the drain loop if
// idle. Non-blocking: delivery happens on the drain goroutine.
func (b *Bus) Publish(subjectID string, newStatus Status, origin role.Role) {
	b.enqueue([]StatusEvent{{
		SubjectID: subjectID,
		NewStatus: newStatus,
		Origin:    origin,
		Timestamp: b.nowF(),
	}})
}

// PublishBatch enqueues changes from origin preserving the caller-given order.
func (b *Bus) PublishBatch(changes []Change, origin role.Role) {
	if len(changes) == 0 {
		return
	}
	now := b.nowF()
	events := make([]StatusEvent, len(changes))
	for i, c := range changes {
		events[i] = StatusEvent{
			SubjectID: c.SubjectID,
			NewStatus: c.NewStatus,
			Origin:    origin,
			Timestamp: now,
		}
	}
	b.enqueue(events)
}

func (b *Bus) enqueue(events []StatusEvent) {
	b.mu.Lock()
	b.queue = append(b.queue, events...)
	if !b.draining {
		b.draining = true
		go b.drain()
	}
	b.mu.Unlock()
}

// drain is the single loop that owns the queue: pop the head, deliver to
// every subscribed role except the origin, awaiting each callback before the
// next event so publish order holds globally across all observers.
func (b *Bus) drain() {
	for {
		b.mu.Lock()
		if len(b.queue) == 0 {
			b.draining = false
			b.idle.Broadcast()
			b.mu.Unlock()
			return
		}
		ev := b.queue[0]
		b.queue = b.queue[1:]

		var targets []subscriber
		for _, r := range role.All() {
			if r == ev.Origin {
				continue // echo suppression
			}
			targets = append(targets, b.subs[r]...)
		}
		b.mu.Unlock()

		for _, tgt := range targets {
			b.deliver(tgt, ev)
		}
	}
}

// deliver invokes one callback, converting a panic into an error so a broken
// subscriber cannot stop the relay.
func (b *Bus) deliver(tgt subscriber, ev StatusEvent) {
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("subscriber panic: %v", r)
			}
		}()
		return tgt.cb(context.Background(), ev)
	}()
	if err != nil {
		log.Printf("bus: delivery of %s/%s failed: %v", ev.SubjectID, ev.NewStatus, err)
		telemetry.EmitAsync(b.emitter, &telemetry.Event{
			Type:      telemetry.EventDeliveryFailure,
			Role:      ev.Origin,
			SubjectID: ev.SubjectID,
			Err:       err.Error(),
			At:        ev.Timestamp,
		})
	}
}

// Flush blocks until the queue is empty and the drain loop is idle. Test and
// shutdown helper; publishers never need it.
func (b *Bus) Flush() {
	b.mu.Lock()
	for b.draining {
		b.idle.Wait()
	}
	b.mu.Unlock()
}

// GetStats returns a diagnostic snapshot.
func (b *Bus) GetStats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := make(map[role.Role]int, len(b.subs))
	for r, list := range b.subs {
		if len(list) > 0 {
			subs[r] = len(list)
		}
	}
	return Stats{
		Subscribers: subs,
		QueueDepth:  len(b.queue),
		Draining:    b.draining,
	}
}
