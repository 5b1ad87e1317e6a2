package services

import (
	"fmt"
	"sync"
	"time"

	apperrors "wisespend/internal/errors"
	"wisespend/internal/logger"
	"wisespend/internal/period"
	"wisespend/internal/uuid"
)

// EventType names a domain event.
type EventType string

const (
	EventPeriodChanged          EventType = "periodChanged"
	EventPeriodCreated          EventType = "periodCreated"
	EventPeriodActivated        EventType = "periodActivated"
	EventPeriodUnlocked         EventType = "periodUnlocked"
	EventPeriodLocked           EventType = "periodLocked"
	EventPeriodArchived         EventType = "periodArchived"
	EventBucketSaved            EventType = "bucketSaved"
	EventMonthRolloverDetected  EventType = "monthRolloverDetected"
	EventMonthRolloverCompleted EventType = "monthRolloverCompleted"
	EventIntegrityWarning       EventType = "integrityWarning"
	EventMigrationCompleted     EventType = "migrationCompleted"
	EventPeriodPurged           EventType = "periodPurged"

	EventPeriodChangedError   EventType = "periodChangedError"
	EventPeriodCreatedError   EventType = "periodCreatedError"
	EventPeriodActivatedError EventType = "periodActivatedError"
	EventPeriodUnlockedError  EventType = "periodUnlockedError"
	EventPeriodLockedError    EventType = "periodLockedError"
	EventBucketSavedError     EventType = "bucketSavedError"
	EventMonthRolloverError   EventType = "monthRolloverError"
	EventMigrationError       EventType = "migrationError"
	EventPeriodPurgedError    EventType = "periodPurgedError"
	EventStoreOpenError       EventType = "storeOpenError"
)

// Event is delivered to subscribers after the operation that produced it has
// released the store lock. Delivery is at-least-once; ID identifies an event
// across redeliveries.
type Event struct {
	ID                     string        `json:"id"`
	Type                   EventType     `json:"type"`
	Period                 period.ID     `json:"period"`
	Source                 period.ID     `json:"source"`
	Kind                   period.Kind   `json:"kind,omitempty"`
	MissingKinds           []period.Kind `json:"missing_kinds,omitempty"`
	RequiresManualCreation bool          `json:"requires_manual_creation,omitempty"`
	Code                   string        `json:"code,omitempty"`
	Error                  string        `json:"error,omitempty"`
	Timestamp              time.Time     `json:"timestamp"`
}

// IsError reports whether the event signals a failed operation.
func (e Event) IsError() bool { return e.Code != "" }

func newEvent(typ EventType, id period.ID, at time.Time) Event {
	return Event{ID: uuid.New(), Type: typ, Period: id, Timestamp: at}
}

func newErrorEvent(typ EventType, id period.ID, at time.Time, err error) Event {
	ev := newEvent(typ, id, at)
	ev.Code = apperrors.CodeOf(err)
	ev.Error = err.Error()
	return ev
}

// Subscriber receives every event.
type Subscriber func(Event)

type subscription struct {
	id int
	fn Subscriber
}

// eventBus holds subscribers in registration order and the events produced
// by the operation currently holding the store lock.
type eventBus struct {
	mu      sync.Mutex
	nextID  int
	subs    []subscription
	pending []Event
}

func (b *eventBus) subscribe(fn Subscriber) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, fn: fn})
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.subs {
			if s.id == id {
				b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
				return
			}
		}
	}
}

// emit queues ev for delivery. Callers hold the store lock.
func (b *eventBus) emit(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending = append(b.pending, ev)
}

// mark returns a position in the queue that rollback can return to.
func (b *eventBus) mark() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

// rollback drops events queued after mark by a step that was undone.
func (b *eventBus) rollback(mark int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if mark < len(b.pending) {
		b.pending = b.pending[:mark]
	}
}

// take removes and returns the queued events.
func (b *eventBus) take() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	events := b.pending
	b.pending = nil
	return events
}

// deliver hands events to every subscriber in order. A panicking subscriber
// is logged and skipped.
func (b *eventBus) deliver(events []Event) {
	if len(events) == 0 {
		return
	}
	b.mu.Lock()
	subs := make([]subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.Unlock()

	for _, ev := range events {
		logEvent(ev)
		for _, s := range subs {
			callSubscriber(s.fn, ev)
		}
	}
}

func callSubscriber(fn Subscriber, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			logger.Named("events").Errorw("subscriber panicked",
				"event", ev.Type,
				"period", ev.Period.String(),
				"panic", fmt.Sprint(r),
			)
		}
	}()
	fn(ev)
}

func logEvent(ev Event) {
	log := logger.Named("events")
	if ev.IsError() {
		log.Warnw("period event", "event", ev.Type, "period", ev.Period.String(), "code", ev.Code, "error", ev.Error)
		return
	}
	log.Debugw("period event", "event", ev.Type, "period", ev.Period.String(), "kind", string(ev.Kind))
}
