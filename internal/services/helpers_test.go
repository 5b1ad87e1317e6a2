package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"wisespend/internal/keyspace"
	"wisespend/internal/kv"
	"wisespend/internal/logger"
	"wisespend/internal/models"
	"wisespend/internal/period"
	"wisespend/internal/testutil"
)

func init() {
	logger.Init("test")
}

var testKeys = keyspace.New("wisespend", "presupuesto")

// eventRecorder collects delivered events.
type eventRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *eventRecorder) record(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *eventRecorder) ofType(typ EventType) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, ev := range r.events {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}

func (r *eventRecorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

type testStore struct {
	o      *orchestrator
	medium *kv.MemoryMedium
	clock  *testutil.FakeClock
	events *eventRecorder
}

func testPolicy() Policy {
	p := DefaultPolicy()
	p.AutosaveInterval = time.Hour
	p.RolloverInterval = time.Hour
	return p
}

// newTestStore builds an orchestrator over an in-memory medium without
// opening it.
func newTestStore(t *testing.T, now time.Time) *testStore {
	t.Helper()
	return newTestStoreWithPolicy(t, now, testPolicy())
}

func newTestStoreWithPolicy(t *testing.T, now time.Time, policy Policy) *testStore {
	t.Helper()
	medium := kv.NewMemoryMedium()
	clock := testutil.NewFakeClock(now)
	o := NewOrchestrator(medium, testKeys, clock, policy).(*orchestrator)
	rec := &eventRecorder{}
	o.Subscribe(rec.record)
	t.Cleanup(o.Close)
	return &testStore{o: o, medium: medium, clock: clock, events: rec}
}

// seed stores a period directly, bypassing every guard.
func (s *testStore) seed(t *testing.T, id period.ID, state period.State, docs map[period.Kind]models.Document) {
	t.Helper()
	ctx := context.Background()
	for kind, doc := range docs {
		raw, err := json.Marshal(doc)
		require.NoError(t, err)
		require.NoError(t, s.o.store.WriteRawBucket(ctx, id, kind, raw))
	}
	require.NoError(t, s.o.store.WriteMeta(ctx, id, &models.PeriodMeta{
		State:           state,
		LastStateChange: s.clock.Now(),
		Editable:        state.Editable(),
		AutoSave:        state.AutoSave(),
	}))
	require.NoError(t, s.o.index.Add(ctx, id))
	if state == period.StateActive {
		require.NoError(t, s.o.index.SetCurrentPointer(ctx, id))
	}
}

func (s *testStore) state(t *testing.T, id period.ID) period.State {
	t.Helper()
	st, err := s.o.lifecycle.State(context.Background(), id)
	require.NoError(t, err)
	return st
}

func (s *testStore) countState(t *testing.T, want period.State) int {
	t.Helper()
	states, err := s.o.lifecycle.States(context.Background())
	require.NoError(t, err)
	n := 0
	for _, st := range states {
		if st == want {
			n++
		}
	}
	return n
}

func failSetOf(keys ...string) func(op kv.Op, key string) error {
	return func(op kv.Op, key string) error {
		if op != kv.OpSet {
			return nil
		}
		for _, k := range keys {
			if k == key {
				return errInjected
			}
		}
		return nil
	}
}

var errInjected = errors.New("injected storage failure")

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return string(raw)
}
