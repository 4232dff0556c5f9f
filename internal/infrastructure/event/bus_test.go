package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Invoice", uuid.New())}
}

type recordingHandler struct {
	mu     sync.Mutex
	types  []string
	seen   []string
	err    error
	panics bool
}

func (h *recordingHandler) Handle(_ context.Context, e shared.DomainEvent) error {
	h.mu.Lock()
	h.seen = append(h.seen, e.EventType())
	h.mu.Unlock()
	if h.panics {
		panic("boom")
	}
	return h.err
}

func (h *recordingHandler) EventTypes() []string { return h.types }

func (h *recordingHandler) received() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.seen...)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	require.NoError(t, bus.Start(context.Background()))

	payments := &recordingHandler{types: []string{"PaymentRecorded"}}
	all := &recordingHandler{}
	bus.Subscribe(payments)
	bus.Subscribe(all)

	require.NoError(t, bus.Publish(context.Background(),
		newTestEvent("InvoiceCreated"),
		newTestEvent("PaymentRecorded"),
	))

	assert.Equal(t, []string{"PaymentRecorded"}, payments.received())
	assert.Equal(t, []string{"InvoiceCreated", "PaymentRecorded"}, all.received())
}

func TestInMemoryEventBus_HandlerFailuresAreIsolated(t *testing.T) {
	core, recorded := observer.New(zapcore.ErrorLevel)
	bus := NewInMemoryEventBus(zap.New(core))

	failing := &recordingHandler{types: []string{"InvoiceDeleted"}, err: errors.New("cache down")}
	panicking := &recordingHandler{types: []string{"InvoiceDeleted"}, panics: true}
	healthy := &recordingHandler{types: []string{"InvoiceDeleted"}}
	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("InvoiceDeleted")))

	assert.Len(t, healthy.received(), 1)
	assert.Equal(t, 2, recorded.FilterMessage("Event handler failed").Len())
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	h := &recordingHandler{types: []string{"InvoiceUpdated"}}
	bus.Subscribe(h)
	bus.Unsubscribe(h)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("InvoiceUpdated")))
	assert.Empty(t, h.received())
}

func TestInMemoryEventBus_Stop(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, bus.Stop(ctx))
	assert.ErrorIs(t, bus.Publish(context.Background(), newTestEvent("InvoiceCreated")), ErrBusStopped)

	require.NoError(t, bus.Start(ctx))
	assert.NoError(t, bus.Publish(context.Background(), newTestEvent("InvoiceCreated")))
}

func TestLogHandler(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	bus := NewInMemoryEventBus(nil)
	bus.Subscribe(NewLogHandler(zap.New(core)))

	evt := newTestEvent("PaymentDeleted")
	require.NoError(t, bus.Publish(context.Background(), evt))

	entries := recorded.FilterMessage("Ledger event").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "PaymentDeleted", entries[0].ContextMap()["event_type"])
	assert.Equal(t, evt.AggregateID().String(), entries[0].ContextMap()["aggregate_id"])
}
