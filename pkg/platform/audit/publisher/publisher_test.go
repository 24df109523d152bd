package publisher

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "vanity/pkg/platform/audit"
	auditmemory "vanity/pkg/platform/audit/store/memory"
)

type recordingSink struct {
	mu     sync.Mutex
	events []audit.Event
	closed bool
}

func (s *recordingSink) Publish(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *recordingSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func TestSynchronousEmit(t *testing.T) {
	store := auditmemory.NewInMemoryStore()
	p := NewPublisher(store)
	defer p.Close()

	event := audit.Event{ID: uuid.New(), Action: audit.ActionNamePurchased, Account: "alice", Name: "t123"}
	require.NoError(t, p.Emit(context.Background(), event))

	stored, err := p.List(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, event.ID, stored[0].ID)
}

func TestEmitForwardsToSink(t *testing.T) {
	store := auditmemory.NewInMemoryStore()
	sink := &recordingSink{}
	p := NewPublisher(store, WithSink(sink))

	require.NoError(t, p.Emit(context.Background(), audit.Event{ID: uuid.New(), Account: "alice"}))
	assert.Equal(t, 1, sink.count())

	p.Close()
	assert.True(t, sink.closed, "close propagates to the sink")
}

func TestAsyncEmitDrainsOnClose(t *testing.T) {
	store := auditmemory.NewInMemoryStore()
	p := NewPublisher(store, WithAsyncBuffer(16))

	for i := 0; i < 10; i++ {
		require.NoError(t, p.Emit(context.Background(), audit.Event{ID: uuid.New(), Account: "alice"}))
	}
	p.Close()

	stored, err := p.List(context.Background(), "alice")
	require.NoError(t, err)
	assert.Len(t, stored, 10, "close waits for the buffer to drain")
}

func TestAsyncEmitAfterCloseIsDropped(t *testing.T) {
	store := auditmemory.NewInMemoryStore()
	p := NewPublisher(store, WithAsyncBuffer(4))
	p.Close()

	require.NoError(t, p.Emit(context.Background(), audit.Event{ID: uuid.New(), Account: "alice"}))

	stored, err := p.List(context.Background(), "alice")
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestCloseIsIdempotent(t *testing.T) {
	p := NewPublisher(auditmemory.NewInMemoryStore(), WithAsyncBuffer(4))
	p.Close()
	p.Close()
}
