// Package publisher fans audit events into the configured store and sink.
package publisher

import (
	"context"
	"sync"

	id "vanity/pkg/domain"
	audit "vanity/pkg/platform/audit"
)

// Publisher appends events to a store and forwards them to an optional sink.
// By default Emit is synchronous; WithAsyncBuffer switches to a buffered
// channel drained by a background goroutine, where a full buffer drops the
// event rather than blocking the operation that produced it.
type Publisher struct {
	store audit.Store
	sink  audit.Sink

	inbox  chan audit.Event
	done   chan struct{}
	closed sync.Once
	wg     sync.WaitGroup
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithAsyncBuffer enables asynchronous emission with the given buffer size.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.inbox = make(chan audit.Event, size)
	}
}

// WithSink forwards every event to the sink after it is stored.
func WithSink(sink audit.Sink) Option {
	return func(p *Publisher) {
		p.sink = sink
	}
}

func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store, done: make(chan struct{})}
	for _, opt := range opts {
		opt(p)
	}
	if p.inbox != nil {
		p.wg.Add(1)
		go p.drain()
	}
	return p
}

// Emit records one event. In async mode a full buffer drops the event; the
// protocol operation that produced it must not block on audit throughput.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if p.inbox == nil {
		return p.deliver(ctx, event)
	}
	select {
	case <-p.done:
		return nil
	default:
	}
	select {
	case p.inbox <- event:
		return nil
	default:
		// Buffer full: drop.
		return nil
	}
}

// List returns stored events for an account.
func (p *Publisher) List(ctx context.Context, account id.AccountID) ([]audit.Event, error) {
	return p.store.ListByAccount(ctx, account)
}

// Close drains buffered events and shuts down the sink.
func (p *Publisher) Close() {
	p.closed.Do(func() {
		close(p.done)
		p.wg.Wait()
		if p.sink != nil {
			p.sink.Close()
		}
	})
}

func (p *Publisher) drain() {
	defer p.wg.Done()
	for {
		select {
		case event := <-p.inbox:
			// Best effort: a failed append is not retried, the next
			// event proceeds.
			_ = p.deliver(context.Background(), event)
		case <-p.done:
			// Flush whatever was buffered before shutdown.
			for {
				select {
				case event := <-p.inbox:
					_ = p.deliver(context.Background(), event)
				default:
					return
				}
			}
		}
	}
}

func (p *Publisher) deliver(ctx context.Context, event audit.Event) error {
	if err := p.store.Append(ctx, event); err != nil {
		return err
	}
	if p.sink != nil {
		return p.sink.Publish(ctx, event)
	}
	return nil
}
