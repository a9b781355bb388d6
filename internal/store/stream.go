package store

import (
	"context"
	"errors"
	"sync"

	"github.com/roach88/decklog/internal/record"
)

// Update is one delivery from a Stream.
// A non-nil Err is the last update; the stream ends after it.
type Update[T any] struct {
	Value T
	Err   error
}

// Stream is a live query: it delivers the query's current result, then a
// fresh result each time one of its tables changes.
//
// Only the latest result is kept for a slow reader; intermediate results
// are dropped. The Updates channel is closed when the stream ends, which
// happens on Close, on cancellation of the context passed to Watch*, on a
// query error, or when the Store is closed.
type Stream[T any] struct {
	updates   chan Update[T]
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

// Updates returns the delivery channel.
func (st *Stream[T]) Updates() <-chan Update[T] {
	return st.updates
}

// Close unsubscribes and waits for the stream to end.
// Safe to call more than once.
func (st *Stream[T]) Close() {
	st.closeOnce.Do(st.cancel)
	<-st.done
}

// Done is closed once the stream has ended.
func (st *Stream[T]) Done() <-chan struct{} {
	return st.done
}

// watch starts a stream over query, re-run on every change to tables.
func watch[T any](ctx context.Context, s *Store, query func(context.Context) (T, error), tables ...Table) *Stream[T] {
	ctx, cancel := context.WithCancel(ctx)
	// Subscribe before the first query so no change is missed in between.
	id, signal := s.notify.subscribe(tables...)

	st := &Stream[T]{
		updates: make(chan Update[T], 1),
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	go func() {
		defer close(st.done)
		defer close(st.updates)
		defer s.notify.unsubscribe(id)
		defer cancel()

		for {
			value, err := query(ctx)
			if ctx.Err() != nil {
				return
			}
			st.deliver(Update[T]{Value: value, Err: err})
			if err != nil {
				s.logger.Debug("stream ended by query error", "tables", tables, "error", err)
				return
			}

			select {
			case <-ctx.Done():
				return
			case <-s.notify.done:
				return
			case <-signal:
			}
		}
	}()

	return st
}

// deliver replaces any undelivered update with u.
// Only the stream goroutine sends, so the second attempt always succeeds.
func (st *Stream[T]) deliver(u Update[T]) {
	for {
		select {
		case st.updates <- u:
			return
		default:
		}
		select {
		case <-st.updates:
		default:
		}
	}
}

// optional turns ErrNotFound into a nil result for streams over single rows.
func optional(query func(context.Context) (record.Deck, error)) func(context.Context) (*record.Deck, error) {
	return func(ctx context.Context) (*record.Deck, error) {
		d, err := query(ctx)
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return &d, nil
	}
}
