package retriever

import (
	"context"
	"sync"
	"time"

	"github.com/smallnest/ragfusion"
	"github.com/smallnest/ragfusion/log"
)

// DefaultAdapterTimeout bounds how long a single adapter may run per query.
const DefaultAdapterTimeout = 10 * time.Second

// Dispatcher fans a query out to all registered adapters concurrently and
// collects their result lists. Every adapter gets its own goroutine and its
// own timeout; the dispatcher waits for all of them before returning, so a
// slow adapter delays the query but never leaks a goroutine past it.
type Dispatcher struct {
	retrievers []ragfusion.Retriever
	timeout    time.Duration
	logger     log.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithAdapterTimeout overrides the per-adapter timeout.
func WithAdapterTimeout(d time.Duration) DispatcherOption {
	return func(dp *Dispatcher) {
		dp.timeout = d
	}
}

// WithDispatcherLogger sets the logger.
func WithDispatcherLogger(logger log.Logger) DispatcherOption {
	return func(dp *Dispatcher) {
		dp.logger = logger
	}
}

// NewDispatcher creates a dispatcher over the given adapters. Adapter order
// is preserved in the returned result lists.
func NewDispatcher(retrievers []ragfusion.Retriever, opts ...DispatcherOption) *Dispatcher {
	dp := &Dispatcher{
		retrievers: retrievers,
		timeout:    DefaultAdapterTimeout,
		logger:     log.GetDefaultLogger(),
	}
	for _, opt := range opts {
		opt(dp)
	}
	return dp
}

// Dispatch runs the query against every adapter in parallel and returns one
// result list per adapter, in registration order. Adapters that fail or time
// out contribute an empty list; Dispatch itself never fails.
func (dp *Dispatcher) Dispatch(ctx context.Context, q ragfusion.Query) [][]ragfusion.RetrievalResult {
	lists := make([][]ragfusion.RetrievalResult, len(dp.retrievers))

	var wg sync.WaitGroup
	for i, r := range dp.retrievers {
		wg.Add(1)
		go func(i int, r ragfusion.Retriever) {
			defer wg.Done()

			adapterCtx, cancel := context.WithTimeout(ctx, dp.timeout)
			defer cancel()

			results := r.Retrieve(adapterCtx, q)
			if err := adapterCtx.Err(); err != nil {
				dp.logger.Warn("dispatch: %s adapter hit deadline, dropping its results: %v", r.Source(), err)
				results = nil
			}
			if results == nil {
				results = []ragfusion.RetrievalResult{}
			}
			lists[i] = results
		}(i, r)
	}
	wg.Wait()

	return lists
}
