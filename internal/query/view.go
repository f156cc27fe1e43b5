package query

import (
	"context"
	"errors"
	"net/url"
	"sync"

	"github.com/uleam-conecta/conecta-go/internal/metrics"
)

// Result is a snapshot of a view's state.
type Result struct {
	Status Status
	// Data is the last committed payload. While a refetch is in flight it
	// still holds the previous response, so consumers never flash back to
	// an empty state on a filter change.
	Data []byte
	Err  error
	// Stale is true when Data belongs to a superseded filter set or a
	// failed refresh.
	Stale bool
}

// View is one logical list query whose filters change over time (a results
// page the user is filtering). It owns the ordering guarantee: when filters
// change while an earlier request is still in flight, only the most recently
// issued request may commit, and the earlier response is discarded when it
// eventually lands.
type View struct {
	cache    *Cache
	resource string

	mu      sync.Mutex
	seq     uint64
	filters url.Values
	res     Result
	done    chan struct{} // closed when the latest request settles
}

// NewView creates a view over one resource's list query.
func NewView(cache *Cache, resource string) *View {
	closed := make(chan struct{})
	close(closed)
	return &View{cache: cache, resource: resource, done: closed}
}

// Set applies a new filter object. The view transitions to loading with the
// previous data retained, and the fetch runs in the background. Calling Set
// again before the response lands supersedes the earlier request.
func (v *View) Set(ctx context.Context, filters url.Values, fn FetchFunc) {
	v.mu.Lock()
	v.seq++
	mine := v.seq
	v.filters = filters
	v.res.Status = StatusLoading
	if v.res.Data != nil {
		v.res.Stale = true
	}
	done := make(chan struct{})
	v.done = done
	v.mu.Unlock()

	go func() {
		defer close(done)
		data, err := v.cache.Resolve(ctx, Key{Resource: v.resource, Filters: filters}, fn)

		v.mu.Lock()
		defer v.mu.Unlock()
		if mine != v.seq {
			// A newer filter set took over; this response is nobody's.
			metrics.ObserveDroppedResponse()
			return
		}
		if err != nil {
			if errors.Is(err, context.Canceled) {
				// The consumer went away. Not an error, just a no-op.
				return
			}
			v.res = Result{Status: StatusError, Err: err, Data: v.res.Data, Stale: v.res.Data != nil}
			return
		}
		v.res = Result{Status: StatusSuccess, Data: data}
	}()
}

// Refresh re-runs the current filter set, typically after an invalidation.
func (v *View) Refresh(ctx context.Context, fn FetchFunc) {
	v.mu.Lock()
	filters := v.filters
	v.mu.Unlock()
	v.Set(ctx, filters, fn)
}

// State returns the current snapshot.
func (v *View) State() Result {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.res
}

// Wait blocks until the most recently issued request has settled, or ctx is
// done. Later Set calls replace the awaited request.
func (v *View) Wait(ctx context.Context) error {
	for {
		v.mu.Lock()
		done := v.done
		seq := v.seq
		v.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-done:
		}

		v.mu.Lock()
		settled := seq == v.seq
		v.mu.Unlock()
		if settled {
			return nil
		}
	}
}
