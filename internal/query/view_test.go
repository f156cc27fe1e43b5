package query

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"
)

func TestView_StaleWhileRevalidate(t *testing.T) {
	cache := New(nil)
	view := NewView(cache, "services")
	release := make(chan struct{})

	view.Set(context.Background(), url.Values{"page": {"1"}}, func(ctx context.Context) ([]byte, error) {
		return []byte(`page-1`), nil
	})
	if err := view.Wait(context.Background()); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if res := view.State(); res.Status != StatusSuccess || string(res.Data) != `page-1` {
		t.Fatalf("initial state = %+v", res)
	}

	// Second filter set: the fetch blocks, the previous page must stay
	// visible and be flagged stale.
	view.Set(context.Background(), url.Values{"page": {"2"}}, func(ctx context.Context) ([]byte, error) {
		<-release
		return []byte(`page-2`), nil
	})

	res := view.State()
	if res.Status != StatusLoading {
		t.Fatalf("status during refetch = %v, want loading", res.Status)
	}
	if string(res.Data) != `page-1` || !res.Stale {
		t.Fatalf("expected stale page-1 retained during refetch, got %+v", res)
	}

	close(release)
	if err := view.Wait(context.Background()); err != nil {
		t.Fatalf("wait: %v", err)
	}
	res = view.State()
	if res.Status != StatusSuccess || string(res.Data) != `page-2` || res.Stale {
		t.Fatalf("final state = %+v", res)
	}
}

func TestView_OutOfOrderResponsesDiscarded(t *testing.T) {
	cache := New(nil)
	view := NewView(cache, "services")
	slowRelease := make(chan struct{})
	slowStarted := make(chan struct{})

	// First request is slow.
	view.Set(context.Background(), url.Values{"q": {"slow"}}, func(ctx context.Context) ([]byte, error) {
		close(slowStarted)
		<-slowRelease
		return []byte(`slow`), nil
	})
	<-slowStarted

	// Second request supersedes it and lands first.
	view.Set(context.Background(), url.Values{"q": {"fast"}}, func(ctx context.Context) ([]byte, error) {
		return []byte(`fast`), nil
	})
	if err := view.Wait(context.Background()); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if res := view.State(); string(res.Data) != `fast` {
		t.Fatalf("state before slow response = %+v", res)
	}

	// Now the first response arrives late. It must not displace the data.
	close(slowRelease)
	time.Sleep(50 * time.Millisecond)
	res := view.State()
	if string(res.Data) != `fast` || res.Status != StatusSuccess {
		t.Fatalf("late response displaced current data: %+v", res)
	}
}

func TestView_ErrorKeepsPreviousData(t *testing.T) {
	cache := New(nil)
	view := NewView(cache, "orders")
	boom := errors.New("boom")

	view.Set(context.Background(), url.Values{"page": {"1"}}, func(ctx context.Context) ([]byte, error) {
		return []byte(`orders`), nil
	})
	if err := view.Wait(context.Background()); err != nil {
		t.Fatalf("wait: %v", err)
	}

	cache.Invalidate(context.Background(), "orders")
	view.Refresh(context.Background(), func(ctx context.Context) ([]byte, error) {
		return nil, boom
	})
	if err := view.Wait(context.Background()); err != nil {
		t.Fatalf("wait: %v", err)
	}

	res := view.State()
	if res.Status != StatusError || !errors.Is(res.Err, boom) {
		t.Fatalf("state = %+v, want error", res)
	}
	if string(res.Data) != `orders` || !res.Stale {
		t.Fatalf("failed refresh dropped previous data: %+v", res)
	}
}

func TestView_CancellationIsSilent(t *testing.T) {
	cache := New(nil)
	view := NewView(cache, "services")

	view.Set(context.Background(), url.Values{"page": {"1"}}, func(ctx context.Context) ([]byte, error) {
		return []byte(`kept`), nil
	})
	if err := view.Wait(context.Background()); err != nil {
		t.Fatalf("wait: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	view.Set(ctx, url.Values{"page": {"2"}}, func(ctx context.Context) ([]byte, error) {
		return nil, ctx.Err()
	})
	if err := view.Wait(context.Background()); err != nil {
		t.Fatalf("wait: %v", err)
	}

	// Cancellation is a consumer walking away, not a failure state.
	res := view.State()
	if res.Status == StatusError {
		t.Fatalf("cancellation surfaced as error: %+v", res)
	}
	if string(res.Data) != `kept` {
		t.Fatalf("cancellation dropped data: %+v", res)
	}
}
