package dashboard

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/uleam-conecta/conecta-go/internal/query"
	"github.com/uleam-conecta/conecta-go/internal/resource/orders"
	"github.com/uleam-conecta/conecta-go/internal/resource/payments"
	"github.com/uleam-conecta/conecta-go/internal/resource/services"
	"github.com/uleam-conecta/conecta-go/internal/resource/users"
	"github.com/uleam-conecta/conecta-go/internal/rest"
	"github.com/uleam-conecta/conecta-go/internal/session"
)

// scripted API whose /users endpoint can be switched to failing.
type apiServer struct {
	srv *httptest.Server

	mu        sync.Mutex
	usersDown bool
}

func (a *apiServer) setUsersDown(down bool) {
	a.mu.Lock()
	a.usersDown = down
	a.mu.Unlock()
}

func (a *apiServer) handle(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/users":
		a.mu.Lock()
		down := a.usersDown
		a.mu.Unlock()
		if down {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"message":"users unavailable"}`))
			return
		}
		w.Write([]byte(`{"data":{"items":[{"id":"u1"}],"total":42,"page":1,"totalPages":42}}`))
	case "/services/search/advanced":
		w.Write([]byte(`{"services":[{"id":"s1"}],"pagination":{"totalItems":17,"currentPage":1,"totalPages":17}}`))
	case "/orders":
		switch r.URL.Query().Get("status") {
		case "pending":
			w.Write([]byte(`{"data":{"items":[{"id":"o1"}],"total":3,"page":1,"totalPages":3}}`))
		case "completed":
			w.Write([]byte(`{"data":{"items":[{"id":"o2"}],"total":5,"page":1,"totalPages":5}}`))
		default:
			w.Write([]byte(`{"data":{"items":[{"id":"o3"}],"total":9,"page":1,"totalPages":9}}`))
		}
	case "/payments":
		if r.URL.Query().Get("status") == "confirmed" {
			w.Write([]byte(`{"payments":[{"id":"p1"}],"pagination":{"totalItems":6,"currentPage":1,"totalPages":6}}`))
			return
		}
		w.Write([]byte(`{"payments":[{"id":"p2"}],"pagination":{"totalItems":2,"currentPage":1,"totalPages":2}}`))
	default:
		http.NotFound(w, r)
	}
}

func newTestAggregator(t *testing.T) (*Aggregator, *apiServer, *query.Cache) {
	t.Helper()
	a := &apiServer{}
	a.srv = httptest.NewServer(http.HandlerFunc(a.handle))
	t.Cleanup(a.srv.Close)

	sess := session.NewMemory()
	sess.SetToken("tok")
	api, err := rest.New(rest.Config{
		BaseURL: a.srv.URL,
		Tokens:  sess,
		Retry:   rest.RetryConfig{MaxAttempts: 1, RetryableStatusCodes: []int{503}},
	})
	if err != nil {
		t.Fatalf("rest client: %v", err)
	}
	cache := query.New(nil)

	agg := New(
		users.New(api, cache, sess, nil),
		services.New(api, cache, sess, nil),
		orders.New(api, cache, sess, nil),
		payments.New(api, cache, sess, nil),
		nil,
	)
	return agg, a, cache
}

func TestRefresh(t *testing.T) {
	agg, _, _ := newTestAggregator(t)

	m := agg.Refresh(context.Background())
	if !m.Ready() || m.Loading() {
		t.Fatalf("metrics not settled: %+v", m)
	}
	if m.Users.Data != 42 {
		t.Errorf("users = %d", m.Users.Data)
	}
	if m.Services.Data != 17 {
		t.Errorf("services = %d", m.Services.Data)
	}
	if m.Orders.Data != (OrdersSummary{Total: 9, Pending: 3, Completed: 5}) {
		t.Errorf("orders = %+v", m.Orders.Data)
	}
	if m.Payments.Data != (PaymentsSummary{Pending: 2, Confirmed: 6}) {
		t.Errorf("payments = %+v", m.Payments.Data)
	}
}

func TestRefresh_SectionFailureIsIsolated(t *testing.T) {
	agg, a, _ := newTestAggregator(t)
	a.setUsersDown(true)

	m := agg.Refresh(context.Background())
	if m.Users.Err == nil {
		t.Fatal("users section has no error")
	}
	if m.Users.Loaded {
		t.Fatal("never-resolved section marked loaded")
	}
	// The other sections resolved normally.
	if m.Services.Err != nil || m.Orders.Err != nil || m.Payments.Err != nil {
		t.Fatalf("healthy sections carry errors: %+v", m)
	}
	if m.Services.Data != 17 || m.Orders.Data.Total != 9 {
		t.Fatalf("healthy sections missing data: %+v", m)
	}
}

func TestRefresh_FailedSectionKeepsPreviousData(t *testing.T) {
	agg, a, cache := newTestAggregator(t)

	m := agg.Refresh(context.Background())
	if m.Users.Data != 42 {
		t.Fatalf("users = %d", m.Users.Data)
	}

	// The source goes down; the cached entry is invalidated so the next
	// refresh actually refetches and fails.
	a.setUsersDown(true)
	cache.Invalidate(context.Background(), users.ResourceUsers)

	m = agg.Refresh(context.Background())
	if m.Users.Err == nil {
		t.Fatal("users section has no error after outage")
	}
	if m.Users.Data != 42 {
		t.Fatalf("degraded section lost its last good value: %d", m.Users.Data)
	}
	if !m.Users.Loaded {
		t.Fatal("previously loaded section lost its loaded flag")
	}
}
