// Package dashboard composes several resource modules' queries into the
// admin dashboard metrics. Sections load and fail independently: one
// failing source degrades its own card, never the whole view.
package dashboard

import (
	"context"
	"sync"

	"github.com/uleam-conecta/conecta-go/internal/domain/order"
	"github.com/uleam-conecta/conecta-go/internal/domain/payment"
	"github.com/uleam-conecta/conecta-go/internal/resource/orders"
	"github.com/uleam-conecta/conecta-go/internal/resource/payments"
	"github.com/uleam-conecta/conecta-go/internal/resource/services"
	"github.com/uleam-conecta/conecta-go/internal/resource/users"
	"github.com/uleam-conecta/conecta-go/pkg/logger"
)

// Section is one dashboard card's state.
type Section[T any] struct {
	Data T
	Err  error
	// Loaded is true once the section has resolved at least once; its data
	// is not meaningful before that.
	Loaded  bool
	Loading bool
}

// OrdersSummary is the orders card.
type OrdersSummary struct {
	Total     int
	Pending   int
	Completed int
}

// PaymentsSummary is the payments card.
type PaymentsSummary struct {
	Pending   int
	Confirmed int
}

// Metrics is the full dashboard snapshot.
type Metrics struct {
	Users    Section[int]
	Services Section[int]
	Orders   Section[OrdersSummary]
	Payments Section[PaymentsSummary]
}

// Loading reports whether any section is still in flight.
func (m Metrics) Loading() bool {
	return m.Users.Loading || m.Services.Loading || m.Orders.Loading || m.Payments.Loading
}

// Ready reports whether every section has resolved at least once.
func (m Metrics) Ready() bool {
	return m.Users.Loaded && m.Services.Loaded && m.Orders.Loaded && m.Payments.Loaded
}

// Aggregator drives the dashboard metrics.
type Aggregator struct {
	users    *users.Module
	services *services.Module
	orders   *orders.Module
	payments *payments.Module
	log      *logger.Logger

	mu      sync.Mutex
	metrics Metrics
}

// New creates an aggregator.
func New(u *users.Module, s *services.Module, o *orders.Module, p *payments.Module, log *logger.Logger) *Aggregator {
	if log == nil {
		log = logger.NewDefault("dashboard")
	}
	return &Aggregator{users: u, services: s, orders: o, payments: p, log: log}
}

// Refresh loads every section concurrently and blocks until all have
// settled. A section's error is recorded on that section only; the others
// keep their data.
func (a *Aggregator) Refresh(ctx context.Context) Metrics {
	a.setLoading()

	var wg sync.WaitGroup
	wg.Add(4)

	go func() {
		defer wg.Done()
		page, err := a.users.List(ctx, users.Filter{Limit: 1})
		a.commitUsers(page.Total, err)
	}()
	go func() {
		defer wg.Done()
		page, err := a.services.Search(ctx, services.Filter{Limit: 1})
		a.commitServices(page.Total, err)
	}()
	go func() {
		defer wg.Done()
		a.commitOrders(a.loadOrders(ctx))
	}()
	go func() {
		defer wg.Done()
		a.commitPayments(a.loadPayments(ctx))
	}()

	wg.Wait()
	return a.State()
}

// State returns the current snapshot.
func (a *Aggregator) State() Metrics {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.metrics
}

func (a *Aggregator) loadOrders(ctx context.Context) (OrdersSummary, error) {
	var sum OrdersSummary
	total, err := a.orders.List(ctx, orders.Filter{Limit: 1})
	if err != nil {
		return sum, err
	}
	sum.Total = total.Total

	pending, err := a.orders.List(ctx, orders.Filter{Status: order.StatusPending, Limit: 1})
	if err != nil {
		return sum, err
	}
	sum.Pending = pending.Total

	completed, err := a.orders.List(ctx, orders.Filter{Status: order.StatusCompleted, Limit: 1})
	if err != nil {
		return sum, err
	}
	sum.Completed = completed.Total
	return sum, nil
}

func (a *Aggregator) loadPayments(ctx context.Context) (PaymentsSummary, error) {
	var sum PaymentsSummary
	pending, err := a.payments.List(ctx, payments.Filter{Status: payment.StatusPending, Limit: 1})
	if err != nil {
		return sum, err
	}
	sum.Pending = pending.Total

	confirmed, err := a.payments.List(ctx, payments.Filter{Status: payment.StatusConfirmed, Limit: 1})
	if err != nil {
		return sum, err
	}
	sum.Confirmed = confirmed.Total
	return sum, nil
}

func (a *Aggregator) setLoading() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.metrics.Users.Loading = true
	a.metrics.Services.Loading = true
	a.metrics.Orders.Loading = true
	a.metrics.Payments.Loading = true
}

func (a *Aggregator) commitUsers(total int, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.metrics.Users = commit(a.metrics.Users, total, err)
	if err != nil {
		a.log.Warnf("users section failed: %v", err)
	}
}

func (a *Aggregator) commitServices(total int, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.metrics.Services = commit(a.metrics.Services, total, err)
	if err != nil {
		a.log.Warnf("services section failed: %v", err)
	}
}

func (a *Aggregator) commitOrders(sum OrdersSummary, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.metrics.Orders = commit(a.metrics.Orders, sum, err)
	if err != nil {
		a.log.Warnf("orders section failed: %v", err)
	}
}

func (a *Aggregator) commitPayments(sum PaymentsSummary, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.metrics.Payments = commit(a.metrics.Payments, sum, err)
	if err != nil {
		a.log.Warnf("payments section failed: %v", err)
	}
}

// commit folds a query result into a section. On error the previous data is
// kept so a degraded card can still show its last good value.
func commit[T any](s Section[T], data T, err error) Section[T] {
	s.Loading = false
	if err != nil {
		s.Err = err
		return s
	}
	s.Data = data
	s.Err = nil
	s.Loaded = true
	return s
}
