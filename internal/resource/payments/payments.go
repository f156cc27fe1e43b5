// Package payments is the resource module for payment administration.
// Buyers report payments; admins confirm or reject pending ones. No other
// transition may be requested from the client.
package payments

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/uleam-conecta/conecta-go/internal/domain/payment"
	"github.com/uleam-conecta/conecta-go/internal/query"
	"github.com/uleam-conecta/conecta-go/internal/resource/orders"
	"github.com/uleam-conecta/conecta-go/internal/rest"
	"github.com/uleam-conecta/conecta-go/internal/validate"
	"github.com/uleam-conecta/conecta-go/pkg/logger"
)

// ResourcePayments is the cache resource name.
const ResourcePayments = "payments"

var paymentsEnvelope = query.Envelope{
	Items:      "payments",
	Total:      "pagination.totalItems",
	Page:       "pagination.currentPage",
	TotalPages: "pagination.totalPages",
}

// Module bundles the payment queries and mutations.
type Module struct {
	api     *rest.Client
	cache   *query.Cache
	session query.Session
	log     *logger.Logger
}

// New creates the payments module. Payment lists are per-user data, so the
// resource is dropped from the cache on a session change.
func New(api *rest.Client, cache *query.Cache, session query.Session, log *logger.Logger) *Module {
	if log == nil {
		log = logger.NewDefault("payments")
	}
	query.InvalidateOnSessionChange(session, cache, ResourcePayments)
	return &Module{api: api, cache: cache, session: session, log: log}
}

// Filter is the recognised payment list filter surface.
type Filter struct {
	Status payment.Status
	Page   int
	Limit  int
}

func (f Filter) values() url.Values {
	v := url.Values{}
	if f.Status != "" {
		v.Set("status", string(f.Status))
	}
	if f.Page > 0 {
		v.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		v.Set("limit", strconv.Itoa(f.Limit))
	}
	return v
}

// List returns payments visible to the signed-in user (all of them for an
// admin).
func (m *Module) List(ctx context.Context, f Filter) (query.Page[payment.Payment], error) {
	if err := query.RequireSession(m.session); err != nil {
		return query.EmptyPage[payment.Payment](), err
	}
	vals := f.values()
	body, err := m.cache.Resolve(ctx, query.Key{Resource: ResourcePayments, Filters: vals},
		func(ctx context.Context) ([]byte, error) {
			resp, err := m.api.Get(ctx, "/payments", vals)
			if err != nil {
				return nil, err
			}
			return resp.Body, nil
		})
	if err != nil {
		return query.EmptyPage[payment.Payment](), err
	}
	return query.DecodePage[payment.Payment](body, paymentsEnvelope)
}

// Get fetches one payment.
func (m *Module) Get(ctx context.Context, id string) (payment.Payment, error) {
	if err := query.RequireID(id); err != nil {
		return payment.Payment{}, err
	}
	if err := query.RequireSession(m.session); err != nil {
		return payment.Payment{}, err
	}
	vals := url.Values{"id": {id}}
	body, err := m.cache.Resolve(ctx, query.Key{Resource: ResourcePayments, Filters: vals},
		func(ctx context.Context) ([]byte, error) {
			resp, err := m.api.Get(ctx, "/payments/"+url.PathEscape(id), nil)
			if err != nil {
				return nil, err
			}
			return resp.Body, nil
		})
	if err != nil {
		return payment.Payment{}, err
	}
	return query.DecodeOne[payment.Payment](body, "payment")
}

// CreateInput is the report-a-payment form.
type CreateInput struct {
	OrderID              string
	Amount               float64
	Method               payment.Method
	TransactionReference string
}

// Validate checks the form.
func (in CreateInput) Validate() error {
	e := validate.FieldErrors{}
	validate.Required(e, "orderId", in.OrderID, "El pedido es obligatorio")
	validate.PositivePrice(e, "amount", in.Amount)
	if !in.Method.Valid() {
		e.Add("paymentMethod", "El método de pago no es válido")
	}
	// A bank transfer without its reference cannot be verified.
	if in.Method == payment.MethodTransfer {
		validate.Required(e, "transactionReference", in.TransactionReference,
			"La referencia de la transferencia es obligatoria")
	}
	return e.OrNil()
}

// Create reports a payment against an order. It enters the admin review
// queue as pending.
func (m *Module) Create(ctx context.Context, in CreateInput) (payment.Payment, error) {
	if err := in.Validate(); err != nil {
		return payment.Payment{}, err
	}
	if err := query.RequireSession(m.session); err != nil {
		return payment.Payment{}, err
	}
	body := map[string]any{
		"orderId":       in.OrderID,
		"amount":        in.Amount,
		"paymentMethod": string(in.Method),
	}
	if in.TransactionReference != "" {
		body["transactionReference"] = in.TransactionReference
	}
	resp, err := m.api.Do(ctx, "POST", "/payments", nil, body)
	if err != nil {
		return payment.Payment{}, fmt.Errorf("create payment: %w", err)
	}
	created, err := query.DecodeOne[payment.Payment](resp.Body, "payment")
	if err != nil {
		return payment.Payment{}, err
	}
	m.cache.Invalidate(ctx, ResourcePayments)
	m.log.Infof("payment %s reported for order %s", created.ID, in.OrderID)
	return created, nil
}

// Confirm marks a pending payment confirmed (admin action).
func (m *Module) Confirm(ctx context.Context, id string) error {
	return m.transition(ctx, id, payment.StatusConfirmed)
}

// Reject marks a pending payment rejected (admin action).
func (m *Module) Reject(ctx context.Context, id string) error {
	return m.transition(ctx, id, payment.StatusRejected)
}

func (m *Module) transition(ctx context.Context, id string, next payment.Status) error {
	if err := query.RequireID(id); err != nil {
		return err
	}
	if err := query.RequireSession(m.session); err != nil {
		return err
	}
	if !payment.StatusPending.CanTransitionTo(next) {
		return fmt.Errorf("payment transition to %s not permitted", next)
	}
	action := "confirm"
	if next == payment.StatusRejected {
		action = "reject"
	}
	_, err := m.api.Do(ctx, "POST", "/payments/"+url.PathEscape(id)+"/"+action, nil, nil)
	if err != nil {
		return fmt.Errorf("%s payment: %w", action, err)
	}
	// A confirmed payment advances the order's status server-side, so the
	// order history is invalidated alongside payments.
	m.cache.Invalidate(ctx, ResourcePayments, orders.ResourceOrders)
	m.log.Infof("payment %s %sed", id, action)
	return nil
}
