// Package orders is the resource module for purchase orders. Order status
// is server-owned: the client lists, creates and cancels, nothing else.
package orders

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/uleam-conecta/conecta-go/internal/domain/order"
	"github.com/uleam-conecta/conecta-go/internal/query"
	"github.com/uleam-conecta/conecta-go/internal/rest"
	"github.com/uleam-conecta/conecta-go/internal/validate"
	"github.com/uleam-conecta/conecta-go/pkg/logger"
)

// ResourceOrders is the cache resource name.
const ResourceOrders = "orders"

// Envelope describes the order list response shape. Other modules that read
// the order history (derived queries) decode with the same paths.
var Envelope = query.Envelope{
	Items:      "data.items",
	Total:      "data.total",
	Page:       "data.page",
	TotalPages: "data.totalPages",
}

// Module bundles the order queries and mutations.
type Module struct {
	api     *rest.Client
	cache   *query.Cache
	session query.Session
	log     *logger.Logger
}

// New creates the orders module. Order lists are per-user data, so the
// resource is dropped from the cache on a session change.
func New(api *rest.Client, cache *query.Cache, session query.Session, log *logger.Logger) *Module {
	if log == nil {
		log = logger.NewDefault("orders")
	}
	query.InvalidateOnSessionChange(session, cache, ResourceOrders)
	return &Module{api: api, cache: cache, session: session, log: log}
}

// Role selects which side of the user's orders to list.
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
)

// Filter is the recognised order list filter surface.
type Filter struct {
	Role   Role
	Status order.Status
	Page   int
	Limit  int
}

func (f Filter) values() url.Values {
	v := url.Values{}
	if f.Role != "" {
		v.Set("role", string(f.Role))
	}
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

// List returns the signed-in user's orders.
func (m *Module) List(ctx context.Context, f Filter) (query.Page[order.Order], error) {
	if err := query.RequireSession(m.session); err != nil {
		return query.EmptyPage[order.Order](), err
	}
	vals := f.values()
	body, err := m.cache.Resolve(ctx, query.Key{Resource: ResourceOrders, Filters: vals},
		func(ctx context.Context) ([]byte, error) {
			resp, err := m.api.Get(ctx, "/orders", vals)
			if err != nil {
				return nil, err
			}
			return resp.Body, nil
		})
	if err != nil {
		return query.EmptyPage[order.Order](), err
	}
	return query.DecodePage[order.Order](body, Envelope)
}

// Get fetches one order.
func (m *Module) Get(ctx context.Context, id string) (order.Order, error) {
	if err := query.RequireID(id); err != nil {
		return order.Order{}, err
	}
	if err := query.RequireSession(m.session); err != nil {
		return order.Order{}, err
	}
	vals := url.Values{"id": {id}}
	body, err := m.cache.Resolve(ctx, query.Key{Resource: ResourceOrders, Filters: vals},
		func(ctx context.Context) ([]byte, error) {
			resp, err := m.api.Get(ctx, "/orders/"+url.PathEscape(id), nil)
			if err != nil {
				return nil, err
			}
			return resp.Body, nil
		})
	if err != nil {
		return order.Order{}, err
	}
	return query.DecodeOne[order.Order](body, "order")
}

// CreateInput is the order form.
type CreateInput struct {
	ServiceID string
	Message   string
}

// Validate checks the form.
func (in CreateInput) Validate() error {
	e := validate.FieldErrors{}
	validate.Required(e, "serviceId", in.ServiceID, "El servicio es obligatorio")
	return e.OrNil()
}

// Create places an order for a service.
func (m *Module) Create(ctx context.Context, in CreateInput) (order.Order, error) {
	if err := in.Validate(); err != nil {
		return order.Order{}, err
	}
	if err := query.RequireSession(m.session); err != nil {
		return order.Order{}, err
	}
	body := map[string]any{"serviceId": in.ServiceID}
	if in.Message != "" {
		body["message"] = in.Message
	}
	resp, err := m.api.Do(ctx, "POST", "/orders", nil, body)
	if err != nil {
		return order.Order{}, fmt.Errorf("create order: %w", err)
	}
	created, err := query.DecodeOne[order.Order](resp.Body, "order")
	if err != nil {
		return order.Order{}, err
	}
	m.cache.Invalidate(ctx, ResourceOrders)
	m.log.Infof("order %s created", created.ID)
	return created, nil
}

// Cancel requests cancellation of an order.
func (m *Module) Cancel(ctx context.Context, id string) error {
	if err := query.RequireID(id); err != nil {
		return err
	}
	if err := query.RequireSession(m.session); err != nil {
		return err
	}
	_, err := m.api.Do(ctx, "POST", "/orders/"+url.PathEscape(id)+"/cancel", nil, nil)
	if err != nil {
		return fmt.Errorf("cancel order: %w", err)
	}
	m.cache.Invalidate(ctx, ResourceOrders)
	m.log.Infof("order %s cancelled", id)
	return nil
}
