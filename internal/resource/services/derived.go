package services

import (
	"context"
	"net/url"

	"github.com/uleam-conecta/conecta-go/internal/domain/order"
	"github.com/uleam-conecta/conecta-go/internal/domain/review"
	"github.com/uleam-conecta/conecta-go/internal/query"
	"github.com/uleam-conecta/conecta-go/internal/resource/orders"
)

// CanReview decides whether the signed-in user may review a service. It is
// a derived query: the review check only runs once the completed-order
// history has resolved, because eligibility depends on it.
func (m *Module) CanReview(ctx context.Context, userID, serviceID string) (bool, error) {
	if err := query.RequireID(serviceID); err != nil {
		return false, err
	}
	if err := query.RequireID(userID); err != nil {
		return false, err
	}
	if err := query.RequireSession(m.session); err != nil {
		return false, err
	}

	// Dependency: at least one completed order for this service.
	vals := url.Values{"serviceId": {serviceID}, "status": {string(order.StatusCompleted)}}
	body, err := m.cache.Resolve(ctx, query.Key{Resource: orders.ResourceOrders, Filters: vals},
		func(ctx context.Context) ([]byte, error) {
			resp, err := m.api.Get(ctx, "/orders", vals)
			if err != nil {
				return nil, err
			}
			return resp.Body, nil
		})
	if err != nil {
		return false, err
	}
	completed, err := query.DecodePage[order.Order](body, orders.Envelope)
	if err != nil {
		return false, err
	}
	if len(completed.Items) == 0 {
		return false, nil
	}

	// Dependent step: no second review for the same service.
	existing, err := m.Reviews(ctx, serviceID)
	if err != nil {
		return false, err
	}
	return !reviewedBy(existing.Items, userID), nil
}

// reviewedBy reports whether reviews contains one by the given user.
func reviewedBy(reviews []review.Review, userID string) bool {
	for _, r := range reviews {
		if r.ReviewerID == userID {
			return true
		}
	}
	return false
}
