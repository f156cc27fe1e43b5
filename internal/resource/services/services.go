// Package services is the resource module for marketplace listings: search
// and detail queries, the seller's own listings, and the create/update/
// toggle/delete mutations with their cache invalidation.
package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/uleam-conecta/conecta-go/internal/domain/catalog"
	"github.com/uleam-conecta/conecta-go/internal/domain/review"
	"github.com/uleam-conecta/conecta-go/internal/query"
	"github.com/uleam-conecta/conecta-go/internal/rest"
	"github.com/uleam-conecta/conecta-go/pkg/logger"
)

// Cache resource names owned by this module.
const (
	ResourceServices   = "services"
	ResourceMyServices = "my-services"
	ResourceCategories = "categories"
	ResourceReviews    = "reviews"
)

// Envelope shapes are not uniform across the API; each resource declares its
// own mapping and the generic decoder does the rest.
var (
	servicesEnvelope = query.Envelope{
		Items:      "services",
		Total:      "pagination.totalItems",
		Page:       "pagination.currentPage",
		TotalPages: "pagination.totalPages",
	}
	categoriesEnvelope = query.Envelope{Items: "categories"}
	reviewsEnvelope = query.Envelope{
		Items:      "data.items",
		Total:      "data.total",
		Page:       "data.page",
		TotalPages: "data.totalPages",
	}
)

// Module bundles the listing queries and mutations.
type Module struct {
	api     *rest.Client
	cache   *query.Cache
	session query.Session
	log     *logger.Logger
}

// New creates the services module. The seller's own listings are per-user
// data, so that resource is dropped from the cache on a session change.
func New(api *rest.Client, cache *query.Cache, session query.Session, log *logger.Logger) *Module {
	if log == nil {
		log = logger.NewDefault("services")
	}
	query.InvalidateOnSessionChange(session, cache, ResourceMyServices)
	return &Module{api: api, cache: cache, session: session, log: log}
}

// Filter is the recognised search filter surface. Zero values are omitted
// from the outgoing request: "no filter" and "filter cleared" are
// indistinguishable to the server.
type Filter struct {
	Search         string
	CategoryID     string
	FacultyID      string
	CareerID       string
	MinPrice       float64
	MaxPrice       float64
	MinRating      float64
	HasReviews     bool
	VerifiedSeller bool
	SortBy         catalog.SortField
	SortOrder      catalog.SortOrder
	Page           int
	Limit          int
}

func (f Filter) values() url.Values {
	v := url.Values{}
	if f.Search != "" {
		v.Set("search", f.Search)
	}
	if f.CategoryID != "" {
		v.Set("categoryId", f.CategoryID)
	}
	if f.FacultyID != "" {
		v.Set("facultyId", f.FacultyID)
	}
	if f.CareerID != "" {
		v.Set("careerId", f.CareerID)
	}
	if f.MinPrice > 0 {
		v.Set("minPrice", formatPrice(f.MinPrice))
	}
	if f.MaxPrice > 0 {
		v.Set("maxPrice", formatPrice(f.MaxPrice))
	}
	if f.MinRating > 0 {
		v.Set("rating", strconv.FormatFloat(f.MinRating, 'f', -1, 64))
	}
	if f.HasReviews {
		v.Set("hasReviews", "true")
	}
	if f.VerifiedSeller {
		v.Set("isVerifiedSeller", "true")
	}
	if f.SortBy != "" && f.SortBy.Valid() {
		v.Set("sortBy", string(f.SortBy))
	}
	if f.SortOrder != "" && f.SortOrder.Valid() {
		v.Set("sortOrder", string(f.SortOrder))
	}
	if f.Page > 0 {
		v.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		v.Set("limit", strconv.Itoa(f.Limit))
	}
	return v
}

// searchKey marks advanced-search cache entries apart from plain list
// entries with the same filters. Both stay under the services resource, so
// one invalidation covers both.
func searchKey(vals url.Values) url.Values {
	key := url.Values{}
	for k, v := range vals {
		key[k] = v
	}
	key.Set("advanced", "true")
	return key
}

// Search runs the advanced listing search, resolving from cache when a
// structurally equal filter was fetched before.
func (m *Module) Search(ctx context.Context, f Filter) (query.Page[catalog.Service], error) {
	vals := f.values()
	body, err := m.cache.Resolve(ctx, query.Key{Resource: ResourceServices, Filters: searchKey(vals)},
		func(ctx context.Context) ([]byte, error) {
			resp, err := m.api.Get(ctx, "/services/search/advanced", vals)
			if err != nil {
				return nil, err
			}
			return resp.Body, nil
		})
	if err != nil {
		return query.EmptyPage[catalog.Service](), err
	}
	return query.DecodePage[catalog.Service](body, servicesEnvelope)
}

// List returns the plain listing collection. Search hits the advanced
// endpoint; List is the cheap path for browse screens that only page and
// filter by category.
func (m *Module) List(ctx context.Context, f Filter) (query.Page[catalog.Service], error) {
	vals := f.values()
	body, err := m.cache.Resolve(ctx, query.Key{Resource: ResourceServices, Filters: vals},
		func(ctx context.Context) ([]byte, error) {
			resp, err := m.api.Get(ctx, "/services", vals)
			if err != nil {
				return nil, err
			}
			return resp.Body, nil
		})
	if err != nil {
		return query.EmptyPage[catalog.Service](), err
	}
	return query.DecodePage[catalog.Service](body, servicesEnvelope)
}

// Get fetches a single listing. An empty or sentinel id is a precondition
// failure: no request is issued and ErrInvalidID is returned, which is
// distinguishable from both not-found and an empty success.
func (m *Module) Get(ctx context.Context, id string) (catalog.Service, error) {
	if err := query.RequireID(id); err != nil {
		return catalog.Service{}, err
	}
	vals := url.Values{"id": {id}}
	body, err := m.cache.Resolve(ctx, query.Key{Resource: ResourceServices, Filters: vals},
		func(ctx context.Context) ([]byte, error) {
			resp, err := m.api.Get(ctx, "/services/"+url.PathEscape(id), nil)
			if err != nil {
				return nil, err
			}
			return resp.Body, nil
		})
	if err != nil {
		return catalog.Service{}, err
	}
	return query.DecodeOne[catalog.Service](body, "service")
}

// Mine lists the signed-in seller's own listings. Disabled without a valid
// session.
func (m *Module) Mine(ctx context.Context) (query.Page[catalog.Service], error) {
	if err := query.RequireSession(m.session); err != nil {
		return query.EmptyPage[catalog.Service](), err
	}
	body, err := m.cache.Resolve(ctx, query.Key{Resource: ResourceMyServices},
		func(ctx context.Context) ([]byte, error) {
			resp, err := m.api.Get(ctx, "/services/my-services", nil)
			if err != nil {
				return nil, err
			}
			return resp.Body, nil
		})
	if err != nil {
		return query.EmptyPage[catalog.Service](), err
	}
	return query.DecodePage[catalog.Service](body, servicesEnvelope)
}

// Categories lists the browse categories.
func (m *Module) Categories(ctx context.Context) ([]catalog.Category, error) {
	body, err := m.cache.Resolve(ctx, query.Key{Resource: ResourceCategories},
		func(ctx context.Context) ([]byte, error) {
			resp, err := m.api.Get(ctx, "/categories", nil)
			if err != nil {
				return nil, err
			}
			return resp.Body, nil
		})
	if err != nil {
		return nil, err
	}
	page, err := query.DecodePage[catalog.Category](body, categoriesEnvelope)
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

// Reviews lists the reviews of a service.
func (m *Module) Reviews(ctx context.Context, serviceID string) (query.Page[review.Review], error) {
	if err := query.RequireID(serviceID); err != nil {
		return query.EmptyPage[review.Review](), err
	}
	vals := url.Values{"serviceId": {serviceID}}
	body, err := m.cache.Resolve(ctx, query.Key{Resource: ResourceReviews, Filters: vals},
		func(ctx context.Context) ([]byte, error) {
			resp, err := m.api.Get(ctx, "/reviews", vals)
			if err != nil {
				return nil, err
			}
			return resp.Body, nil
		})
	if err != nil {
		return query.EmptyPage[review.Review](), err
	}
	return query.DecodePage[review.Review](body, reviewsEnvelope)
}

// Create publishes a new listing. The payload carries image files, so it is
// serialised as multipart form data. On success the general listing cache
// and the seller's own listing cache are invalidated; the next read of
// either refetches.
func (m *Module) Create(ctx context.Context, in CreateInput) (catalog.Service, error) {
	if err := in.Validate(); err != nil {
		return catalog.Service{}, err
	}
	if err := query.RequireSession(m.session); err != nil {
		return catalog.Service{}, err
	}

	fields := url.Values{}
	fields.Set("title", in.Title)
	fields.Set("description", in.Description)
	fields.Set("price", formatPrice(in.Price))
	fields.Set("categoryId", in.CategoryID)
	fields.Set("facultyId", in.FacultyID)
	fields.Set("careerId", in.CareerID)

	resp, err := m.api.DoMultipart(ctx, "POST", "/services", fields, in.Images)
	if err != nil {
		return catalog.Service{}, fmt.Errorf("create service: %w", err)
	}

	created, err := query.DecodeOne[catalog.Service](resp.Body, "service")
	if err != nil {
		return catalog.Service{}, err
	}
	m.cache.Invalidate(ctx, ResourceServices, ResourceMyServices)
	m.log.Infof("service %s created", created.ID)
	return created, nil
}

// Update applies a partial update. Retained image URLs and new files may be
// mixed; serialisation is multipart only when new files are attached, JSON
// otherwise.
func (m *Module) Update(ctx context.Context, id string, in UpdateInput) (catalog.Service, error) {
	if err := query.RequireID(id); err != nil {
		return catalog.Service{}, err
	}
	if err := in.Validate(); err != nil {
		return catalog.Service{}, err
	}
	if err := query.RequireSession(m.session); err != nil {
		return catalog.Service{}, err
	}

	path := "/services/" + url.PathEscape(id)
	var resp *rest.Response
	var err error
	if len(in.NewImages) > 0 {
		resp, err = m.api.DoMultipart(ctx, "PATCH", path, in.fields(), in.NewImages)
	} else {
		resp, err = m.api.Do(ctx, "PATCH", path, nil, in.body())
	}
	if err != nil {
		return catalog.Service{}, fmt.Errorf("update service: %w", err)
	}

	updated, err := query.DecodeOne[catalog.Service](resp.Body, "service")
	if err != nil {
		return catalog.Service{}, err
	}
	m.cache.Invalidate(ctx, ResourceServices, ResourceMyServices)
	m.log.Infof("service %s updated", id)
	return updated, nil
}

// ToggleActive flips the soft-deactivation flag.
func (m *Module) ToggleActive(ctx context.Context, id string) error {
	if err := query.RequireID(id); err != nil {
		return err
	}
	if err := query.RequireSession(m.session); err != nil {
		return err
	}
	_, err := m.api.Do(ctx, "POST", "/services/"+url.PathEscape(id)+"/toggle-active", nil, nil)
	if err != nil {
		return fmt.Errorf("toggle service: %w", err)
	}
	m.cache.Invalidate(ctx, ResourceServices, ResourceMyServices)
	return nil
}

// Delete removes a listing permanently.
func (m *Module) Delete(ctx context.Context, id string) error {
	if err := query.RequireID(id); err != nil {
		return err
	}
	if err := query.RequireSession(m.session); err != nil {
		return err
	}
	_, err := m.api.Do(ctx, "DELETE", "/services/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return fmt.Errorf("delete service: %w", err)
	}
	m.cache.Invalidate(ctx, ResourceServices, ResourceMyServices)
	m.log.Infof("service %s deleted", id)
	return nil
}

// CreateReview posts a review. Listings are invalidated too because their
// rating aggregates change server-side.
func (m *Module) CreateReview(ctx context.Context, in ReviewInput) (review.Review, error) {
	if err := in.Validate(); err != nil {
		return review.Review{}, err
	}
	if err := query.RequireSession(m.session); err != nil {
		return review.Review{}, err
	}
	resp, err := m.api.Do(ctx, "POST", "/reviews", nil, map[string]any{
		"serviceId": in.ServiceID,
		"rating":    in.Rating,
		"comment":   in.Comment,
	})
	if err != nil {
		return review.Review{}, fmt.Errorf("create review: %w", err)
	}
	created, err := query.DecodeOne[review.Review](resp.Body, "review")
	if err != nil {
		return review.Review{}, err
	}
	m.cache.Invalidate(ctx, ResourceReviews, ResourceServices)
	return created, nil
}

func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', 2, 64)
}
