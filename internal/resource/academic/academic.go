// Package academic is the resource module for the faculty/career taxonomy.
// Careers are always queried scoped to a faculty, so a stale career list for
// a previously selected faculty can never be shown.
package academic

import (
	"context"
	"net/url"

	"github.com/uleam-conecta/conecta-go/internal/domain/academic"
	"github.com/uleam-conecta/conecta-go/internal/query"
	"github.com/uleam-conecta/conecta-go/internal/rest"
	"github.com/uleam-conecta/conecta-go/pkg/logger"
)

// Cache resource names owned by this module.
const (
	ResourceFaculties = "faculties"
	ResourceCareers   = "careers"
)

// Faculties and careers come back as bare arrays, no envelope.
var bareEnvelope = query.Envelope{Items: "@this"}

// Module bundles the taxonomy queries.
type Module struct {
	api   *rest.Client
	cache *query.Cache
	log   *logger.Logger
}

// New creates the academic module.
func New(api *rest.Client, cache *query.Cache, log *logger.Logger) *Module {
	if log == nil {
		log = logger.NewDefault("academic")
	}
	return &Module{api: api, cache: cache, log: log}
}

// Faculties lists all faculties.
func (m *Module) Faculties(ctx context.Context) ([]academic.Faculty, error) {
	body, err := m.cache.Resolve(ctx, query.Key{Resource: ResourceFaculties},
		func(ctx context.Context) ([]byte, error) {
			resp, err := m.api.Get(ctx, "/faculties", nil)
			if err != nil {
				return nil, err
			}
			return resp.Body, nil
		})
	if err != nil {
		return nil, err
	}
	page, err := query.DecodePage[academic.Faculty](body, bareEnvelope)
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

// Careers lists the careers of one faculty. With no faculty selected it
// returns an empty list without issuing a request; that is a valid state of
// the form, not an error. The cache key carries the faculty id, so changing
// faculty is a different entry and never serves the previous faculty's list.
func (m *Module) Careers(ctx context.Context, facultyID string) ([]academic.Career, error) {
	if facultyID == "" {
		return []academic.Career{}, nil
	}
	vals := url.Values{"facultyId": {facultyID}}
	body, err := m.cache.Resolve(ctx, query.Key{Resource: ResourceCareers, Filters: vals},
		func(ctx context.Context) ([]byte, error) {
			resp, err := m.api.Get(ctx, "/careers", vals)
			if err != nil {
				return nil, err
			}
			return resp.Body, nil
		})
	if err != nil {
		return nil, err
	}
	page, err := query.DecodePage[academic.Career](body, bareEnvelope)
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

// CareersFor resolves the career options for a form selection: the option
// set is always the selected faculty's, and an unselected faculty yields no
// options.
func (m *Module) CareersFor(ctx context.Context, sel *academic.Selection) ([]academic.Career, error) {
	return m.Careers(ctx, sel.FacultyID)
}
