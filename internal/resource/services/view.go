package services

import (
	"context"

	"github.com/uleam-conecta/conecta-go/internal/domain/catalog"
	"github.com/uleam-conecta/conecta-go/internal/query"
)

// SearchState is a typed snapshot of a live search view.
type SearchState struct {
	Status query.Status
	Page   query.Page[catalog.Service]
	Err    error
	// Stale means Page still shows the previous filter set's results while
	// the current request is in flight.
	Stale bool
}

// SearchView is a live, filterable search: changing the filter keeps the
// previous results on screen until the new response lands, an earlier slower
// response can never overwrite a later one, and a response arriving after
// the consumer is gone is silently dropped.
type SearchView struct {
	m    *Module
	view *query.View
}

// Watch creates a live search view.
func (m *Module) Watch() *SearchView {
	return &SearchView{m: m, view: query.NewView(m.cache, ResourceServices)}
}

// SetFilter applies a new filter object and starts the fetch.
func (sv *SearchView) SetFilter(ctx context.Context, f Filter) {
	vals := f.values()
	sv.view.Set(ctx, searchKey(vals), func(ctx context.Context) ([]byte, error) {
		resp, err := sv.m.api.Get(ctx, "/services/search/advanced", vals)
		if err != nil {
			return nil, err
		}
		return resp.Body, nil
	})
}

// State returns the current snapshot.
func (sv *SearchView) State() SearchState {
	res := sv.view.State()
	state := SearchState{Status: res.Status, Err: res.Err, Stale: res.Stale, Page: query.EmptyPage[catalog.Service]()}
	if res.Data != nil {
		page, err := query.DecodePage[catalog.Service](res.Data, servicesEnvelope)
		if err != nil {
			state.Err = err
			return state
		}
		state.Page = page
	}
	return state
}

// Wait blocks until the latest filter change has settled.
func (sv *SearchView) Wait(ctx context.Context) error {
	return sv.view.Wait(ctx)
}
