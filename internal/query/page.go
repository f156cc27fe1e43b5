package query

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// Page is the uniform paginated-list shape every list query resolves to,
// independent of the envelope the server used.
type Page[T any] struct {
	Items      []T `json:"items"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	TotalPages int `json:"totalPages"`
}

// Envelope declares where a resource's server response keeps its payload.
// The fields are gjson paths; "@this" means the whole body. Each resource
// declares one Envelope instead of writing bespoke decoding code, because
// the wrapper shape is not uniform across the API ("services" +
// "pagination.totalItems" on one resource, "data.items" + "data.total" on
// another).
type Envelope struct {
	Items      string
	Total      string
	Page       string
	TotalPages string
}

// DecodePage applies an envelope to a raw list response.
func DecodePage[T any](body []byte, env Envelope) (Page[T], error) {
	var page Page[T]

	items := gjson.GetBytes(body, env.Items)
	if !items.Exists() {
		// An absent items field is an empty page, not an error: the
		// server omits the array when there are no results.
		return page, nil
	}
	if !items.IsArray() {
		return page, fmt.Errorf("envelope path %q is not an array", env.Items)
	}
	if err := json.Unmarshal([]byte(items.Raw), &page.Items); err != nil {
		return page, fmt.Errorf("decode items: %w", err)
	}

	page.Total = intAt(body, env.Total, len(page.Items))
	page.Page = intAt(body, env.Page, 1)
	page.TotalPages = intAt(body, env.TotalPages, 1)
	return page, nil
}

// DecodeOne extracts a single entity, optionally nested under a gjson path.
func DecodeOne[T any](body []byte, path string) (T, error) {
	var entity T
	raw := body
	if path != "" && path != "@this" {
		res := gjson.GetBytes(body, path)
		if !res.Exists() {
			return entity, fmt.Errorf("envelope path %q missing from response", path)
		}
		raw = []byte(res.Raw)
	}
	if err := json.Unmarshal(raw, &entity); err != nil {
		return entity, fmt.Errorf("decode entity: %w", err)
	}
	return entity, nil
}

// EmptyPage returns the zero page with non-nil items.
func EmptyPage[T any]() Page[T] {
	return Page[T]{Items: []T{}, Page: 1, TotalPages: 1}
}

func intAt(body []byte, path string, fallback int) int {
	if path == "" {
		return fallback
	}
	res := gjson.GetBytes(body, path)
	if !res.Exists() {
		return fallback
	}
	return int(res.Int())
}
