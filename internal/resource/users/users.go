// Package users is the resource module for accounts: own profile, public
// profiles and the admin user list.
package users

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/uleam-conecta/conecta-go/internal/domain/user"
	"github.com/uleam-conecta/conecta-go/internal/query"
	"github.com/uleam-conecta/conecta-go/internal/rest"
	"github.com/uleam-conecta/conecta-go/internal/validate"
	"github.com/uleam-conecta/conecta-go/pkg/logger"
)

// ResourceUsers is the cache resource name.
const ResourceUsers = "users"

var usersEnvelope = query.Envelope{
	Items:      "data.items",
	Total:      "data.total",
	Page:       "data.page",
	TotalPages: "data.totalPages",
}

// Module bundles the account queries and mutations.
type Module struct {
	api     *rest.Client
	cache   *query.Cache
	session query.Session
	log     *logger.Logger
}

// New creates the users module. Profiles are per-user data, so the resource
// is dropped from the cache whenever the session changes.
func New(api *rest.Client, cache *query.Cache, session query.Session, log *logger.Logger) *Module {
	if log == nil {
		log = logger.NewDefault("users")
	}
	query.InvalidateOnSessionChange(session, cache, ResourceUsers)
	return &Module{api: api, cache: cache, session: session, log: log}
}

// Me fetches the signed-in user's profile.
func (m *Module) Me(ctx context.Context) (user.User, error) {
	if err := query.RequireSession(m.session); err != nil {
		return user.User{}, err
	}
	vals := url.Values{"id": {"me"}}
	body, err := m.cache.Resolve(ctx, query.Key{Resource: ResourceUsers, Filters: vals},
		func(ctx context.Context) ([]byte, error) {
			resp, err := m.api.Get(ctx, "/users/me", nil)
			if err != nil {
				return nil, err
			}
			return resp.Body, nil
		})
	if err != nil {
		return user.User{}, err
	}
	return query.DecodeOne[user.User](body, "user")
}

// Get fetches a public profile.
func (m *Module) Get(ctx context.Context, id string) (user.User, error) {
	if err := query.RequireID(id); err != nil {
		return user.User{}, err
	}
	vals := url.Values{"id": {id}}
	body, err := m.cache.Resolve(ctx, query.Key{Resource: ResourceUsers, Filters: vals},
		func(ctx context.Context) ([]byte, error) {
			resp, err := m.api.Get(ctx, "/users/"+url.PathEscape(id), nil)
			if err != nil {
				return nil, err
			}
			return resp.Body, nil
		})
	if err != nil {
		return user.User{}, err
	}
	return query.DecodeOne[user.User](body, "user")
}

// Filter is the recognised admin user-list filter surface.
type Filter struct {
	Search     string
	FacultyID  string
	IsVerified bool
	Page       int
	Limit      int
}

func (f Filter) values() url.Values {
	v := url.Values{}
	if f.Search != "" {
		v.Set("search", f.Search)
	}
	if f.FacultyID != "" {
		v.Set("facultyId", f.FacultyID)
	}
	if f.IsVerified {
		v.Set("isVerified", "true")
	}
	if f.Page > 0 {
		v.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		v.Set("limit", strconv.Itoa(f.Limit))
	}
	return v
}

// List returns users for the admin screens.
func (m *Module) List(ctx context.Context, f Filter) (query.Page[user.User], error) {
	if err := query.RequireSession(m.session); err != nil {
		return query.EmptyPage[user.User](), err
	}
	vals := f.values()
	body, err := m.cache.Resolve(ctx, query.Key{Resource: ResourceUsers, Filters: vals},
		func(ctx context.Context) ([]byte, error) {
			resp, err := m.api.Get(ctx, "/users", vals)
			if err != nil {
				return nil, err
			}
			return resp.Body, nil
		})
	if err != nil {
		return query.EmptyPage[user.User](), err
	}
	return query.DecodePage[user.User](body, usersEnvelope)
}

// UpdateProfileInput is the profile form. The photo is optional; when
// present the mutation is multipart, otherwise JSON.
type UpdateProfileInput struct {
	Name      *string
	FacultyID *string
	CareerID  *string
	Photo     *rest.File
}

// Validate checks the form.
func (in UpdateProfileInput) Validate() error {
	e := validate.FieldErrors{}
	if in.Name != nil {
		validate.MinChars(e, "name", *in.Name, 3, "El nombre debe tener al menos 3 caracteres")
	}
	// A career change without its faculty cannot be checked for
	// consistency client-side, so require both together.
	if in.CareerID != nil && in.FacultyID == nil {
		e.Add("facultyId", "La facultad es obligatoria")
	}
	return e.OrNil()
}

// UpdateProfile updates the signed-in user's profile and invalidates the
// users cache so profile reads refetch.
func (m *Module) UpdateProfile(ctx context.Context, in UpdateProfileInput) (user.User, error) {
	if err := in.Validate(); err != nil {
		return user.User{}, err
	}
	if err := query.RequireSession(m.session); err != nil {
		return user.User{}, err
	}

	var resp *rest.Response
	var err error
	if in.Photo != nil {
		fields := url.Values{}
		if in.Name != nil {
			fields.Set("name", *in.Name)
		}
		if in.FacultyID != nil {
			fields.Set("facultyId", *in.FacultyID)
		}
		if in.CareerID != nil {
			fields.Set("careerId", *in.CareerID)
		}
		resp, err = m.api.DoMultipart(ctx, "PATCH", "/users/me", fields, []rest.File{*in.Photo})
	} else {
		body := map[string]any{}
		if in.Name != nil {
			body["name"] = *in.Name
		}
		if in.FacultyID != nil {
			body["facultyId"] = *in.FacultyID
		}
		if in.CareerID != nil {
			body["careerId"] = *in.CareerID
		}
		resp, err = m.api.Do(ctx, "PATCH", "/users/me", nil, body)
	}
	if err != nil {
		return user.User{}, fmt.Errorf("update profile: %w", err)
	}

	updated, err := query.DecodeOne[user.User](resp.Body, "user")
	if err != nil {
		return user.User{}, err
	}
	m.cache.Invalidate(ctx, ResourceUsers)
	m.log.Info("profile updated")
	return updated, nil
}
