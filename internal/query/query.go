// Package query implements the client-side data layer: a cache keyed by
// resource name plus canonical filter encoding, stale-while-revalidate
// serving, invalidate-on-mutate, and ordering guarantees for out-of-order
// responses. Resource modules build their read paths on it.
package query

import (
	"context"
	"errors"
	"net/url"
)

// Status is the lifecycle state of a query.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// ErrInvalidID is returned when a detail query is given an empty or sentinel
// identifier. The query does not execute; callers must render an explicit
// invalid-identifier state, not an empty success.
var ErrInvalidID = errors.New("invalid or missing identifier")

// ErrNoSession is returned when an auth-gated query runs without a valid
// session token. No request is issued.
var ErrNoSession = errors.New("no valid session")

// Session is what the data layer needs to know about authentication state.
// *session.Store satisfies it.
type Session interface {
	Valid() bool
}

// SessionNotifier is the optional extension of Session implemented by stores
// that can announce sign-in and sign-out transitions.
type SessionNotifier interface {
	OnChange(func())
}

// InvalidateOnSessionChange drops the given resources from the cache
// whenever the session token changes. Cache entries are keyed by resource
// and filters only, so a resource whose responses depend on who is signed in
// must be flushed on a token change or the next user is served the previous
// user's data.
func InvalidateOnSessionChange(s Session, c *Cache, resources ...string) {
	n, ok := s.(SessionNotifier)
	if !ok {
		return
	}
	n.OnChange(func() {
		c.Invalidate(context.Background(), resources...)
	})
}

// RequireID validates a detail-query identifier before any request is built.
// "undefined" and "null" are treated as missing: they are what a sloppy
// caller serialises an absent id to.
func RequireID(id string) error {
	switch id {
	case "", "undefined", "null":
		return ErrInvalidID
	}
	return nil
}

// RequireSession gates auth-required queries on a live session.
func RequireSession(s Session) error {
	if s == nil || !s.Valid() {
		return ErrNoSession
	}
	return nil
}

// Key identifies one cache entry: a resource name and its filters.
type Key struct {
	Resource string
	Filters  url.Values
}

// String returns the canonical form of the key. url.Values.Encode sorts by
// field name, so two structurally equal filter sets produce the same key no
// matter the order they were built in.
func (k Key) String() string {
	if len(k.Filters) == 0 {
		return k.Resource
	}
	return k.Resource + "?" + k.Filters.Encode()
}

// FetchFunc loads the raw payload for a key from the server.
type FetchFunc func(ctx context.Context) ([]byte, error)
