// Package conecta is the Go client for the ULEAM Conecta marketplace API.
// It wires the session store, the REST client, the query cache and the
// per-resource modules into one handle.
package conecta

import (
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/uleam-conecta/conecta-go/internal/config"
	"github.com/uleam-conecta/conecta-go/internal/dashboard"
	"github.com/uleam-conecta/conecta-go/internal/query"
	"github.com/uleam-conecta/conecta-go/internal/resource/academic"
	"github.com/uleam-conecta/conecta-go/internal/resource/orders"
	"github.com/uleam-conecta/conecta-go/internal/resource/payments"
	"github.com/uleam-conecta/conecta-go/internal/resource/services"
	"github.com/uleam-conecta/conecta-go/internal/resource/uploads"
	"github.com/uleam-conecta/conecta-go/internal/resource/users"
	"github.com/uleam-conecta/conecta-go/internal/rest"
	"github.com/uleam-conecta/conecta-go/internal/session"
	"github.com/uleam-conecta/conecta-go/pkg/logger"
)

// Client is the assembled SDK.
type Client struct {
	Session   *session.Store
	Services  *services.Module
	Orders    *orders.Module
	Payments  *payments.Module
	Academic  *academic.Module
	Users     *users.Module
	Uploads   *uploads.Module
	Dashboard *dashboard.Aggregator

	api   *rest.Client
	cache *query.Cache
	log   *logger.Logger
}

// NewClient builds a client from config.
func NewClient(cfg config.Config) (*Client, error) {
	log := logger.New(logger.LoggingConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})

	sess, err := session.NewStore(cfg.Session.TokenPath)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}

	api, err := rest.New(rest.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
		Tokens:  sess,
		Logger:  log,
	})
	if err != nil {
		return nil, fmt.Errorf("build rest client: %w", err)
	}

	var store query.Store
	if cfg.Cache.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		store = query.NewRedisStore(rdb)
		log.Infof("query cache backed by redis at %s", cfg.Cache.RedisAddr)
	} else {
		store = query.NewMemStore()
	}
	cache := query.New(store, query.WithTTL(cfg.Cache.TTL), query.WithLogger(log))

	c := &Client{
		Session:  sess,
		Services: services.New(api, cache, sess, log),
		Orders:   orders.New(api, cache, sess, log),
		Payments: payments.New(api, cache, sess, log),
		Academic: academic.New(api, cache, log),
		Users:    users.New(api, cache, sess, log),
		Uploads:  uploads.New(api, sess, log),
		api:      api,
		cache:    cache,
		log:      log,
	}
	c.Dashboard = dashboard.New(c.Users, c.Services, c.Orders, c.Payments, log)
	return c, nil
}

// Cache exposes the query cache for embedding applications that need to
// invalidate after out-of-band writes.
func (c *Client) Cache() *query.Cache {
	return c.cache
}
