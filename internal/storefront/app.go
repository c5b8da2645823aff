// Package storefront wires the stores and services of one storefront
// instance together.
package storefront

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/fjod/go_cart/storefront/internal/admin"
	"github.com/fjod/go_cart/storefront/internal/auth"
	"github.com/fjod/go_cart/storefront/internal/backend"
	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/config"
	"github.com/fjod/go_cart/storefront/internal/events"
	h "github.com/fjod/go_cart/storefront/internal/http"
	"github.com/fjod/go_cart/storefront/internal/session"
	"github.com/fjod/go_cart/storefront/internal/storage"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// App owns every long-lived component. Build it with New and release it
// with Close.
type App struct {
	Origin   string
	Store    storage.Store
	Bus      events.Bus
	Session  *session.Store
	Cart     *cart.Store
	Backend  *backend.Client
	Catalog  *catalog.Fetcher
	Auth     *auth.Service
	Checkout *checkout.Service
	Admin    *admin.Service

	cfg     *config.Config
	log     *slog.Logger
	redis   *redis.Client
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	unwatch func()
	once    sync.Once
}

// runner is a bus that needs a receive loop.
type runner interface {
	Run(ctx context.Context)
}

func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	a := &App{Origin: uuid.NewString(), cfg: cfg, log: log}
	ok := false
	defer func() {
		if !ok {
			_ = a.Close()
		}
	}()

	var err error
	if a.Store, err = a.openStore(ctx); err != nil {
		return nil, err
	}
	if a.Bus, err = a.openBus(ctx); err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	a.cancel = cancel
	if r, isRunner := a.Bus.(runner); isRunner {
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			r.Run(runCtx)
		}()
	}

	a.Session = session.NewStore(a.Store, a.Bus, a.Origin, log)
	a.Cart = cart.NewStore(ctx, cart.NewPersistence(a.Store, log), a.Bus, cart.Options{
		Origin:    a.Origin,
		NoticeTTL: cfg.CartNotice,
	}, log)
	a.unwatch = a.Session.OnChange(a.Cart.SwitchIdentity)

	if id, err := a.Session.Restore(ctx); err != nil {
		log.WarnContext(ctx, "starting as guest", slog.String("error", err.Error()))
	} else if !id.IsGuest() {
		log.InfoContext(ctx, "session restored", slog.String("cart_key", id.CartKey()))
	}
	a.Session.Listen()

	a.Backend = backend.New(backend.Config{
		BaseURL:     cfg.APIBaseURL,
		AuthBaseURL: cfg.AuthBaseURL,
		Timeout:     cfg.RequestTimeout,
	}, func() string { return a.Session.Current().Token }, log)

	a.Catalog = catalog.NewFetcher(a.Backend, log)
	a.Auth = auth.NewService(a.Backend, a.Session, log)
	a.Checkout = checkout.NewService(a.Cart, a.Backend, log)

	demo, err := admin.NewDemoStore(ctx, a.Store, log)
	if err != nil {
		return nil, err
	}
	switch cfg.AdminMode {
	case config.AdminRemote:
		a.Admin = admin.NewService(a.Backend, a.Backend, demo, demo, log)
	default:
		a.Admin = admin.NewService(demo, demo, demo, demo, log)
	}

	ok = true
	return a, nil
}

func (a *App) openStore(ctx context.Context) (storage.Store, error) {
	switch a.cfg.StorageDriver {
	case config.StorageMemory:
		return storage.NewMemory(), nil
	case config.StorageRedis:
		client, err := a.redisClient(ctx)
		if err != nil {
			return nil, err
		}
		return storage.NewRedis(client, a.cfg.RedisPrefix), nil
	case config.StorageMongo:
		db, err := storage.ConnectMongoDB(ctx, a.cfg.MongoURI, a.cfg.MongoDBName)
		if err != nil {
			return nil, err
		}
		return storage.NewMongo(db), nil
	default:
		s, err := storage.NewSQLite(ctx, a.cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

func (a *App) openBus(ctx context.Context) (events.Bus, error) {
	switch a.cfg.BusDriver {
	case config.BusRedis:
		client, err := a.redisClient(ctx)
		if err != nil {
			return nil, err
		}
		bus, err := events.NewRedis(ctx, client, events.DefaultRedisChannel, a.log)
		if err != nil {
			return nil, err
		}
		return bus, nil
	case config.BusKafka:
		return events.NewKafka(a.cfg.KafkaBrokers, a.cfg.KafkaTopic, a.log), nil
	default:
		return events.NewLocal(), nil
	}
}

// redisClient connects once and is shared by the store and the bus.
func (a *App) redisClient(ctx context.Context) (*redis.Client, error) {
	if a.redis != nil {
		return a.redis, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     a.cfg.RedisAddr,
		Password: a.cfg.RedisPassword,
		DB:       0,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	a.redis = client
	return client, nil
}

// Handler is the instrumented view layer of this instance.
func (a *App) Handler() http.Handler {
	router := h.NewRouter(h.Deps{
		Session:        a.Session,
		Auth:           a.Auth,
		Catalog:        a.Catalog,
		Cart:           a.Cart,
		Checkout:       a.Checkout,
		Admin:          a.Admin,
		RequestTimeout: a.cfg.RequestTimeout,
		Log:            a.log,
	})
	return otelhttp.NewHandler(router, "storefront")
}

// Close stops the bus loop and releases every connection. It is safe to
// call more than once.
func (a *App) Close() error {
	var errs []error
	a.once.Do(func() {
		if a.unwatch != nil {
			a.unwatch()
		}
		if a.Session != nil {
			a.Session.Close()
		}
		if a.Cart != nil {
			a.Cart.Close()
		}
		if a.cancel != nil {
			a.cancel()
		}
		if a.Bus != nil {
			if err := a.Bus.Close(); err != nil {
				errs = append(errs, fmt.Errorf("failed to close bus: %w", err))
			}
		}
		a.wg.Wait()
		if a.Store != nil {
			if err := a.Store.Close(); err != nil {
				errs = append(errs, fmt.Errorf("failed to close store: %w", err))
			}
		}
		if a.redis != nil {
			if err := a.redis.Close(); err != nil {
				errs = append(errs, fmt.Errorf("failed to close redis: %w", err))
			}
		}
	})
	return errors.Join(errs...)
}
