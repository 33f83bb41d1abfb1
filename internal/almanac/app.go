// Package almanac wires configuration, persistence, the event bus and the
// collection store into the App consumed by the CLI commands.
package almanac

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/colonyops/almanac/internal/core/collection"
	"github.com/colonyops/almanac/internal/core/config"
	"github.com/colonyops/almanac/internal/core/entity"
	"github.com/colonyops/almanac/internal/core/eventbus"
	"github.com/colonyops/almanac/internal/core/logging"
	"github.com/colonyops/almanac/internal/core/notify"
)

const busBuffer = 64

// App is the central entry point for all almanac operations.
// Commands consume App instead of cherry-picking raw dependencies.
type App struct {
	Store  *collection.Store
	Config *config.Config
	Clock  clockwork.Clock
	Bus    *eventbus.EventBus

	cancel  context.CancelFunc
	wg      sync.WaitGroup
	closers []func() error
	once    sync.Once
}

// Options adjusts how Open builds the App. Zero values select production
// defaults.
type Options struct {
	Clock     clockwork.Clock
	Persister collection.Persister // overrides the configured backend
	Notices   io.Writer            // receives warnings and errors; nil discards
	Logger    *zerolog.Logger
}

// Open constructs an App from cfg. Close must be called to flush pending
// events and release the backend.
func Open(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	mode, err := collection.ParseMode(cfg.Collection.Mode)
	if err != nil {
		return nil, err
	}

	logger := log.Logger
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	bus := eventbus.New(busBuffer)
	eventbus.RegisterDebugLogger(bus, logger.With().Str("component", "eventbus").Logger())
	if opts.Notices != nil {
		eventbus.NewNotificationRouter(bus, notify.NewWriter(opts.Notices, notify.LevelWarning)).Register()
	}

	busCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	app := &App{
		Config: cfg,
		Clock:  clock,
		Bus:    bus,
		cancel: cancel,
	}
	app.wg.Add(1)
	go func() {
		defer app.wg.Done()
		bus.Start(busCtx)
	}()

	persister := opts.Persister
	if persister == nil {
		p, closer, err := OpenPersister(cfg, clock.Now)
		if err != nil {
			_ = app.Close()
			return nil, err
		}
		persister = p
		app.closers = append(app.closers, closer)
	}

	ctx = logging.WithCollection(ctx, cfg.Collection.Name)
	store, err := collection.New(ctx, persister,
		collection.WithClock(clock),
		collection.WithLogger(logger.With().Str("component", "store").Logger()),
		collection.WithBus(bus),
		collection.WithLimits(cfg.Collection.Limits),
		collection.WithMode(mode),
		collection.WithLocation(loc),
		collection.WithName(cfg.Collection.Name),
	)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	app.Store = store

	return app, nil
}

// Now returns the current time in the collection's location.
func (a *App) Now() time.Time {
	return a.Store.Now()
}

// Close retries any unsaved state once, flushes queued events and releases
// the backend. It is safe to call more than once.
func (a *App) Close() error {
	var errs []error
	a.once.Do(func() {
		if a.Store != nil && a.Store.Dirty() {
			if err := a.Store.Retry(context.Background()); err != nil {
				errs = append(errs, err)
			}
		}

		a.cancel()
		a.wg.Wait()

		for _, closer := range a.closers {
			if err := closer(); err != nil {
				errs = append(errs, err)
			}
		}
	})
	return errors.Join(errs...)
}

// IsPersistenceError reports whether err means the change was applied but
// not saved.
func IsPersistenceError(err error) bool {
	return errors.Is(err, entity.ErrPersistence)
}
