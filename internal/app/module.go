// Package app composes the client from its parts with fx.
package app

import (
	"context"
	"io"

	"github.com/matheus3301/evowpp/internal/bus"
	"github.com/matheus3301/evowpp/internal/config"
	"github.com/matheus3301/evowpp/internal/configure"
	"github.com/matheus3301/evowpp/internal/conversation"
	"github.com/matheus3301/evowpp/internal/credentials"
	"github.com/matheus3301/evowpp/internal/lock"
	"github.com/matheus3301/evowpp/internal/logging"
	"github.com/matheus3301/evowpp/internal/notify"
	"github.com/matheus3301/evowpp/internal/probe"
	"github.com/matheus3301/evowpp/internal/receipts"
	"github.com/matheus3301/evowpp/internal/session"
	"github.com/matheus3301/evowpp/internal/status"
	"github.com/matheus3301/evowpp/internal/store"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// Params holds the resolved session settings passed to the fx module.
type Params struct {
	SessionName string
	// Exclusive takes the session's UI lock so that only one terminal UI
	// drives a session at a time.
	Exclusive bool
	// Console, if set, gets a copy of the log output.
	Console io.Writer
}

// Module returns the fx module for one client session.
func Module(p Params) fx.Option {
	return fx.Module("evowpp",
		fx.Supply(p),
		fx.Provide(
			provideGlobalConfig,
			provideLogger,
			bus.New,
			provideStateMachine,
			provideLock,
			provideStore,
			fx.Annotate(provideRepository, fx.As(new(credentials.Repository))),
			provideVerifier,
			provideConversations,
			provideSessionController,
			notify.NewFlash,
			provideSink,
			provideConfigController,
			provideReceipts,
		),
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger.Named("fx")}
		}),
		fx.Invoke(registerLifecycle),
	)
}

func provideGlobalConfig() (*config.Config, error) {
	return config.LoadOrDefault(session.ConfigPath())
}

func provideLogger(p Params, cfg *config.Config) (*zap.Logger, error) {
	if err := session.EnsureDir(p.SessionName); err != nil {
		return nil, err
	}
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	return logging.New(logging.Options{
		Path:    session.LogPath(p.SessionName),
		Session: p.SessionName,
		Level:   level,
		Console: p.Console,
	})
}

func provideStateMachine(b *bus.Bus) *status.Machine {
	return status.NewMachine(b)
}

// provideLock returns a nil lock for non-exclusive sessions.
func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	if !p.Exclusive {
		return nil, nil
	}
	l, err := lock.Acquire(session.LockPath(p.SessionName))
	if err != nil {
		return nil, err
	}
	logger.Info("session lock acquired", zap.String("path", l.Path()))
	return l, nil
}

func provideStore(p Params, logger *zap.Logger) (*store.DB, error) {
	dbPath := session.StorePath(p.SessionName)
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	result, err := db.Migrate()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if result.Changed {
		logger.Info("migrations applied", zap.Uint("version", result.Version))
	} else {
		logger.Debug("migrations up to date", zap.Uint("version", result.Version))
	}
	logger.Info("store initialized", zap.String("path", dbPath))
	return db, nil
}

func provideRepository(db *store.DB, logger *zap.Logger) *credentials.SQLiteRepository {
	return credentials.NewSQLiteRepository(db, logger.Named("credentials"))
}

func provideVerifier(logger *zap.Logger) *probe.Verifier {
	return probe.NewVerifier(probe.WithLogger(logger.Named("probe")))
}

func provideConversations() *conversation.Store {
	return conversation.NewDefaultStore()
}

func provideSessionController(repo credentials.Repository, m *status.Machine, conv *conversation.Store, b *bus.Bus, logger *zap.Logger) *session.Controller {
	return session.NewController(repo, m, conv, b, logger.Named("session"))
}

func provideSink(flash *notify.Flash, b *bus.Bus, logger *zap.Logger) notify.Sink {
	return notify.Multi{flash, notify.BusSink{Bus: b}, notify.LogSink{Logger: logger.Named("notice")}}
}

func provideConfigController(repo credentials.Repository, v *probe.Verifier, sess *session.Controller, sink notify.Sink, cfg *config.Config, logger *zap.Logger) *configure.Controller {
	return configure.NewController(repo, v, sess, sink,
		configure.WithDeadline(cfg.Timeout()),
		configure.WithLogger(logger.Named("configure")),
	)
}

func provideReceipts(conv *conversation.Store, b *bus.Bus, logger *zap.Logger) *receipts.Engine {
	return receipts.NewEngine(conv, b, logger.Named("receipts"))
}

func registerLifecycle(lc fx.Lifecycle, p Params, sess *session.Controller, engine *receipts.Engine, db *store.DB, lk *lock.Lock, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			engine.Start(context.Background())
			if err := sess.Initialize(); err != nil {
				engine.Stop()
				return err
			}
			logger.Info("session started", zap.Stringer("status", sess.Status()))
			return nil
		},
		OnStop: func(_ context.Context) error {
			engine.Stop()
			if err := db.Close(); err != nil {
				logger.Warn("error closing store", zap.Error(err))
			}
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("session stopped", zap.String("session", p.SessionName))
			_ = logger.Sync()
			return nil
		},
	})
}
