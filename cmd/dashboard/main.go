// Command dashboard drives the identity dashboard's session core from the
// terminal: sign in and out, inspect the stored session and resolve routes.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-identity-dashboard/auth"
	"github.com/jrsteele09/go-identity-dashboard/internal/config"
	"github.com/jrsteele09/go-identity-dashboard/internal/logging"
	"github.com/jrsteele09/go-identity-dashboard/issuer"
	"github.com/jrsteele09/go-identity-dashboard/routes"
	"github.com/jrsteele09/go-identity-dashboard/sessions"
	"github.com/jrsteele09/go-identity-dashboard/sessions/filestore"
	"github.com/jrsteele09/go-identity-dashboard/sessions/redisstore"
	fakesessionstore "github.com/jrsteele09/go-identity-dashboard/sessions/repofakes"
)

func main() {
	if err := config.LoadEnvFiles(); err != nil {
		fmt.Fprintf(os.Stderr, "loading .env: %s\n", err)
	}
	if err := logging.Setup(config.EnvVars{}, nil); err != nil {
		log.Warn().Err(err).Msg("invalid LOG_LEVEL, using info")
	}

	ctx := withInterrupt(context.Background())
	if err := newRootCmd(defaultApp).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// app is everything a command needs, built fresh for each invocation.
type app struct {
	cfg        config.Config
	store      sessions.Store
	watcher    sessions.Watcher // nil when the backend cannot report outside changes
	issuer     issuer.Issuer
	controller *auth.Controller
	guard      *routes.Guard
	closers    []func() error
}

func (a *app) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

type appFactory func(ctx context.Context) (*app, error)

func defaultApp(ctx context.Context) (*app, error) {
	cfg := config.New()
	config.Validate(cfg)

	a := &app{cfg: cfg, issuer: issuer.New(cfg)}
	if err := a.openStore(ctx); err != nil {
		return nil, err
	}
	return a.wire()
}

func (a *app) openStore(ctx context.Context) error {
	switch backend := a.cfg.GetSessionBackend(); backend {
	case config.SessionBackendFile:
		store, err := filestore.New(a.cfg.GetSessionFile())
		if err != nil {
			return errors.Wrap(err, "opening session file")
		}
		a.store, a.watcher = store, store
	case config.SessionBackendRedis:
		store, err := redisstore.Open(ctx, a.cfg.GetRedisURL(), a.cfg.GetSessionKeyPrefix(), redisstore.WithTTL(a.cfg.GetSessionTTL()))
		if err != nil {
			return errors.Wrap(err, "connecting to redis")
		}
		a.store = store
		a.closers = append(a.closers, store.Close)
	case config.SessionBackendMemory:
		log.Warn().Msg("memory session backend does not outlive this command")
		a.store = fakesessionstore.NewFakeSessionStore()
	default:
		return errors.Errorf("unknown SESSION_BACKEND %q", backend)
	}
	return nil
}

func (a *app) wire() (*app, error) {
	controller, err := auth.NewController(a.store, a.issuer)
	if err != nil {
		return nil, err
	}
	a.controller = controller
	a.guard = routes.NewGuard(controller)
	return a, nil
}

func withInterrupt(ctx context.Context) context.Context {
	ctx, cancel := context.WithCancel(ctx)
	go func(ctx context.Context) {
		ch := make(chan os.Signal, 2)
		defer signal.Stop(ch)

		signal.Notify(ch, os.Interrupt, syscall.SIGTERM)

		select {
		case sig := <-ch:
			log.Debug().Str("signal", sig.String()).Msg("quitting...")
		case <-ctx.Done():
		}
		cancel()
	}(ctx)
	return ctx
}
