package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-identity-dashboard/internal/config"
	"github.com/jrsteele09/go-identity-dashboard/internal/logging"
	fakepartnerrepo "github.com/jrsteele09/go-identity-dashboard/partners/fakerepo"
	"github.com/jrsteele09/go-identity-dashboard/server"
	"github.com/jrsteele09/go-identity-dashboard/token"
	fakeuserrepo "github.com/jrsteele09/go-identity-dashboard/users/repofake"
)

func main() {
	if err := config.LoadEnvFiles(); err != nil {
		fmt.Fprintf(os.Stderr, "loading .env: %s\n", err)
	}
	c := config.New()
	if err := logging.Setup(c, nil); err != nil {
		log.Warn().Err(err).Msg("invalid LOG_LEVEL, using info")
	}

	for {
		if err := run(c); err != nil {
			log.Err(err).Msg("Error running server")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("Server stopped")
}

func run(c config.Config) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	config.Validate(c)
	displayAppname(c.GetAppName())

	tokens, err := newTokenManager(c)
	if err != nil {
		return err
	}
	repos := server.Repos{
		Users:    fakeuserrepo.NewFakeUserRepo(),
		Partners: fakepartnerrepo.NewFakePartnerRepo(),
	}
	handler, err := server.New(c, repos, tokens)
	if err != nil {
		return err
	}

	httpServer := &http.Server{Addr: c.GetPort(), Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	serveErr := make(chan error, 1)
	go func() { serveErr <- listenAndServe(httpServer) }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go cleanupRevokedTokens(ctx, tokens)

	select {
	case err := <-serveErr:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(httpServer)
}

func newTokenManager(c config.Config) (*token.Manager, error) {
	secret := c.GetTokenSecret()
	if secret == "" {
		if c.IsProduction() {
			return nil, errors.New("TOKEN_SECRET is required in production")
		}
		secret = "development-only-secret"
		log.Warn().Msg("TOKEN_SECRET not set, using an insecure development secret")
	}
	signer, err := token.NewHMACSigner(secret)
	if err != nil {
		return nil, err
	}
	options := []token.ManagerOption{token.WithTokenExpiry(c.GetTokenExpiry(), c.GetClientTokenExpiry())}

	switch store := c.GetRevokedTokenStore(); store {
	case config.RevokedTokenStoreMemory:
	case config.RevokedTokenStoreRedis:
		redisOptions, err := redis.ParseURL(c.GetRedisURL())
		if err != nil {
			return nil, fmt.Errorf("parsing REDIS_URL: %w", err)
		}
		cache := token.NewRedisRevokedTokenCache(redis.NewClient(redisOptions), c.GetSessionKeyPrefix())
		options = append(options, token.WithRevokedTokenCache(cache))
		log.Info().Str("addr", redisOptions.Addr).Msg("Revoked tokens kept in redis")
	default:
		return nil, fmt.Errorf("unknown REVOKED_TOKEN_STORE %q", store)
	}
	return token.New(signer, options...), nil
}

func cleanupRevokedTokens(ctx context.Context, tokens *token.Manager) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tokens.CleanupRevokedTokens()
		}
	}
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
