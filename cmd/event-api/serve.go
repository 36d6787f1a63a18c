package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"event-rest-api/cmd/event-api/account"
	"event-rest-api/cmd/event-api/apis"
	"event-rest-api/cmd/event-api/auth"
	"event-rest-api/cmd/event-api/importer"
	"event-rest-api/cmd/event-api/metrics"
	"event-rest-api/cmd/event-api/model"
	"event-rest-api/cmd/event-api/repository"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run migrations, create the bootstrap accounts and start the HTTP server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithContext(ctx)

	db, err := openDB(cfg, logger)
	if err != nil {
		return err
	}

	if err := repository.Migrate(ctx, db); err != nil {
		return err
	}

	accounts := account.NewService(repository.NewAccountRepo(db), logger)
	if err := bootstrapAccounts(ctx, cfg, accounts); err != nil {
		return err
	}

	store, closeStore, err := newTokenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	e, err := newServer(cfg, logger, db, accounts, store)
	if err != nil {
		return err
	}

	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("http server listening")
		if err := e.Start(cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server stopped")
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info().Msg("shutting down")
	return e.Shutdown(shutdownCtx)
}

// newServer wires every route. Reads are public; event writes and imports
// need a bearer access token.
func newServer(cfg EnvCfg, logger zerolog.Logger, db *gorm.DB, accounts auth.AccountAuthenticator, store auth.TokenStore) (*echo.Echo, error) {
	client, err := auth.NewClient(auth.ClientConfig{
		ID:              cfg.ClientID,
		Secret:          cfg.ClientSecret,
		AccessTokenTTL:  cfg.AccessTokenTTL,
		RefreshTokenTTL: cfg.RefreshTokenTTL,
	}, bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	tokens := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTIssuer)
	tokenServer := auth.NewServer(auth.NewClientRegistry(client), accounts, tokens, store, logger)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = apis.NewHTTPErrorHandler()

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(
		apis.RequestContext(logger),
		apis.AccessLog(),
		metrics.Middleware(),
		middleware.Recover(),
	)
	if cfg.BodyLimit != "" {
		e.Use(middleware.BodyLimit(cfg.BodyLimit))
	}

	rootg := e.Group("")
	apig := rootg.Group("/api")
	oauthg := rootg.Group("/oauth")

	apis.
		NewHealthCheckAPI(db).
		Setup(rootg)

	rootg.GET("/metrics", metrics.Handler())

	links := apis.NewLinkBuilder(cfg.BaseURL, cfg.DocsURL)
	bearer := apis.BearerAuth(tokens)
	eventRepo := repository.NewEventRepo(db)

	apis.
		NewIndexAPI(links).
		Setup(apig)

	apis.
		NewEventAPI(eventRepo, links).
		Setup(apig, bearer)

	apis.
		NewImportAPI(importer.New(eventRepo, "import"), links).
		Setup(apig, bearer)

	apis.
		NewOAuthAPI(tokenServer).
		Setup(oauthg, apis.NewIPRateLimiter(cfg.TokenRateLimit).Middleware())

	return e, nil
}

func newTokenStore(ctx context.Context, cfg EnvCfg) (auth.TokenStore, func() error, error) {
	if cfg.TokenStore != TokenStoreRedis {
		return auth.NewMemoryTokenStore(), func() error { return nil }, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}

	return auth.NewRedisTokenStore(client), client.Close, nil
}

type accountEnsurer interface {
	EnsureAccount(ctx context.Context, account model.Account) error
}

// bootstrapAccounts creates the configured admin and user accounts when
// they do not exist yet.
func bootstrapAccounts(ctx context.Context, cfg EnvCfg, accounts accountEnsurer) error {
	admin := model.Account{
		Email:    cfg.AdminUsername,
		Password: cfg.AdminPassword,
		Roles:    []string{string(model.RoleAdmin), string(model.RoleUser)},
	}
	if err := accounts.EnsureAccount(ctx, admin); err != nil {
		return fmt.Errorf("bootstrap admin account: %w", err)
	}

	user := model.Account{
		Email:    cfg.UserUsername,
		Password: cfg.UserPassword,
		Roles:    []string{string(model.RoleUser)},
	}
	if err := accounts.EnsureAccount(ctx, user); err != nil {
		return fmt.Errorf("bootstrap user account: %w", err)
	}
	return nil
}
