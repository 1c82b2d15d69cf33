// Command recipemcp serves SwiftUI recipe documentation to AI coding
// assistants over the Model Context Protocol, gating pro recipe bodies
// behind license keys.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	recipegin "github.com/open-rails/recipemcp/adapters/gin"
	"github.com/open-rails/recipemcp/adapters/ginutil"
	"github.com/open-rails/recipemcp/config"
	"github.com/open-rails/recipemcp/license"
	"github.com/open-rails/recipemcp/mcpserver"
	"github.com/open-rails/recipemcp/pack"
	memorylimiter "github.com/open-rails/recipemcp/ratelimit/memory"
	redislimiter "github.com/open-rails/recipemcp/ratelimit/redis"
	"github.com/open-rails/recipemcp/recipe"
	"github.com/open-rails/recipemcp/service"
	memorystore "github.com/open-rails/recipemcp/storage/memory"
	pgstore "github.com/open-rails/recipemcp/storage/postgres"
	redisstore "github.com/open-rails/recipemcp/storage/redis"
	sqlitestore "github.com/open-rails/recipemcp/storage/sqlite"
)

func main() {
	log := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}
	configureLogger(log, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.WithError(err).Fatal("server exited")
	}
}

func configureLogger(log *logrus.Logger, cfg config.Config) {
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}
	if cfg.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	if cfg.Transport == "stdio" {
		// stdout carries the MCP stream; logs must not interleave.
		log.SetOutput(os.Stderr)
	}
}

// recipeStore is satisfied by both the SQLite and in-memory stores.
type recipeStore interface {
	recipe.Store
	pack.Replacer
}

func run(ctx context.Context, cfg config.Config, log *logrus.Logger) error {
	store, closeStore, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	syncer := pack.NewSyncer(store, cfg.PackPath, log)
	schedule := ""
	if cfg.ResyncEvery > 0 {
		schedule = "@every " + cfg.ResyncEvery.String()
	}
	if err := syncer.Start(ctx, schedule); err != nil {
		return err
	}
	defer syncer.Stop()

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()
	}

	validator, offline, closeValidator, err := buildValidator(ctx, cfg, rdb, log)
	if err != nil {
		return err
	}
	defer closeValidator()

	svc := service.New(store, validator, log,
		service.WithAudit(license.NewLogrusAudit(log)),
	)
	srv := mcpserver.New(svc, log)

	if cfg.Transport == "http" {
		return serveHTTP(ctx, cfg, svc, srv, rdb, offline, log)
	}
	log.Info("serving MCP on stdio")
	return srv.ServeStdio(ctx)
}

func openStore(cfg config.Config, log *logrus.Logger) (recipeStore, func(), error) {
	if cfg.SQLitePath == "" {
		log.Info("using in-memory recipe store")
		return memorystore.NewRecipeStore(), func() {}, nil
	}
	store, err := sqlitestore.Open(cfg.SQLitePath)
	if err != nil {
		return nil, nil, err
	}
	log.WithField("path", cfg.SQLitePath).Info("using sqlite recipe store")
	return store, func() { _ = store.Close() }, nil
}

// buildValidator assembles the license validator chain: offline tokens first
// when a verification key is configured, then the Postgres registry wrapped
// in a decision cache. With neither configured every key is invalid, which
// still serves the free tier.
func buildValidator(ctx context.Context, cfg config.Config, rdb *redis.Client, log *logrus.Logger) (license.Validator, *license.OfflineValidator, func(), error) {
	chain := license.Chain{}
	closers := []func(){}
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var offline *license.OfflineValidator
	if cfg.OfflineKeyPEM != "" {
		pemBytes, err := os.ReadFile(cfg.OfflineKeyPEM)
		if err != nil {
			return nil, nil, nil, err
		}
		offline, err = license.NewOfflineValidatorFromPEM(cfg.OfflineKeyID, pemBytes)
		if err != nil {
			return nil, nil, nil, err
		}
		chain = append(chain, offline)
		log.WithField("kid", cfg.OfflineKeyID).Info("offline license validation enabled")
	}

	if cfg.PostgresURL != "" {
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			closeAll()
			return nil, nil, nil, err
		}
		closers = append(closers, pool.Close)
		registry := license.NewRegistryValidator(pgstore.NewRegistry(pool, cfg.PostgresSchema))

		var cache license.DecisionCache
		if rdb != nil {
			cache = redisstore.NewDecisionCache(rdb, "", cfg.DecisionTTL)
		} else {
			mem := license.NewMemoryDecisionCache(cfg.DecisionTTL)
			closers = append(closers, func() { _ = mem.Close() })
			cache = mem
		}
		chain = append(chain, license.NewCachedValidator(registry, cache))
		log.Info("license registry validation enabled")
	}

	if len(chain) == 0 {
		log.Warn("no license validator configured, all keys will be rejected")
	}
	return chain, offline, closeAll, nil
}

func serveHTTP(ctx context.Context, cfg config.Config, svc *service.Service, srv *mcpserver.Server, rdb *redis.Client, offline *license.OfflineValidator, log *logrus.Logger) error {
	var limiter ginutil.RateLimiter
	if rdb != nil {
		limiter = redislimiter.New(rdb, redislimiter.Defaults())
	} else {
		limiter = memorylimiter.New(memorylimiter.Defaults())
	}

	opts := recipegin.Options{
		RateLimiter: limiter,
		MCPHandler:  srv.HTTPHandler(),
	}
	if offline != nil {
		opts.OfflineKeys = offline.PublicKeys()
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	recipegin.Register(engine, svc, opts)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("serving MCP and REST over HTTP")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
