package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	rdb "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/clientlinkhq/clientlink/internal/cache"
	"github.com/clientlinkhq/clientlink/internal/catalog"
	"github.com/clientlinkhq/clientlink/internal/config"
	"github.com/clientlinkhq/clientlink/internal/email"
	authctrl "github.com/clientlinkhq/clientlink/internal/http/controllers/authorizations"
	healthctrl "github.com/clientlinkhq/clientlink/internal/http/controllers/health"
	linksctrl "github.com/clientlinkhq/clientlink/internal/http/controllers/links"
	oauthctrl "github.com/clientlinkhq/clientlink/internal/http/controllers/oauth"
	"github.com/clientlinkhq/clientlink/internal/http/router"
	authsvc "github.com/clientlinkhq/clientlink/internal/http/services/authorizations"
	linkssvc "github.com/clientlinkhq/clientlink/internal/http/services/links"
	oauthsvc "github.com/clientlinkhq/clientlink/internal/http/services/oauth"
	"github.com/clientlinkhq/clientlink/internal/metrics"
	"github.com/clientlinkhq/clientlink/internal/oauth/providers"
	"github.com/clientlinkhq/clientlink/internal/oauth/state"
	"github.com/clientlinkhq/clientlink/internal/observability/logger"
	"github.com/clientlinkhq/clientlink/internal/rate"
	"github.com/clientlinkhq/clientlink/internal/store"
)

var version = "dev"

func fileExists(p string) bool {
	if p == "" {
		return false
	}
	st, err := os.Stat(p)
	return err == nil && !st.IsDir()
}

func buildLimiters(cfg *config.Config) (global, exchange, callback rate.Limiter) {
	if !cfg.Rate.Enabled {
		return nil, nil, nil
	}
	win := config.MustDuration(cfg.Rate.Window)
	exWin := config.MustDuration(cfg.Rate.Exchange.Window)
	cbWin := config.MustDuration(cfg.Rate.Callback.Window)

	if strings.EqualFold(cfg.Cache.Kind, "redis") {
		rc := rdb.NewClient(&rdb.Options{
			Addr: cfg.Cache.Redis.Addr,
			DB:   cfg.Cache.Redis.DB,
		})
		prefix := cfg.Cache.Redis.Prefix + ":rl:"
		global = rate.NewRedisLimiter(rc, prefix+"g:", cfg.Rate.MaxRequests, win)
		exchange = rate.NewRedisLimiter(rc, prefix+"ex:", cfg.Rate.Exchange.Limit, exWin)
		callback = rate.NewRedisLimiter(rc, prefix+"cb:", cfg.Rate.Callback.Limit, cbWin)
		return global, exchange, callback
	}
	global = rate.NewMemoryLimiter(cfg.Rate.MaxRequests, win)
	exchange = rate.NewMemoryLimiter(cfg.Rate.Exchange.Limit, exWin)
	callback = rate.NewMemoryLimiter(cfg.Rate.Callback.Limit, cbWin)
	return global, exchange, callback
}

func main() {
	var (
		flagConfigPath = flag.String("config", "", "path to config.yaml (fallback: $CONFIG_PATH or configs/config.yaml)")
		flagEnvFile    = flag.String("env-file", ".env", "path to .env (loaded when present)")
	)
	flag.Parse()

	if *flagEnvFile != "" && fileExists(*flagEnvFile) {
		if err := godotenv.Load(*flagEnvFile); err == nil {
			log.Printf("dotenv: loaded %s", *flagEnvFile)
		}
	}

	cfgPath := *flagConfigPath
	if cfgPath == "" {
		cfgPath = os.Getenv("CONFIG_PATH")
	}
	if cfgPath == "" {
		if fileExists("configs/config.yaml") {
			cfgPath = "configs/config.yaml"
		} else {
			cfgPath = "configs/config.example.yaml"
		}
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.Log.Level,
		ServiceName: "clientlink",
		Version:     version,
	})
	defer func() { _ = logger.Sync() }()
	zl := logger.L()

	if err := metrics.Register(nil); err != nil {
		zl.Fatal("metrics register", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := store.Open(ctx, cfg)
	if err != nil {
		zl.Fatal("store open", zap.Error(err))
	}
	defer repo.Close()

	cc, err := cache.FromConfig(cfg)
	if err != nil {
		zl.Fatal("cache open", zap.Error(err))
	}
	defer func() { _ = cc.Close() }()

	cat := catalog.Default()
	registry := providers.FromConfig(cfg, config.MustDuration(cfg.OAuth.HTTPTimeout))

	var signer state.Signer
	if secret := strings.TrimSpace(cfg.OAuth.StateSecret); secret != "" {
		signer = state.NewHMACSigner([]byte(secret), cfg.App.BaseURL, config.MustDuration(cfg.OAuth.StateTTL))
	} else {
		zl.Warn("oauth.state_secret not set, admin-initiated flows are disabled")
	}

	notifier := email.NewNotifier(cfg)

	links := linkssvc.New(linkssvc.Deps{
		Repo:       repo,
		Cache:      cc,
		DefaultTTL: config.MustDuration(cfg.Links.DefaultTTL),
	})
	exchange := oauthsvc.NewExchangeService(registry)
	start := oauthsvc.NewStartService(oauthsvc.StartDeps{
		Registry: registry,
		Links:    links,
		Catalog:  cat,
		Signer:   signer,
		Config:   cfg,
	})
	callback := oauthsvc.NewCallbackService(oauthsvc.CallbackDeps{
		Repo:     repo,
		Registry: registry,
		Exchange: exchange,
		Links:    links,
		Catalog:  cat,
		Signer:   signer,
		Notifier: notifier,
		Config:   cfg,
	})
	authorizations := authsvc.New(repo)

	globalLimiter, exchangeLimiter, callbackLimiter := buildLimiters(cfg)

	handler := router.New(router.Deps{
		Config:          cfg,
		Health:          healthctrl.NewController(repo, cc),
		Links:           linksctrl.NewController(links, cat, cfg),
		OAuth:           oauthctrl.NewController(start, callback, exchange, cfg),
		Authorizations:  authctrl.NewController(authorizations),
		GlobalLimiter:   globalLimiter,
		ExchangeLimiter: exchangeLimiter,
		CallbackLimiter: callbackLimiter,
	})

	api := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  config.MustDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.MustDuration(cfg.Server.WriteTimeout),
	}

	var metricsSrv *http.Server
	if cfg.Server.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsSrv = &http.Server{Addr: cfg.Server.MetricsAddr, Handler: mux}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zl.Info("api listening",
			zap.String("addr", cfg.Server.Addr),
			zap.String("env", cfg.App.Env),
			zap.String("storage", cfg.Storage.Driver),
			zap.Strings("platforms", registry.Available()),
		)
		if err := api.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if metricsSrv != nil {
		g.Go(func() error {
			zl.Info("metrics listening", zap.String("addr", cfg.Server.MetricsAddr))
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if metricsSrv != nil {
			_ = metricsSrv.Shutdown(shutdownCtx)
		}
		return api.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		zl.Fatal("server", zap.Error(err))
	}
	zl.Info("shutdown complete")
}
