package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os/signal"
	"syscall"
	"time"

	"ratelimit-gateway/internal/config"
	"ratelimit-gateway/middleware/ratelimit"
	"ratelimit-gateway/middleware/ratelimit/domain"
	"ratelimit-gateway/middleware/ratelimit/infra"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

func main() {
	if err := run(); err != nil {
		log.WithError(err).Fatal("gateway stopped")
	}
}

// run sobe o gateway e só retorna quando o servidor para. Erros voltam para o
// main para que os defers (fechar o Redis) rodem antes do exit.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if lvl, errLevel := log.ParseLevel(cfg.LogLevel); errLevel == nil {
		log.SetLevel(lvl)
	}

	target, err := url.Parse(cfg.UpstreamURL)
	if err != nil {
		return fmt.Errorf("invalid UPSTREAM_URL: %w", err)
	}

	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		log.WithError(err).WithField("path", r.URL.Path).Warn("proxy error")
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	h := http.Handler(proxy)
	if cfg.Rate.Enabled {
		store, stats, closeFn, errStore := initStore(ctx, cfg)
		if errStore != nil {
			return fmt.Errorf("rate limit store error: %w", errStore)
		}
		defer closeFn()

		limiter, errLimiter := ratelimit.New(limiterOptions(cfg, store, stats))
		if errLimiter != nil {
			return fmt.Errorf("rate limit config error: %w", errLimiter)
		}
		h = limiter.Handler(h)
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if errShutdown := srv.Shutdown(shutdownCtx); errShutdown != nil {
			log.WithError(errShutdown).Error("graceful shutdown failed")
		}
	}()

	log.Infof("gateway listening on %s -> %s", cfg.ListenAddr, target)
	log.WithFields(log.Fields{
		"enabled":   cfg.Rate.Enabled,
		"store":     cfg.Rate.Store,
		"window":    cfg.Rate.Window,
		"max":       cfg.Rate.Max,
		"keyHeader": cfg.Rate.KeyHeader,
		"skipPaths": cfg.Rate.SkipPaths,
	}).Info("rate limit")
	log.WithFields(log.Fields{
		"enabled":   cfg.Stats.Enabled,
		"bucket":    cfg.Stats.Bucket,
		"ttl":       cfg.Stats.TTL,
		"trackKeys": cfg.Stats.TrackKeys,
	}).Info("rate limit stats")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func limiterOptions(cfg config.Config, store domain.CounterStore, stats domain.StatsStore) *ratelimit.Options {
	opts := &ratelimit.Options{
		Store:               store,
		Stats:               stats,
		Window:              cfg.Rate.Window,
		Max:                 cfg.Rate.Max,
		AddRateLimitHeaders: cfg.Rate.AddHeaders,
	}
	if cfg.Rate.KeyHeader != "" {
		opts.KeyFn = ratelimit.HeaderKeyFunc(cfg.Rate.KeyHeader, nil)
	}
	if len(cfg.Rate.SkipPaths) > 0 {
		opts.Skip = ratelimit.SkipPaths(cfg.Rate.SkipPaths...)
	}
	return opts
}

// initStore devolve o contador compartilhado e, se habilitado, o store de
// estatísticas. O client Redis pertence ao main e é fechado no closeFn.
func initStore(ctx context.Context, cfg config.Config) (domain.CounterStore, domain.StatsStore, func(), error) {
	switch cfg.Rate.Store {
	case "memory":
		store := infra.NewMemoryCounterStore()
		store.StartJanitor(ctx)
		log.Warn("rate limit: memory store does not share counters between instances")
		return store, nil, func() {}, nil
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			_ = rdb.Close()
			return nil, nil, nil, err
		}

		closeFn := func() {
			if err := rdb.Close(); err != nil {
				log.WithError(err).Warn("failed to close redis client")
			}
		}

		var stats domain.StatsStore
		if cfg.Stats.Enabled {
			stats = infra.NewRedisStatsStore(
				rdb,
				infra.WithStatsPrefix(cfg.Stats.Prefix),
				infra.WithStatsTTL(cfg.Stats.TTL),
				infra.WithStatsBucket(cfg.Stats.Bucket),
				infra.WithStatsTrackKeys(cfg.Stats.TrackKeys),
			)
		}
		return infra.NewRedisCounterStore(rdb, infra.WithCounterPrefix(cfg.Redis.Prefix)), stats, closeFn, nil
	default:
		return nil, nil, nil, errors.New("unsupported rate limit store: " + cfg.Rate.Store)
	}
}
