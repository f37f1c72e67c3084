package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ratelimit-gateway/middleware/ratelimit"
	"ratelimit-gateway/middleware/ratelimit/domain"
	"ratelimit-gateway/middleware/ratelimit/infra"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Exemplo: middleware injetado direto no webserver (sem proxy), com três
// configurações diferentes por rota.
func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var store domain.CounterStore
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: addr})
		defer func() { _ = rdb.Close() }()
		store = infra.NewRedisCounterStore(rdb)
	} else {
		mem := infra.NewMemoryCounterStore()
		mem.StartJanitor(ctx)
		store = mem
	}

	byKey := func(*http.Request) string { return "example:someKey" }

	// 1 requisição por segundo, resposta padrão 429.
	basic := mustLimiter(ratelimit.Options{Store: store, Window: time.Second, Max: 1, KeyFn: byKey})

	// 1 por segundo, resposta própria e ?skip=true ignora o limite.
	custom := mustLimiter(ratelimit.Options{
		Store:  store,
		Window: time.Second,
		Max:    1,
		KeyFn:  func(*http.Request) string { return "example:custom" },
		OnLimitReached: func(w http.ResponseWriter, _ *http.Request, _ ratelimit.Next, key string, count int64) {
			log.WithFields(log.Fields{"key": key, "count": count}).Info("limit reached")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]int{"code": 1})
		},
		Skip: func(_ context.Context, r *http.Request) (bool, error) {
			return r.URL.Query().Get("skip") != "", nil
		},
	})

	// 2 requisições a cada 100ms por IP, com headers de limite.
	burst := mustLimiter(ratelimit.Options{
		Store:               store,
		Window:              100 * time.Millisecond,
		Max:                 2,
		AddRateLimitHeaders: true,
	})

	ok := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	}

	r := chi.NewRouter()
	r.With(basic.Handler).Get("/", ok)
	r.With(custom.Handler).Get("/2", ok)
	r.With(burst.Handler).Get("/3", ok)

	addr := ":8081"
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		addr = v
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Infof("example server listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Fatal("server error")
	}
}

func mustLimiter(opts ratelimit.Options) *ratelimit.Limiter {
	l, err := ratelimit.New(&opts)
	if err != nil {
		log.WithError(err).Fatal("rate limit config error")
	}
	return l
}
