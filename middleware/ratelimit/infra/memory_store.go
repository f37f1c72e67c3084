package infra

import (
	"context"
	"sync"
	"time"

	"ratelimit-gateway/middleware/ratelimit/domain"
)

// MemoryCounterStore é uma implementação de domain.CounterStore em memória,
// com a mesma semântica do script Redis: o TTL é definido só quando o bucket
// nasce (count=1) e nunca é renovado dentro da janela.
//
// Serve para uma única instância e para testes. Várias instâncias do gateway
// não compartilham contadores com ela.
type MemoryCounterStore struct {
	mu           sync.Mutex
	buckets      map[string]*bucket
	now          func() time.Time
	cleanupEvery time.Duration
}

type bucket struct {
	count     int64
	expiresAt time.Time
}

type MemoryCounterOption func(*MemoryCounterStore)

func WithCleanupEvery(d time.Duration) MemoryCounterOption {
	return func(s *MemoryCounterStore) { s.cleanupEvery = d }
}

// WithClock troca a fonte de tempo (útil em testes).
func WithClock(now func() time.Time) MemoryCounterOption {
	return func(s *MemoryCounterStore) {
		if now != nil {
			s.now = now
		}
	}
}

func NewMemoryCounterStore(opts ...MemoryCounterOption) *MemoryCounterStore {
	s := &MemoryCounterStore{
		buckets:      make(map[string]*bucket),
		now:          time.Now,
		cleanupEvery: time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IncrWindow implementa domain.CounterStore.
func (s *MemoryCounterStore) IncrWindow(_ context.Context, key domain.Key, window time.Duration) (int64, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.buckets[string(key)]
	if !ok || !now.Before(b.expiresAt) {
		b = &bucket{count: 1, expiresAt: now.Add(window)}
		s.buckets[string(key)] = b
		return 1, nil
	}
	b.count++
	return b.count, nil
}

// TTL retorna quanto falta para o bucket expirar (0 se não existe).
func (s *MemoryCounterStore) TTL(key domain.Key) time.Duration {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.buckets[string(key)]
	if !ok || !now.Before(b.expiresAt) {
		return 0
	}
	return b.expiresAt.Sub(now)
}

func (s *MemoryCounterStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buckets)
}

// Cleanup remove buckets expirados. Não altera o resultado de IncrWindow,
// apenas libera memória.
func (s *MemoryCounterStore) Cleanup() {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, b := range s.buckets {
		if !now.Before(b.expiresAt) {
			delete(s.buckets, k)
		}
	}
}

// StartJanitor inicia uma goroutine que limpa buckets expirados periodicamente.
// Pare cancelando o contexto.
func (s *MemoryCounterStore) StartJanitor(ctx context.Context) {
	if s.cleanupEvery <= 0 {
		return
	}

	t := time.NewTicker(s.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.Cleanup()
			}
		}
	}()
}
