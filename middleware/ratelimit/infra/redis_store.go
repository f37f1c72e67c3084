package infra

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ratelimit-gateway/middleware/ratelimit/domain"

	"github.com/redis/go-redis/v9"
)

// incrWindowScript incrementa e, só na criação do bucket, aplica o PEXPIRE.
// Roda inteiro dentro do Redis, então chamadas concorrentes na mesma chave são
// serializadas: exatamente uma vê 1 e define o TTL.
var incrWindowScript = redis.NewScript(`
local current = tonumber(redis.call("INCR", KEYS[1]))
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

// RedisCounterStore implementa domain.CounterStore sobre Redis.
//
// O client é injetado e nunca fechado aqui; quem criou a conexão é dono dela.
// Aceita *redis.Client, *redis.ClusterClient ou *redis.Ring.
type RedisCounterStore struct {
	rdb    redis.Scripter
	prefix string
}

type RedisCounterOption func(*RedisCounterStore)

// WithCounterPrefix adiciona "prefix:" antes de cada chave no Redis.
func WithCounterPrefix(prefix string) RedisCounterOption {
	return func(s *RedisCounterStore) { s.prefix = strings.Trim(prefix, ":") }
}

func NewRedisCounterStore(rdb redis.Scripter, opts ...RedisCounterOption) *RedisCounterStore {
	s := &RedisCounterStore{rdb: rdb}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IncrWindow implementa domain.CounterStore.
//
// O script é enviado via EVALSHA e cai para EVAL quando o Redis ainda não o
// conhece (NOSCRIPT). Isso continua sendo uma única operação atômica.
func (s *RedisCounterStore) IncrWindow(ctx context.Context, key domain.Key, window time.Duration) (int64, error) {
	ms := window.Milliseconds()
	if ms <= 0 {
		return 0, fmt.Errorf("ratelimit: window must be at least 1ms, got %s", window)
	}

	res, err := incrWindowScript.Run(ctx, s.rdb, []string{s.redisKey(key)}, ms).Result()
	if err != nil {
		return 0, err
	}

	switch v := res.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	default:
		return 0, fmt.Errorf("%w: %T", domain.ErrUnexpectedReply, res)
	}
}

func (s *RedisCounterStore) redisKey(key domain.Key) string {
	if s.prefix == "" {
		return string(key)
	}
	return s.prefix + ":" + string(key)
}
