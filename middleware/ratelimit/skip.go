package ratelimit

import (
	"context"
	"net/http"
	"strings"
)

// SkipFunc decide se a requisição ignora o rate limit. Pode bloquear (ex: I/O);
// deve respeitar ctx. Um erro NÃO libera a requisição: o limite é aplicado.
type SkipFunc func(ctx context.Context, r *http.Request) (bool, error)

func neverSkip(context.Context, *http.Request) (bool, error) { return false, nil }

// SkipPaths pula requisições cujo path começa com algum dos prefixos.
func SkipPaths(prefixes ...string) SkipFunc {
	return func(_ context.Context, r *http.Request) (bool, error) {
		for _, p := range prefixes {
			if p != "" && strings.HasPrefix(r.URL.Path, p) {
				return true, nil
			}
		}
		return false, nil
	}
}

func (l *Limiter) shouldSkip(r *http.Request) bool {
	skip, err := l.skip(r.Context(), r)
	if err != nil {
		l.log.WithError(err).WithField("path", r.URL.Path).Debug("rate limit: skip predicate failed, applying limit")
		return false
	}
	return skip
}
