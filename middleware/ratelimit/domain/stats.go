package domain

import (
	"context"
	"time"
)

// StatsEvent representa o desfecho de uma requisição no rate limit.
//
// Ele é propositalmente "agnóstico de HTTP": Method/Path são strings genéricas
// e podem ser usadas para web, gRPC, etc.
//
// Observação: cuidado com cardinalidade (ex.: salvar Key/Path sem controle pode
// explodir o número de séries/chaves em uma base como Redis).
type StatsEvent struct {
	Key     Key
	Outcome Outcome
	Count   int64

	Method string
	Path   string

	At time.Time
}

// StatsStore é a estratégia de persistência para estatísticas do rate limit.
//
// O middleware trata erro como best-effort: falhar ao registrar nunca muda a
// decisão da requisição.
type StatsStore interface {
	Record(ctx context.Context, ev StatsEvent) error
}
