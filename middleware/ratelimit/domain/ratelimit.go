package domain

// Camada de domínio do rate limit.
//
// Regras e contratos (interfaces/tipos) sem dependência de net/http.

import (
	"context"
	"errors"
	"time"
)

type Key string

// CounterStore é a capacidade mínima exigida do armazenamento compartilhado:
// incrementar o contador da chave e, somente quando o resultado for 1
// (bucket recém-criado), definir a expiração para `window`.
//
// As duas etapas precisam acontecer numa única operação atômica do lado do
// store. Separar em INCR + EXPIRE feitos pelo chamador abre uma corrida entre
// requisições concorrentes na mesma chave.
type CounterStore interface {
	IncrWindow(ctx context.Context, key Key, window time.Duration) (int64, error)
}

// Outcome é o resultado de uma requisição no rate limit. Não é persistido.
type Outcome string

const (
	OutcomeProceed    Outcome = "proceed"
	OutcomeDenied     Outcome = "denied"
	OutcomeStoreError Outcome = "store-error"
	OutcomeSkipped    Outcome = "skipped"
)

type Decision struct {
	Outcome Outcome
	Key     Key
	// Count é o valor do contador após o incremento. Zero quando o store não
	// foi consultado (skip) ou falhou.
	Count int64
	Max   int64
}

// Remaining é quantas requisições ainda cabem na janela atual.
func (d Decision) Remaining() int64 {
	if d.Count >= d.Max {
		return 0
	}
	return d.Max - d.Count
}

// ErrUnexpectedReply indica que o store respondeu algo que não é um contador.
var ErrUnexpectedReply = errors.New("ratelimit: unexpected store reply")
