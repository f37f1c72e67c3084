package application

import (
	"context"
	"errors"
	"time"

	"ratelimit-gateway/middleware/ratelimit/domain"
)

var ErrNoStore = errors.New("ratelimit: no counter store configured")

// Service concentra a regra de aplicação do rate limit de janela fixa.
//
// Ele não sabe nada sobre HTTP (headers/status), apenas retorna uma decisão.
// Cada chamada a Decide faz exatamente uma ida ao store; não há retry.
type Service struct {
	Store  domain.CounterStore
	Window time.Duration
	Max    int64
}

// Decide incrementa o bucket da chave e classifica o resultado.
//
// count == Max ainda é permitido; só count > Max nega. Em caso de erro do
// store a decisão volta com OutcomeStoreError e o erro original.
func (s Service) Decide(ctx context.Context, key domain.Key) (domain.Decision, error) {
	dec := domain.Decision{Key: key, Max: s.Max}
	if s.Store == nil {
		dec.Outcome = domain.OutcomeStoreError
		return dec, ErrNoStore
	}

	count, err := s.Store.IncrWindow(ctx, key, s.Window)
	if err != nil {
		dec.Outcome = domain.OutcomeStoreError
		return dec, err
	}

	dec.Count = count
	if count > s.Max {
		dec.Outcome = domain.OutcomeDenied
		return dec, nil
	}
	dec.Outcome = domain.OutcomeProceed
	return dec, nil
}
