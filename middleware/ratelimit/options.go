package ratelimit

import (
	"fmt"
	"net/http"
	"time"

	"ratelimit-gateway/middleware/ratelimit/domain"

	log "github.com/sirupsen/logrus"
)

// LimitReachedFunc é chamado quando count > Max. Ele é dono da resposta: o
// middleware não segue a cadeia por conta própria depois dele.
type LimitReachedFunc func(w http.ResponseWriter, r *http.Request, next Next, key string, count int64)

// ErrorFunc é chamado quando o store falha. Ele é dono do encaminhamento do erro.
// Não há retry no middleware; quem quiser, faz aqui.
type ErrorFunc func(err error, w http.ResponseWriter, r *http.Request, next Next)

// ErrorHandlerFunc renderiza erros enviados por Next.Fail no adapter net/http.
type ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)

type Options struct {
	// Store é obrigatório e compartilhado; o middleware nunca o fecha.
	Store domain.CounterStore
	// Window precisa ser um número inteiro de milissegundos > 0.
	Window time.Duration
	// Max é inclusivo: a requisição de número Max ainda passa.
	Max int64

	KeyFn          KeyFunc
	Skip           SkipFunc
	OnLimitReached LimitReachedFunc
	OnError        ErrorFunc

	ErrorHandler ErrorHandlerFunc
	// Stats recebe todo desfecho, inclusive requisições puladas pelo Skip.
	// O contador nunca é tocado num skip, mas um RedisStatsStore ainda faz
	// uma ida ao Redis para registrar o evento. Nil desliga.
	Stats  domain.StatsStore
	Logger log.FieldLogger

	AddRateLimitHeaders bool
}

// validate segue a ordem fixa das regras e para no primeiro campo inválido.
func (o *Options) validate() error {
	if o == nil {
		return fmt.Errorf("%w: options must not be nil", ErrInvalidOptions)
	}
	if o.Store == nil {
		return fmt.Errorf("%w: store must be a client instance", ErrInvalidOptions)
	}
	if o.Window <= 0 || o.Window%time.Millisecond != 0 {
		return fmt.Errorf("%w: window must be a whole number of milliseconds larger than zero, got %s", ErrInvalidOptions, o.Window)
	}
	if o.Max <= 0 {
		return fmt.Errorf("%w: max must be an integer larger than zero, got %d", ErrInvalidOptions, o.Max)
	}
	return nil
}

// normalized devolve uma cópia com os defaults aplicados nos hooks ausentes.
func (o Options) normalized() Options {
	if o.KeyFn == nil {
		o.KeyFn = DefaultKeyFunc
	}
	if o.Skip == nil {
		o.Skip = neverSkip
	}
	if o.OnLimitReached == nil {
		o.OnLimitReached = defaultOnLimitReached(o.Window)
	}
	if o.OnError == nil {
		o.OnError = defaultOnError
	}
	if o.ErrorHandler == nil {
		o.ErrorHandler = DefaultErrorHandler
	}
	if o.Logger == nil {
		o.Logger = log.StandardLogger()
	}
	return o
}

func defaultOnLimitReached(window time.Duration) LimitReachedFunc {
	return func(_ http.ResponseWriter, _ *http.Request, next Next, _ string, _ int64) {
		next.Fail(&StatusError{
			Code:       http.StatusTooManyRequests,
			Message:    "Too many requests",
			RetryAfter: window,
		})
	}
}

func defaultOnError(err error, _ http.ResponseWriter, _ *http.Request, next Next) {
	next.Fail(err)
}
