package ratelimit

import (
	"net/http"
	"time"

	"ratelimit-gateway/middleware/ratelimit/application"
	"ratelimit-gateway/middleware/ratelimit/domain"

	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Next é a continuação fornecida pelo framework HTTP.
//
// Proceed segue para o próximo handler; Fail entrega um erro ao canal de erro
// do framework. Por requisição, o middleware leva a exatamente um de:
// Proceed, OnLimitReached ou OnError.
type Next interface {
	Proceed()
	Fail(err error)
}

// Limiter é o middleware de janela fixa já configurado. É imutável depois de
// New e seguro para uso concorrente; toda coordenação entre processos fica a
// cargo da atomicidade do store.
type Limiter struct {
	svc          application.Service
	keyFn        KeyFunc
	skip         SkipFunc
	onLimit      LimitReachedFunc
	onError      ErrorFunc
	errorHandler ErrorHandlerFunc
	stats        domain.StatsStore
	log          log.FieldLogger
	addHeaders   bool

	// evita inundar o log quando o store cai
	storeErrLog rate.Sometimes
}

// New valida as opções e monta o Limiter. Erros de configuração embrulham
// ErrInvalidOptions e nenhum Limiter parcial é devolvido.
func New(opts *Options) (*Limiter, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	o := opts.normalized()

	return &Limiter{
		svc: application.Service{
			Store:  o.Store,
			Window: o.Window,
			Max:    o.Max,
		},
		keyFn:        o.KeyFn,
		skip:         o.Skip,
		onLimit:      o.OnLimitReached,
		onError:      o.OnError,
		errorHandler: o.ErrorHandler,
		stats:        o.Stats,
		log:          o.Logger,
		addHeaders:   o.AddRateLimitHeaders,
		storeErrLog:  rate.Sometimes{First: 1, Interval: 10 * time.Second},
	}, nil
}

// Middleware é o atalho no formato func(next http.Handler) http.Handler.
func Middleware(opts Options) (func(next http.Handler) http.Handler, error) {
	l, err := New(&opts)
	if err != nil {
		return nil, err
	}
	return l.Handler, nil
}

// Handler adapta o Limiter para net/http. Fail vai para Options.ErrorHandler.
func (l *Limiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		l.Serve(w, r, &httpNext{w: w, r: r, next: next, onErr: l.errorHandler})
	})
}

// Serve roda o fluxo completo para uma requisição: skip, decisão, hook.
// É o ponto de entrada para adapters de outros frameworks.
func (l *Limiter) Serve(w http.ResponseWriter, r *http.Request, next Next) {
	if l.shouldSkip(r) {
		l.record(r, domain.Decision{Outcome: domain.OutcomeSkipped})
		next.Proceed()
		return
	}
	l.judge(w, r, next)
}

func (l *Limiter) judge(w http.ResponseWriter, r *http.Request, next Next) {
	key := l.keyFn(r)

	dec, err := l.svc.Decide(r.Context(), domain.Key(key))
	l.record(r, dec)
	if err != nil {
		l.storeErrLog.Do(func() {
			l.log.WithError(err).WithField("key", key).Warn("rate limit: store operation failed")
		})
		l.onError(err, w, r, next)
		return
	}

	if l.addHeaders {
		w.Header().Set("X-RateLimit-Limit", formatInt(dec.Max))
		w.Header().Set("X-RateLimit-Remaining", formatInt(dec.Remaining()))
	}

	if dec.Outcome == domain.OutcomeDenied {
		l.onLimit(w, r, next, key, dec.Count)
		return
	}
	next.Proceed()
}

func (l *Limiter) record(r *http.Request, dec domain.Decision) {
	if l.stats == nil {
		return
	}
	err := l.stats.Record(r.Context(), domain.StatsEvent{
		Key:     dec.Key,
		Outcome: dec.Outcome,
		Count:   dec.Count,
		Method:  r.Method,
		Path:    r.URL.Path,
		At:      time.Now(),
	})
	if err != nil {
		l.log.WithError(err).Debug("rate limit: stats record failed")
	}
}

type httpNext struct {
	w     http.ResponseWriter
	r     *http.Request
	next  http.Handler
	onErr ErrorHandlerFunc
}

func (n *httpNext) Proceed()       { n.next.ServeHTTP(n.w, n.r) }
func (n *httpNext) Fail(err error) { n.onErr(n.w, n.r, err) }
