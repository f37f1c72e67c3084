package ratelimit

import (
	"errors"
	"net/http"
	"time"
)

// ErrInvalidOptions é a causa de todo erro de configuração devolvido por New.
var ErrInvalidOptions = errors.New("ratelimit: invalid options")

// StatusError é um erro que carrega o status HTTP a ser respondido.
// O hook padrão de limite usa 429 com "Too many requests".
type StatusError struct {
	Code       int
	Message    string
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return http.StatusText(e.Code)
}

// StatusOf devolve o status HTTP associado ao erro, ou 500.
func StatusOf(err error) int {
	var se *StatusError
	if errors.As(err, &se) && se.Code > 0 {
		return se.Code
	}
	return http.StatusInternalServerError
}

// DefaultErrorHandler responde um *StatusError com seu status e mensagem
// (e Retry-After em segundos, se houver). Qualquer outro erro vira 500 sem
// expor detalhes ao cliente.
func DefaultErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	var se *StatusError
	if !errors.As(err, &se) {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if se.RetryAfter > 0 {
		w.Header().Set("Retry-After", RetryAfterHeader(se.RetryAfter))
	}
	http.Error(w, se.Error(), StatusOf(se))
}

// RetryAfterHeader formata d em segundos para o header Retry-After,
// arredondando para cima: "0" faria o cliente tentar de novo na hora.
func RetryAfterHeader(d time.Duration) string {
	s := int64(d / time.Second)
	if d%time.Second != 0 {
		s++
	}
	return formatInt(s)
}
