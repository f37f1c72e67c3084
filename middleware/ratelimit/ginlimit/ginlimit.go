// Package ginlimit liga o ratelimit.Limiter ao gin.
//
// Fail registra o erro em c.Errors e aborta com o status do erro
// (429 para o hook padrão de limite, 500 para falhas do store). Um
// *ratelimit.StatusError vira corpo JSON e Retry-After, como no adapter net/http.
package ginlimit

import (
	"errors"
	"net/http"

	"ratelimit-gateway/middleware/ratelimit"

	"github.com/gin-gonic/gin"
)

// Middleware devolve um gin.HandlerFunc que aplica o limiter.
//
// Se o fluxo não terminou em Proceed (hook de limite customizado, por
// exemplo), a cadeia é abortada: o gin seguiria para o handler sozinho.
func Middleware(l *ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		n := &ginNext{c: c}
		l.Serve(c.Writer, c.Request, n)
		if !n.proceeded {
			c.Abort()
		}
	}
}

// New valida as opções e já devolve o handler do gin.
func New(opts ratelimit.Options) (gin.HandlerFunc, error) {
	l, err := ratelimit.New(&opts)
	if err != nil {
		return nil, err
	}
	return Middleware(l), nil
}

type ginNext struct {
	c         *gin.Context
	proceeded bool
}

func (n *ginNext) Proceed() {
	n.proceeded = true
	n.c.Next()
}

func (n *ginNext) Fail(err error) {
	_ = n.c.Error(err)

	var se *ratelimit.StatusError
	if !errors.As(err, &se) {
		n.c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	if se.RetryAfter > 0 {
		n.c.Header("Retry-After", ratelimit.RetryAfterHeader(se.RetryAfter))
	}
	n.c.AbortWithStatusJSON(ratelimit.StatusOf(se), gin.H{"error": se.Error()})
}
