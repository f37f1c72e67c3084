package ratelimit

import (
	"net/http"
	"regexp"
)

// KeyPrefix separa as chaves do rate limit de qualquer outro uso do store.
const KeyPrefix = "rate-limit-middleware:"

// FallbackIP é usado quando nenhum IPv4 é encontrado na requisição.
// Todas essas origens (incluindo IPv6) caem no mesmo bucket.
const FallbackIP = "0.0.0.0"

var ipv4Pattern = regexp.MustCompile(`\d+\.\d+\.\d+\.\d+`)

// KeyFunc mapeia a requisição para a chave do bucket. Deve ser pura.
type KeyFunc func(r *http.Request) string

// DefaultKeyFunc usa o primeiro IPv4 do X-Forwarded-For ou, sem o header, do
// RemoteAddr. Sem IPv4 reconhecível usa FallbackIP.
//
// O header não é validado: um cliente pode escolher o próprio bucket. Não use
// como barreira de segurança sem um proxy confiável na frente.
func DefaultKeyFunc(r *http.Request) string {
	src := r.Header.Get("X-Forwarded-For")
	if src == "" {
		src = r.RemoteAddr
	}

	ip := ipv4Pattern.FindString(src)
	if ip == "" {
		ip = FallbackIP
	}
	return KeyPrefix + ip
}

// HeaderKeyFunc usa o valor do header (ex: X-Api-Key) como chave e cai para
// fallback quando o header está vazio.
func HeaderKeyFunc(header string, fallback KeyFunc) KeyFunc {
	if fallback == nil {
		fallback = DefaultKeyFunc
	}
	return func(r *http.Request) string {
		if v := r.Header.Get(header); v != "" {
			return KeyPrefix + header + ":" + v
		}
		return fallback(r)
	}
}
