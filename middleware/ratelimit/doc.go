// Package ratelimit fornece o middleware HTTP (net/http) de rate limit por
// janela fixa, com contador compartilhado num store externo (Redis).
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (sem dependência de net/http)
//   - application: caso de uso (incremento atômico + classificação) sem net/http
//   - infra: implementações concretas (script Lua no Redis, memória, estatísticas)
//   - ratelimit (este pacote): validação das opções, chave, skip, hooks e adapter HTTP
//   - ginlimit: o mesmo Limiter como gin.HandlerFunc
//
// Fluxo por requisição:
//
//  1. Skip: se o predicado disser true, segue sem tocar no store
//  2. Extrai a chave (padrão: primeiro IPv4 do X-Forwarded-For/RemoteAddr)
//  3. Uma ida ao store: INCR e, se o resultado for 1, PEXPIRE window
//  4. count > Max chama OnLimitReached (padrão 429); erro do store chama OnError;
//     caso contrário segue para o próximo handler
//
// A janela é fixa: o TTL nasce com o bucket e não é renovado, então rajadas na
// virada da janela são possíveis. O middleware não coloca timeout na ida ao
// store; usa o contexto da requisição e os timeouts do client Redis.
package ratelimit
