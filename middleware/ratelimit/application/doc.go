// Package application contém o caso de uso do rate limit de janela fixa.
//
// Ele depende apenas do pacote domain e não conhece net/http.
// Ex.: Service.Decide(ctx, key) retorna uma Decision (proceed/denied) ou o erro
// do store.
package application
