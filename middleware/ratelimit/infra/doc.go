// Package infra contém implementações concretas (infraestrutura) para os contratos
// definidos no pacote domain.
//
// Exemplos:
//   - RedisCounterStore: contador de janela fixa via script Lua (INCR + PEXPIRE)
//   - MemoryCounterStore: mesma semântica em memória, para uma instância só
//   - RedisStatsStore / MemoryStatsStore: contagem de desfechos (proceed, denied...)
package infra
