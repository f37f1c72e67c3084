// utilitário pequeno para formatação rápida/consistente de valores numéricos em headers.
// Evita puxar fmt só para formatação simples.

package ratelimit

import "strconv"

func formatInt(v int64) string { return strconv.FormatInt(v, 10) }
