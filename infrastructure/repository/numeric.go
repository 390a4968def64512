package repository

import "math"

// maxStoredRatio cabe em NUMERIC(20,4) com folga para o float64
const maxStoredRatio = 1e15

// storableRatio limita razões derivadas ao que as colunas aceitam.
// Sem isso um ROAS extremo estoura com 22003 e a campanha falha todo ciclo.
func storableRatio(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v > maxStoredRatio:
		return maxStoredRatio
	case v < -maxStoredRatio:
		return -maxStoredRatio
	}
	return v
}
