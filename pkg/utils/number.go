package utils

import (
	"math"

	"github.com/shopspring/decimal"
)

// Round arredonda para um número fixo de casas decimais (meio para longe do zero).
// Passa pela representação decimal para que a mesma entrada gere sempre o mesmo float.
func Round(f float64, places int32) float64 {
	if f == 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}

	rounded, _ := decimal.NewFromFloat(f).Round(places).Float64()
	return rounded
}
