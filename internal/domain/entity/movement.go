package entity

import "time"

// Tipos de movimiento de stock.
const (
	MovementIncrease = "increase"
	MovementDecrease = "decrease"
	MovementSet      = "set"
	MovementSale     = "sale"
)

// Movement registro append-only de una mutación de stock.
// En ventas QuantityChanged es la cantidad vendida (positiva; el tipo indica la dirección).
// En ajustes es la variación con signo (negativa en decrease y en set hacia abajo).
// FinalStock es el stock resultante.
type Movement struct {
	ID              int64
	ProductID       int64
	UserID          int64
	Type            string
	QuantityChanged int
	FinalStock      int
	Timestamp       time.Time
}

// IsValidAdjustment indica si t es un tipo de ajuste manual (no venta).
func IsValidAdjustment(t string) bool {
	switch t {
	case MovementIncrease, MovementDecrease, MovementSet:
		return true
	}
	return false
}
