// Package inventory servicios de dominio puros sobre stock y costos.
package inventory

import "github.com/shopspring/decimal"

// WeightedAverageCost costo promedio ponderado tras una entrada de mercadería.
// NuevoCosto = ((StockActual * CostoActual) + (CantEntrada * CostoEntrada)) / (StockActual + CantEntrada)
// Con stock actual negativo o nulo el costo pasa a ser el de la entrada. Redondea a 2 decimales.
func WeightedAverageCost(stock int, cost decimal.Decimal, qty int, unitCost decimal.Decimal) decimal.Decimal {
	if stock < 0 {
		stock = 0
	}
	sum := stock + qty
	if sum <= 0 {
		return decimal.Zero
	}
	num := decimal.NewFromInt(int64(stock)).Mul(cost).Add(decimal.NewFromInt(int64(qty)).Mul(unitCost))
	return num.Div(decimal.NewFromInt(int64(sum))).Round(2)
}
