package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/inventario-pos/internal/domain/inventory"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestWeightedAverageCost(t *testing.T) {
	tests := []struct {
		name     string
		stock    int
		cost     string
		qty      int
		unitCost string
		want     string
	}{
		{"promedio simple", 10, "100", 10, "200", "150"},
		{"sin stock previo toma el costo de entrada", 0, "999", 5, "120", "120"},
		{"redondeo a 2 decimales", 3, "10", 1, "11", "10.25"},
		{"periódico", 2, "10", 1, "20", "13.33"},
		{"stock negativo se trata como cero", -4, "50", 2, "80", "80"},
		{"sin cantidades", 0, "10", 0, "20", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := inventory.WeightedAverageCost(tt.stock, d(tt.cost), tt.qty, d(tt.unitCost))
			assert.True(t, got.Equal(d(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}
