package services

import (
	"testing"

	"theatre-concessions/models"
)

func TestComputeTotal(t *testing.T) {
	tests := []struct {
		name  string
		lines []models.CartLine
		want  int64
	}{
		{"empty cart", nil, 0},
		{
			// (10.00-1.00)*2 + (5.00-0.50)*3 = 18.00 + 13.50 = 31.50
			"two discounted lines",
			[]models.CartLine{
				{UnitPrice: 1000, Discount: 100, Quantity: 2},
				{UnitPrice: 500, Discount: 50, Quantity: 3},
			},
			3150,
		},
		{
			"discount larger than price clamps to zero",
			[]models.CartLine{
				{UnitPrice: 200, Discount: 300, Quantity: 5},
				{UnitPrice: 100, Discount: 0, Quantity: 1},
			},
			100,
		},
		{
			"no discounts",
			[]models.CartLine{{UnitPrice: 2095, Discount: 0, Quantity: 1}},
			2095,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeTotal(tt.lines); got != tt.want {
				t.Errorf("ComputeTotal() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestComputeTotalIsPure(t *testing.T) {
	lines := []models.CartLine{{UnitPrice: 1000, Discount: 100, Quantity: 2}}
	first := ComputeTotal(lines)
	second := ComputeTotal(lines)
	if first != second {
		t.Errorf("repeated calls differ: %d vs %d", first, second)
	}
	if lines[0].UnitPrice != 1000 || lines[0].Quantity != 2 {
		t.Error("ComputeTotal mutated its input")
	}
}
