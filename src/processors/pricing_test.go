package processors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSolvePrice(t *testing.T) {
	result, err := SolvePrice(PriceSolverInput{
		UnitCost:         300,
		AvgLogistics:     50,
		CommissionPct:    20,
		AcquiringPct:     2,
		TaxPct:           6,
		OtherCosts:       50,
		DesiredProfit:    300,
		BuyerDiscountPct: 15,
	})
	require.NoError(t, err)

	// base 700 / factor 0.72 = 972.22 -> 973; buyer 973 * 0.85 = 827.05 -> 828
	assert.Equal(t, 973.0, result.SitePrice)
	assert.Equal(t, 828.0, result.BuyerPrice)
}

func TestSolvePriceDesiredProfitIsAFloor(t *testing.T) {
	input := PriceSolverInput{
		UnitCost:      123.45,
		AvgLogistics:  37.8,
		CommissionPct: 19.5,
		AcquiringPct:  1.8,
		TaxPct:        6,
		OtherCosts:    42,
		DesiredProfit: 250,
	}

	result, err := SolvePrice(input)
	require.NoError(t, err)

	base := input.UnitCost + input.AvgLogistics + input.OtherCosts + input.DesiredProfit
	factor := 1 - (input.CommissionPct+input.AcquiringPct+input.TaxPct)/100
	assert.GreaterOrEqual(t, result.SitePrice*factor, base,
		"ceil rounding must never shave the desired profit")
	assert.Less(t, (result.SitePrice-1)*factor, base,
		"site price is the smallest whole price that covers the base")
}

func TestSolvePriceDegenerateMargin(t *testing.T) {
	tests := []struct {
		name          string
		commission    float64
		acquiring     float64
		tax           float64
		wantDegenrate bool
	}{
		{"rates consume everything", 60, 30, 15, true},
		{"rates consume exactly 100%", 90, 4, 6, true},
		{"just under 100%", 90, 3, 6, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SolvePrice(PriceSolverInput{
				UnitCost:      100,
				CommissionPct: tt.commission,
				AcquiringPct:  tt.acquiring,
				TaxPct:        tt.tax,
				DesiredProfit: 100,
			})
			if tt.wantDegenrate {
				assert.ErrorIs(t, err, ErrDegenerateMargin)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSolvePriceNoDiscount(t *testing.T) {
	result, err := SolvePrice(PriceSolverInput{
		UnitCost:      100,
		CommissionPct: 20,
		DesiredProfit: 60,
	})
	require.NoError(t, err)

	assert.Equal(t, 200.0, result.SitePrice)
	assert.Equal(t, result.SitePrice, result.BuyerPrice)
}
