package processors

import (
	"errors"
	"math"
)

// ErrDegenerateMargin is returned when commission, acquiring and tax together
// consume 100% or more of the price: no finite sale price can yield the
// desired profit. Callers must surface this as "no valid price", never as a
// price of zero.
var ErrDegenerateMargin = errors.New("commission, acquiring and tax consume the entire price")

// PriceSolverInput seeds the target-price computation. Percentages are whole
// numbers (20 means 20%); monetary fields share one currency.
type PriceSolverInput struct {
	UnitCost         float64 `json:"unitCost"`
	AvgLogistics     float64 `json:"avgLogistics"`
	CommissionPct    float64 `json:"commissionPct"`
	AcquiringPct     float64 `json:"acquiringPct"`
	TaxPct           float64 `json:"taxPct"`
	OtherCosts       float64 `json:"otherCosts"`
	DesiredProfit    float64 `json:"desiredProfit"`
	BuyerDiscountPct float64 `json:"buyerDiscountPct"`
}

// PriceSolverResult is the solved listing price and the price a buyer sees
// after the platform discount program is applied.
type PriceSolverResult struct {
	SitePrice  float64 `json:"sitePrice"`
	BuyerPrice float64 `json:"buyerPrice"`
}

// SolvePrice back-computes the sale price that covers all costs and the
// desired profit. Both prices round up independently so the desired profit
// is a floor that rounding can never erode.
func SolvePrice(input PriceSolverInput) (PriceSolverResult, error) {
	factor := 1 - (input.CommissionPct+input.AcquiringPct+input.TaxPct)/100
	if factor <= 0 {
		return PriceSolverResult{}, ErrDegenerateMargin
	}

	base := input.UnitCost + input.AvgLogistics + input.OtherCosts + input.DesiredProfit
	sitePrice := math.Ceil(base / factor)
	buyerPrice := math.Ceil(sitePrice * (1 - input.BuyerDiscountPct/100))

	return PriceSolverResult{SitePrice: sitePrice, BuyerPrice: buyerPrice}, nil
}
