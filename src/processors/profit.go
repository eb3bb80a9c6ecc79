package processors

import "github.com/username/sellfolio/backend/src/models"

// ProfitFigures carries the two profitability views for one SKU. They answer
// different questions and are never collapsed: ProfitFact is how the SKU
// actually performed with the logistics it really incurred, ProfitItem is its
// steady-state unit margin with logistics normalized to the per-unit average,
// so one unusually expensive shipment cannot skew pricing decisions.
type ProfitFigures struct {
	MarketplaceCosts    float64 `json:"marketplaceCosts"`
	ProfitFact          float64 `json:"profitFact"`
	AvgLogisticsPerUnit float64 `json:"avgLogisticsPerUnit"`
	ProfitItem          float64 `json:"profitItem"`
}

// ComputeProfit derives both profit figures from a SKU aggregate and the
// externally supplied unit cost (0 when the cost book has no entry).
func ComputeProfit(agg *models.SkuAggregate, unitCost float64) ProfitFigures {
	marketplaceCosts := agg.LogisticsSum + agg.FinesSum + agg.StorageSum +
		agg.WithholdingsSum + agg.AcceptanceSum

	goodsCost := unitCost * float64(agg.UnitsNet)
	avgLogistics := agg.AvgLogisticsPerUnit()

	nonLogisticsCosts := agg.FinesSum + agg.StorageSum + agg.WithholdingsSum + agg.AcceptanceSum

	return ProfitFigures{
		MarketplaceCosts:    marketplaceCosts,
		ProfitFact:          agg.AmountToSellerSum - marketplaceCosts - goodsCost,
		AvgLogisticsPerUnit: avgLogistics,
		ProfitItem: agg.AmountToSellerSum - avgLogistics*float64(agg.UnitsNet) -
			nonLogisticsCosts - goodsCost,
	}
}
