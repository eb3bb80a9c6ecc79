package processors

import (
	"github.com/username/sellfolio/backend/src/models"
	"github.com/username/sellfolio/backend/src/utils"
)

// AggregationResult holds one full aggregation pass over a record set.
type AggregationResult struct {
	BySku       map[string]*models.SkuAggregate
	ByOperation map[string]*models.OperationAggregate
}

// Aggregate folds a sequence of normalized records into per-SKU and
// per-operation-type totals. It is a pure function of its input: every call
// builds fresh accumulators, so re-invoking it over a different subset can
// never leak state from a previous pass. Records with an unresolved SKU are
// skipped for BySku but still counted in ByOperation.
func Aggregate(records []models.NormalizedRecord) AggregationResult {
	result := AggregationResult{
		BySku:       make(map[string]*models.SkuAggregate),
		ByOperation: make(map[string]*models.OperationAggregate),
	}
	for _, rec := range records {
		accumulateOperation(result.ByOperation, rec)
		if rec.SKU == "" {
			continue
		}
		accumulateSku(result.BySku, rec)
	}
	return result
}

// Merge folds other into r by field-wise addition. Aggregating two disjoint
// subsets and merging equals aggregating their union directly.
func (r AggregationResult) Merge(other AggregationResult) {
	for sku, agg := range other.BySku {
		if existing, ok := r.BySku[sku]; ok {
			existing.Merge(agg)
		} else {
			clone := *agg
			r.BySku[sku] = &clone
		}
	}
	for label, agg := range other.ByOperation {
		if existing, ok := r.ByOperation[label]; ok {
			existing.Merge(agg)
		} else {
			clone := *agg
			r.ByOperation[label] = &clone
		}
	}
}

func accumulateSku(bySku map[string]*models.SkuAggregate, rec models.NormalizedRecord) {
	agg, ok := bySku[rec.SKU]
	if !ok {
		agg = &models.SkuAggregate{SKU: rec.SKU}
		bySku[rec.SKU] = agg
	}

	switch rec.OperationKind {
	case models.OperationSale:
		agg.UnitsNet += rec.Quantity
	case models.OperationReturn:
		agg.UnitsNet -= rec.Quantity
		agg.ReturnedUnits += rec.Quantity
	}

	agg.RevenueSum += rec.RealizedAmount
	agg.AmountToSellerSum += rec.TransferAmount
	agg.LogisticsSum += rec.LogisticsFee
	agg.FinesSum += rec.FinesAmount
	agg.StorageSum += rec.StorageFee
	agg.WithholdingsSum += rec.WithholdingsAmount
	agg.AcceptanceSum += rec.AcceptanceFee

	weight := utils.MaxInt(1, utils.AbsInt(rec.Quantity))

	// Logistics is billed per fulfillment event, so the per-unit divisor
	// counts units only on records that actually carried a delivery fee.
	if rec.LogisticsFee > 0 {
		agg.LogisticsUnitCount += weight
	}

	if rec.CommissionRatePct != 0 {
		agg.CommissionRateWeightedSum += rec.CommissionRatePct * float64(weight)
		agg.CommissionWeightCount += weight
	}
	if rec.AcquiringRatePct != 0 {
		agg.AcquiringRateWeightedSum += rec.AcquiringRatePct * float64(weight)
		agg.AcquiringWeightCount += weight
	}

	if rec.OperationKind == models.OperationSale && rec.RetailPriceWithDiscount > 0 {
		agg.GrossSalePriceSum += rec.RetailPriceWithDiscount * float64(weight)
		agg.GrossSaleUnitCount += weight
	}
}

func accumulateOperation(byOperation map[string]*models.OperationAggregate, rec models.NormalizedRecord) {
	agg, ok := byOperation[rec.OperationLabel]
	if !ok {
		agg = &models.OperationAggregate{Label: rec.OperationLabel}
		byOperation[rec.OperationLabel] = agg
	}

	agg.RealizedSum += rec.RealizedAmount
	agg.AmountToSellerSum += rec.TransferAmount
	agg.LogisticsSum += rec.LogisticsFee
	agg.FinesSum += rec.FinesAmount
	agg.StorageSum += rec.StorageFee
	agg.WithholdingsSum += rec.WithholdingsAmount
	agg.AcceptanceSum += rec.AcceptanceFee
}
