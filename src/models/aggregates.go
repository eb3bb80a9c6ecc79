package models

// SkuAggregate accumulates monetary and unit totals for one SKU. It is built
// fresh on every aggregation pass; partial aggregates for the same SKU merge
// by field-wise addition.
type SkuAggregate struct {
	SKU string `json:"sku"`

	UnitsNet      int `json:"unitsNet"` // +sold, -returned
	ReturnedUnits int `json:"returnedUnits"`

	RevenueSum        float64 `json:"revenueSum"`
	AmountToSellerSum float64 `json:"amountToSellerSum"`
	LogisticsSum      float64 `json:"logisticsSum"`
	FinesSum          float64 `json:"finesSum"`
	StorageSum        float64 `json:"storageSum"`
	WithholdingsSum   float64 `json:"withholdingsSum"`
	AcceptanceSum     float64 `json:"acceptanceSum"`

	// LogisticsUnitCount counts units on records that actually billed a
	// logistics fee, so LogisticsSum/LogisticsUnitCount is a cost per
	// shipped unit rather than per sold unit.
	LogisticsUnitCount int `json:"logisticsUnitCount"`

	CommissionRateWeightedSum float64 `json:"commissionRateWeightedSum"`
	CommissionWeightCount     int     `json:"commissionWeightCount"`
	AcquiringRateWeightedSum  float64 `json:"acquiringRateWeightedSum"`
	AcquiringWeightCount      int     `json:"acquiringWeightCount"`

	GrossSalePriceSum  float64 `json:"grossSalePriceSum"`
	GrossSaleUnitCount int     `json:"grossSaleUnitCount"`
}

// Merge adds other into a, field by field.
func (a *SkuAggregate) Merge(other *SkuAggregate) {
	a.UnitsNet += other.UnitsNet
	a.ReturnedUnits += other.ReturnedUnits
	a.RevenueSum += other.RevenueSum
	a.AmountToSellerSum += other.AmountToSellerSum
	a.LogisticsSum += other.LogisticsSum
	a.FinesSum += other.FinesSum
	a.StorageSum += other.StorageSum
	a.WithholdingsSum += other.WithholdingsSum
	a.AcceptanceSum += other.AcceptanceSum
	a.LogisticsUnitCount += other.LogisticsUnitCount
	a.CommissionRateWeightedSum += other.CommissionRateWeightedSum
	a.CommissionWeightCount += other.CommissionWeightCount
	a.AcquiringRateWeightedSum += other.AcquiringRateWeightedSum
	a.AcquiringWeightCount += other.AcquiringWeightCount
	a.GrossSalePriceSum += other.GrossSalePriceSum
	a.GrossSaleUnitCount += other.GrossSaleUnitCount
}

// AvgLogisticsPerUnit is the SKU's logistics spend per shipped unit, 0 when
// no record billed logistics.
func (a *SkuAggregate) AvgLogisticsPerUnit() float64 {
	if a.LogisticsUnitCount <= 0 {
		return 0
	}
	return a.LogisticsSum / float64(a.LogisticsUnitCount)
}

// AvgCommissionRate is the quantity-weighted average commission percentage.
// ok is false when no record carried a rate.
func (a *SkuAggregate) AvgCommissionRate() (rate float64, ok bool) {
	if a.CommissionWeightCount <= 0 {
		return 0, false
	}
	return a.CommissionRateWeightedSum / float64(a.CommissionWeightCount), true
}

// AvgAcquiringRate is the quantity-weighted average acquiring percentage.
func (a *SkuAggregate) AvgAcquiringRate() (rate float64, ok bool) {
	if a.AcquiringWeightCount <= 0 {
		return 0, false
	}
	return a.AcquiringRateWeightedSum / float64(a.AcquiringWeightCount), true
}

// AvgGrossSalePrice is the quantity-weighted average realized unit price over
// sale records that carried a positive retail price.
func (a *SkuAggregate) AvgGrossSalePrice() float64 {
	if a.GrossSaleUnitCount <= 0 {
		return 0
	}
	return a.GrossSalePriceSum / float64(a.GrossSaleUnitCount)
}

// OperationAggregate accumulates monetary totals for one operation type
// (keyed by the resolved payment-basis label, not by SKU).
type OperationAggregate struct {
	Label string `json:"label"`

	RealizedSum       float64 `json:"realizedSum"`
	AmountToSellerSum float64 `json:"amountToSellerSum"`
	LogisticsSum      float64 `json:"logisticsSum"`
	FinesSum          float64 `json:"finesSum"`
	StorageSum        float64 `json:"storageSum"`
	WithholdingsSum   float64 `json:"withholdingsSum"`
	AcceptanceSum     float64 `json:"acceptanceSum"`
}

// Merge adds other into a, field by field.
func (a *OperationAggregate) Merge(other *OperationAggregate) {
	a.RealizedSum += other.RealizedSum
	a.AmountToSellerSum += other.AmountToSellerSum
	a.LogisticsSum += other.LogisticsSum
	a.FinesSum += other.FinesSum
	a.StorageSum += other.StorageSum
	a.WithholdingsSum += other.WithholdingsSum
	a.AcceptanceSum += other.AcceptanceSum
}
