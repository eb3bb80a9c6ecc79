package models

import "time"

// RawRecord is a single accounting line exactly as decoded from a report
// worksheet: column header -> cell value. The schema varies between report
// versions, so keys are resolved through the parsers.Resolve synonym lists.
// A RawRecord is never mutated after decoding.
type RawRecord map[string]any

// OperationKind classifies a settlement line.
type OperationKind int

const (
	OperationOther OperationKind = iota
	OperationSale
	OperationReturn
)

func (k OperationKind) String() string {
	switch k {
	case OperationSale:
		return "sale"
	case OperationReturn:
		return "return"
	default:
		return "other"
	}
}

// NormalizedRecord is the typed form of one RawRecord. Monetary fields are
// sign-adjusted: for returns, RealizedAmount and TransferAmount are always
// negative regardless of the sign in the source. Quantity keeps the unsigned
// magnitude reported by the source; the aggregator applies the +/- convention.
type NormalizedRecord struct {
	Date           *time.Time    `json:"date"` // nil when unparseable
	OperationKind  OperationKind `json:"operationKind"`
	OperationLabel string        `json:"operationLabel"` // raw basis value, "Прочее" when absent
	SKU            string        `json:"sku"`            // empty when unresolved
	Quantity       int           `json:"quantity"`

	RealizedAmount          float64 `json:"realizedAmount"`
	TransferAmount          float64 `json:"transferAmount"`
	LogisticsFee            float64 `json:"logisticsFee"`
	FinesAmount             float64 `json:"finesAmount"`
	StorageFee              float64 `json:"storageFee"`
	WithholdingsAmount      float64 `json:"withholdingsAmount"`
	AcceptanceFee           float64 `json:"acceptanceFee"`
	CommissionRatePct       float64 `json:"commissionRatePct"`
	AcquiringRatePct        float64 `json:"acquiringRatePct"`
	RetailPrice             float64 `json:"retailPrice"`
	RetailPriceWithDiscount float64 `json:"retailPriceWithDiscount"`
	AgreedDiscountPct       float64 `json:"agreedDiscountPct"`

	// Catalog metadata carried along for the export workbooks.
	NomenclatureID string `json:"nomenclatureId"`
	Brand          string `json:"brand"`
	Subject        string `json:"subject"`
	Barcode        string `json:"barcode"`
}

// ReportFile is one uploaded settlement report.
type ReportFile struct {
	ID           string    `json:"id"`
	DisplayName  string    `json:"displayName"`
	ReportNumber string    `json:"reportNumber"`
	UploadedAt   time.Time `json:"uploadedAt"`
	RecordCount  int       `json:"recordCount"`
}

// CostBook maps SKU -> unit cost. A missing entry means unit cost 0.
type CostBook map[string]float64

// UnitCost returns the cost for sku, 0 when unknown.
func (b CostBook) UnitCost(sku string) float64 {
	return b[sku]
}

// PriceLock maps SKU -> the site price the seller saved from the solver.
type PriceLock map[string]float64
