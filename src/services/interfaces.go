package services

import (
	"errors"
	"io"
	"time"

	"github.com/username/sellfolio/backend/src/models"
)

var (
	ErrParsingFailed  = errors.New("report parsing failed")
	ErrReportNotFound = errors.New("report not found")
)

// ReportScope selects the records an aggregation runs over: one uploaded
// file or all of them, optionally narrowed to a date range. Aggregates are
// always recomputed from the records the scope selects, never patched from a
// previous pass.
type ReportScope struct {
	FileID string
	Start  *time.Time
	End    *time.Time
}

// DashboardSummary is the filtered-scope overview: monetary totals, the
// derived bank-settlement figures, and the per-operation-type table.
type DashboardSummary struct {
	RealizedSum       float64 `json:"realizedSum"`
	AmountToSellerSum float64 `json:"amountToSellerSum"`
	LogisticsSum      float64 `json:"logisticsSum"`
	FinesSum          float64 `json:"finesSum"`
	StorageSum        float64 `json:"storageSum"`
	WithholdingsSum   float64 `json:"withholdingsSum"`
	AcceptanceSum     float64 `json:"acceptanceSum"`
	UnitsNet          int     `json:"unitsNet"`

	AmountToBank  float64 `json:"amountToBank"`
	TotalUnitCost float64 `json:"totalUnitCost"`
	NetProfit     float64 `json:"netProfit"`

	Operations []*models.OperationAggregate `json:"operations"`
}

// ArticleRow is one SKU's analytics line: its aggregate, both profitability
// views, and the pricing context the UI renders next to them.
type ArticleRow struct {
	models.SkuAggregate

	UnitCost            float64  `json:"unitCost"`
	MarketplaceCosts    float64  `json:"marketplaceCosts"`
	ProfitFact          float64  `json:"profitFact"`
	ProfitItem          float64  `json:"profitItem"`
	AvgLogisticsPerUnit float64  `json:"avgLogisticsPerUnit"`
	AvgGrossSalePrice   float64  `json:"avgGrossSalePrice"`
	LockedPrice         *float64 `json:"lockedPrice,omitempty"`
}

// Period is the min/max parseable record date, used by the UI to seed the
// default range picker.
type Period struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// CalculatorSeed pre-fills the price solver for one SKU from its aggregate
// and the cost book.
type CalculatorSeed struct {
	SKU              string  `json:"sku"`
	UnitCost         float64 `json:"unitCost"`
	AvgLogistics     float64 `json:"avgLogistics"`
	CommissionPct    float64 `json:"commissionPct"`
	AcquiringPct     float64 `json:"acquiringPct"`
	TaxPct           float64 `json:"taxPct"`
	OtherCosts       float64 `json:"otherCosts"`
	DesiredProfit    float64 `json:"desiredProfit"`
	BuyerDiscountPct float64 `json:"buyerDiscountPct"`
}

// ReportService is the ingestion and aggregation surface of the engine host.
type ReportService interface {
	ProcessUpload(file io.Reader, filename string) (*models.ReportFile, error)
	ListReports() ([]models.ReportFile, error)
	DeleteReport(id string) error
	ClearAll() error
	Period() (Period, error)
	Summary(scope ReportScope, sku string) (*DashboardSummary, error)
	Articles(scope ReportScope) ([]ArticleRow, error)
	History(sku string, scope ReportScope) ([]models.NormalizedRecord, error)
	CalculatorSeed(sku string, scope ReportScope) (*CalculatorSeed, error)
}

// PricingService owns the cost book and the price locks. The engine only
// reads the cost book; locks are written exclusively when the seller saves a
// solver result.
type PricingService interface {
	ImportCostBook(file io.Reader) (int, error)
	CostBook() (models.CostBook, error)
	LockedPrices() (models.PriceLock, error)
	SetLockedPrice(sku string, sitePrice float64) error
	RemoveLockedPrice(sku string) error
}

// ExportService renders the downloadable workbooks.
type ExportService interface {
	CostTemplate() ([]byte, error)
	AutoPromoLockSheet() ([]byte, error)
	PriceChangeSheet() ([]byte, error)
}
