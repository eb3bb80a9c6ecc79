package services

import (
	"database/sql"
	"fmt"
	"io"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/username/sellfolio/backend/src/database"
	"github.com/username/sellfolio/backend/src/logger"
	"github.com/username/sellfolio/backend/src/models"
	"github.com/username/sellfolio/backend/src/parsers"
	"github.com/username/sellfolio/backend/src/processors"
	"github.com/username/sellfolio/backend/src/utils"
)

const (
	// Cached whole responses; any data mutation flushes everything and the
	// next request triggers a full recomputation over the stored records.
	ckSummary  = "res_summary_%s_%s_%s_%s"
	ckArticles = "res_articles_%s_%s_%s"
	ckPeriod   = "agg_period"

	DefaultCacheExpiration = 15 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute
)

// Calculator seed defaults for values a SKU's history cannot supply.
const (
	seedFallbackCommissionPct = 20
	seedFallbackAcquiringPct  = 2
	seedTaxPct                = 6
	seedOtherCosts            = 50
	seedDesiredProfit         = 300
	seedBuyerDiscountPct      = 15
)

type reportServiceImpl struct {
	reportParser parsers.ReportParser
	normalizer   *parsers.Normalizer
	resultCache  *cache.Cache
}

func NewReportService(reportParser parsers.ReportParser, normalizer *parsers.Normalizer, resultCache *cache.Cache) ReportService {
	return &reportServiceImpl{
		reportParser: reportParser,
		normalizer:   normalizer,
		resultCache:  resultCache,
	}
}

func (s *reportServiceImpl) ProcessUpload(file io.Reader, filename string) (*models.ReportFile, error) {
	startTime := time.Now()
	logger.L.Info("ProcessUpload START", "filename", filename)

	rawRecords, err := s.reportParser.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}

	records := make([]models.NormalizedRecord, 0, len(rawRecords))
	for _, raw := range rawRecords {
		records = append(records, s.normalizer.Normalize(raw))
	}

	reportFile := &models.ReportFile{
		ID:           uuid.New().String(),
		DisplayName:  filename,
		ReportNumber: parsers.ExtractReportNumber(filename, rawRecords),
		UploadedAt:   time.Now().UTC(),
		RecordCount:  len(records),
	}

	dbTx, err := database.DB.Begin()
	if err != nil {
		return nil, fmt.Errorf("error beginning database transaction: %w", err)
	}
	defer dbTx.Rollback()

	_, err = dbTx.Exec(`INSERT INTO report_files (id, name, report_number, uploaded_at) VALUES (?, ?, ?, ?)`,
		reportFile.ID, reportFile.DisplayName, reportFile.ReportNumber, reportFile.UploadedAt.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("error inserting report file: %w", err)
	}

	stmt, err := dbTx.Prepare(`INSERT INTO report_records (
		file_id, sale_date, operation_kind, operation_label, sku, quantity,
		realized_amount, transfer_amount, logistics_fee, fines_amount, storage_fee,
		withholdings_amount, acceptance_fee, commission_rate_pct, acquiring_rate_pct,
		retail_price, retail_price_discount, agreed_discount_pct,
		nomenclature_id, brand, subject, barcode
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("error preparing insert statement: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		var saleDate any
		if rec.Date != nil {
			saleDate = rec.Date.Format(time.RFC3339)
		}
		_, err := stmt.Exec(
			reportFile.ID, saleDate, int(rec.OperationKind), rec.OperationLabel, rec.SKU, rec.Quantity,
			rec.RealizedAmount, rec.TransferAmount, rec.LogisticsFee, rec.FinesAmount, rec.StorageFee,
			rec.WithholdingsAmount, rec.AcceptanceFee, rec.CommissionRatePct, rec.AcquiringRatePct,
			rec.RetailPrice, rec.RetailPriceWithDiscount, rec.AgreedDiscountPct,
			rec.NomenclatureID, rec.Brand, rec.Subject, rec.Barcode,
		)
		if err != nil {
			return nil, fmt.Errorf("error inserting record (sku %q): %w", rec.SKU, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing report records: %w", err)
	}

	s.invalidateCache()

	logger.L.Info("ProcessUpload END", "filename", filename, "records", len(records), "duration", time.Since(startTime))
	return reportFile, nil
}

func (s *reportServiceImpl) ListReports() ([]models.ReportFile, error) {
	rows, err := database.DB.Query(`
		SELECT f.id, f.name, f.report_number, f.uploaded_at, COUNT(r.id)
		FROM report_files f
		LEFT JOIN report_records r ON r.file_id = f.id
		GROUP BY f.id
		ORDER BY f.uploaded_at`)
	if err != nil {
		return nil, fmt.Errorf("error listing report files: %w", err)
	}
	defer rows.Close()

	files := []models.ReportFile{}
	for rows.Next() {
		var f models.ReportFile
		var uploadedAt string
		if err := rows.Scan(&f.ID, &f.DisplayName, &f.ReportNumber, &uploadedAt, &f.RecordCount); err != nil {
			return nil, fmt.Errorf("error scanning report file: %w", err)
		}
		if parsed, err := time.Parse(time.RFC3339, uploadedAt); err == nil {
			f.UploadedAt = parsed
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

func (s *reportServiceImpl) DeleteReport(id string) error {
	result, err := database.DB.Exec(`DELETE FROM report_files WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("error deleting report file: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrReportNotFound
	}
	if _, err := database.DB.Exec(`DELETE FROM report_records WHERE file_id = ?`, id); err != nil {
		return fmt.Errorf("error deleting report records: %w", err)
	}
	s.invalidateCache()
	logger.L.Info("Report deleted", "reportID", id)
	return nil
}

func (s *reportServiceImpl) ClearAll() error {
	for _, table := range []string{"report_records", "report_files", "locked_prices"} {
		if _, err := database.DB.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("error clearing %s: %w", table, err)
		}
	}
	s.invalidateCache()
	logger.L.Info("All report data and price locks cleared")
	return nil
}

func (s *reportServiceImpl) Period() (Period, error) {
	if cached, found := s.resultCache.Get(ckPeriod); found {
		return cached.(Period), nil
	}

	records, err := s.loadRecords("")
	if err != nil {
		return Period{}, err
	}

	var period Period
	min, max := processors.PeriodBounds(records)
	if min != nil {
		period.Start = utils.FormatISODate(*min)
	}
	if max != nil {
		period.End = utils.FormatISODate(*max)
	}

	s.resultCache.Set(ckPeriod, period, DefaultCacheExpiration)
	return period, nil
}

func (s *reportServiceImpl) Summary(scope ReportScope, sku string) (*DashboardSummary, error) {
	cacheKey := fmt.Sprintf(ckSummary, scope.FileID, formatBound(scope.Start), formatBound(scope.End), sku)
	if cached, found := s.resultCache.Get(cacheKey); found {
		return cached.(*DashboardSummary), nil
	}

	records, err := s.scopedRecords(scope)
	if err != nil {
		return nil, err
	}
	if sku != "" {
		records = filterBySku(records, sku)
	}

	agg := processors.Aggregate(records)

	summary := &DashboardSummary{Operations: sortedOperations(agg.ByOperation)}
	for _, op := range summary.Operations {
		summary.RealizedSum += op.RealizedSum
		summary.AmountToSellerSum += op.AmountToSellerSum
		summary.LogisticsSum += op.LogisticsSum
		summary.FinesSum += op.FinesSum
		summary.StorageSum += op.StorageSum
		summary.WithholdingsSum += op.WithholdingsSum
		summary.AcceptanceSum += op.AcceptanceSum
	}

	costBook, err := s.loadCostBook()
	if err != nil {
		return nil, err
	}
	for _, skuAgg := range agg.BySku {
		summary.UnitsNet += skuAgg.UnitsNet
		summary.TotalUnitCost += costBook.UnitCost(skuAgg.SKU) * float64(skuAgg.UnitsNet)
	}

	summary.AmountToBank = summary.AmountToSellerSum - summary.LogisticsSum - summary.FinesSum -
		summary.StorageSum - summary.WithholdingsSum - summary.AcceptanceSum
	summary.NetProfit = summary.AmountToBank - summary.TotalUnitCost

	s.resultCache.Set(cacheKey, summary, DefaultCacheExpiration)
	return summary, nil
}

func (s *reportServiceImpl) Articles(scope ReportScope) ([]ArticleRow, error) {
	cacheKey := fmt.Sprintf(ckArticles, scope.FileID, formatBound(scope.Start), formatBound(scope.End))
	if cached, found := s.resultCache.Get(cacheKey); found {
		return cached.([]ArticleRow), nil
	}

	records, err := s.scopedRecords(scope)
	if err != nil {
		return nil, err
	}

	agg := processors.Aggregate(records)

	costBook, err := s.loadCostBook()
	if err != nil {
		return nil, err
	}
	locks, err := s.loadLockedPrices()
	if err != nil {
		return nil, err
	}

	rows := make([]ArticleRow, 0, len(agg.BySku))
	for _, skuAgg := range agg.BySku {
		unitCost := costBook.UnitCost(skuAgg.SKU)
		figures := processors.ComputeProfit(skuAgg, unitCost)

		row := ArticleRow{
			SkuAggregate:        *skuAgg,
			UnitCost:            unitCost,
			MarketplaceCosts:    figures.MarketplaceCosts,
			ProfitFact:          figures.ProfitFact,
			ProfitItem:          figures.ProfitItem,
			AvgLogisticsPerUnit: figures.AvgLogisticsPerUnit,
			AvgGrossSalePrice:   skuAgg.AvgGrossSalePrice(),
		}
		if price, locked := locks[skuAgg.SKU]; locked {
			p := price
			row.LockedPrice = &p
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].AmountToSellerSum != rows[j].AmountToSellerSum {
			return rows[i].AmountToSellerSum > rows[j].AmountToSellerSum
		}
		return rows[i].SKU < rows[j].SKU
	})

	s.resultCache.Set(cacheKey, rows, DefaultCacheExpiration)
	return rows, nil
}

func (s *reportServiceImpl) History(sku string, scope ReportScope) ([]models.NormalizedRecord, error) {
	records, err := s.scopedRecords(scope)
	if err != nil {
		return nil, err
	}
	history := filterBySku(records, sku)

	// Newest first; records without a date sink to the end.
	sort.SliceStable(history, func(i, j int) bool {
		di, dj := history[i].Date, history[j].Date
		if di == nil {
			return false
		}
		if dj == nil {
			return true
		}
		return di.After(*dj)
	})
	return history, nil
}

func (s *reportServiceImpl) CalculatorSeed(sku string, scope ReportScope) (*CalculatorSeed, error) {
	records, err := s.scopedRecords(scope)
	if err != nil {
		return nil, err
	}
	agg := processors.Aggregate(filterBySku(records, sku))

	costBook, err := s.loadCostBook()
	if err != nil {
		return nil, err
	}

	seed := &CalculatorSeed{
		SKU:              sku,
		UnitCost:         costBook.UnitCost(sku),
		CommissionPct:    seedFallbackCommissionPct,
		AcquiringPct:     seedFallbackAcquiringPct,
		TaxPct:           seedTaxPct,
		OtherCosts:       seedOtherCosts,
		DesiredProfit:    seedDesiredProfit,
		BuyerDiscountPct: seedBuyerDiscountPct,
	}

	if skuAgg, ok := agg.BySku[sku]; ok {
		seed.AvgLogistics = math.Round(skuAgg.AvgLogisticsPerUnit())
		if rate, ok := skuAgg.AvgCommissionRate(); ok {
			seed.CommissionPct = utils.RoundFloat(rate, 2)
		}
		if rate, ok := skuAgg.AvgAcquiringRate(); ok {
			seed.AcquiringPct = utils.RoundFloat(rate, 2)
		}
	}
	return seed, nil
}

func (s *reportServiceImpl) invalidateCache() {
	s.resultCache.Flush()
	logger.L.Debug("Result cache flushed")
}

// scopedRecords loads the records selected by the scope's file filter and
// applies the date range. Aggregation downstream always starts from this
// freshly filtered set.
func (s *reportServiceImpl) scopedRecords(scope ReportScope) ([]models.NormalizedRecord, error) {
	records, err := s.loadRecords(scope.FileID)
	if err != nil {
		return nil, err
	}
	return processors.FilterByRange(records, scope.Start, scope.End), nil
}

func (s *reportServiceImpl) loadRecords(fileID string) ([]models.NormalizedRecord, error) {
	query := `SELECT sale_date, operation_kind, operation_label, sku, quantity,
		realized_amount, transfer_amount, logistics_fee, fines_amount, storage_fee,
		withholdings_amount, acceptance_fee, commission_rate_pct, acquiring_rate_pct,
		retail_price, retail_price_discount, agreed_discount_pct,
		nomenclature_id, brand, subject, barcode
	FROM report_records`
	var args []any
	if fileID != "" {
		query += " WHERE file_id = ?"
		args = append(args, fileID)
	}
	query += " ORDER BY id"

	rows, err := database.DB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("error loading records: %w", err)
	}
	defer rows.Close()

	var records []models.NormalizedRecord
	for rows.Next() {
		var rec models.NormalizedRecord
		var saleDate sql.NullString
		var kind int
		var nomenclatureID, brand, subject, barcode sql.NullString
		err := rows.Scan(&saleDate, &kind, &rec.OperationLabel, &rec.SKU, &rec.Quantity,
			&rec.RealizedAmount, &rec.TransferAmount, &rec.LogisticsFee, &rec.FinesAmount, &rec.StorageFee,
			&rec.WithholdingsAmount, &rec.AcceptanceFee, &rec.CommissionRatePct, &rec.AcquiringRatePct,
			&rec.RetailPrice, &rec.RetailPriceWithDiscount, &rec.AgreedDiscountPct,
			&nomenclatureID, &brand, &subject, &barcode)
		if err != nil {
			return nil, fmt.Errorf("error scanning record: %w", err)
		}
		rec.OperationKind = models.OperationKind(kind)
		if saleDate.Valid {
			if d, err := time.Parse(time.RFC3339, saleDate.String); err == nil {
				d = d.UTC()
				rec.Date = &d
			}
		}
		rec.NomenclatureID = nomenclatureID.String
		rec.Brand = brand.String
		rec.Subject = subject.String
		rec.Barcode = barcode.String
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *reportServiceImpl) loadCostBook() (models.CostBook, error) {
	rows, err := database.DB.Query(`SELECT sku, unit_cost FROM cost_prices`)
	if err != nil {
		return nil, fmt.Errorf("error loading cost book: %w", err)
	}
	defer rows.Close()

	book := make(models.CostBook)
	for rows.Next() {
		var sku string
		var cost float64
		if err := rows.Scan(&sku, &cost); err != nil {
			return nil, fmt.Errorf("error scanning cost entry: %w", err)
		}
		book[sku] = cost
	}
	return book, rows.Err()
}

func (s *reportServiceImpl) loadLockedPrices() (models.PriceLock, error) {
	rows, err := database.DB.Query(`SELECT sku, site_price FROM locked_prices`)
	if err != nil {
		return nil, fmt.Errorf("error loading locked prices: %w", err)
	}
	defer rows.Close()

	locks := make(models.PriceLock)
	for rows.Next() {
		var sku string
		var price float64
		if err := rows.Scan(&sku, &price); err != nil {
			return nil, fmt.Errorf("error scanning locked price: %w", err)
		}
		locks[sku] = price
	}
	return locks, rows.Err()
}

func filterBySku(records []models.NormalizedRecord, sku string) []models.NormalizedRecord {
	filtered := make([]models.NormalizedRecord, 0, len(records))
	for _, rec := range records {
		if rec.SKU == sku {
			filtered = append(filtered, rec)
		}
	}
	return filtered
}

func sortedOperations(byOperation map[string]*models.OperationAggregate) []*models.OperationAggregate {
	operations := make([]*models.OperationAggregate, 0, len(byOperation))
	for _, op := range byOperation {
		operations = append(operations, op)
	}
	sort.Slice(operations, func(i, j int) bool {
		return operations[i].Label < operations[j].Label
	})
	return operations
}

func formatBound(t *time.Time) string {
	if t == nil {
		return ""
	}
	return utils.FormatISODate(*t)
}
