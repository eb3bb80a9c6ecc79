package services

import (
	"fmt"
	"math"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/username/sellfolio/backend/src/database"
	"github.com/username/sellfolio/backend/src/logger"
	"github.com/username/sellfolio/backend/src/security/validation"
)

type exportServiceImpl struct {
	pricingService PricingService
}

func NewExportService(pricingService PricingService) ExportService {
	return &exportServiceImpl{pricingService: pricingService}
}

// CostTemplate builds the cost book workbook: one row per known SKU with its
// current unit cost, ready to edit and re-import.
func (s *exportServiceImpl) CostTemplate() ([]byte, error) {
	book, err := s.pricingService.CostBook()
	if err != nil {
		return nil, err
	}

	skus, err := s.distinctSkus()
	if err != nil {
		return nil, err
	}
	for sku := range book {
		if !containsString(skus, sku) {
			skus = append(skus, sku)
		}
	}
	sort.Strings(skus)

	rows := [][]any{{"Артикул", "Себестоимость"}}
	for _, sku := range skus {
		rows = append(rows, []any{sku, book.UnitCost(sku)})
	}
	return buildSheet("Артикулы", rows)
}

// AutoPromoLockSheet builds the marketplace's bulk promo-exclusion template,
// filled from locked prices and catalog metadata seen in uploaded reports.
func (s *exportServiceImpl) AutoPromoLockSheet() ([]byte, error) {
	locks, err := s.pricingService.LockedPrices()
	if err != nil {
		return nil, err
	}

	catalog, err := s.catalogRows()
	if err != nil {
		return nil, err
	}

	rows := [][]any{{
		"Бренд", "Категория", "Артикул WB", "Артикул продавца", "Баркод",
		"Остаток, шт", "Оборачиваемость, дн", "Текущая розничная цена",
		"Текущая цена со скидкой", "Текущая скидка, %", "Минимальная цена",
		"Участвует в автоакциях", "Срок действия",
	}}
	for _, entry := range catalog {
		lockedPrice, locked := locks[entry.sku]
		if !locked {
			continue
		}
		rows = append(rows, []any{
			entry.brand, entry.subject, entry.nomenclatureID, entry.sku, entry.barcode,
			0, 0, 0,
			entry.retailPriceDiscount, 0, lockedPrice,
			"Нет", "Бессрочно",
		})
	}

	logger.L.Info("Auto-promo lock sheet built", "rows", len(rows)-1)
	return buildSheet("Минимальная цена", rows)
}

// PriceChangeSheet builds the bulk price upload template. The retail price is
// derived from the locked site price so that after the standard 30% seller
// discount the buyer sees the locked value.
func (s *exportServiceImpl) PriceChangeSheet() ([]byte, error) {
	locks, err := s.pricingService.LockedPrices()
	if err != nil {
		return nil, err
	}

	catalog, err := s.catalogRows()
	if err != nil {
		return nil, err
	}

	rows := [][]any{{
		"Бренд", "Предмет", "Артикул WB", "Артикул продавца", "Баркод",
		"Остаток, шт", "Оборачиваемость, дн", "Текущая розничная цена",
		"Розничная цена", "Новая розничная цена", "Текущая скидка, %",
		"Новая скидка, %", "Промокод, %", "Новый промокод, %", "Комментарий",
	}}
	for _, entry := range catalog {
		lockedPrice, locked := locks[entry.sku]
		if !locked {
			continue
		}
		rows = append(rows, []any{
			entry.brand, entry.subject, entry.nomenclatureID, entry.sku, entry.barcode,
			0, 0, "",
			entry.retailPrice, math.Ceil(lockedPrice / 0.7), entry.agreedDiscountPct,
			30, "", "", "",
		})
	}

	logger.L.Info("Price change sheet built", "rows", len(rows)-1)
	return buildSheet("prices", rows)
}

type catalogEntry struct {
	sku                 string
	nomenclatureID      string
	brand               string
	subject             string
	barcode             string
	retailPrice         float64
	retailPriceDiscount float64
	agreedDiscountPct   float64
}

// catalogRows pulls one representative record per SKU, preferring the latest
// row that carries catalog metadata.
func (s *exportServiceImpl) catalogRows() ([]catalogEntry, error) {
	rows, err := database.DB.Query(`
		SELECT sku, nomenclature_id, brand, subject, barcode,
			retail_price, retail_price_discount, agreed_discount_pct
		FROM report_records
		WHERE sku != ''
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("error loading catalog rows: %w", err)
	}
	defer rows.Close()

	bySku := make(map[string]catalogEntry)
	order := []string{}
	for rows.Next() {
		var e catalogEntry
		if err := rows.Scan(&e.sku, &e.nomenclatureID, &e.brand, &e.subject, &e.barcode,
			&e.retailPrice, &e.retailPriceDiscount, &e.agreedDiscountPct); err != nil {
			return nil, fmt.Errorf("error scanning catalog row: %w", err)
		}
		if _, seen := bySku[e.sku]; !seen {
			order = append(order, e.sku)
		}
		// Later rows win so re-uploaded reports refresh the metadata.
		bySku[e.sku] = e
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Strings(order)
	entries := make([]catalogEntry, 0, len(order))
	for _, sku := range order {
		entries = append(entries, bySku[sku])
	}
	return entries, nil
}

func (s *exportServiceImpl) distinctSkus() ([]string, error) {
	rows, err := database.DB.Query(`SELECT DISTINCT sku FROM report_records WHERE sku != '' ORDER BY sku`)
	if err != nil {
		return nil, fmt.Errorf("error loading SKU list: %w", err)
	}
	defer rows.Close()

	var skus []string
	for rows.Next() {
		var sku string
		if err := rows.Scan(&sku); err != nil {
			return nil, fmt.Errorf("error scanning SKU: %w", err)
		}
		skus = append(skus, sku)
	}
	return skus, rows.Err()
}

func buildSheet(sheetName string, rows [][]any) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("error naming sheet: %w", err)
	}
	for i, row := range rows {
		for j, value := range row {
			if str, ok := value.(string); ok {
				row[j] = validation.SanitizeForFormulaInjection(str)
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("error writing row %d: %w", i+1, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("error serializing workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
