package services

import (
	"fmt"
	"io"

	"github.com/patrickmn/go-cache"

	"github.com/username/sellfolio/backend/src/database"
	"github.com/username/sellfolio/backend/src/logger"
	"github.com/username/sellfolio/backend/src/models"
	"github.com/username/sellfolio/backend/src/parsers"
)

type pricingServiceImpl struct {
	costParser  *parsers.CostBookParser
	resultCache *cache.Cache
}

func NewPricingService(costParser *parsers.CostBookParser, resultCache *cache.Cache) PricingService {
	return &pricingServiceImpl{
		costParser:  costParser,
		resultCache: resultCache,
	}
}

func (s *pricingServiceImpl) ImportCostBook(file io.Reader) (int, error) {
	book, err := s.costParser.Parse(file)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}

	dbTx, err := database.DB.Begin()
	if err != nil {
		return 0, fmt.Errorf("error beginning database transaction: %w", err)
	}
	defer dbTx.Rollback()

	stmt, err := dbTx.Prepare(`INSERT INTO cost_prices (sku, unit_cost) VALUES (?, ?)
		ON CONFLICT(sku) DO UPDATE SET unit_cost = excluded.unit_cost`)
	if err != nil {
		return 0, fmt.Errorf("error preparing cost upsert: %w", err)
	}
	defer stmt.Close()

	for sku, cost := range book {
		if _, err := stmt.Exec(sku, cost); err != nil {
			return 0, fmt.Errorf("error upserting cost for %q: %w", sku, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return 0, fmt.Errorf("error committing cost book: %w", err)
	}

	s.resultCache.Flush()
	logger.L.Info("Cost book imported", "entries", len(book))
	return len(book), nil
}

func (s *pricingServiceImpl) CostBook() (models.CostBook, error) {
	rows, err := database.DB.Query(`SELECT sku, unit_cost FROM cost_prices ORDER BY sku`)
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

func (s *pricingServiceImpl) LockedPrices() (models.PriceLock, error) {
	rows, err := database.DB.Query(`SELECT sku, site_price FROM locked_prices ORDER BY sku`)
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

func (s *pricingServiceImpl) SetLockedPrice(sku string, sitePrice float64) error {
	_, err := database.DB.Exec(`INSERT INTO locked_prices (sku, site_price) VALUES (?, ?)
		ON CONFLICT(sku) DO UPDATE SET site_price = excluded.site_price`, sku, sitePrice)
	if err != nil {
		return fmt.Errorf("error locking price for %q: %w", sku, err)
	}
	s.resultCache.Flush()
	logger.L.Info("Price locked", "sku", sku, "sitePrice", sitePrice)
	return nil
}

func (s *pricingServiceImpl) RemoveLockedPrice(sku string) error {
	_, err := database.DB.Exec(`DELETE FROM locked_prices WHERE sku = ?`, sku)
	if err != nil {
		return fmt.Errorf("error unlocking price for %q: %w", sku, err)
	}
	s.resultCache.Flush()
	logger.L.Info("Price lock removed", "sku", sku)
	return nil
}
