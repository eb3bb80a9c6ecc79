package parsers

import (
	"io"
	"strings"

	"github.com/username/sellfolio/backend/src/models"
)

// CostBookParser reads a seller-maintained cost workbook: one row per SKU
// with a unit cost column. The SKU column resolves through the usual synonym
// list; the cost column is matched by header name.
type CostBookParser struct{}

func NewCostBookParser() *CostBookParser {
	return &CostBookParser{}
}

// Parse decodes the first worksheet into a CostBook. Rows without a
// resolvable SKU or with a zero cost are skipped.
func (p *CostBookParser) Parse(file io.Reader) (models.CostBook, error) {
	records, err := decodeFirstSheet(file)
	if err != nil {
		return nil, err
	}

	book := make(models.CostBook)
	for _, record := range records {
		sku := ResolveString(record, FieldSKU)
		if sku == "" {
			continue
		}
		for key, value := range record {
			if !isCostHeader(key) {
				continue
			}
			if cost := ParseAmount(value); cost != 0 {
				book[sku] = cost
			}
			break
		}
	}
	return book, nil
}

func isCostHeader(header string) bool {
	h := strings.ToLower(strings.TrimSpace(header))
	return h == "себестоимость" || strings.Contains(h, "цена закуп")
}
