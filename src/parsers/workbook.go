package parsers

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/username/sellfolio/backend/src/models"
)

// ReportParser decodes an uploaded settlement workbook into raw records.
type ReportParser interface {
	Parse(file io.Reader) ([]models.RawRecord, error)
}

var ErrEmptyWorkbook = errors.New("workbook contains no data rows")

var reportNumberRe = regexp.MustCompile(`№(\d+)`)

// XLSXReportParser reads the first worksheet of an .xlsx workbook. The first
// row is the header; every following row becomes one RawRecord keyed by the
// header names, exactly as the cells render.
type XLSXReportParser struct{}

func NewXLSXReportParser() *XLSXReportParser {
	return &XLSXReportParser{}
}

func (p *XLSXReportParser) Parse(file io.Reader) ([]models.RawRecord, error) {
	return decodeFirstSheet(file)
}

func decodeFirstSheet(file io.Reader) ([]models.RawRecord, error) {
	wb, err := excelize.OpenReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyWorkbook
	}

	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read worksheet %q: %w", sheets[0], err)
	}
	if len(rows) < 2 {
		return nil, ErrEmptyWorkbook
	}

	headers := rows[0]
	records := make([]models.RawRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := make(models.RawRecord, len(headers))
		empty := true
		for i, header := range headers {
			header = strings.TrimSpace(header)
			if header == "" || i >= len(row) {
				continue
			}
			cell := row[i]
			if cell == "" {
				continue
			}
			record[header] = cell
			empty = false
		}
		if !empty {
			records = append(records, record)
		}
	}

	if len(records) == 0 {
		return nil, ErrEmptyWorkbook
	}
	return records, nil
}

// ExtractReportNumber recovers the marketplace report number for an uploaded
// file: a №<digits> match in the filename wins, then the report-number column
// of the first record, then the filename stem.
func ExtractReportNumber(filename string, records []models.RawRecord) string {
	if m := reportNumberRe.FindStringSubmatch(filename); m != nil {
		return m[1]
	}
	if len(records) > 0 {
		if num := ResolveString(records[0], FieldReportNumber); num != "" {
			return num
		}
	}
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
