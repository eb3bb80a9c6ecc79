package parsers

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/username/sellfolio/backend/src/models"
)

// buildWorkbook renders rows into an in-memory .xlsx, first row as headers.
func buildWorkbook(t *testing.T, rows [][]any) *bytes.Reader {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return bytes.NewReader(buf.Bytes())
}

func TestXLSXReportParserParse(t *testing.T) {
	file := buildWorkbook(t, [][]any{
		{"Артикул поставщика", "Обоснование для оплаты", "Кол-во", "К перечислению Продавцу за реализованный Товар"},
		{"SKU-1", "Продажа", 2, 500.5},
		{"SKU-2", "Возврат", 1, 199},
		{}, // blank rows are skipped
		{"SKU-3", "Логистика", nil, nil},
	})

	records, err := NewXLSXReportParser().Parse(file)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "SKU-1", records[0]["Артикул поставщика"])
	assert.Equal(t, "Продажа", records[0]["Обоснование для оплаты"])
	// excelize renders every cell as text
	assert.Equal(t, "500.5", records[0]["К перечислению Продавцу за реализованный Товар"])
	assert.Equal(t, "SKU-3", records[2]["Артикул поставщика"])
	_, hasQty := records[2]["Кол-во"]
	assert.False(t, hasQty, "empty cells must not appear in the record")
}

func TestXLSXReportParserEmptyWorkbook(t *testing.T) {
	headerOnly := buildWorkbook(t, [][]any{
		{"Артикул поставщика", "Кол-во"},
	})
	_, err := NewXLSXReportParser().Parse(headerOnly)
	assert.ErrorIs(t, err, ErrEmptyWorkbook)

	_, err = NewXLSXReportParser().Parse(bytes.NewReader([]byte("not a workbook")))
	assert.Error(t, err)
}

func TestExtractReportNumber(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		records  []models.RawRecord
		want     string
	}{
		{
			name:     "number in filename wins",
			filename: "Отчет №123456 от 01.06.2024.xlsx",
			records:  []models.RawRecord{{"№": "999"}},
			want:     "123456",
		},
		{
			name:     "falls back to the report number column",
			filename: "weekly.xlsx",
			records:  []models.RawRecord{{"№": "777001"}},
			want:     "777001",
		},
		{
			name:     "falls back to the filename stem",
			filename: "/tmp/uploads/report-final.xlsx",
			records:  []models.RawRecord{{"Артикул": "SKU-1"}},
			want:     "report-final",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractReportNumber(tt.filename, tt.records))
		})
	}
}

func TestCostBookParserParse(t *testing.T) {
	file := buildWorkbook(t, [][]any{
		{"Артикул", "Себестоимость"},
		{"SKU-1", "250,50"},
		{"SKU-2", 99.9},
		{"", 10},      // no SKU
		{"SKU-3", 0},  // zero cost is skipped
		{"SKU-4", ""}, // empty cost is skipped
	})

	book, err := NewCostBookParser().Parse(file)
	require.NoError(t, err)

	assert.Equal(t, models.CostBook{
		"SKU-1": 250.5,
		"SKU-2": 99.9,
	}, book)
}

func TestCostBookParserAcceptsPurchasePriceHeader(t *testing.T) {
	file := buildWorkbook(t, [][]any{
		{"Артикул поставщика", "Цена закупки"},
		{"SKU-1", 120},
	})

	book, err := NewCostBookParser().Parse(file)
	require.NoError(t, err)
	assert.Equal(t, 120.0, book.UnitCost("SKU-1"))
	assert.Zero(t, book.UnitCost("unknown"))
}
