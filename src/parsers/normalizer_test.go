package parsers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/sellfolio/backend/src/models"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want float64
	}{
		{"nil", nil, 0},
		{"float64", 123.45, 123.45},
		{"int", 7, 7},
		{"plain string", "123.45", 123.45},
		{"comma decimal separator", "123,45", 123.45},
		{"space thousands separator", "1 234,50", 1234.5},
		{"negative", "-15,5", -15.5},
		{"empty string", "", 0},
		{"whitespace only", "   ", 0},
		{"garbage", "n/a", 0},
		{"bool is not a number", true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseAmount(tt.in))
		})
	}
}

func TestParseQuantityTruncatesTowardZero(t *testing.T) {
	assert.Equal(t, 2, ParseQuantity("2,9"))
	assert.Equal(t, -2, ParseQuantity(-2.9))
	assert.Equal(t, 0, ParseQuantity("oops"))
}

func TestParseReportDate(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want *time.Time
	}{
		{
			name: "spreadsheet serial number",
			in:   float64(45000),
			want: datePtr(2023, time.March, 15),
		},
		{
			name: "iso date",
			in:   "2024-02-29",
			want: datePtr(2024, time.February, 29),
		},
		{
			name: "iso datetime keeps only the date prefix",
			in:   "2024-02-29T18:30:00",
			want: datePtr(2024, time.February, 29),
		},
		{
			name: "dotted russian format",
			in:   "29.02.2024",
			want: datePtr(2024, time.February, 29),
		},
		{
			name: "dotted format with time suffix",
			in:   "29.02.2024 18:30",
			want: datePtr(2024, time.February, 29),
		},
		{"empty string", "", nil},
		{"garbage", "когда-нибудь", nil},
		{"nil", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseReportDate(tt.in)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, tt.want.Equal(*got), "want %v, got %v", tt.want, got)
		})
	}
}

func TestNormalizeClassifiesOperations(t *testing.T) {
	n := NewNormalizer()

	tests := []struct {
		name      string
		basis     any
		wantKind  models.OperationKind
		wantLabel string
	}{
		{"sale", "Продажа", models.OperationSale, "Продажа"},
		{"return", "Возврат", models.OperationReturn, "Возврат"},
		{"storage line keeps its own label", "Хранение", models.OperationOther, "Хранение"},
		{"missing basis gets the default label", nil, models.OperationOther, "Прочее"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := models.RawRecord{"Артикул поставщика": "SKU-1"}
			if tt.basis != nil {
				row["Обоснование для оплаты"] = tt.basis
			}
			rec := n.Normalize(row)
			assert.Equal(t, tt.wantKind, rec.OperationKind)
			assert.Equal(t, tt.wantLabel, rec.OperationLabel)
		})
	}
}

func TestNormalizeForcesReturnAmountsNegative(t *testing.T) {
	n := NewNormalizer()

	// Reports are inconsistent: some pre-negate return amounts, some don't.
	// Either way the normalized record must carry negative money.
	for _, raw := range []any{"250,50", "-250,50"} {
		rec := n.Normalize(models.RawRecord{
			"Обоснование для оплаты": "Возврат",
			"Артикул поставщика":     "SKU-1",
			"Вайлдберриз реализовал Товар (Пр)":               raw,
			"К перечислению Продавцу за реализованный Товар": raw,
			"Кол-во": "-1",
		})

		assert.Equal(t, -250.5, rec.RealizedAmount)
		assert.Equal(t, -250.5, rec.TransferAmount)
		assert.Equal(t, 1, rec.Quantity, "quantity is stored unsigned")
	}
}

func TestNormalizeResolvesAllMonetaryFields(t *testing.T) {
	n := NewNormalizer()

	rec := n.Normalize(models.RawRecord{
		"Обоснование для оплаты": "Продажа",
		"Артикул поставщика":     "SKU-9",
		"Дата продажи":           "2024-05-10",
		"Кол-во":                 "2",
		"Вайлдберриз реализовал Товар (Пр)":               "1000",
		"К перечислению Продавцу за реализованный Товар": "750,25",
		"Услуги по доставке товара покупателю":           "90",
		"Общая сумма штрафов":                            "10",
		"Хранение":                                       "5,5",
		"Удержания":                                      "3",
		"Операции на приемке":                            "1,5",
		"Размер кВВ, %":                                  "21,5",
		"Размер комиссии за эквайринг/Комиссии за организацию платежей, %": "1,8",
		"Цена розничная": "700",
		"Цена розничная с учетом согласованной скидки": "500",
		"Итоговая согласованная скидка, %":             "28,6",
		"Код номенклатуры":                             "11223344",
		"Бренд":                                        "BrandName",
		"Предмет":                                      "Носки",
		"Баркод":                                       "4600000000017",
	})

	require.NotNil(t, rec.Date)
	assert.Equal(t, "2024-05-10", rec.Date.Format("2006-01-02"))
	assert.Equal(t, models.OperationSale, rec.OperationKind)
	assert.Equal(t, "SKU-9", rec.SKU)
	assert.Equal(t, 2, rec.Quantity)
	assert.Equal(t, 1000.0, rec.RealizedAmount)
	assert.Equal(t, 750.25, rec.TransferAmount)
	assert.Equal(t, 90.0, rec.LogisticsFee)
	assert.Equal(t, 10.0, rec.FinesAmount)
	assert.Equal(t, 5.5, rec.StorageFee)
	assert.Equal(t, 3.0, rec.WithholdingsAmount)
	assert.Equal(t, 1.5, rec.AcceptanceFee)
	assert.Equal(t, 21.5, rec.CommissionRatePct)
	assert.Equal(t, 1.8, rec.AcquiringRatePct)
	assert.Equal(t, 700.0, rec.RetailPrice)
	assert.Equal(t, 500.0, rec.RetailPriceWithDiscount)
	assert.Equal(t, 28.6, rec.AgreedDiscountPct)
	assert.Equal(t, "11223344", rec.NomenclatureID)
	assert.Equal(t, "BrandName", rec.Brand)
	assert.Equal(t, "Носки", rec.Subject)
	assert.Equal(t, "4600000000017", rec.Barcode)
}

func TestNormalizeIsIdempotentOnMissingData(t *testing.T) {
	n := NewNormalizer()

	rec := n.Normalize(models.RawRecord{})
	assert.Equal(t, models.OperationOther, rec.OperationKind)
	assert.Equal(t, DefaultOperationLabel, rec.OperationLabel)
	assert.Nil(t, rec.Date)
	assert.Zero(t, rec.Quantity)
	assert.Zero(t, rec.TransferAmount)
}

func datePtr(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &d
}
