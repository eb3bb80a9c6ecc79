package processors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/sellfolio/backend/src/models"
)

func sampleRecords() []models.NormalizedRecord {
	return []models.NormalizedRecord{
		{
			OperationKind:           models.OperationSale,
			OperationLabel:          "Продажа",
			SKU:                     "SKU-1",
			Quantity:                2,
			RealizedAmount:          700,
			TransferAmount:          600,
			LogisticsFee:            70,
			CommissionRatePct:       20,
			RetailPriceWithDiscount: 350,
		},
		{
			OperationKind:     models.OperationReturn,
			OperationLabel:    "Возврат",
			SKU:               "SKU-1",
			Quantity:          1,
			RealizedAmount:    -250,
			TransferAmount:    -200,
			LogisticsFee:      30,
			CommissionRatePct: 22,
		},
		{
			OperationKind:  models.OperationOther,
			OperationLabel: "Хранение",
			SKU:            "SKU-1",
			StorageFee:     40,
		},
	}
}

func TestAggregateBySku(t *testing.T) {
	result := Aggregate(sampleRecords())

	agg, ok := result.BySku["SKU-1"]
	require.True(t, ok)

	assert.Equal(t, 1, agg.UnitsNet, "2 sold minus 1 returned")
	assert.Equal(t, 1, agg.ReturnedUnits)
	assert.Equal(t, 450.0, agg.RevenueSum)
	assert.Equal(t, 400.0, agg.AmountToSellerSum)
	assert.Equal(t, 100.0, agg.LogisticsSum)
	assert.Equal(t, 40.0, agg.StorageSum)

	// Only the two fee-carrying records contribute units: 2 + 1.
	assert.Equal(t, 3, agg.LogisticsUnitCount)
	assert.InDelta(t, 100.0/3, agg.AvgLogisticsPerUnit(), 1e-9)

	rate, ok := agg.AvgCommissionRate()
	require.True(t, ok)
	assert.InDelta(t, (20*2+22*1)/3.0, rate, 1e-9)

	_, ok = agg.AvgAcquiringRate()
	assert.False(t, ok, "no acquiring data seen")

	assert.Equal(t, 350.0, agg.AvgGrossSalePrice(), "sale rows only")
}

func TestAggregateByOperation(t *testing.T) {
	result := Aggregate(sampleRecords())

	require.Len(t, result.ByOperation, 3)
	assert.Equal(t, 600.0, result.ByOperation["Продажа"].AmountToSellerSum)
	assert.Equal(t, -200.0, result.ByOperation["Возврат"].AmountToSellerSum)
	assert.Equal(t, 40.0, result.ByOperation["Хранение"].StorageSum)
}

func TestAggregateSkipsUnresolvedSkuForBySkuOnly(t *testing.T) {
	records := []models.NormalizedRecord{
		{OperationLabel: "Прочее", WithholdingsAmount: 15},
	}

	result := Aggregate(records)
	assert.Empty(t, result.BySku)
	require.Contains(t, result.ByOperation, "Прочее")
	assert.Equal(t, 15.0, result.ByOperation["Прочее"].WithholdingsSum)
}

func TestAggregateZeroQuantityWeighsAsOne(t *testing.T) {
	result := Aggregate([]models.NormalizedRecord{
		{
			OperationLabel:    "Логистика",
			SKU:               "SKU-1",
			LogisticsFee:      55,
			CommissionRatePct: 18,
		},
	})

	agg := result.BySku["SKU-1"]
	require.NotNil(t, agg)
	assert.Equal(t, 1, agg.LogisticsUnitCount)
	assert.Equal(t, 55.0, agg.AvgLogisticsPerUnit())

	rate, ok := agg.AvgCommissionRate()
	require.True(t, ok)
	assert.Equal(t, 18.0, rate)
}

func TestMergeEqualsAggregatingTheUnion(t *testing.T) {
	records := sampleRecords()

	whole := Aggregate(records)
	first := Aggregate(records[:1])
	rest := Aggregate(records[1:])
	first.Merge(rest)

	require.Contains(t, first.BySku, "SKU-1")
	assert.Equal(t, whole.BySku["SKU-1"], first.BySku["SKU-1"])
	assert.Equal(t, whole.ByOperation["Продажа"], first.ByOperation["Продажа"])
	assert.Equal(t, whole.ByOperation["Возврат"], first.ByOperation["Возврат"])
	assert.Equal(t, whole.ByOperation["Хранение"], first.ByOperation["Хранение"])
}

func TestMergeDoesNotAliasSourceAggregates(t *testing.T) {
	target := Aggregate(nil)
	source := Aggregate(sampleRecords())

	target.Merge(source)
	target.BySku["SKU-1"].UnitsNet = 999

	assert.Equal(t, 1, source.BySku["SKU-1"].UnitsNet, "merge must copy, not share pointers")
}
