package processors

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/sellfolio/backend/src/models"
)

func dated(day string) models.NormalizedRecord {
	d, err := time.Parse("2006-01-02", day)
	if err != nil {
		panic(err)
	}
	return models.NormalizedRecord{Date: &d}
}

func TestInRangeBoundsAreInclusiveWholeDays(t *testing.T) {
	start := time.Date(2024, time.May, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.May, 20, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		rec  models.NormalizedRecord
		want bool
	}{
		{"before range", dated("2024-05-09"), false},
		{"start day", dated("2024-05-10"), true},
		{"inside", dated("2024-05-15"), true},
		{"end day", dated("2024-05-20"), true},
		{"after range", dated("2024-05-21"), false},
		{"undated always passes", models.NormalizedRecord{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InRange(tt.rec, &start, &end))
		})
	}
}

func TestInRangeRespectsTimeOfDayWithinBoundDays(t *testing.T) {
	// A record stamped late on the end day still belongs to the range.
	d := time.Date(2024, time.May, 20, 23, 59, 0, 0, time.UTC)
	end := time.Date(2024, time.May, 20, 12, 0, 0, 0, time.UTC)

	assert.True(t, InRange(models.NormalizedRecord{Date: &d}, nil, &end))
}

func TestInRangeOpenBounds(t *testing.T) {
	rec := dated("2024-05-15")
	start := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, InRange(rec, nil, nil))
	assert.True(t, InRange(rec, &start, nil))

	late := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	assert.False(t, InRange(rec, &late, nil))
}

func TestFilterByRangePreservesOrder(t *testing.T) {
	records := []models.NormalizedRecord{
		dated("2024-05-01"),
		dated("2024-05-15"),
		{}, // undated
		dated("2024-05-30"),
	}
	start := time.Date(2024, time.May, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.May, 20, 0, 0, 0, 0, time.UTC)

	filtered := FilterByRange(records, &start, &end)
	require.Len(t, filtered, 2)
	assert.Equal(t, "2024-05-15", filtered[0].Date.Format("2006-01-02"))
	assert.Nil(t, filtered[1].Date)
}

func TestPeriodBoundsSkipsUndatedRecords(t *testing.T) {
	min, max := PeriodBounds([]models.NormalizedRecord{
		dated("2024-05-15"),
		{},
		dated("2024-04-01"),
		dated("2024-06-20"),
	})

	require.NotNil(t, min)
	require.NotNil(t, max)
	assert.Equal(t, "2024-04-01", min.Format("2006-01-02"))
	assert.Equal(t, "2024-06-20", max.Format("2006-01-02"))
}

func TestPeriodBoundsAllUndated(t *testing.T) {
	min, max := PeriodBounds([]models.NormalizedRecord{{}, {}})
	assert.Nil(t, min)
	assert.Nil(t, max)
}
