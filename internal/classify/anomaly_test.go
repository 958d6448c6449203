package classify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkamanzi/farepulse/internal/model"
)

func dayRecords(day time.Time, count int) []model.ClassifiedRecord {
	out := make([]model.ClassifiedRecord, count)
	for i := range out {
		out[i] = model.ClassifiedRecord{
			Record: model.Record{
				Timestamp: day.Add(time.Duration(i) * time.Minute),
			},
		}
	}
	return out
}

func TestDetectSpikes(t *testing.T) {
	base := time.Date(2025, 8, 1, 8, 0, 0, 0, time.UTC)

	var records []model.ClassifiedRecord
	for d := 0; d < 4; d++ {
		records = append(records, dayRecords(base.AddDate(0, 0, d), 5)...)
	}
	records = append(records, dayRecords(base.AddDate(0, 0, 4), 30)...)

	spikes := DetectSpikes(records, 0)

	require.Len(t, spikes, 1)
	assert.Equal(t, time.Date(2025, 8, 5, 0, 0, 0, 0, time.UTC), spikes[0].Day)
	assert.Equal(t, 30, spikes[0].Count)
	assert.InDelta(t, 5.0, spikes[0].Baseline, 0.001)
}

func TestDetectSpikes_SteadyGrowthIsNotASpike(t *testing.T) {
	base := time.Date(2025, 8, 1, 8, 0, 0, 0, time.UTC)

	var records []model.ClassifiedRecord
	for d, count := range []int{5, 6, 7, 8} {
		records = append(records, dayRecords(base.AddDate(0, 0, d), count)...)
	}

	assert.Empty(t, DetectSpikes(records, 0))
}

func TestDetectSpikes_NeedsBaseline(t *testing.T) {
	base := time.Date(2025, 8, 1, 8, 0, 0, 0, time.UTC)

	// Two quiet days then a loud one: too few days to judge.
	records := dayRecords(base, 2)
	records = append(records, dayRecords(base.AddDate(0, 0, 1), 3)...)
	records = append(records, dayRecords(base.AddDate(0, 0, 2), 40)...)

	assert.Empty(t, DetectSpikes(records, 0))
	assert.Empty(t, DetectSpikes(nil, 0))
}

func TestDetectSpikes_CustomSigma(t *testing.T) {
	base := time.Date(2025, 8, 1, 8, 0, 0, 0, time.UTC)

	var records []model.ClassifiedRecord
	for d := 0; d < 3; d++ {
		records = append(records, dayRecords(base.AddDate(0, 0, d), 5)...)
	}
	records = append(records, dayRecords(base.AddDate(0, 0, 3), 9)...)

	// 9 records clears mean 5 + 3 floored deviations = 8, but not the
	// stricter 5-sigma bar.
	require.Len(t, DetectSpikes(records, 0), 1)
	assert.Empty(t, DetectSpikes(records, 5))
}
