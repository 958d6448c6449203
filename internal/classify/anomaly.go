package classify

import (
	"math"
	"sort"
	"time"

	"github.com/mkamanzi/farepulse/internal/model"
)

const (
	// DefaultSpikeSigmas is how many deviations above the trailing
	// mean a day's volume must sit to count as a spike.
	DefaultSpikeSigmas = 3.0
	// minBaselineDays is how many observed days the baseline needs
	// before any day can be judged against it.
	minBaselineDays = 3
	// sigmaFloor keeps a flat low-volume series from flagging every
	// one-record uptick once its deviation collapses to zero.
	sigmaFloor = 1.0
)

// Spike marks a day whose record volume sits well above the trailing
// baseline. Volume spikes often accompany coordinated posting, so they
// are surfaced alongside the report, not acted on automatically.
type Spike struct {
	Day       time.Time
	Baseline  float64
	Threshold float64
	Count     int
}

// DetectSpikes compares each day's record count against the mean and
// deviation of all earlier observed days. Purely statistical: no model,
// and days with no records do not enter the baseline. Zero sigmas
// selects the default.
func DetectSpikes(records []model.ClassifiedRecord, sigmas float64) []Spike {
	if sigmas <= 0 {
		sigmas = DefaultSpikeSigmas
	}

	counts := make(map[time.Time]int)
	for i := range records {
		day := records[i].Record.Timestamp.UTC().Truncate(24 * time.Hour)
		counts[day]++
	}

	days := make([]time.Time, 0, len(counts))
	for day := range counts {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	var spikes []Spike
	for i, day := range days {
		if i < minBaselineDays {
			continue
		}
		mean, dev := meanStddev(days[:i], counts)
		threshold := mean + sigmas*math.Max(dev, sigmaFloor)
		if float64(counts[day]) > threshold {
			spikes = append(spikes, Spike{
				Day:       day,
				Count:     counts[day],
				Baseline:  mean,
				Threshold: threshold,
			})
		}
	}
	return spikes
}

func meanStddev(days []time.Time, counts map[time.Time]int) (float64, float64) {
	var sum float64
	for _, day := range days {
		sum += float64(counts[day])
	}
	mean := sum / float64(len(days))

	var sq float64
	for _, day := range days {
		diff := float64(counts[day]) - mean
		sq += diff * diff
	}
	return mean, math.Sqrt(sq / float64(len(days)))
}
