package heuristics

import (
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/cacsx/intel-engine/pkg/models"
)

// Pattern-of-Life Activity Profile
//
// Transfer timing says a lot about who operates a wallet:
//
//   1. Timezone: peak activity hour, assumed to be ~13:00 local
//   2. Schedule: share of transfers on weekdays
//   3. Regularity: bots are near-periodic, humans are not
//   4. Velocity: transfers per day and the busiest hour
//
// Records whose timestamp cannot be read are ignored.

// rapidActivityPerHour is the busiest-hour count that flags rapid activity.
const rapidActivityPerHour = 20

// ActivityProfile is the temporal fingerprint of a wallet's history.
type ActivityProfile struct {
	Transfers        int     `json:"transfers"`
	InferredTimezone string  `json:"inferredTimezone"` // e.g. "UTC-5"
	PeakHourUTC      int     `json:"peakHourUTC"`
	WeekdayRatio     float64 `json:"weekdayRatio"` // Mon-Fri share
	Regularity       float64 `json:"regularity"`   // 0 random .. 1 periodic
	TxPerDay         float64 `json:"txPerDay"`
	MaxPerHour       int     `json:"maxPerHour"` // most transfers inside any 1h window
	EntityType       string  `json:"entityType"` // bot/service/business/human/unknown
	RapidActivity    bool    `json:"rapidActivity"`
}

// ProfileActivity computes the activity profile of a history.
func ProfileActivity(txs []models.Transaction) ActivityProfile {
	times := make([]time.Time, 0, len(txs))
	for _, tx := range txs {
		if at, ok := ParseInstant(tx.Timestamp); ok {
			times = append(times, at.UTC())
		}
	}
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })

	profile := ActivityProfile{
		Transfers:        len(times),
		InferredTimezone: "unknown",
		EntityType:       "unknown",
	}
	if len(times) == 0 {
		return profile
	}

	profile.MaxPerHour = maxInWindow(times, time.Hour)
	profile.RapidActivity = profile.MaxPerHour >= rapidActivityPerHour
	if len(times) < 3 {
		return profile
	}

	hourCounts := make([]int, 24)
	weekdayCount := 0
	for _, t := range times {
		hourCounts[t.Hour()]++
		if t.Weekday() >= time.Monday && t.Weekday() <= time.Friday {
			weekdayCount++
		}
	}

	maxCount := 0
	for h, count := range hourCounts {
		if count > maxCount {
			maxCount = count
			profile.PeakHourUTC = h
		}
	}

	profile.InferredTimezone = inferTimezoneFromPeak(profile.PeakHourUTC)
	profile.WeekdayRatio = round2(float64(weekdayCount) / float64(len(times)))
	profile.Regularity = computeRegularity(times)

	if span := times[len(times)-1].Sub(times[0]); span > 0 {
		profile.TxPerDay = round2(float64(len(times)) / (span.Hours() / 24))
	}

	profile.EntityType = classifyEntity(profile)
	return profile
}

// inferTimezoneFromPeak maps the peak UTC hour to the offset that puts it
// at 13:00 local.
func inferTimezoneFromPeak(peakHourUTC int) string {
	offset := peakHourUTC - 13
	if offset > 12 {
		offset -= 24
	}
	if offset < -12 {
		offset += 24
	}

	if offset >= 0 {
		return "UTC+" + strconv.Itoa(offset)
	}
	return "UTC" + strconv.Itoa(offset)
}

// computeRegularity is 1/(1+CV) of the inter-transfer gaps: 1.0 for a
// perfectly periodic history, towards 0 for bursty ones.
func computeRegularity(times []time.Time) float64 {
	if len(times) < 3 {
		return 0
	}

	intervals := make([]float64, len(times)-1)
	sum := 0.0
	for i := 1; i < len(times); i++ {
		intervals[i-1] = times[i].Sub(times[i-1]).Hours()
		sum += intervals[i-1]
	}
	mean := sum / float64(len(intervals))
	if mean <= 0 {
		return 0
	}

	varianceSum := 0.0
	for _, v := range intervals {
		diff := v - mean
		varianceSum += diff * diff
	}
	cv := math.Sqrt(varianceSum/float64(len(intervals))) / mean

	return round2(1.0 / (1.0 + cv))
}

// maxInWindow is the largest number of sorted instants inside any window of
// the given width (inclusive).
func maxInWindow(times []time.Time, width time.Duration) int {
	best, lo := 0, 0
	for hi := range times {
		for times[hi].Sub(times[lo]) > width {
			lo++
		}
		if n := hi - lo + 1; n > best {
			best = n
		}
	}
	return best
}

func classifyEntity(p ActivityProfile) string {
	switch {
	case p.Regularity >= 0.8 && p.TxPerDay >= 10:
		return "bot"
	case p.Regularity >= 0.6 && p.TxPerDay >= 5:
		return "service"
	case p.WeekdayRatio >= 0.8 && p.TxPerDay >= 1:
		return "business"
	case p.TxPerDay >= 0.1:
		return "human"
	default:
		return "unknown"
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
