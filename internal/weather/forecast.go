package weather

import (
	"math"
	"sort"
	"time"

	"github.com/skyscope/skyscope-server/internal/providers"
)

const (
	maxDailyEntries = 5
	maxHourlyPoints = 8
	maxTrendDays    = 7

	dayLabelFormat  = "Mon"
	dateLabelFormat = "Jan 2"
	timeLabelFormat = "15:04"
)

// DailySummaries walks the 3-hourly samples in order and emits one entry
// per newly seen weekday label, using that first sample's instantaneous
// temperature and condition. At most five entries; fewer when the input
// covers fewer distinct days. Never pads.
func DailySummaries(samples []providers.ForecastSample) []DailyForecastEntry {
	entries := make([]DailyForecastEntry, 0, maxDailyEntries)
	seen := make(map[string]struct{}, maxDailyEntries)

	for _, s := range samples {
		if len(entries) >= maxDailyEntries {
			break
		}
		day := time.Unix(s.Dt, 0).UTC().Format(dayLabelFormat)
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		entries = append(entries, DailyForecastEntry{
			Day:         day,
			Temperature: s.Main.Temp,
			Condition:   s.Condition(),
		})
	}

	return entries
}

// HourlySeries returns the first eight samples verbatim. The provider
// cadence is 3 hours, so eight samples span roughly a day; no resampling
// to true hourly resolution happens here.
func HourlySeries(samples []providers.ForecastSample) []HourlySample {
	n := len(samples)
	if n > maxHourlyPoints {
		n = maxHourlyPoints
	}

	out := make([]HourlySample, 0, n)
	for _, s := range samples[:n] {
		out = append(out, HourlySample{
			Time:        time.Unix(s.Dt, 0).UTC().Format(timeLabelFormat),
			Temperature: s.Main.Temp,
			Condition:   s.Condition(),
		})
	}
	return out
}

// TemperatureTrend folds all samples sharing a date label into a running
// high (max of temp_max) and low (min of temp_min), at most seven days.
// Groups are emitted in order of each day's earliest timestamp, so the
// output is chronological even if the input is not.
func TemperatureTrend(samples []providers.ForecastSample) []TemperatureTrendEntry {
	type dayGroup struct {
		day      string
		high     float64
		low      float64
		earliest int64
	}

	groups := make(map[string]*dayGroup)
	keys := make([]string, 0, maxTrendDays)

	for _, s := range samples {
		t := time.Unix(s.Dt, 0).UTC()
		key := t.Format(dateLabelFormat)

		g, ok := groups[key]
		if !ok {
			groups[key] = &dayGroup{
				day:      t.Format(dayLabelFormat),
				high:     s.Main.TempMax,
				low:      s.Main.TempMin,
				earliest: s.Dt,
			}
			keys = append(keys, key)
			continue
		}

		g.high = math.Max(g.high, s.Main.TempMax)
		g.low = math.Min(g.low, s.Main.TempMin)
		if s.Dt < g.earliest {
			g.earliest = s.Dt
		}
	}

	sort.SliceStable(keys, func(i, j int) bool {
		return groups[keys[i]].earliest < groups[keys[j]].earliest
	})
	if len(keys) > maxTrendDays {
		keys = keys[:maxTrendDays]
	}

	entries := make([]TemperatureTrendEntry, 0, len(keys))
	for _, key := range keys {
		g := groups[key]
		entries = append(entries, TemperatureTrendEntry{
			Day:  g.day,
			Date: key,
			High: int(math.Round(g.high)),
			Low:  int(math.Round(g.low)),
		})
	}
	return entries
}

// PrecipitationSeries maps the first eight samples to precipitation
// probability (whole percent) and expected accumulation. Amount prefers
// the rain accumulation, then snow, then zero.
func PrecipitationSeries(samples []providers.ForecastSample) []PrecipitationEntry {
	n := len(samples)
	if n > maxHourlyPoints {
		n = maxHourlyPoints
	}

	out := make([]PrecipitationEntry, 0, n)
	for _, s := range samples[:n] {
		amount := 0.0
		switch {
		case s.Rain != nil && s.Rain.ThreeH > 0:
			amount = s.Rain.ThreeH
		case s.Snow != nil && s.Snow.ThreeH > 0:
			amount = s.Snow.ThreeH
		}

		out = append(out, PrecipitationEntry{
			Time:        time.Unix(s.Dt, 0).UTC().Format(timeLabelFormat),
			Probability: int(math.Round(s.Pop * 100)),
			Amount:      amount,
		})
	}
	return out
}
