package usage

import (
	"sort"
	"time"

	"github.com/samber/lo"
)

// ByApp groups records by app name and sums durations. Results are sorted by
// total descending; apps with equal totals keep the order in which they first
// appeared in the input, so a fixed input order gives a fixed output order.
func ByApp(records []Record) []AppTotal {
	totals := make(map[string]float64, len(records))
	var order []string
	for _, r := range records {
		if _, seen := totals[r.AppName]; !seen {
			order = append(order, r.AppName)
		}
		totals[r.AppName] += r.DurationSeconds
	}

	out := lo.Map(order, func(app string, _ int) AppTotal {
		return AppTotal{AppName: app, TotalDurationSeconds: totals[app]}
	})
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalDurationSeconds > out[j].TotalDurationSeconds
	})
	return out
}

// ByDay groups records by the calendar date of their start time, in the start
// time's own location. Records without a start time are skipped entirely.
// Each bucket's app list is sorted like ByApp and truncated to topN, but the
// bucket total always covers every app that day. Buckets come back newest
// first.
func ByDay(records []Record, topN int) []DayBucket {
	type dayAgg struct {
		date   time.Time
		totals map[string]float64
		order  []string
	}

	byDay := map[string]*dayAgg{}
	for _, r := range records {
		if r.StartTime == nil {
			continue
		}
		y, m, d := r.StartTime.Date()
		date := time.Date(y, m, d, 0, 0, 0, 0, r.StartTime.Location())
		key := date.Format("2006-01-02")

		agg := byDay[key]
		if agg == nil {
			agg = &dayAgg{date: date, totals: map[string]float64{}}
			byDay[key] = agg
		}
		if _, seen := agg.totals[r.AppName]; !seen {
			agg.order = append(agg.order, r.AppName)
		}
		agg.totals[r.AppName] += r.DurationSeconds
	}

	keys := lo.Keys(byDay)
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))

	out := make([]DayBucket, 0, len(keys))
	for _, key := range keys {
		agg := byDay[key]
		apps := lo.Map(agg.order, func(app string, _ int) AppTotal {
			return AppTotal{AppName: app, TotalDurationSeconds: agg.totals[app]}
		})
		sort.SliceStable(apps, func(i, j int) bool {
			return apps[i].TotalDurationSeconds > apps[j].TotalDurationSeconds
		})
		total := lo.SumBy(apps, func(a AppTotal) float64 { return a.TotalDurationSeconds })
		if topN > 0 && len(apps) > topN {
			apps = apps[:topN]
		}
		out = append(out, DayBucket{
			Date:                 agg.date,
			TotalDurationSeconds: total,
			Apps:                 apps,
		})
	}
	return out
}
