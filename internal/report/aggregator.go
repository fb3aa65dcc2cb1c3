package report

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// PeriodKind is the caller's hint for how the requested range was chosen.
type PeriodKind string

const (
	PeriodDay     PeriodKind = "day"
	PeriodMonth   PeriodKind = "month"
	PeriodQuarter PeriodKind = "quarter"
	PeriodYear    PeriodKind = "year"
	PeriodCustom  PeriodKind = "custom"
)

// Resolution is the bucket granularity selected for a range.
type Resolution string

const (
	ResolutionHour  Resolution = "hour"
	ResolutionDay   Resolution = "day"
	ResolutionMonth Resolution = "month"
)

// ExpenseKind classifies an outgoing cost.
type ExpenseKind string

const (
	ExpenseCOGS ExpenseKind = "cogs"
	ExpenseOpEx ExpenseKind = "opex"
)

// RecordTime carries the two timestamp encodings found in stored records:
// a numeric epoch in milliseconds and, for legacy rows, a raw string form.
// A zero value means no usable timestamp was recorded.
type RecordTime struct {
	Millis int64
	Raw    string
}

// At wraps a concrete instant.
func At(t time.Time) RecordTime {
	return RecordTime{Millis: t.UnixMilli()}
}

// Resolve returns the best-effort instant for the record. A numeric epoch
// wins; otherwise the raw string is parsed; when both fail the current time
// is substituted so the record is never dropped outright.
func (rt RecordTime) Resolve(now time.Time) time.Time {
	if rt.Millis > 0 {
		return time.UnixMilli(rt.Millis).In(now.Location())
	}
	if rt.Raw != "" {
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
			if parsed, err := time.ParseInLocation(layout, rt.Raw, now.Location()); err == nil {
				return parsed
			}
		}
	}
	return now
}

// OrderLine is the slice of an order relevant to reporting.
type OrderLine struct {
	Name  string
	Total int64
}

// Order is an immutable completed transaction as read back from storage.
type Order struct {
	ID        string
	Total     int64
	Timestamp RecordTime
	Lines     []OrderLine
}

// Expense is a recorded outgoing cost.
type Expense struct {
	ID        string
	Kind      ExpenseKind
	Amount    int64
	Timestamp RecordTime
}

// Bucket is one interval of the time series.
type Bucket struct {
	Key     string `json:"key"`
	Label   string `json:"label"`
	Revenue int64  `json:"revenue"`
	Cost    int64  `json:"cost"`
	Profit  int64  `json:"profit"`
}

// ProductCount pairs a display name with its unit sales.
type ProductCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// HourStat aggregates orders by hour of day, independent of the bucket
// resolution, for the peak-hours table.
type HourStat struct {
	Hour        int            `json:"hour"`
	Revenue     int64          `json:"revenue"`
	Orders      int            `json:"orders"`
	TopProducts []ProductCount `json:"topProducts,omitempty"`
}

// Summary carries range-wide totals computed from the raw filtered lists,
// never from the bucketed view.
type Summary struct {
	TotalRevenue int64   `json:"totalRevenue"`
	TotalCOGS    int64   `json:"totalCogs"`
	TotalOpEx    int64   `json:"totalOpex"`
	NetProfit    int64   `json:"netProfit"`
	Margin       float64 `json:"margin"`
	OrderCount   int     `json:"orderCount"`
}

// Report is the full aggregation output consumed by charts and summary cards.
type Report struct {
	Resolution    Resolution     `json:"resolution"`
	Buckets       []Bucket       `json:"buckets"`
	Summary       Summary        `json:"summary"`
	ProductCounts []ProductCount `json:"productCounts"`
	HourOfDay     []HourStat     `json:"hourOfDay"`
}

// ChooseResolution applies the deterministic resolution policy: hour for a
// single day, month for a year or long custom range, day otherwise.
func ChooseResolution(period PeriodKind, start, end time.Time) Resolution {
	days := int(math.Ceil(end.Sub(start).Hours() / 24))
	switch {
	case period == PeriodDay, period == PeriodCustom && days <= 1:
		return ResolutionHour
	case period == PeriodYear, period == PeriodCustom && days > 60:
		return ResolutionMonth
	default:
		return ResolutionDay
	}
}

// bucketKey truncates the instant to the resolution's precision.
func bucketKey(t time.Time, res Resolution) string {
	switch res {
	case ResolutionHour:
		return t.Format("2006-01-02T15")
	case ResolutionMonth:
		return t.Format("2006-01")
	default:
		return t.Format("2006-01-02")
	}
}

func bucketLabel(t time.Time, res Resolution) string {
	switch res {
	case ResolutionHour:
		return fmt.Sprintf("%02d:00", t.Hour())
	case ResolutionMonth:
		return fmt.Sprintf("%d月", int(t.Month()))
	default:
		return fmt.Sprintf("%d/%d", int(t.Month()), t.Day())
	}
}

// alignDown snaps the range start to the top of its resolution unit.
func alignDown(t time.Time, res Resolution) time.Time {
	switch res {
	case ResolutionHour:
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
	case ResolutionMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	default:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	}
}

func step(t time.Time, res Resolution) time.Time {
	switch res {
	case ResolutionHour:
		return t.Add(time.Hour)
	case ResolutionMonth:
		return t.AddDate(0, 1, 0)
	default:
		return t.AddDate(0, 0, 1)
	}
}

// generateBuckets produces the empty ordered series covering [start, end].
func generateBuckets(start, end time.Time, res Resolution) ([]Bucket, map[string]int) {
	var buckets []Bucket
	index := make(map[string]int)
	for cursor := alignDown(start, res); !cursor.After(end); cursor = step(cursor, res) {
		key := bucketKey(cursor, res)
		index[key] = len(buckets)
		buckets = append(buckets, Bucket{Key: key, Label: bucketLabel(cursor, res)})
	}
	return buckets, index
}

// Aggregate buckets in-range orders and expenses into a chronological time
// series plus range-wide summaries. Pure: no I/O, no shared state, never
// fails on malformed individual records.
func Aggregate(orders []Order, expenses []Expense, rangeStart, rangeEnd time.Time, period PeriodKind) Report {
	return AggregateAt(orders, expenses, rangeStart, rangeEnd, period, time.Now())
}

// AggregateAt is Aggregate with an explicit "now" used as the fallback for
// records without a usable timestamp. Kept separate so tests stay
// deterministic.
func AggregateAt(orders []Order, expenses []Expense, rangeStart, rangeEnd time.Time, period PeriodKind, now time.Time) Report {
	res := ChooseResolution(period, rangeStart, rangeEnd)
	buckets, index := generateBuckets(rangeStart, rangeEnd, res)

	inRange := func(t time.Time) bool {
		return !t.Before(rangeStart) && !t.After(rangeEnd)
	}

	summary := Summary{}
	productIndex := make(map[string]int)
	var products []ProductCount
	var hours [24]HourStat
	for h := range hours {
		hours[h].Hour = h
	}
	hourProducts := make([]map[string]int, 24)
	hourOrder := make([][]string, 24)

	for _, order := range orders {
		at := order.Timestamp.Resolve(now)
		if !inRange(at) {
			continue
		}
		if i, ok := index[bucketKey(at, res)]; ok {
			buckets[i].Revenue += order.Total
			buckets[i].Profit += order.Total
		}
		summary.TotalRevenue += order.Total
		summary.OrderCount++

		hour := at.Hour()
		hours[hour].Revenue += order.Total
		hours[hour].Orders++
		if hourProducts[hour] == nil {
			hourProducts[hour] = make(map[string]int)
		}
		for _, line := range order.Lines {
			if i, ok := productIndex[line.Name]; ok {
				products[i].Count++
			} else {
				productIndex[line.Name] = len(products)
				products = append(products, ProductCount{Name: line.Name, Count: 1})
			}
			if _, seen := hourProducts[hour][line.Name]; !seen {
				hourOrder[hour] = append(hourOrder[hour], line.Name)
			}
			hourProducts[hour][line.Name]++
		}
	}

	for _, exp := range expenses {
		at := exp.Timestamp.Resolve(now)
		if !inRange(at) {
			continue
		}
		if i, ok := index[bucketKey(at, res)]; ok {
			buckets[i].Cost += exp.Amount
			buckets[i].Profit -= exp.Amount
		}
		switch exp.Kind {
		case ExpenseOpEx:
			summary.TotalOpEx += exp.Amount
		default:
			// unknown kinds are treated as direct cost rather than dropped
			summary.TotalCOGS += exp.Amount
		}
	}

	summary.NetProfit = summary.TotalRevenue - summary.TotalCOGS - summary.TotalOpEx
	if summary.TotalRevenue > 0 {
		summary.Margin = float64(summary.NetProfit) / float64(summary.TotalRevenue)
	}

	sort.SliceStable(products, func(i, j int) bool {
		return products[i].Count > products[j].Count
	})

	hourStats := make([]HourStat, 24)
	for h := range hours {
		hourStats[h] = hours[h]
		hourStats[h].TopProducts = topProducts(hourProducts[h], hourOrder[h], 3)
	}

	return Report{
		Resolution:    res,
		Buckets:       buckets,
		Summary:       summary,
		ProductCounts: products,
		HourOfDay:     hourStats,
	}
}

// topProducts ranks the hourly product tallies by count descending, ties
// broken by first-seen order, truncated to limit.
func topProducts(counts map[string]int, firstSeen []string, limit int) []ProductCount {
	if len(counts) == 0 {
		return nil
	}
	ranked := make([]ProductCount, 0, len(counts))
	for _, name := range firstSeen {
		ranked = append(ranked, ProductCount{Name: name, Count: counts[name]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
