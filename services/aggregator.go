package services

import (
	"math"

	"github.com/shopspring/decimal"

	"purchase-explorer/models"
)

const (
	// DefaultBinCount is the number of histogram bins in the amount panel.
	DefaultBinCount = 20
)

// DefaultDomain is the purchase amount range the histogram spans.
var DefaultDomain = models.Domain{Lo: 0, Hi: 100}

// AggregateByCategory groups records by category and sums their amounts.
// Rows come out in first-seen order of each category.
func AggregateByCategory(records []models.Purchase) []models.AggregateRow {
	type acc struct {
		total decimal.Decimal
		count int
	}

	order := make([]string, 0, 4)
	groups := make(map[string]*acc)

	for _, r := range records {
		g, ok := groups[r.Category]
		if !ok {
			g = &acc{total: decimal.Zero}
			groups[r.Category] = g
			order = append(order, r.Category)
		}
		g.total = g.total.Add(decimal.NewFromFloat(r.Amount))
		g.count++
	}

	rows := make([]models.AggregateRow, 0, len(order))
	for _, cat := range order {
		g := groups[cat]
		rows = append(rows, models.AggregateRow{
			Category:    cat,
			TotalAmount: g.total.InexactFloat64(),
			Count:       g.count,
		})
	}
	return rows
}

// SumAmounts totals the amount of every record exactly.
func SumAmounts(records []models.Purchase) float64 {
	total := decimal.Zero
	for _, r := range records {
		total = total.Add(decimal.NewFromFloat(r.Amount))
	}
	return total.InexactFloat64()
}

// Histogram counts record amounts into binCount equal-width bins over domain.
// Every bin is half-open [lo, hi) except the last, which also includes the
// domain's upper edge. Amounts outside the domain are not counted.
func Histogram(records []models.Purchase, domain models.Domain, binCount int) []models.HistogramBin {
	if binCount <= 0 || !(domain.Hi > domain.Lo) {
		return nil
	}

	width := (domain.Hi - domain.Lo) / float64(binCount)
	bins := make([]models.HistogramBin, binCount)
	for i := range bins {
		bins[i].Lower = domain.Lo + float64(i)*width
		bins[i].Upper = domain.Lo + float64(i+1)*width
	}
	bins[binCount-1].Upper = domain.Hi

	for _, r := range records {
		if idx, ok := binIndex(r.Amount, domain, width, bins); ok {
			bins[idx].Count++
		}
	}
	return bins
}

func binIndex(v float64, domain models.Domain, width float64, bins []models.HistogramBin) (int, bool) {
	if math.IsNaN(v) || v < domain.Lo || v > domain.Hi {
		return 0, false
	}
	last := len(bins) - 1
	if v == domain.Hi {
		return last, true
	}

	idx := int(math.Floor((v - domain.Lo) / width))
	if idx > last {
		idx = last
	}
	// Float division can land one bin off near an edge; the stored bounds win.
	for idx > 0 && v < bins[idx].Lower {
		idx--
	}
	for idx < last && v >= bins[idx].Upper {
		idx++
	}
	return idx, true
}

// AgeRange returns the smallest and largest age in records.
func AgeRange(records []models.Purchase) (int, int, error) {
	if len(records) == 0 {
		return 0, 0, ErrEmptyDataset
	}
	lo, hi := records[0].Age, records[0].Age
	for _, r := range records[1:] {
		if r.Age < lo {
			lo = r.Age
		}
		if r.Age > hi {
			hi = r.Age
		}
	}
	return lo, hi, nil
}

// FilterByMaxAge returns the records whose age is at most bound, in order.
func FilterByMaxAge(records []models.Purchase, bound int) []models.Purchase {
	out := make([]models.Purchase, 0, len(records))
	for _, r := range records {
		if r.Age <= bound {
			out = append(out, r)
		}
	}
	return out
}

// FilterByCategory returns the records of one category, in order.
func FilterByCategory(records []models.Purchase, category string) []models.Purchase {
	out := make([]models.Purchase, 0, len(records))
	for _, r := range records {
		if r.Category == category {
			out = append(out, r)
		}
	}
	return out
}
