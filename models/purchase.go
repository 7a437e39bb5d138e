package models

// RawPurchase holds one dataset row exactly as read from the source.
// Numeric fields are still strings; coercion happens in the cleaner.
type RawPurchase struct {
	Location string
	Gender   string
	Age      string
	Amount   string
}

// Purchase is a cleaned, region-filtered record. Never mutated after load.
type Purchase struct {
	Region   string
	Category string
	Age      int
	Amount   float64
}

// AggregateRow is the per-category rollup drawn as one bar.
type AggregateRow struct {
	Category    string  `json:"category"`
	TotalAmount float64 `json:"totalAmount"`
	Count       int     `json:"count"`
}

// HistogramBin is one fixed-width bucket of purchase amounts.
type HistogramBin struct {
	Lower float64 `json:"lowerBound"`
	Upper float64 `json:"upperBound"`
	Count int     `json:"count"`
}

// Domain is the closed numeric range a histogram spans.
type Domain struct {
	Lo float64
	Hi float64
}

// InsightReport holds the summary printed by the summary command.
type InsightReport struct {
	Region        string
	TotalRecords  int
	MinAge        int
	MaxAge        int
	TotalAmount   float64
	AverageAmount float64
	MinAmount     float64
	MaxAmount     float64
	ByCategory    []AggregateRow
	Bins          []HistogramBin
	OutOfDomain   int
}
