package services

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"purchase-explorer/models"
	"purchase-explorer/utils"
)

// ErrEmptyDataset is returned when no record survives cleaning and the
// region filter, leaving the age range undefined.
var ErrEmptyDataset = errors.New("no records for region")

// CleanStats counts what the cleaner kept and why it dropped rows.
type CleanStats struct {
	Read        int
	Kept        int
	OtherRegion int
	BadAge      int
	BadAmount   int
}

// Cleaner coerces raw rows into typed Purchases and applies the region filter.
type Cleaner struct {
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// Clean keeps the rows of region whose age and amount parse, in input order.
// Rows with a malformed age or amount are dropped and logged rather than
// carried through as NaN.
func (c *Cleaner) Clean(raw []*models.RawPurchase, region string) ([]models.Purchase, CleanStats) {
	stats := CleanStats{Read: len(raw)}
	result := make([]models.Purchase, 0, len(raw))
	region = normaliseText(region)

	for i, r := range raw {
		location := normaliseText(r.Location)
		if location != region {
			stats.OtherRegion++
			continue
		}

		age, ok := parseAge(r.Age)
		if !ok {
			stats.BadAge++
			c.logger.Warn("[cleaner] Row %d: dropping non-numeric age %q", i+1, r.Age)
			continue
		}

		amount, ok := parseAmount(r.Amount)
		if !ok {
			stats.BadAmount++
			c.logger.Warn("[cleaner] Row %d: dropping non-numeric amount %q", i+1, r.Amount)
			continue
		}

		result = append(result, models.Purchase{
			Region:   location,
			Category: normaliseText(r.Gender),
			Age:      age,
			Amount:   amount,
		})
	}

	stats.Kept = len(result)
	c.logger.Info("[cleaner] Cleaned %d rows -> %d for %s (other region %d, bad age %d, bad amount %d)",
		stats.Read, stats.Kept, region, stats.OtherRegion, stats.BadAge, stats.BadAmount)
	return result, stats
}

// maxAge bounds a plausible customer age. Anything outside [0, maxAge] is
// treated as malformed.
const maxAge = 150

func parseAge(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if n, err := strconv.Atoi(raw); err == nil {
		if n < 0 || n > maxAge {
			return 0, false
		}
		return n, true
	}
	// Spreadsheets sometimes export whole numbers as "25.0".
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f < 0 || f > maxAge {
		return 0, false
	}
	return int(f), true
}

func parseAmount(raw string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// normaliseText strips leading and trailing whitespace. Interior text is
// compared exactly.
func normaliseText(s string) string {
	return strings.TrimSpace(s)
}
