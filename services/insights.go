package services

import (
	"fmt"
	"io"
	"math"
	"strings"

	"purchase-explorer/models"
	"purchase-explorer/utils"
)

type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

func (s *InsightService) Generate(region string, purchases []models.Purchase) *models.InsightReport {
	report := &models.InsightReport{Region: region}

	if len(purchases) == 0 {
		return report
	}

	report.TotalRecords = len(purchases)
	report.MinAge, report.MaxAge, _ = AgeRange(purchases)
	report.ByCategory = AggregateByCategory(purchases)
	report.Bins = Histogram(purchases, DefaultDomain, DefaultBinCount)
	report.TotalAmount = round2(SumAmounts(purchases))

	report.MinAmount = purchases[0].Amount
	report.MaxAmount = purchases[0].Amount
	inDomain := 0
	for _, p := range purchases {
		if p.Amount < report.MinAmount {
			report.MinAmount = p.Amount
		}
		if p.Amount > report.MaxAmount {
			report.MaxAmount = p.Amount
		}
		if p.Amount >= DefaultDomain.Lo && p.Amount <= DefaultDomain.Hi {
			inDomain++
		}
	}
	report.OutOfDomain = len(purchases) - inDomain
	report.AverageAmount = round2(report.TotalAmount / float64(len(purchases)))

	s.logger.Debug("[insights] %s: %d records, %d categories, %d outside histogram domain",
		region, report.TotalRecords, len(report.ByCategory), report.OutOfDomain)
	return report
}

func (s *InsightService) Print(w io.Writer, r *models.InsightReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  PURCHASE SUMMARY: %s\033[0m\n", strings.ToUpper(r.Region))
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	fmt.Fprintf(w, "\033[1;33m  Overview\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if r.TotalRecords == 0 {
		fmt.Fprintf(w, "  No purchases for this region\n")
		fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
		return
	}
	fmt.Fprintf(w, "  Purchases      : \033[1m%d\033[0m\n", r.TotalRecords)
	fmt.Fprintf(w, "  Age range      : \033[1m%d-%d\033[0m\n", r.MinAge, r.MaxAge)
	fmt.Fprintf(w, "  Total amount   : \033[1;32m$%.2f\033[0m\n", r.TotalAmount)
	fmt.Fprintf(w, "  Average amount : \033[1;32m$%.2f\033[0m\n", r.AverageAmount)
	fmt.Fprintf(w, "  Min / Max      : \033[1;32m$%.2f / $%.2f\033[0m\n", r.MinAmount, r.MaxAmount)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Totals by Category\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	for _, row := range r.ByCategory {
		fmt.Fprintf(w, "  %-20s $%10.2f  (%d purchases)\n", truncate(row.Category, 20), row.TotalAmount, row.Count)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Amount Distribution ($%.0f-$%.0f)\033[0m\n", DefaultDomain.Lo, DefaultDomain.Hi)
	fmt.Fprintf(w, "  %s\n", thin)
	for _, b := range r.Bins {
		bar := strings.Repeat("█", b.Count)
		fmt.Fprintf(w, "  %5.0f-%-5.0f %s (%d)\n", b.Lower, b.Upper, truncate(bar, 36), b.Count)
	}
	if r.OutOfDomain > 0 {
		fmt.Fprintf(w, "  %d purchases outside the range are not shown\n", r.OutOfDomain)
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// truncate shortens s to max runes, ending in "..." when cut.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
