package render

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Currency formats v as whole dollars with thousands separators, e.g. $12,345.
func Currency(v float64) string {
	v = math.Round(v)
	if v < 0 {
		return "-$" + printer.Sprintf("%.0f", -v)
	}
	return "$" + printer.Sprintf("%.0f", v)
}

// Integer formats n with thousands separators.
func Integer(n int) string {
	return printer.Sprintf("%d", n)
}

// SI formats an axis value with a metric suffix and no trailing zeros:
// 1500 -> "1.5k", 2000000 -> "2M", 40 -> "40".
func SI(v float64) string {
	abs := math.Abs(v)
	suffix := ""
	switch {
	case abs >= 1e9:
		v, suffix = v/1e9, "G"
	case abs >= 1e6:
		v, suffix = v/1e6, "M"
	case abs >= 1e3:
		v, suffix = v/1e3, "k"
	}
	s := strconv.FormatFloat(roundSig(v, 3), 'f', -1, 64)
	if strings.Contains(s, "e") {
		s = strconv.FormatFloat(v, 'g', 3, 64)
	}
	return s + suffix
}

func roundSig(v float64, digits int) float64 {
	if v == 0 {
		return 0
	}
	mag := math.Pow(10, float64(digits)-math.Ceil(math.Log10(math.Abs(v))))
	return math.Round(v*mag) / mag
}
