package storage

import (
	"errors"
	"fmt"
	"strings"

	"purchase-explorer/models"
)

// Header names the loader looks for. Matching is case-insensitive.
const (
	ColumnLocation = "Location"
	ColumnGender   = "Gender"
	ColumnAge      = "Age"
	ColumnAmount   = "Purchase Amount (USD)"
)

var (
	// ErrMissingColumn is returned when a required header is absent.
	ErrMissingColumn = errors.New("missing required column")
	// ErrUnsupportedFormat is returned for file extensions no reader handles.
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

type columnIndex struct {
	location, gender, age, amount int
}

func indexColumns(header []string) (columnIndex, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		key := normaliseHeader(h)
		if _, dup := pos[key]; !dup {
			pos[key] = i
		}
	}

	lookup := func(name string) (int, error) {
		i, ok := pos[normaliseHeader(name)]
		if !ok {
			return -1, fmt.Errorf("%w: %q", ErrMissingColumn, name)
		}
		return i, nil
	}

	var idx columnIndex
	var err error
	if idx.location, err = lookup(ColumnLocation); err != nil {
		return idx, err
	}
	if idx.gender, err = lookup(ColumnGender); err != nil {
		return idx, err
	}
	if idx.age, err = lookup(ColumnAge); err != nil {
		return idx, err
	}
	if idx.amount, err = lookup(ColumnAmount); err != nil {
		return idx, err
	}
	return idx, nil
}

// rowsToRaw maps data rows onto RawPurchase using the header positions.
// Short rows (XLSX trims trailing blanks) yield empty strings.
func rowsToRaw(header []string, rows [][]string) ([]*models.RawPurchase, error) {
	idx, err := indexColumns(header)
	if err != nil {
		return nil, err
	}

	out := make([]*models.RawPurchase, 0, len(rows))
	for _, row := range rows {
		if isBlank(row) {
			continue
		}
		out = append(out, &models.RawPurchase{
			Location: cell(row, idx.location),
			Gender:   cell(row, idx.gender),
			Age:      cell(row, idx.age),
			Amount:   cell(row, idx.amount),
		})
	}
	return out, nil
}

func normaliseHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	return strings.ToLower(strings.TrimSpace(h))
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
