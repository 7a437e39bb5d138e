package storage

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"purchase-explorer/models"
)

// FileSource reads the dataset from a local file. The reader is chosen by
// extension: .csv (optionally gzip/xz compressed) or .xlsx.
type FileSource struct {
	path string
}

// NewFileSource returns a source for path. The file is not opened until Load.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Path returns the file the source reads.
func (s *FileSource) Path() string { return s.path }

// Load reads every data row of the file.
func (s *FileSource) Load(ctx context.Context) ([]*models.RawPurchase, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch formatOf(s.path) {
	case "csv":
		return s.loadCSV()
	case "xlsx":
		return s.loadXLSX()
	default:
		return nil, fmt.Errorf("file: %q: %w", s.path, ErrUnsupportedFormat)
	}
}

// Close is a no-op; files are opened and closed inside Load.
func (s *FileSource) Close() error { return nil }

func formatOf(path string) string {
	name := strings.ToLower(filepath.Base(path))
	for _, ext := range []string{".gz", ".xz"} {
		name = strings.TrimSuffix(name, ext)
	}
	switch filepath.Ext(name) {
	case ".csv":
		return "csv"
	case ".xlsx":
		return "xlsx"
	default:
		return ""
	}
}

func (s *FileSource) loadCSV() ([]*models.RawPurchase, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("csv: open %q: %w", s.path, err)
	}
	defer f.Close()

	r, closeDecoder, err := decompress(f)
	if err != nil {
		return nil, fmt.Errorf("csv: %q: %w", s.path, err)
	}
	defer closeDecoder()

	return ReadCSV(r)
}

// ReadCSV parses a CSV stream whose first row is the header.
func ReadCSV(r io.Reader) ([]*models.RawPurchase, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("csv: empty input: %w", ErrMissingColumn)
		}
		return nil, fmt.Errorf("csv: read header: %w", err)
	}

	var rows [][]string
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: read row %d: %w", len(rows)+2, err)
		}
		rows = append(rows, rec)
	}

	return rowsToRaw(header, rows)
}

func (s *FileSource) loadXLSX() ([]*models.RawPurchase, error) {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("xlsx: open %q: %w", s.path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx: %q has no sheets", s.path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("xlsx: read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("xlsx: sheet %q is empty: %w", sheets[0], ErrMissingColumn)
	}

	return rowsToRaw(rows[0], rows[1:])
}
