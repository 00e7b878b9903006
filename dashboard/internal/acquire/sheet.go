package acquire

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/revealboard/revealboard/dashboard/internal/config"
	"github.com/revealboard/revealboard/pkg/types"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// SheetFetcher reads a spreadsheet CSV export. The header row names the
// columns and the last row holds the current values.
type SheetFetcher struct {
	cfg    config.SheetConfig
	client *http.Client
}

// NewSheetFetcher returns a Fetcher for the sheet export in cfg.
func NewSheetFetcher(cfg config.SheetConfig, client *http.Client) *SheetFetcher {
	return &SheetFetcher{cfg: cfg, client: client}
}

// Fetch downloads the export and extracts the latest pair.
func (f *SheetFetcher) Fetch(ctx context.Context) (types.ValuePair, error) {
	body, err := get(ctx, f.client, f.cfg.URL, "text/csv")
	if err != nil {
		return types.ValuePair{}, err
	}
	pair, err := ParseSheet(body, f.cfg.AColumn, f.cfg.BColumn, f.cfg.UpdatedColumn)
	if err != nil {
		return types.ValuePair{}, &ParseError{Err: err}
	}
	return pair, nil
}

// ParseSheet extracts a value pair from CSV data. aCol and bCol select
// columns by header name (case-insensitive); when both are empty the first
// two numeric cells of the last row are used. updatedCol, if set, names the
// column holding updatedAt.
func ParseSheet(data []byte, aCol, bCol, updatedCol string) (types.ValuePair, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	rows, err := r.ReadAll()
	if err != nil {
		return types.ValuePair{}, fmt.Errorf("sheet: %w", err)
	}
	if len(rows) < 2 {
		return types.ValuePair{}, errors.New("sheet: no data rows")
	}
	header, last := rows[0], rows[len(rows)-1]

	updatedIdx := -1
	if updatedCol != "" {
		if updatedIdx, err = columnIndex(header, updatedCol); err != nil {
			return types.ValuePair{}, err
		}
	}

	var aIdx, bIdx int
	if aCol == "" && bCol == "" {
		numeric := make([]int, 0, 2)
		for i, cell := range last {
			if i == updatedIdx {
				continue
			}
			if _, err := parseCell(cell); err == nil {
				numeric = append(numeric, i)
			}
			if len(numeric) == 2 {
				break
			}
		}
		if len(numeric) < 2 {
			return types.ValuePair{}, errors.New("sheet: last row has fewer than two numeric columns")
		}
		aIdx, bIdx = numeric[0], numeric[1]
	} else {
		if aIdx, err = columnIndex(header, aCol); err != nil {
			return types.ValuePair{}, err
		}
		if bIdx, err = columnIndex(header, bCol); err != nil {
			return types.ValuePair{}, err
		}
	}

	a, err := cellValue(last, aIdx)
	if err != nil {
		return types.ValuePair{}, err
	}
	b, err := cellValue(last, bIdx)
	if err != nil {
		return types.ValuePair{}, err
	}

	pair := types.ValuePair{A: a, B: b}
	if updatedIdx >= 0 && updatedIdx < len(last) {
		if pair.UpdatedAt, err = types.ParseTimestampString(last[updatedIdx]); err != nil {
			return types.ValuePair{}, fmt.Errorf("sheet: %s: %w", updatedCol, err)
		}
	}
	return pair, nil
}

func columnIndex(header []string, name string) (int, error) {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), strings.TrimSpace(name)) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("sheet: column %q not found", name)
}

func cellValue(row []string, i int) (float64, error) {
	if i >= len(row) {
		return 0, fmt.Errorf("sheet: last row has no column %d", i+1)
	}
	v, err := parseCell(row[i])
	if err != nil {
		return 0, fmt.Errorf("sheet: column %d: %w", i+1, err)
	}
	return v, nil
}

// errNotFinite rejects NaN and infinities, which ParseFloat accepts.
var errNotFinite = errors.New("value must be finite")

func parseCell(cell string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil {
		return 0, err
	}
	if !types.Finite(v) {
		return 0, errNotFinite
	}
	return v, nil
}
