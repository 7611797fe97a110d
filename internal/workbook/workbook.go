// Package workbook bridges the legacy spreadsheet workbooks: one sheet per
// table, row 1 a header row, every cell a string. Import replays workbook
// rows through the repositories; export writes the scoped asset register
// back out as .xlsx.
package workbook

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	SheetUsers      = "Users"
	SheetAssets     = "Assets"
	SheetAgreements = "Agreements"
	SheetBills      = "Bills"
)

// header indexes a header row by normalized column name.
type header map[string]int

func newHeader(row []string) header {
	h := make(header, len(row))
	for i, name := range row {
		key := strings.ToLower(strings.TrimSpace(name))
		if key != "" {
			h[key] = i
		}
	}
	return h
}

func (h header) str(row []string, name string) string {
	idx, ok := h[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func (h header) int64(row []string, name string) (int64, error) {
	raw := h.str(row, name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("column %s: %w", name, err)
	}
	return v, nil
}

func (h header) bool(row []string, name string) bool {
	switch strings.ToLower(h.str(row, name)) {
	case "true", "yes", "1":
		return true
	default:
		return false
	}
}
