// Package sink writes assembled panel tables to disk. Three formats are
// supported: a directory of CSV files with a JSON ground-truth record, one
// XLSX workbook, and one SQLite database file. The format carries no causal
// semantics; every sink emits the same rows in the same order.
package sink

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"causalpanel/domain/core"
	"causalpanel/domain/panel"
)

// Format names a supported serialization.
type Format string

const (
	FormatCSV    Format = "csv"
	FormatXLSX   Format = "xlsx"
	FormatSQLite Format = "sqlite"
)

// ParseFormat resolves an explicit format name, falling back to the output
// path's extension when the name is empty. Unknown names are a
// configuration error.
func ParseFormat(name, outPath string) (Format, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		switch strings.ToLower(filepath.Ext(outPath)) {
		case ".xlsx":
			n = "xlsx"
		case ".db", ".sqlite", ".sqlite3":
			n = "sqlite"
		default:
			// Extensionless paths are treated as CSV directories.
			n = "csv"
		}
	}
	switch Format(n) {
	case FormatCSV, FormatXLSX, FormatSQLite:
		return Format(n), nil
	default:
		return "", fmt.Errorf("%w: %q", core.ErrUnknownSinkFormat, name)
	}
}

// Write dispatches to the sink for the given format.
func Write(ctx context.Context, format Format, path string, t *panel.Tables) error {
	switch format {
	case FormatCSV:
		return WriteCSV(ctx, path, t)
	case FormatXLSX:
		return WriteXLSX(ctx, path, t)
	case FormatSQLite:
		return WriteSQLite(ctx, path, t)
	default:
		return fmt.Errorf("%w: %q", core.ErrUnknownSinkFormat, format)
	}
}

func userHeaders() []string {
	return []string{"user_id", "E", "C", "F", "E_std", "C_std", "F_std", "wk4_retention"}
}

func userWeekHeaders(hasVolume bool) []string {
	h := []string{"user_id", "week", "confidence", "edit_rate"}
	if hasVolume {
		h = append(h, "n_txn")
	}
	return h
}

// Full-precision float rendering: the tables are a determinism contract,
// not a report, so no rounding.
func fStr(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func userRow(u panel.User) []string {
	return []string{
		strconv.Itoa(u.UserID),
		fStr(u.Engagement), fStr(u.Complexity), fStr(u.Feed),
		fStr(u.EngagementStd), fStr(u.ComplexityStd), fStr(u.FeedStd),
		strconv.Itoa(u.Wk4Retention),
	}
}

func userWeekRow(uw panel.UserWeek, hasVolume bool) []string {
	r := []string{
		strconv.Itoa(uw.UserID),
		strconv.Itoa(uw.Week),
		fStr(uw.Confidence),
		fStr(uw.EditRate),
	}
	if hasVolume {
		r = append(r, strconv.Itoa(uw.NTxn))
	}
	return r
}
