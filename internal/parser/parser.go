// Package parser turns raw text exports of a stock-index price table into
// normalized records. A raw file is the exchange's web table pasted into a
// text file: a fixed number of header lines (one of which carries the data
// for the index itself), one tab-separated line per stock, and a fixed
// number of trailer lines. The parser keeps a per-entity timestamp ledger
// across calls, so feeding it successive snapshots of the same trading day
// yields a non-redundant time series.
package parser

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

const (
	// minValidLines separates real data files from junk: 35 stocks plus
	// the index line plus surrounding dressing.
	minValidLines = 51
	// recordsPerFile sizes batch allocations: 35 stocks + the index entry.
	recordsPerFile = 36

	dateSeparator = "/"
)

var (
	// ErrInsufficientData marks a file too short to hold a full table.
	// Callers skip the file and continue with the rest of the run.
	ErrInsufficientData = errors.New("file contains no usable data")
	// ErrMalformedRow marks a line missing a field at a configured column
	// index. The file is abandoned; the run continues.
	ErrMalformedRow = errors.New("malformed row")
)

// Config describes the shape of a raw file. Zero-based line and column
// offsets; column indices address tab-separated fields of a raw line.
type Config struct {
	HeaderSkip   int   // lines before the stock zone begins
	IndexLine    int   // the single line carrying the index's own data
	TrailerSkip  int   // lines at the end of the file without data
	IndexColumns []int // columns kept for the index line, in output order
	StockColumns []int // columns kept for stock lines, in output order
	DateColumn   int   // raw column holding the date, for the target-date gate
}

// DefaultConfig matches the table layout of the exchange's web export:
// index data on line 6, stocks from line 11, five trailer lines. The index
// template keeps name, volume, turnover and price; the stock template keeps
// name, date, time, price, volume and turnover.
func DefaultConfig() Config {
	return Config{
		HeaderSkip:   11,
		IndexLine:    6,
		TrailerSkip:  5,
		IndexColumns: []int{0, 5, 6, 1},
		StockColumns: []int{0, 7, 8, 1, 5, 6},
		DateColumn:   5,
	}
}

// Parser extracts stock price records from raw table exports. The zero
// value is not usable; use New or NewWithConfig. A Parser is not safe for
// concurrent use: the ledger and target date are mutated by every call, and
// files must be observed in chronological order anyway.
type Parser struct {
	cfg       Config
	targetDay string
	ledger    map[string]int
}

// New returns a Parser for the default file layout.
func New() *Parser {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig returns a Parser for a custom file layout, for exports with
// a slightly different table structure.
func NewWithConfig(cfg Config) *Parser {
	return &Parser{cfg: cfg, ledger: make(map[string]int)}
}

// SetTargetDate restricts parsing to files whose data belongs to the given
// day of the month. The date may be a bare day ("23") or a full date
// ("23/01/2023"); month and year are discarded. Returns the day retained.
func (p *Parser) SetTargetDate(date string) string {
	p.targetDay = extractDay(date)
	return p.targetDay
}

// TargetDate reports the configured target day; ok is false when none is set.
func (p *Parser) TargetDate() (day string, ok bool) {
	return p.targetDay, p.targetDay != ""
}

// extractDay reduces a date to its day-of-month component.
func extractDay(date string) string {
	if strings.Contains(date, dateSeparator) {
		return strings.SplitN(date, dateSeparator, 2)[0]
	}
	return date
}

// Parse reads one raw file and returns its deduplicated batch of records in
// file order, index-shaped record first. Records whose timestamp the ledger
// has already seen are dropped, and the ledger is updated in place, so
// calling Parse for successive snapshot files yields only changed entries.
func (p *Parser) Parse(path string) ([]Record, error) {
	raw, err := p.loadFile(path)
	if err != nil {
		return nil, err
	}
	p.seedLedger(stockNames(raw))
	return p.dedup(raw), nil
}

// ParseFiltered is Parse narrowed to records matching at least one of the
// given name substrings. An empty filter is a no-op, making ParseFiltered
// interchangeable with Parse.
func (p *Parser) ParseFiltered(path string, filter []string) ([]Record, error) {
	records, err := p.Parse(path)
	if err != nil {
		return nil, err
	}
	if len(filter) == 0 {
		return records, nil
	}
	kept := make([]Record, 0, len(records))
	for _, rec := range records {
		rendered := rec.String()
		for _, f := range filter {
			if strings.Contains(rendered, f) {
				kept = append(kept, rec)
				break
			}
		}
	}
	return kept, nil
}

// loadFile reads the whole file and walks it line by line through the zone
// template: header lines are skipped, the index line is extracted with the
// index template, stock-zone lines with the stock template, and the trailer
// is never visited. When a target date is set, the first extracted line
// must carry it or the rest of the file is abandoned.
func (p *Parser) loadFile(path string) ([]Record, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	lines := splitLines(string(raw))
	if len(lines) < minValidLines {
		return nil, fmt.Errorf("%s: %d lines: %w", path, len(lines), ErrInsufficientData)
	}

	trailerBoundary := len(lines) - p.cfg.TrailerSkip
	records := make([]Record, 0, recordsPerFile)
	dateChecked := false

	for i, line := range lines {
		var columns []int
		switch {
		case i == p.cfg.IndexLine:
			columns = p.cfg.IndexColumns
		case i < p.cfg.HeaderSkip:
			continue
		case i < trailerBoundary:
			columns = p.cfg.StockColumns
		default:
			return records, nil
		}

		fields := strings.Split(line, "\t")

		// The gate fires on the first extracted line only; a mismatch
		// means the file belongs to another day and yields nothing.
		if p.targetDay != "" && !dateChecked {
			if p.cfg.DateColumn >= len(fields) {
				return nil, malformedRow(path, i, p.cfg.DateColumn, len(fields))
			}
			if extractDay(fields[p.cfg.DateColumn]) != p.targetDay {
				return records, nil
			}
			dateChecked = true
		}

		rec := make(Record, 0, len(columns))
		for _, col := range columns {
			if col >= len(fields) {
				return nil, malformedRow(path, i, col, len(fields))
			}
			rec = append(rec, fields[col])
		}
		records = append(records, rec)
	}
	return records, nil
}

func malformedRow(path string, line, col, nfields int) error {
	return fmt.Errorf("%s line %d: no field at column %d (row has %d): %w",
		path, line+1, col, nfields, ErrMalformedRow)
}

// splitLines splits file content into lines, tolerating CRLF endings and
// dropping the empty artifact after a trailing newline.
func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}
