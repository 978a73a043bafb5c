// Package runner orchestrates one sweep over a data directory: discover the
// snapshot files, feed them through the parser oldest first, emit the kept
// records, and persist the ledger so the next sweep resumes where this one
// stopped. All per-file failures are contained here; a bad file is logged
// and the sweep continues.
package runner

import (
	"errors"
	"fmt"
	"io"
	"log"

	"IbexFeed/internal/discover"
	"IbexFeed/internal/parser"
	"IbexFeed/internal/recorder"
)

// Runner drives the parse pipeline over a directory of raw data files.
type Runner struct {
	Parser   *parser.Parser
	Recorder recorder.Recorder
	Out      io.Writer

	dir          string
	fileStem     string
	fileExt      string
	minFileBytes int64
	filters      []string
	ledgerFile   string
}

// Options carries the run surface the sweep needs beyond its collaborators.
type Options struct {
	Dir          string
	FileStem     string
	FileExt      string
	MinFileBytes int64
	Filters      []string
	LedgerFile   string // optional; "" disables ledger persistence
}

// New creates a Runner. When a ledger file is configured and exists, its
// snapshot is restored into the parser so deduplication continues across
// process restarts.
func New(p *parser.Parser, rec recorder.Recorder, out io.Writer, opts Options) (*Runner, error) {
	if opts.LedgerFile != "" {
		snapshot, err := LoadLedger(opts.LedgerFile)
		if err != nil {
			return nil, fmt.Errorf("load ledger state: %w", err)
		}
		if len(snapshot) > 0 {
			p.RestoreLedger(snapshot)
			log.Printf("[INFO] restored ledger for %d entities from %s", len(snapshot), opts.LedgerFile)
		}
	}
	return &Runner{
		Parser:       p,
		Recorder:     rec,
		Out:          out,
		dir:          opts.Dir,
		fileStem:     opts.FileStem,
		fileExt:      opts.FileExt,
		minFileBytes: opts.MinFileBytes,
		filters:      opts.Filters,
		ledgerFile:   opts.LedgerFile,
	}, nil
}

// Sweep processes every matching file in the directory once, in
// modification-time order. The returned error covers only run-level
// failures (unreadable directory, broken output); per-file problems are
// logged and skipped.
func (r *Runner) Sweep() error {
	files, err := discover.Files(r.dir, r.fileStem, r.fileExt)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		log.Printf("[WARN] no data files in %s", r.dir)
		return nil
	}

	emitted := 0
	for _, file := range files {
		if file.Size < r.minFileBytes {
			log.Printf("[INFO] skipping %s: %d bytes, below minimum %d", file.Name, file.Size, r.minFileBytes)
			continue
		}

		batch, err := r.Parser.ParseFiltered(file.Path, r.filters)
		switch {
		case errors.Is(err, parser.ErrInsufficientData):
			log.Printf("[WARN] skipping %s: no usable data", file.Name)
			continue
		case errors.Is(err, parser.ErrMalformedRow):
			log.Printf("[WARN] skipping %s: %v", file.Name, err)
			continue
		case err != nil:
			log.Printf("[WARN] skipping %s: %v", file.Name, err)
			continue
		}

		// An empty batch is a valid outcome: the file may repeat
		// timestamps the ledger already holds, or belong to another day.
		rows := make([]recorder.Row, 0, len(batch))
		for _, rec := range batch {
			if _, err := fmt.Fprintln(r.Out, rec.String()); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			rows = append(rows, recorder.Row{
				SourceFile: file.Name,
				Name:       rec.Name(),
				Timestamp:  rec.Timestamp(),
				Rendered:   rec.String(),
			})
		}
		if err := r.Recorder.RecordBatch(rows); err != nil {
			log.Printf("[ERROR] record batch from %s: %v", file.Name, err)
		}
		emitted += len(batch)
	}

	if r.ledgerFile != "" {
		if err := SaveLedger(r.ledgerFile, r.Parser.Ledger()); err != nil {
			log.Printf("[ERROR] save ledger state: %v", err)
		}
	}

	log.Printf("[INFO] sweep done: %d files, %d records emitted", len(files), emitted)
	return nil
}
