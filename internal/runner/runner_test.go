package runner

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"IbexFeed/internal/parser"
	"IbexFeed/internal/recorder"
)

// snapshot renders a raw export in the default layout with 35 stocks, the
// stock at index changed carrying ts2 instead of ts.
func snapshot(ts string, changed int, ts2 string) string {
	var b strings.Builder
	for i := 0; i < 11; i++ {
		if i == 6 {
			b.WriteString(strings.Join([]string{
				"IBEX 35", "10.120,30", "0,61", "10.150,00", "10.080,00", "06/02/2024", "17:35:00",
			}, "\t"))
		} else {
			fmt.Fprintf(&b, "header junk %d", i)
		}
		b.WriteByte('\n')
	}
	for i := 0; i < 35; i++ {
		stamp := ts
		if i == changed {
			stamp = ts2
		}
		b.WriteString(strings.Join([]string{
			fmt.Sprintf("STOCK%02d", i), "3,7420", "1,05", "3,80", "3,70",
			"12.825.738", "47.876,71", "06/02/2024", stamp,
		}, "\t"))
		b.WriteByte('\n')
	}
	for i := 0; i < 5; i++ {
		b.WriteString("trailer junk\n")
	}
	return b.String()
}

func write(t *testing.T, dir, name, content string, mtime time.Time) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("chtimes %s: %v", name, err)
	}
}

func countLines(buf *bytes.Buffer) int {
	s := buf.String()
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n")
}

func newRunner(t *testing.T, dir string, opts Options) (*Runner, *bytes.Buffer) {
	t.Helper()
	opts.Dir = dir
	if opts.MinFileBytes == 0 {
		opts.MinFileBytes = 560
	}
	var out bytes.Buffer
	r, err := New(parser.New(), recorder.NewNoopRecorder(), &out, opts)
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}
	return r, &out
}

func TestSweepAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-time.Hour)
	write(t, dir, "data_ibex.csv", snapshot("15:00:00", -1, ""), base)
	// Later snapshot: only STOCK07 traded again.
	write(t, dir, "data_ibex(1).csv", snapshot("15:00:00", 7, "15:05:00"), base.Add(5*time.Minute))

	r, out := newRunner(t, dir, Options{})
	if err := r.Sweep(); err != nil {
		t.Fatalf("sweep: %v", err)
	}
	// 36 records from the first file, one changed entry from the second.
	if got := countLines(out); got != 37 {
		t.Fatalf("emitted %d records, want 37\n%s", got, out.String())
	}
	if !strings.Contains(out.String(), "STOCK07;06/02/2024;15:05:00") {
		t.Error("changed entry missing from output")
	}
}

func TestSweepSkipsBadFiles(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-time.Hour)
	// Too small for the byte gate.
	write(t, dir, "data_ibex(9).csv", "junk\n", base)
	// Big enough, but nowhere near a full table.
	write(t, dir, "data_ibex(8).csv", strings.Repeat("a long line of garbage without tabs\n", 30), base.Add(time.Minute))
	write(t, dir, "data_ibex.csv", snapshot("15:00:00", -1, ""), base.Add(2*time.Minute))

	r, out := newRunner(t, dir, Options{})
	if err := r.Sweep(); err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if got := countLines(out); got != 36 {
		t.Fatalf("emitted %d records, want 36 from the one good file", got)
	}
}

func TestSweepFilters(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "data_ibex.csv", snapshot("15:00:00", -1, ""), time.Now())

	r, out := newRunner(t, dir, Options{Filters: []string{"STOCK05"}})
	if err := r.Sweep(); err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if got := countLines(out); got != 1 {
		t.Fatalf("emitted %d records, want 1\n%s", got, out.String())
	}
}

func TestSweepEmptyDir(t *testing.T) {
	r, out := newRunner(t, t.TempDir(), Options{})
	if err := r.Sweep(); err != nil {
		t.Fatalf("sweep over empty dir: %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("unexpected output: %s", out.String())
	}
}

func TestLedgerPersistsAcrossRunners(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "data_ibex.csv", snapshot("15:00:00", -1, ""), time.Now())
	ledgerFile := filepath.Join(t.TempDir(), "ledger.json")

	r1, out1 := newRunner(t, dir, Options{LedgerFile: ledgerFile})
	if err := r1.Sweep(); err != nil {
		t.Fatalf("first sweep: %v", err)
	}
	if got := countLines(out1); got != 36 {
		t.Fatalf("first sweep emitted %d, want 36", got)
	}

	// A fresh runner (fresh parser) restores the saved ledger, so the same
	// file contributes nothing.
	r2, out2 := newRunner(t, dir, Options{LedgerFile: ledgerFile})
	if err := r2.Sweep(); err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if got := countLines(out2); got != 0 {
		t.Fatalf("second sweep emitted %d, want 0\n%s", got, out2.String())
	}
}

func TestLedgerStateRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	in := map[string]int{"IBEX 35": 173500, "AENA": 0, "ACS": -1}
	if err := SaveLedger(path, in); err != nil {
		t.Fatalf("save: %v", err)
	}
	out, err := LoadLedger(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(out) != 3 || out["AENA"] != 0 || out["ACS"] != -1 || out["IBEX 35"] != 173500 {
		t.Errorf("round trip = %v", out)
	}
}

func TestLoadLedgerMissingFile(t *testing.T) {
	out, err := LoadLedger(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("missing state file must not error: %v", err)
	}
	if out != nil {
		t.Errorf("expected empty snapshot, got %v", out)
	}
}
