package discover

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func touch(t *testing.T, dir, name string, mtime time.Time) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("chtimes %s: %v", name, err)
	}
}

func TestFilesDefaults(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-time.Hour)
	touch(t, dir, "data_ibex(1).csv", base.Add(2*time.Minute))
	touch(t, dir, "data_ibex.csv", base)
	touch(t, dir, "data_ibex(2).csv", base.Add(4*time.Minute))
	touch(t, dir, "notes.txt", base)
	touch(t, dir, "other.csv", base)
	touch(t, dir, "data_ibex", base) // no extension, never matches
	if err := os.Mkdir(filepath.Join(dir, "data_ibex_dir.csv"), 0755); err != nil {
		t.Fatal(err)
	}

	files, err := Files(dir, "", "")
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("expected 3 matches, got %d: %v", len(files), files)
	}
	// Oldest first, so snapshots are parsed in the order they were taken.
	want := []string{"data_ibex.csv", "data_ibex(1).csv", "data_ibex(2).csv"}
	for i, w := range want {
		if files[i].Name != w {
			t.Errorf("position %d: got %s, want %s", i, files[i].Name, w)
		}
	}
	if files[0].Size != 1 {
		t.Errorf("size not carried through: %d", files[0].Size)
	}
}

func TestFilesCustomStemAndExt(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	touch(t, dir, "export_a.txt", now)
	touch(t, dir, "export_b.txt", now)
	touch(t, dir, "export_c.csv", now)
	touch(t, dir, "data_ibex.csv", now)

	files, err := Files(dir, "export", "txt")
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(files))
	}
}

func TestFilesMissingDir(t *testing.T) {
	if _, err := Files(filepath.Join(t.TempDir(), "absent"), "", ""); err == nil {
		t.Fatal("expected an error for a missing directory")
	}
}
