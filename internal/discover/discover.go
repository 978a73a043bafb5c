// Package discover lists raw data files in a directory without looking at
// their content: a file qualifies by its name alone.
package discover

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	// DefaultStem matches the naming schema of saved exports:
	// data_ibex.csv, data_ibex(1).csv, data_ibex(2).csv, ...
	DefaultStem = "data_ibex"
	// DefaultExt is the extension of saved exports.
	DefaultExt = "csv"
)

// FileInfo describes one discovered data file.
type FileInfo struct {
	Name    string // file name including extension
	Path    string // full path, directory joined with name
	Size    int64
	ModTime time.Time
}

// Files scans dir non-recursively and returns the files whose stem starts
// with stem and whose extension equals ext. Empty stem or ext select the
// defaults. Files without an extension never match. Results are ordered by
// modification time, oldest first, so successive snapshots of the same
// trading day are processed in the order they were taken.
func Files(dir, stem, ext string) ([]FileInfo, error) {
	if stem == "" {
		stem = DefaultStem
	}
	if ext == "" {
		ext = DefaultExt
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		fileExt := strings.TrimPrefix(filepath.Ext(name), ".")
		if fileExt == "" || fileExt != ext {
			continue
		}
		fileStem := strings.TrimSuffix(name, filepath.Ext(name))
		if !strings.HasPrefix(fileStem, stem) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Name:    name,
			Path:    filepath.Join(dir, name),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].ModTime.Before(files[j].ModTime)
	})
	return files, nil
}
