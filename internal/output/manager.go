// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pdiddy/utterance-engine/pkg/types"
)

// FolderInfo describes one dated output folder.
type FolderInfo struct {
	// Name is the folder's base name, e.g. "utterance_outputs_20260825".
	Name string `json:"name" yaml:"name"`

	// Date is the folder's date key parsed from its name suffix.
	Date time.Time `json:"date" yaml:"date"`

	// Files is the number of CSV result files in the folder.
	Files int `json:"files" yaml:"files"`

	// Bytes is the total size of those CSV files.
	Bytes int64 `json:"bytes" yaml:"bytes"`
}

// Summary aggregates FolderInfo across all dated folders.
type Summary struct {
	Folders int   `json:"folders" yaml:"folders"`
	Files   int   `json:"files" yaml:"files"`
	Bytes   int64 `json:"bytes" yaml:"bytes"`
}

// CleanSummary holds the outcome of a clean run.
type CleanSummary struct {
	// Removed lists deleted folder names.
	Removed []string

	// Skipped lists folders whose name suffix did not parse as a date.
	// These are never deleted.
	Skipped []string
}

// ListFolders enumerates dated output folders under cfg.BaseDir, sorted by
// date ascending. Folders matching the prefix but carrying an unparseable
// date suffix are omitted.
func ListFolders(cfg types.OutputConfig) ([]FolderInfo, error) {
	cfg = withDefaults(cfg)

	entries, err := os.ReadDir(cfg.BaseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading base directory %s: %w", cfg.BaseDir, err)
	}

	var folders []FolderInfo
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), cfg.DirPrefix) {
			continue
		}
		date, err := folderDate(cfg.DirPrefix, entry.Name())
		if err != nil {
			continue
		}

		files, bytes, err := countCSVFiles(filepath.Join(cfg.BaseDir, entry.Name()))
		if err != nil {
			return nil, err
		}

		folders = append(folders, FolderInfo{
			Name:  entry.Name(),
			Date:  date,
			Files: files,
			Bytes: bytes,
		})
	}

	sort.Slice(folders, func(i, j int) bool { return folders[i].Date.Before(folders[j].Date) })
	return folders, nil
}

// Stats aggregates folder, file, and byte counts across all dated folders.
func Stats(cfg types.OutputConfig) (Summary, error) {
	folders, err := ListFolders(cfg)
	if err != nil {
		return Summary{}, err
	}

	var s Summary
	for _, f := range folders {
		s.Folders++
		s.Files += f.Files
		s.Bytes += f.Bytes
	}
	return s, nil
}

// CleanOld deletes dated folders whose date key is more than maxAgeDays
// before now, printing per-folder status to w. Folders with unparseable
// date suffixes are reported and kept. It continues after individual
// failures and returns the first removal error alongside the summary.
func CleanOld(cfg types.OutputConfig, maxAgeDays int, now time.Time, w io.Writer) (CleanSummary, error) {
	cfg = withDefaults(cfg)
	if maxAgeDays <= 0 {
		maxAgeDays = 7
	}
	cutoff := now.AddDate(0, 0, -maxAgeDays)

	entries, err := os.ReadDir(cfg.BaseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return CleanSummary{}, nil
		}
		return CleanSummary{}, fmt.Errorf("reading base directory %s: %w", cfg.BaseDir, err)
	}

	var summary CleanSummary
	var firstErr error
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), cfg.DirPrefix) {
			continue
		}

		date, err := folderDate(cfg.DirPrefix, entry.Name())
		if err != nil {
			fmt.Fprintf(w, "skipped %s: invalid date suffix\n", entry.Name())
			summary.Skipped = append(summary.Skipped, entry.Name())
			continue
		}

		if !date.Before(cutoff) {
			continue
		}

		if err := os.RemoveAll(filepath.Join(cfg.BaseDir, entry.Name())); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", entry.Name(), err)
			if firstErr == nil {
				firstErr = fmt.Errorf("removing %s: %w", entry.Name(), err)
			}
			continue
		}

		fmt.Fprintf(w, "removed %s\n", entry.Name())
		summary.Removed = append(summary.Removed, entry.Name())
	}

	return summary, firstErr
}

// folderDate parses the date key from a dated folder name.
func folderDate(prefix, name string) (time.Time, error) {
	return time.Parse(dateLayout, strings.TrimPrefix(name, prefix))
}

// countCSVFiles returns the number and total size of .csv files in dir.
func countCSVFiles(dir string) (int, int64, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, 0, fmt.Errorf("reading folder %s: %w", dir, err)
	}

	var files int
	var bytes int64
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".csv") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return 0, 0, fmt.Errorf("stat %s: %w", entry.Name(), err)
		}
		files++
		bytes += info.Size()
	}
	return files, bytes, nil
}
