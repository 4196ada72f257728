// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package output persists utterance sets as timestamped CSV files inside
// dated folders, and manages those folders.
package output

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pdiddy/utterance-engine/pkg/types"
)

const (
	defaultDirPrefix  = "utterance_outputs_"
	defaultFilePrefix = "utterances"

	dateLayout      = "20060102"
	timestampLayout = "20060102_150405"
)

// ErrOutputCollision reports that a file already exists at the computed path.
// Two runs completing within the same clock second collide; the writer fails
// rather than overwrite the earlier run's data.
var ErrOutputCollision = errors.New("output file already exists")

// csvHeader is the fixed column order of every result file.
var csvHeader = []string{"id", "utterance", "original_intention", "generated_at"}

// withDefaults fills unset OutputConfig fields.
func withDefaults(cfg types.OutputConfig) types.OutputConfig {
	if cfg.BaseDir == "" {
		cfg.BaseDir = "."
	}
	if cfg.DirPrefix == "" {
		cfg.DirPrefix = defaultDirPrefix
	}
	if cfg.FilePrefix == "" {
		cfg.FilePrefix = defaultFilePrefix
	}
	return cfg
}

// Write persists one run: it creates the dated folder under cfg.BaseDir if
// absent, then writes a CSV named from now's full timestamp with a header row
// and one row per utterance, in order. The folder date and the filename
// timestamp derive from the same now value.
//
// The file is written to a temporary name in the target folder and renamed
// into place on success, so the target path never shows partial content. An
// existing file at the target path is ErrOutputCollision. Returns the
// absolute path of the written file.
func Write(cfg types.OutputConfig, intention types.Intention, set types.UtteranceSet, now time.Time) (string, error) {
	if len(set) != types.UtteranceCount {
		return "", fmt.Errorf("utterance set has %d entries, want %d", len(set), types.UtteranceCount)
	}
	cfg = withDefaults(cfg)

	dir := filepath.Join(cfg.BaseDir, cfg.DirPrefix+now.Format(dateLayout))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory %s: %w", dir, err)
	}

	destPath := filepath.Join(dir, fmt.Sprintf("%s_%s.csv", cfg.FilePrefix, now.Format(timestampLayout)))
	if _, err := os.Stat(destPath); err == nil {
		return "", fmt.Errorf("%w: %s", ErrOutputCollision, destPath)
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("checking output path %s: %w", destPath, err)
	}

	if err := writeCSV(dir, destPath, records(intention, set, now)); err != nil {
		return "", err
	}

	abs, err := filepath.Abs(destPath)
	if err != nil {
		return "", fmt.Errorf("resolving output path: %w", err)
	}
	return abs, nil
}

// records builds the CSV rows for one run.
func records(intention types.Intention, set types.UtteranceSet, now time.Time) []types.OutputRecord {
	generatedAt := now.Format(time.RFC3339)
	rows := make([]types.OutputRecord, len(set))
	for i, u := range set {
		rows[i] = types.OutputRecord{
			ID:                i + 1,
			Utterance:         u,
			OriginalIntention: string(intention),
			GeneratedAt:       generatedAt,
		}
	}
	return rows
}

// writeCSV writes rows to a temp file in dir and renames it to destPath.
func writeCSV(dir, destPath string, rows []types.OutputRecord) error {
	tmpFile, err := os.CreateTemp(dir, ".utterances-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	w := csv.NewWriter(tmpFile)
	writeErr := w.Write(csvHeader)
	for _, r := range rows {
		if writeErr != nil {
			break
		}
		writeErr = w.Write([]string{strconv.Itoa(r.ID), r.Utterance, r.OriginalIntention, r.GeneratedAt})
	}
	if writeErr == nil {
		w.Flush()
		writeErr = w.Error()
	}

	// Flush to disk before the rename publishes the file.
	if writeErr == nil {
		writeErr = tmpFile.Sync()
	}

	closeErr := tmpFile.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing CSV: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
