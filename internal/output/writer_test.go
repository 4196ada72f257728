// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/utterance-engine/pkg/types"
)

// fixtureSet returns ten fixture utterances.
func fixtureSet() types.UtteranceSet {
	set := make(types.UtteranceSet, types.UtteranceCount)
	for i := range set {
		set[i] = fmt.Sprintf("Utterance number %d", i+1)
	}
	return set
}

// readCSV parses a result file into records.
func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWrite(t *testing.T) {
	now := time.Date(2026, 8, 25, 14, 30, 5, 0, time.UTC)

	t.Run("writes header and ten ordered rows", func(t *testing.T) {
		cfg := types.OutputConfig{BaseDir: t.TempDir()}

		path, err := Write(cfg, "Order coffee", fixtureSet(), now)
		require.NoError(t, err)
		assert.True(t, filepath.IsAbs(path))
		assert.Equal(t, "utterances_20260825_143005.csv", filepath.Base(path))
		assert.Equal(t, "utterance_outputs_20260825", filepath.Base(filepath.Dir(path)))

		rows := readCSV(t, path)
		require.Len(t, rows, 1+types.UtteranceCount)
		assert.Equal(t, []string{"id", "utterance", "original_intention", "generated_at"}, rows[0])
		for i, row := range rows[1:] {
			assert.Equal(t, fmt.Sprintf("%d", i+1), row[0])
			assert.Equal(t, fmt.Sprintf("Utterance number %d", i+1), row[1])
			assert.Equal(t, "Order coffee", row[2])
			assert.Equal(t, "2026-08-25T14:30:05Z", row[3])
		}
	})

	t.Run("round-trips commas quotes and newlines", func(t *testing.T) {
		cfg := types.OutputConfig{BaseDir: t.TempDir()}
		set := fixtureSet()
		set[0] = `Hey, could you "order" a coffee?`
		set[1] = "Line one\nline two"
		set[2] = `comma, "quote", and` + "\nnewline together"

		path, err := Write(cfg, `an intention with , and "`, set, now)
		require.NoError(t, err)

		rows := readCSV(t, path)
		for i, u := range set {
			assert.Equal(t, u, rows[i+1][1])
			assert.Equal(t, `an intention with , and "`, rows[i+1][2])
		}
	})

	t.Run("two runs on the same date share the folder", func(t *testing.T) {
		cfg := types.OutputConfig{BaseDir: t.TempDir()}

		first, err := Write(cfg, "Order coffee", fixtureSet(), now)
		require.NoError(t, err)
		second, err := Write(cfg, "Order coffee", fixtureSet(), now.Add(time.Second))
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
		assert.Equal(t, filepath.Dir(first), filepath.Dir(second))

		entries, err := os.ReadDir(filepath.Dir(first))
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})

	t.Run("same-second collision fails without overwrite", func(t *testing.T) {
		cfg := types.OutputConfig{BaseDir: t.TempDir()}

		path, err := Write(cfg, "first run", fixtureSet(), now)
		require.NoError(t, err)

		_, err = Write(cfg, "second run", fixtureSet(), now)
		require.ErrorIs(t, err, ErrOutputCollision)

		// The first run's data is untouched.
		rows := readCSV(t, path)
		assert.Equal(t, "first run", rows[1][2])
	})

	t.Run("rejects a wrong-size set before touching the filesystem", func(t *testing.T) {
		base := t.TempDir()
		cfg := types.OutputConfig{BaseDir: base}

		_, err := Write(cfg, "Order coffee", fixtureSet()[:8], now)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "8")

		entries, err := os.ReadDir(base)
		require.NoError(t, err)
		assert.Empty(t, entries, "no folder created for a rejected set")
	})

	t.Run("leaves no temp files behind", func(t *testing.T) {
		cfg := types.OutputConfig{BaseDir: t.TempDir()}

		path, err := Write(cfg, "Order coffee", fixtureSet(), now)
		require.NoError(t, err)

		entries, err := os.ReadDir(filepath.Dir(path))
		require.NoError(t, err)
		for _, e := range entries {
			assert.False(t, strings.HasSuffix(e.Name(), ".tmp"), "stray temp file %s", e.Name())
		}
	})

	t.Run("honors custom prefixes", func(t *testing.T) {
		cfg := types.OutputConfig{BaseDir: t.TempDir(), DirPrefix: "runs_", FilePrefix: "phrases"}

		path, err := Write(cfg, "Order coffee", fixtureSet(), now)
		require.NoError(t, err)
		assert.Equal(t, "phrases_20260825_143005.csv", filepath.Base(path))
		assert.Equal(t, "runs_20260825", filepath.Base(filepath.Dir(path)))
	})

	t.Run("surfaces directory creation failure", func(t *testing.T) {
		base := t.TempDir()
		require.NoError(t, os.Chmod(base, 0o555))
		t.Cleanup(func() { os.Chmod(base, 0o755) })

		_, err := Write(types.OutputConfig{BaseDir: base}, "Order coffee", fixtureSet(), now)
		require.Error(t, err)

		entries, readErr := os.ReadDir(base)
		require.NoError(t, readErr)
		assert.Empty(t, entries, "failure leaves no partial output")
	})
}
