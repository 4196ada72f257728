// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/utterance-engine/pkg/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(types.HistoryConfig{DBDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testRun(intention string, at time.Time) types.Run {
	utterances := make([]string, types.UtteranceCount)
	for i := range utterances {
		utterances[i] = fmt.Sprintf("%s variant %d", intention, i+1)
	}
	return types.Run{
		Intention:   intention,
		OutputPath:  "/outputs/utterances.csv",
		GeneratedAt: at,
		Utterances:  utterances,
	}
}

func TestRecordAndList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	at := time.Date(2026, 8, 25, 14, 30, 5, 0, time.UTC)

	firstID, err := s.Record(ctx, testRun("Order coffee", at))
	require.NoError(t, err)
	secondID, err := s.Record(ctx, testRun("Book a flight", at.Add(time.Minute)))
	require.NoError(t, err)
	assert.Greater(t, secondID, firstID)

	runs, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	// Newest first.
	assert.Equal(t, "Book a flight", runs[0].Intention)
	assert.Equal(t, secondID, runs[0].RunID)
	assert.Equal(t, "Order coffee", runs[1].Intention)
	assert.Equal(t, at, runs[1].GeneratedAt)

	require.Len(t, runs[1].Utterances, types.UtteranceCount)
	assert.Equal(t, "Order coffee variant 1", runs[1].Utterances[0])
	assert.Equal(t, "Order coffee variant 10", runs[1].Utterances[9])
}

func TestListLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	at := time.Now().UTC()

	for i := 0; i < 5; i++ {
		_, err := s.Record(ctx, testRun(fmt.Sprintf("intention %d", i), at.Add(time.Duration(i)*time.Second)))
		require.NoError(t, err)
	}

	runs, err := s.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "intention 4", runs[0].Intention)
}

func TestSearch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	at := time.Date(2026, 8, 25, 14, 30, 5, 0, time.UTC)

	coffeeID, err := s.Record(ctx, testRun("Order coffee", at))
	require.NoError(t, err)
	_, err = s.Record(ctx, testRun("Book a flight", at.Add(time.Minute)))
	require.NoError(t, err)

	results, err := s.Search(ctx, "coffee", 0)
	require.NoError(t, err)
	require.Len(t, results, types.UtteranceCount)
	for _, r := range results {
		assert.Equal(t, coffeeID, r.RunID)
		assert.Equal(t, "Order coffee", r.Intention)
		assert.Equal(t, "/outputs/utterances.csv", r.OutputPath)
		assert.Contains(t, r.Text, "coffee")
	}

	none, err := s.Search(ctx, "submarine", 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestExport(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	at := time.Now().UTC().Truncate(time.Second)

	_, err := s.Record(ctx, testRun("Order coffee", at))
	require.NoError(t, err)
	_, err = s.Record(ctx, testRun("Book a flight", at.Add(time.Minute)))
	require.NoError(t, err)

	runs, err := s.Export(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	// Oldest first, with utterances attached.
	assert.Equal(t, "Order coffee", runs[0].Intention)
	assert.Len(t, runs[0].Utterances, types.UtteranceCount)
}

func TestStoreReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := NewStore(types.HistoryConfig{DBDir: dir})
	require.NoError(t, err)
	_, err = s.Record(ctx, testRun("Order coffee", time.Now().UTC()))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := NewStore(types.HistoryConfig{DBDir: dir})
	require.NoError(t, err)
	defer reopened.Close()

	runs, err := reopened.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
