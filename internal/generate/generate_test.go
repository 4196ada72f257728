// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/utterance-engine/pkg/types"
)

// mockBackend returns a canned response or error, optionally blocking until
// the context is cancelled.
type mockBackend struct {
	response string
	err      error
	block    bool

	gotPrompt string
	calls     int
}

func (m *mockBackend) GenerateText(ctx context.Context, prompt string) (string, error) {
	m.calls++
	m.gotPrompt = prompt
	if m.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return m.response, m.err
}

// tenLines returns n newline-joined fixture utterances.
func tenLines(n int) string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("Utterance number %d", i+1)
	}
	return strings.Join(lines, "\n")
}

func TestGenerate(t *testing.T) {
	cfg := types.GeneratorConfig{}

	t.Run("returns ten utterances in order", func(t *testing.T) {
		backend := &mockBackend{response: tenLines(10)}
		g := NewGenerator(backend, cfg)

		set, err := g.Generate(context.Background(), "Order coffee")
		require.NoError(t, err)
		require.Len(t, set, types.UtteranceCount)
		assert.Equal(t, "Utterance number 1", set[0])
		assert.Equal(t, "Utterance number 10", set[9])
		assert.Equal(t, 1, backend.calls, "exactly one model call per run")
		assert.Contains(t, backend.gotPrompt, `"Order coffee"`)
		assert.Contains(t, backend.gotPrompt, "one per line")
	})

	t.Run("provider error wraps ErrProviderUnavailable", func(t *testing.T) {
		backend := &mockBackend{err: errors.New("connection refused")}
		g := NewGenerator(backend, cfg)

		set, err := g.Generate(context.Background(), "Order coffee")
		assert.Nil(t, set)
		require.ErrorIs(t, err, ErrProviderUnavailable)
		assert.Contains(t, err.Error(), "connection refused")
	})

	t.Run("timeout surfaces as provider failure", func(t *testing.T) {
		backend := &mockBackend{block: true}
		g := NewGenerator(backend, types.GeneratorConfig{
			AIConfig: types.AIConfig{Timeout: 20 * time.Millisecond},
		})

		set, err := g.Generate(context.Background(), "Order coffee")
		assert.Nil(t, set)
		require.ErrorIs(t, err, ErrProviderUnavailable)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("eight lines is a malformed response", func(t *testing.T) {
		backend := &mockBackend{response: tenLines(8)}
		g := NewGenerator(backend, cfg)

		set, err := g.Generate(context.Background(), "Order coffee")
		assert.Nil(t, set)
		require.ErrorIs(t, err, ErrMalformedResponse)

		var mErr *MalformedResponseError
		require.ErrorAs(t, err, &mErr)
		assert.Equal(t, 8, mErr.Count)
		assert.Equal(t, tenLines(8), mErr.Raw, "raw response kept for diagnosis")
	})

	t.Run("empty response is a malformed response", func(t *testing.T) {
		// Empty text is a parse failure, not a provider failure: the backend
		// returns it as-is and the parser classifies it.
		for _, raw := range []string{"", "   \n\n  "} {
			backend := &mockBackend{response: raw}
			g := NewGenerator(backend, cfg)

			_, err := g.Generate(context.Background(), "Order coffee")
			require.ErrorIs(t, err, ErrMalformedResponse)
			assert.NotErrorIs(t, err, ErrProviderUnavailable)
		}
	})
}

func TestParseUtterances(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		want      []string
		wantCount int // parsed count on malformed responses
	}{
		{
			name: "plain ten lines",
			raw:  tenLines(10),
			want: strings.Split(tenLines(10), "\n"),
		},
		{
			name: "strips numbered ordinals",
			raw: "1. First thing\n2. Second thing\n3. Third\n4. Fourth\n5. Fifth\n" +
				"6. Sixth\n7. Seventh\n8. Eighth\n9. Ninth\n10. Tenth",
			want: []string{"First thing", "Second thing", "Third", "Fourth", "Fifth",
				"Sixth", "Seventh", "Eighth", "Ninth", "Tenth"},
		},
		{
			name: "strips parenthesis ordinals and bullets",
			raw: "1) One\n- Two\n* Three\n• Four\n5) Five\n" +
				"- Six\n7) Seven\n- Eight\n9) Nine\n- Ten",
			want: []string{"One", "Two", "Three", "Four", "Five",
				"Six", "Seven", "Eight", "Nine", "Ten"},
		},
		{
			name: "ignores blank lines and surrounding whitespace",
			raw:  "\n  A\nB\n\nC\nD\nE\n\n\nF\nG\nH\nI\n  J  \n\n",
			want: []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J"},
		},
		{
			name:      "too few lines",
			raw:       "only\nthree\nlines",
			wantCount: 3,
		},
		{
			name:      "too many lines",
			raw:       tenLines(11),
			wantCount: 11,
		},
		{
			name:      "empty input",
			raw:       "",
			wantCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseUtterances(tt.raw)
			if tt.want == nil {
				var mErr *MalformedResponseError
				require.ErrorAs(t, err, &mErr)
				assert.Equal(t, tt.wantCount, mErr.Count)
				assert.Equal(t, tt.raw, mErr.Raw)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, types.UtteranceSet(tt.want), got)
		})
	}
}

func TestParseUtterancesKeepsInteriorPunctuation(t *testing.T) {
	// Markers are only stripped at the start of a line; commas, quotes, and
	// digits inside an utterance survive untouched.
	raw := `Could you get me a coffee, please?
I'd say "make it a double" today
Coffee for 2, to go
Need my 10am espresso
Grab a flat white?
One coffee, black
Coffee me
Is the espresso machine on?
Time for a coffee run
Let's order coffee`

	got, err := ParseUtterances(raw)
	require.NoError(t, err)
	assert.Equal(t, "Could you get me a coffee, please?", got[0])
	assert.Equal(t, `I'd say "make it a double" today`, got[1])
	assert.Equal(t, "Coffee for 2, to go", got[2])
	assert.Equal(t, "Need my 10am espresso", got[3])
}
