// Package generate turns an operator intention into a fixed-size set of
// paraphrased utterances via a single Generative AI call.
package generate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/utterance-engine/pkg/types"
)

// defaultTimeout bounds a model invocation when the config leaves it unset.
const defaultTimeout = 60 * time.Second

// ErrProviderUnavailable reports that the model call failed: network, auth,
// or timeout. The call is never retried; the operator re-runs the program.
var ErrProviderUnavailable = errors.New("utterance provider unavailable")

// ErrMalformedResponse reports that the model responded but the parsed text
// did not contain exactly types.UtteranceCount non-empty lines.
var ErrMalformedResponse = errors.New("malformed model response")

// MalformedResponseError carries the raw model text alongside the parsed
// line count so the operator can diagnose the response. It unwraps to
// ErrMalformedResponse.
type MalformedResponseError struct {
	Count int
	Raw   string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed model response: got %d utterances, want %d", e.Count, types.UtteranceCount)
}

func (e *MalformedResponseError) Unwrap() error {
	return ErrMalformedResponse
}

// Backend abstracts the Generative AI API so tests can supply a mock.
// Implementations issue one blocking text-generation call and return the
// raw response text.
type Backend interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Generator produces UtteranceSets from Intentions. It holds no state
// between calls and never caches: identical intentions re-invoke the model.
type Generator struct {
	backend Backend
	timeout time.Duration
}

// NewGenerator returns a Generator that calls backend with the configured
// per-call timeout.
func NewGenerator(backend Backend, cfg types.GeneratorConfig) *Generator {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Generator{backend: backend, timeout: timeout}
}

// Generate issues exactly one model call for intention and parses the
// response into an UtteranceSet. Provider failures (including timeout and
// cancellation) wrap ErrProviderUnavailable; a response with the wrong
// utterance count wraps ErrMalformedResponse. Either way no partial set is
// returned.
func (g *Generator) Generate(ctx context.Context, intention types.Intention) (types.UtteranceSet, error) {
	prompt, err := renderPrompt(intention)
	if err != nil {
		return nil, fmt.Errorf("rendering prompt: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	raw, err := g.backend.GenerateText(callCtx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}

	return ParseUtterances(raw)
}

// ParseUtterances splits raw model output into utterances: one per line,
// with leading ordinal markers ("1.", "2)") and bullets ("-", "*", "•")
// stripped, surrounding whitespace trimmed, and empty lines discarded.
// Anything other than exactly types.UtteranceCount surviving lines is a
// MalformedResponseError; the parser never truncates or pads.
func ParseUtterances(raw string) (types.UtteranceSet, error) {
	var utterances []string
	for _, line := range strings.Split(raw, "\n") {
		cleaned := stripMarkers(line)
		if cleaned == "" {
			continue
		}
		utterances = append(utterances, cleaned)
	}

	if len(utterances) != types.UtteranceCount {
		return nil, &MalformedResponseError{Count: len(utterances), Raw: raw}
	}

	return types.UtteranceSet(utterances), nil
}

// stripMarkers removes a leading bullet or ordinal marker plus surrounding
// whitespace from one line of model output.
func stripMarkers(line string) string {
	s := strings.TrimSpace(line)

	for _, bullet := range []string{"-", "*", "•"} {
		if rest, ok := strings.CutPrefix(s, bullet); ok {
			return strings.TrimSpace(rest)
		}
	}

	// Ordinal prefix: digits followed by "." or ")".
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i > 0 && i < len(s) && (s[i] == '.' || s[i] == ')') {
		return strings.TrimSpace(s[i+1:])
	}

	return s
}
