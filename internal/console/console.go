// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package console collects operator input for a generation run.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/utterance-engine/pkg/types"
)

// ErrInputClosed is returned when the input stream ends before a non-empty
// intention is entered.
var ErrInputClosed = errors.New("input closed before an intention was provided")

// CollectIntention prompts on w and reads lines from r until one is non-empty
// after trimming. Empty and whitespace-only lines are rejected with a message
// and the prompt repeats; there is no attempt limit. The returned Intention is
// the trimmed line. End of input returns ErrInputClosed.
func CollectIntention(r io.Reader, w io.Writer) (types.Intention, error) {
	scanner := bufio.NewScanner(r)
	for {
		fmt.Fprint(w, "Please enter an intention: ")

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", fmt.Errorf("reading input: %w", err)
			}
			return "", ErrInputClosed
		}

		intention := strings.TrimSpace(scanner.Text())
		if intention == "" {
			fmt.Fprintln(w, "No intention provided. Please try again.")
			continue
		}

		return types.Intention(intention), nil
	}
}
