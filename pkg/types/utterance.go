// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the shared data model and configuration structs
// for the utterance-engine pipeline.
package types

import "time"

// UtteranceCount is the number of utterances a generation run produces.
// The generator fails rather than return any other count.
const UtteranceCount = 10

// Intention is the operator-supplied phrase describing a communicative goal.
// It is captured once per run, non-empty after trimming, and never mutated.
type Intention string

// UtteranceSet is the ordered collection of paraphrased utterances produced
// from one Intention. A valid set holds exactly UtteranceCount entries; the
// 1-based sequence id of each utterance is its position plus one.
type UtteranceSet []string

// OutputRecord is one data row of the result CSV.
type OutputRecord struct {
	// ID is the 1-based sequence number within the run.
	ID int `json:"id" yaml:"id"`

	// Utterance is one paraphrase of the intention.
	Utterance string `json:"utterance" yaml:"utterance"`

	// OriginalIntention repeats the operator's input on every row so each
	// file is self-describing.
	OriginalIntention string `json:"original_intention" yaml:"original_intention"`

	// GeneratedAt is the run timestamp in RFC 3339, repeated per row.
	GeneratedAt string `json:"generated_at" yaml:"generated_at"`
}

// Run records one completed generation run for the history store.
type Run struct {
	// RunID is assigned by the history store on insert. Zero before Record.
	RunID int64 `json:"run_id" yaml:"run_id"`

	// Intention is the operator's input phrase.
	Intention string `json:"intention" yaml:"intention"`

	// OutputPath is the absolute path of the CSV the run produced.
	OutputPath string `json:"output_path" yaml:"output_path"`

	// GeneratedAt is the timestamp the run's directory and filename derive from.
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`

	// Utterances holds the run's utterances in sequence order.
	Utterances []string `json:"utterances" yaml:"utterances"`
}
