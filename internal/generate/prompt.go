// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"bytes"
	"text/template"

	"github.com/pdiddy/utterance-engine/pkg/types"
)

// utterancePromptTmpl is the single instruction sent to the model per run.
// It asks for the utterances one per line without numbering so the parser
// can split on line breaks.
var utterancePromptTmpl = template.Must(template.New("utterances").Parse(`Generate 10 diverse utterances for this intention: "{{.Intention}}"

Make each utterance unique and natural. Vary the:
- Sentence structure and length
- Level of formality
- Perspective (first person, questions, statements)
- Specific words and phrasing

Return exactly 10 utterances, one per line, without numbers or bullet points.`))

// renderPrompt executes the utterance prompt template with the given intention.
func renderPrompt(intention types.Intention) (string, error) {
	var buf bytes.Buffer
	if err := utterancePromptTmpl.Execute(&buf, struct{ Intention types.Intention }{Intention: intention}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
