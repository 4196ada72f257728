// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/pdiddy/utterance-engine/pkg/types"
)

const defaultModel = "gemini-2.5-flash"

// GeminiBackend calls the Gemini API through the google.golang.org/genai
// client. Credential resolution follows the config: an explicit API key wins,
// then a Vertex AI project, then the SDK's ambient application-default
// credentials.
type GeminiBackend struct {
	client *genai.Client
	model  string
}

// NewGeminiBackend constructs the client once at startup. No call is made
// until GenerateText; credential problems surface on the first call.
func NewGeminiBackend(ctx context.Context, cfg types.GeneratorConfig) (*GeminiBackend, error) {
	cc := &genai.ClientConfig{}
	switch {
	case cfg.APIKey != "":
		cc.APIKey = cfg.APIKey
		cc.Backend = genai.BackendGeminiAPI
	case cfg.Project != "":
		cc.Backend = genai.BackendVertexAI
		cc.Project = cfg.Project
		cc.Location = cfg.Location
		if cc.Location == "" {
			cc.Location = "us-central1"
		}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	return &GeminiBackend{client: client, model: model}, nil
}

// Model returns the model identifier the backend invokes.
func (b *GeminiBackend) Model() string {
	return b.model
}

// GenerateText issues one blocking generateContent call and returns the
// response text as-is. Empty text is not an error here: the response parser
// classifies it as malformed.
func (b *GeminiBackend) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := b.client.Models.GenerateContent(ctx, b.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("calling Gemini API: %w", err)
	}
	return resp.Text(), nil
}
