// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// AIConfig holds shared settings for components that call a Generative AI API.
type AIConfig struct {
	// Model is the AI model identifier (e.g. "gemini-2.5-flash").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API. When empty the
	// provider client falls back to Vertex project credentials or ambient
	// application-default credentials.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Project is the Google Cloud project id for Vertex AI authentication.
	Project string `json:"project,omitempty" yaml:"project,omitempty"`

	// Location is the Vertex AI region (default "us-central1").
	Location string `json:"location,omitempty" yaml:"location,omitempty"`

	// Timeout bounds a single model invocation (default 60s). Expiry is
	// surfaced as a provider failure; the call is not retried.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// GeneratorConfig holds settings for the utterance generation stage.
type GeneratorConfig struct {
	AIConfig `yaml:",inline"`
}

// OutputConfig holds settings for the result writer and output manager.
type OutputConfig struct {
	// BaseDir is the directory under which dated output folders are created
	// (default ".").
	BaseDir string `json:"base_dir" yaml:"base_dir"`

	// DirPrefix prefixes each dated folder name, producing
	// <DirPrefix><YYYYMMDD> (default "utterance_outputs_").
	DirPrefix string `json:"dir_prefix" yaml:"dir_prefix"`

	// FilePrefix prefixes each result file name, producing
	// <FilePrefix>_<YYYYMMDD>_<HHMMSS>.csv (default "utterances").
	FilePrefix string `json:"file_prefix" yaml:"file_prefix"`
}

// HistoryConfig holds settings for the run history store.
type HistoryConfig struct {
	// DBDir is the directory holding history.db (default "index").
	DBDir string `json:"db_dir" yaml:"db_dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// ManageConfig holds settings for output folder housekeeping.
type ManageConfig struct {
	// MaxAgeDays is the folder retention threshold for clean runs (default 7).
	MaxAgeDays int `json:"max_age_days" yaml:"max_age_days"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Generator GeneratorConfig `json:"generator" yaml:"generator"`
	Output    OutputConfig    `json:"output" yaml:"output"`
	History   HistoryConfig   `json:"history" yaml:"history"`
	Manage    ManageConfig    `json:"manage" yaml:"manage"`
}
