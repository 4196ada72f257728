// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the utterance-engine CLI.
// The generate command runs the interactive intention-to-CSV pipeline;
// outputs and history manage what previous runs produced.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/utterance-engine/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns the secret value for key if it exists, or fallback otherwise.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the utterance-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "utterance-engine",
	Short: "Generate diverse utterances for an intention",
	Long: `utterance-engine asks a Gemini model for ten diverse, natural paraphrases
of an operator-supplied intention and saves them as a timestamped CSV inside
a dated output folder.

The generate command runs one interactive generation. The outputs command
lists, summarizes, and cleans the dated folders; the history command queries
a local log of past runs.

Invoked without a subcommand, utterance-engine runs one interactive
generation, same as the generate command.`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./utterance-engine.yaml or ~/.config/utterance-engine/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("utterance-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "utterance-engine"))
		}
	}

	viper.SetEnvPrefix("UTTERANCE_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
