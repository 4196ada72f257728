// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/utterance-engine/internal/console"
	"github.com/pdiddy/utterance-engine/internal/generate"
	"github.com/pdiddy/utterance-engine/internal/history"
	"github.com/pdiddy/utterance-engine/internal/output"
	"github.com/pdiddy/utterance-engine/pkg/types"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate ten utterances for an intention and save them as CSV",
	Long: `Generate prompts for an intention, asks the configured Gemini model for
exactly ten diverse paraphrases, prints them, and writes them to
<base-dir>/utterance_outputs_<date>/utterances_<timestamp>.csv.

The model is called once per run with no retries. A response with the wrong
utterance count fails the run and nothing is written.`,
	RunE: runGenerate,
}

// addGenerateFlags registers the generation flag set. The root command runs
// the same interactive flow as the generate subcommand, so both carry it.
func addGenerateFlags(cmd *cobra.Command) {
	cmd.Flags().String("model", "", "Gemini model identifier (default gemini-2.5-flash)")
	cmd.Flags().String("api-key", "", "Gemini API key (falls back to .secrets/google-api-key)")
	cmd.Flags().String("project", "", "Google Cloud project for Vertex AI authentication")
	cmd.Flags().String("location", "", "Vertex AI region")
	cmd.Flags().Duration("timeout", 0, "model call timeout (default 60s)")
	cmd.Flags().String("base-dir", "", "base directory for output folders (default .)")
	cmd.Flags().String("dir-prefix", "", "dated folder name prefix (default utterance_outputs_)")
	cmd.Flags().String("file-prefix", "", "result file name prefix (default utterances)")
	cmd.Flags().Bool("no-history", false, "skip recording the run in the history database")
}

func init() {
	addGenerateFlags(generateCmd)
	addGenerateFlags(rootCmd)

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	gcfg := generatorConfig(cmd)
	ocfg := outputConfigFromFlags(cmd)

	fmt.Println("Welcome to the utterance generator.")
	intention, err := console.CollectIntention(os.Stdin, os.Stdout)
	if err != nil {
		return err
	}

	// Catch interrupts only once input collection is done: an interrupt at
	// the prompt kills the process outright, while one during the model call
	// cancels the context and aborts the run before anything is written.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	backend, err := generate.NewGeminiBackend(ctx, gcfg)
	if err != nil {
		return err
	}

	fmt.Printf("Generating utterances with %s...\n", backend.Model())
	set, err := generate.NewGenerator(backend, gcfg).Generate(ctx, intention)
	if err != nil {
		var mErr *generate.MalformedResponseError
		if errors.As(err, &mErr) {
			fmt.Fprintf(os.Stderr, "raw model response:\n%s\n", mErr.Raw)
		}
		return err
	}

	fmt.Printf("\nGenerated utterances for %q:\n", string(intention))
	for i, u := range set {
		fmt.Printf("%2d. %s\n", i+1, u)
	}

	now := time.Now()
	path, err := output.Write(ocfg, intention, set, now)
	if err != nil {
		return err
	}
	fmt.Printf("\nDone! %d utterances saved to %s\n", types.UtteranceCount, path)

	if noHistory, _ := cmd.Flags().GetBool("no-history"); !noHistory {
		recordRun(ctx, ocfg, types.Run{
			Intention:   string(intention),
			OutputPath:  path,
			GeneratedAt: now,
			Utterances:  set,
		})
	}
	return nil
}

// recordRun logs the completed run in the history store. The CSV is the
// product; a history failure only warns.
func recordRun(ctx context.Context, ocfg types.OutputConfig, run types.Run) {
	store, err := history.NewStore(historyConfig(ocfg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not open history store: %v\n", err)
		return
	}
	defer store.Close()

	if _, err := store.Record(ctx, run); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not record run in history: %v\n", err)
	}
}

// stringSetting resolves one string setting: an explicitly set flag wins,
// then the config file. Commands that do not define the flag resolve from
// the config file alone.
func stringSetting(cmd *cobra.Command, flag, viperKey string) string {
	if f := cmd.Flags().Lookup(flag); f != nil && f.Value.String() != "" {
		return f.Value.String()
	}
	return viper.GetString(viperKey)
}

// generatorConfig resolves generator settings from flags, config file, and secrets.
func generatorConfig(cmd *cobra.Command) types.GeneratorConfig {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = viper.GetDuration("generator.timeout")
	}

	return types.GeneratorConfig{
		AIConfig: types.AIConfig{
			Model:    stringSetting(cmd, "model", "generator.model"),
			APIKey:   secretDefault("google-api-key", stringSetting(cmd, "api-key", "generator.api_key")),
			Project:  secretDefault("google-project", stringSetting(cmd, "project", "generator.project")),
			Location: secretDefault("google-location", stringSetting(cmd, "location", "generator.location")),
			Timeout:  timeout,
		},
	}
}

// outputConfigFromFlags resolves output settings from flags and the config file.
func outputConfigFromFlags(cmd *cobra.Command) types.OutputConfig {
	return types.OutputConfig{
		BaseDir:    stringSetting(cmd, "base-dir", "output.base_dir"),
		DirPrefix:  stringSetting(cmd, "dir-prefix", "output.dir_prefix"),
		FilePrefix: stringSetting(cmd, "file-prefix", "output.file_prefix"),
	}
}

// historyConfig derives the history store location from config, defaulting to
// <base-dir>/index/.
func historyConfig(ocfg types.OutputConfig) types.HistoryConfig {
	dbDir := viper.GetString("history.db_dir")
	if dbDir == "" {
		base := ocfg.BaseDir
		if base == "" {
			base = "."
		}
		dbDir = filepath.Join(base, "index")
	}
	return types.HistoryConfig{
		DBDir:      dbDir,
		MaxResults: viper.GetInt("history.max_results"),
	}
}
