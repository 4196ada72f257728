// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/utterance-engine/internal/history"
	"github.com/pdiddy/utterance-engine/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Query the run history (list, search, export)",
	Long: `History queries the local SQLite log of past generation runs. Use
subcommands to list recent runs, full-text search past utterances, or
export the whole log.`,
}

// --- list subcommand ---

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs, newest first",
	RunE:  runHistoryList,
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	store, err := openHistoryStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := store.List(context.Background(), limit)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-5s  %-20s  %-40s  %s\n", "Run", "Generated", "Intention", "Output")
	for _, r := range runs {
		intention := r.Intention
		if len(intention) > 40 {
			intention = intention[:37] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-5d  %-20s  %-40s  %s\n",
			r.RunID, r.GeneratedAt.Local().Format("2006-01-02 15:04:05"), intention, r.OutputPath)
	}
	fmt.Fprintf(os.Stdout, "\n%d run(s)\n", len(runs))
	return nil
}

// --- search subcommand ---

var historySearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Full-text search past utterances",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistorySearch,
}

func runHistorySearch(cmd *cobra.Command, args []string) error {
	store, err := openHistoryStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	results, err := store.Search(context.Background(), args[0], limit)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	for _, r := range results {
		fmt.Fprintf(os.Stdout, "run %d #%d  %q  (intention: %s)\n", r.RunID, r.Seq, r.Text, r.Intention)
	}
	fmt.Fprintf(os.Stdout, "\n%d result(s)\n", len(results))
	return nil
}

// --- export subcommand ---

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the full run history to YAML or JSON",
	RunE:  runHistoryExport,
}

func runHistoryExport(cmd *cobra.Command, args []string) error {
	store, err := openHistoryStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.Export(context.Background())
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "yaml", "":
		enc := yaml.NewEncoder(os.Stdout)
		defer enc.Close()
		return enc.Encode(runs)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
}

// openHistoryStore resolves the store location from flags and config.
func openHistoryStore(cmd *cobra.Command) (*history.Store, error) {
	dbDir, _ := cmd.Flags().GetString("db-dir")
	cfg := types.HistoryConfig{DBDir: dbDir, MaxResults: viper.GetInt("history.max_results")}
	if cfg.DBDir == "" {
		baseDir, _ := cmd.Flags().GetString("base-dir")
		cfg = historyConfig(types.OutputConfig{BaseDir: baseDir})
	}
	return history.NewStore(cfg)
}

func init() {
	historyCmd.PersistentFlags().String("db-dir", "", "history database directory (default <base-dir>/index)")
	historyCmd.PersistentFlags().String("base-dir", "", "base directory for output folders (default .)")

	historyListCmd.Flags().Int("limit", 0, "maximum runs to list (default 20)")
	historyListCmd.Flags().Bool("json", false, "output runs as JSON")
	historySearchCmd.Flags().Int("limit", 0, "maximum results (default 20)")
	historySearchCmd.Flags().Bool("json", false, "output results as JSON")
	historyExportCmd.Flags().String("format", "yaml", "output format: yaml or json")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historySearchCmd)
	historyCmd.AddCommand(historyExportCmd)
	rootCmd.AddCommand(historyCmd)
}
