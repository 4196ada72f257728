package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/utterance-engine/internal/output"
)

var outputsCmd = &cobra.Command{
	Use:   "outputs",
	Short: "Manage dated output folders (list, stats, clean)",
	Long: `Outputs manages the utterance_outputs_<date> folders a generation run
creates. Use subcommands to list them with file counts, aggregate sizes,
or delete folders older than a retention threshold.`,
}

// --- list subcommand ---

var outputsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List dated output folders with file counts and sizes",
	RunE:  runOutputsList,
}

func runOutputsList(cmd *cobra.Command, args []string) error {
	folders, err := output.ListFolders(outputConfigFromFlags(cmd))
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(folders)
	}

	if len(folders) == 0 {
		fmt.Println("No output folders found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-30s  %-12s  %6s  %10s\n", "Folder", "Date", "Files", "Bytes")
	for _, f := range folders {
		fmt.Fprintf(os.Stdout, "%-30s  %-12s  %6d  %10d\n",
			f.Name, f.Date.Format("2006-01-02"), f.Files, f.Bytes)
	}
	fmt.Fprintf(os.Stdout, "\n%d folder(s)\n", len(folders))
	return nil
}

// --- stats subcommand ---

var outputsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate folder, file, and size totals",
	RunE:  runOutputsStats,
}

func runOutputsStats(cmd *cobra.Command, args []string) error {
	summary, err := output.Stats(outputConfigFromFlags(cmd))
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "table", "":
		fmt.Printf("Folders: %d\n", summary.Folders)
		fmt.Printf("Files:   %d\n", summary.Files)
		fmt.Printf("Bytes:   %d\n", summary.Bytes)
		return nil
	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		defer enc.Close()
		return enc.Encode(summary)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	default:
		return fmt.Errorf("unsupported format %q: use table, yaml, or json", format)
	}
}

// --- clean subcommand ---

var outputsCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Delete output folders older than the retention threshold",
	Long: `Clean deletes dated output folders whose date key is older than the
retention threshold, counted back from today: --max-age-days if passed, then
manage.max_age_days from the config file, then 7 days. Folders whose name
does not parse as a date are reported and left alone.`,
	RunE: runOutputsClean,
}

// cleanMaxAgeDays resolves the retention threshold: an explicit flag wins,
// then the config file. Zero means unset; CleanOld falls back to 7 days.
func cleanMaxAgeDays(cmd *cobra.Command) int {
	if maxAgeDays, _ := cmd.Flags().GetInt("max-age-days"); maxAgeDays > 0 {
		return maxAgeDays
	}
	return viper.GetInt("manage.max_age_days")
}

func runOutputsClean(cmd *cobra.Command, args []string) error {
	summary, err := output.CleanOld(outputConfigFromFlags(cmd), cleanMaxAgeDays(cmd), time.Now(), os.Stdout)
	if err != nil {
		return err
	}

	if len(summary.Removed) == 0 {
		fmt.Println("No old folders to clean.")
	} else {
		fmt.Printf("Cleaned %d folder(s).\n", len(summary.Removed))
	}
	return nil
}

func init() {
	outputsCmd.PersistentFlags().String("base-dir", "", "base directory for output folders (default .)")
	outputsCmd.PersistentFlags().String("dir-prefix", "", "dated folder name prefix (default utterance_outputs_)")

	outputsListCmd.Flags().Bool("json", false, "output folders as JSON")
	outputsStatsCmd.Flags().String("format", "table", "output format: table, yaml, or json")
	outputsCleanCmd.Flags().Int("max-age-days", 0, "delete folders older than this many days (default manage.max_age_days, then 7)")

	outputsCmd.AddCommand(outputsListCmd)
	outputsCmd.AddCommand(outputsStatsCmd)
	outputsCmd.AddCommand(outputsCleanCmd)
	rootCmd.AddCommand(outputsCmd)
}
