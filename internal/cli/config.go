package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nickcecere/vecdoc/internal/config"
	"github.com/nickcecere/vecdoc/internal/ui"
)

var configShowPath bool

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show configuration",
	Long: `Display current configuration settings and config file locations.

Examples:
  # Show current configuration
  vecdoc config

  # Show config file paths
  vecdoc config --path`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	configCmd.Flags().BoolVar(&configShowPath, "path", false, "show config file paths")
}

func runConfig(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if configShowPath {
		fmt.Fprintln(out, ui.SectionTitle.Render("Configuration Paths"))
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Global config: %s\n", config.GlobalConfigPath())
		fmt.Fprintf(out, "Local config:  %s (searched from cwd upward)\n", config.RCFileName)
		fmt.Fprintf(out, "Active config: %s\n", config.ConfigFilePath())
		fmt.Fprintf(out, "Database:      %s\n", config.Get().Database.Path)
		return nil
	}

	// Show current configuration
	cfg := config.Get()

	fmt.Fprintln(out, ui.SectionTitle.Render("Current Configuration"))
	fmt.Fprintln(out)

	fmt.Fprintln(out, ui.Bold.Render("Database:"))
	fmt.Fprintf(out, "  Path: %s\n", cfg.Database.Path)
	fmt.Fprintln(out)

	fmt.Fprintln(out, ui.Bold.Render("Store:"))
	fmt.Fprintf(out, "  Dimensions: %d\n", cfg.Store.Dimensions)
	fmt.Fprintf(out, "  Distance Metric: %s\n", cfg.Store.DistanceMetric)
	fmt.Fprintf(out, "  Schema Version: %d\n", cfg.Store.SchemaVersion)
	fmt.Fprintln(out)

	fmt.Fprintln(out, ui.Bold.Render("Bridge:"))
	fmt.Fprintf(out, "  Search Limit: %d\n", cfg.Bridge.SearchLimit)
	fmt.Fprintf(out, "  Page Size: %d\n", cfg.Bridge.PageSize)
	if cfg.Bridge.MaxContentLength > 0 {
		fmt.Fprintf(out, "  Max Content Length: %d characters\n", cfg.Bridge.MaxContentLength)
	} else {
		fmt.Fprintln(out, "  Max Content Length: unlimited")
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, ui.Bold.Render("Import:"))
	fmt.Fprintf(out, "  Skip Duplicates: %t\n", cfg.Import.SkipDuplicates)
	if len(cfg.Import.Ignore) > 0 {
		fmt.Fprintf(out, "  Ignore:          %s\n", strings.Join(cfg.Import.Ignore, ", "))
	}

	return nil
}
