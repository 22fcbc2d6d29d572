package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/nickcecere/vecdoc/internal/config"
	"github.com/nickcecere/vecdoc/internal/store"
	"github.com/nickcecere/vecdoc/internal/ui"
)

var statusJSON bool

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show store status and statistics",
	Long: `Display information about the document store including:
- Number of stored documents
- Embedding dimensions and distance metric
- Schema version
- SQLite and sqlite-vec versions`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output status as JSON")
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	out := cmd.OutOrStdout()

	if _, err := os.Stat(cfg.Database.Path); os.IsNotExist(err) {
		fmt.Fprintln(out, "No database found.")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Run 'vecdoc init' to create one.")
		return nil
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	stats, err := st.Stats()
	if err != nil {
		return fmt.Errorf("failed to get stats: %w", err)
	}
	log.Debug("Loaded stats", "documents", stats.Documents)

	if statusJSON {
		return printJSON(out, stats)
	}

	fmt.Fprintln(out, ui.Header.Render("Store Status"))
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %s %s\n", ui.Dim.Render("Database:"), cfg.Database.Path)
	fmt.Fprintf(out, "  %s %d\n", ui.Dim.Render("Documents:"), stats.Documents)
	fmt.Fprintf(out, "  %s %d\n", ui.Dim.Render("Dimensions:"), stats.Dimensions)
	fmt.Fprintf(out, "  %s %s\n", ui.Dim.Render("Metric:"), stats.DistanceMetric)
	fmt.Fprintf(out, "  %s %d\n", ui.Dim.Render("Schema:"), stats.SchemaVersion)
	fmt.Fprintf(out, "  %s %s (sqlite-vec %s)\n", ui.Dim.Render("SQLite:"), stats.SQLiteVersion, stats.VecVersion)
	fmt.Fprintf(out, "  %s %s\n", ui.Dim.Render("Health:"), getHealthStatus(stats))

	return nil
}

// getHealthStatus returns a health indicator based on stats.
func getHealthStatus(stats *store.Stats) string {
	if stats.Documents == 0 {
		return ui.Warning.Render("empty (no documents inserted)")
	}
	return ui.Success.Render("healthy")
}
