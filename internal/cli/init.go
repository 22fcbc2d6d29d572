package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nickcecere/vecdoc/internal/config"
	"github.com/nickcecere/vecdoc/internal/ui"
)

// initCmd creates the database and its documents table
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the database and documents table",
	Long: `Open the configured database, creating the vector table if it does not
exist. A higher store.schema_version than the one recorded in the database
drops and recreates the table; existing documents are lost.

Examples:
  # Create a 384-dimension store
  VECDOC_STORE_DIMENSIONS=384 vecdoc init`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	stats, err := st.Stats()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, ui.Success.Render("Store ready"))
	fmt.Fprintf(out, "  Database:   %s\n", config.Get().Database.Path)
	fmt.Fprintf(out, "  Dimensions: %d (%s)\n", stats.Dimensions, stats.DistanceMetric)
	fmt.Fprintf(out, "  Documents:  %d\n", stats.Documents)
	return nil
}
