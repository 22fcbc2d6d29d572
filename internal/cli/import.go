package cli

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/nickcecere/vecdoc/internal/config"
	"github.com/nickcecere/vecdoc/internal/importer"
	"github.com/nickcecere/vecdoc/internal/ui"
)

var importKeepDuplicates bool

// importCmd loads documents from a JSON Lines file
var importCmd = &cobra.Command{
	Use:   "import <file.jsonl>",
	Short: "Import documents from a JSON Lines file",
	Long: `Import documents from a file with one JSON object per line:

  {"content": "hello world", "embedding": [0.1, 0.2, 0.3, 0.4]}

Records are inserted one at a time. Malformed lines and records with the
wrong dimension are skipped and counted. Records identical to an earlier
one in the same file are skipped unless --keep-duplicates is set.

Examples:
  vecdoc import docs.jsonl`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().BoolVar(&importKeepDuplicates, "keep-duplicates", false, "insert records even if identical to an earlier one")
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, ui.Header.Render("Importing "+args[0]))

	lastUpdate := time.Now()
	opts := importer.Options{
		SkipDuplicates:   config.Get().Import.SkipDuplicates && !importKeepDuplicates,
		MaxContentLength: config.Get().Bridge.MaxContentLength,
		OnProgress: func(p importer.Progress) {
			// Throttle updates to every 100ms
			if time.Since(lastUpdate) < 100*time.Millisecond {
				return
			}
			lastUpdate = time.Now()

			log.Debug("Import progress", "lines", p.Lines, "inserted", p.Inserted)
		},
	}

	p, err := importer.New(st).ImportFile(ctx, args[0], opts)
	if err != nil {
		if ctx.Err() != nil {
			fmt.Fprintln(out, ui.Warning.Render("Import cancelled"))
			fmt.Fprintf(out, "  Inserted before cancel: %d\n", p.Inserted)
			return nil
		}
		return fmt.Errorf("import failed: %w", err)
	}

	fmt.Fprintln(out, ui.Success.Render("Import complete!"))
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  Lines:      %d\n", p.Lines)
	fmt.Fprintf(out, "  Inserted:   %d\n", p.Inserted)
	fmt.Fprintf(out, "  Duplicates: %d\n", p.Duplicates)
	fmt.Fprintf(out, "  Invalid:    %d\n", p.Invalid)
	fmt.Fprintf(out, "  Failed:     %d\n", p.Failed)
	fmt.Fprintf(out, "  Duration:   %s\n", time.Since(p.StartTime).Round(time.Millisecond))

	if p.Invalid > 0 || p.Failed > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, ui.Warning.Render("Some records were skipped; run with --debug for details"))
	}
	return nil
}
