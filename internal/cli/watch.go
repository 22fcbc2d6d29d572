package cli

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/nickcecere/vecdoc/internal/config"
	"github.com/nickcecere/vecdoc/internal/importer"
	"github.com/nickcecere/vecdoc/internal/watcher"
)

var watchDebounce time.Duration

// watchCmd represents the watch command.
var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Import JSON Lines files dropped into a directory",
	Long: `Watch a directory and import every .jsonl file created or changed in it,
using the same format as 'vecdoc import'. Files already present are imported
when the watcher starts. A changed file is imported again in full.

Files matching a pattern in <dir>/.vecdocignore or the import.ignore
config list are skipped.

Examples:
  vecdoc watch ./inbox`,
	Args: cobra.ExactArgs(1),
	RunE: runWatchCmd,
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond, "wait this long for writes to settle before importing")
}

func runWatchCmd(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	cfg := config.Get()

	w, err := watcher.New(
		args[0],
		importer.New(st),
		watcher.WithDebounceTime(watchDebounce),
		watcher.WithImportOptions(importer.Options{
			SkipDuplicates:   cfg.Import.SkipDuplicates,
			MaxContentLength: cfg.Bridge.MaxContentLength,
		}),
		watcher.WithIgnorePatterns(cfg.Import.Ignore),
		watcher.WithEventCallback(func(event, path string) {
			log.Debug("Watcher event", "event", event, "path", path)
		}),
	)
	if err != nil {
		return err
	}

	// Start watching (blocks until context is cancelled)
	if err := w.Start(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
