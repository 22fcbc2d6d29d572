package cli

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/nickcecere/vecdoc/internal/bridge"
	"github.com/nickcecere/vecdoc/internal/config"
	"github.com/nickcecere/vecdoc/internal/store"
)

// serveCmd runs the JSON-RPC bridge.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the document store over JSON-RPC on stdin/stdout",
	Long: `Start the bridge: a JSON-RPC 2.0 server that reads one request per line
from stdin and writes one response per line to stdout. Logs go to stderr.

Methods:
  initialize         open the store (required before the calls below)
  insert             {content, embedding} -> {success, message, id}
  query              {search, limit?} -> {result, data, count}
  getWithPagination  {limit?, cursor?} -> {results, hasMore, nextCursor, success}
  status             store statistics
  echo               {value} -> {value}
  ping               liveness check

This command is typically started by a host application, not run directly.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	// Bridge uses stdin/stdout for communication, so keep logs on stderr
	log.SetOutput(os.Stderr)

	cfg := config.Get()

	ctx, cancel := signalContext()
	defer cancel()

	adapter := bridge.NewAdapter(func() (store.Store, error) {
		st, err := openStore()
		if err != nil {
			return nil, err
		}
		return st, nil
	}, bridge.Options{
		SearchLimit:      cfg.Bridge.SearchLimit,
		PageSize:         cfg.Bridge.PageSize,
		MaxContentLength: cfg.Bridge.MaxContentLength,
	})
	defer adapter.Close()

	server := bridge.NewServer(adapter, cmd.InOrStdin(), cmd.OutOrStdout())
	err := server.Run(ctx)
	if ctx.Err() != nil {
		return nil
	}
	return err
}
