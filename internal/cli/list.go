package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nickcecere/vecdoc/internal/config"
	"github.com/nickcecere/vecdoc/internal/result"
	"github.com/nickcecere/vecdoc/internal/ui"
)

var (
	listCursor int64
	listLimit  int
	listAll    bool
	listJSON   bool
)

// listCmd pages through documents, newest first
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents, newest first",
	Long: `List one page of documents in descending id order. Pass the printed
next cursor back with --cursor to continue.

Examples:
  # First page
  vecdoc list

  # Next page
  vecdoc list --cursor 42

  # Every document
  vecdoc list --all`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().Int64Var(&listCursor, "cursor", 0, "list documents with id below this cursor (0 starts at the newest)")
	listCmd.Flags().IntVarP(&listLimit, "limit", "m", 0, "page size (default bridge.page_size)")
	listCmd.Flags().BoolVar(&listAll, "all", false, "follow cursors until every document is listed")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output the page as JSON")
}

func runList(cmd *cobra.Command, args []string) error {
	limit := listLimit
	if !cmd.Flags().Changed("limit") {
		limit = config.Get().Bridge.PageSize
	}
	if limit <= 0 {
		return fmt.Errorf("limit must be positive, got %d", limit)
	}
	if listCursor < 0 {
		return fmt.Errorf("cursor must not be negative, got %d", listCursor)
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	out := cmd.OutOrStdout()
	cursor := listCursor
	for {
		page, err := st.ListPage(cursor, limit)
		if listJSON && !listAll {
			return printJSON(out, result.Page(page, err))
		}
		if err != nil {
			return fmt.Errorf("failed to list documents: %w", err)
		}

		for _, doc := range page.Documents {
			if listJSON {
				if err := printJSON(out, result.Item{ID: doc.ID, Content: doc.Content, Timestamp: doc.CreatedAt}); err != nil {
					return err
				}
				continue
			}
			fmt.Fprintln(out, ui.FormatDocHeader(doc.ID, doc.CreatedAt))
			fmt.Fprintln(out, ui.DocContent.Render(ui.Preview(doc.Content, previewLength)))
		}

		if !page.HasMore {
			if !listJSON && cursor == listCursor && len(page.Documents) == 0 {
				fmt.Fprintln(out, "No documents found.")
			}
			return nil
		}
		if !listAll {
			fmt.Fprintln(out)
			fmt.Fprintln(out, ui.Dim.Render(fmt.Sprintf("More documents available: --cursor %d", page.NextCursor)))
			return nil
		}
		cursor = page.NextCursor
	}
}
