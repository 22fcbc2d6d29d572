package cli

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/nickcecere/vecdoc/internal/config"
	"github.com/nickcecere/vecdoc/internal/result"
	"github.com/nickcecere/vecdoc/internal/ui"
)

// previewLength matches the content limit hosts show per document.
const previewLength = 700

var (
	searchVector  string
	searchLimit   int
	searchContent bool
	searchJSON    bool
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Find the documents nearest to a query vector",
	Long: `Search for the documents whose embeddings are closest to the query vector.
Results are ordered by ascending distance; smaller is more similar.

Examples:
  # Nearest 3 documents (bridge.search_limit)
  vecdoc search --vector "[0.1,0.2,0.3,0.4]"

  # Nearest 10 with content
  vecdoc search --vector @query.vec -m 10 -c`,
	Args: cobra.NoArgs,
	RunE: runSearchCmd,
}

func init() {
	searchCmd.Flags().StringVarP(&searchVector, "vector", "v", "", "query embedding as a JSON array, or @file")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "m", 0, "maximum number of results (default bridge.search_limit)")
	searchCmd.Flags().BoolVarP(&searchContent, "content", "c", false, "show content in results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	_ = searchCmd.MarkFlagRequired("vector")
}

func runSearchCmd(cmd *cobra.Command, args []string) error {
	query, err := readVectorFlag(searchVector)
	if err != nil {
		return fmt.Errorf("invalid --vector: %w", err)
	}

	limit := searchLimit
	if !cmd.Flags().Changed("limit") {
		limit = config.Get().Bridge.SearchLimit
	}
	if limit <= 0 {
		return fmt.Errorf("limit must be positive, got %d", limit)
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	log.Debug("Searching", "k", limit)

	hits, err := st.Search(query, limit)
	if searchJSON {
		return printJSON(cmd.OutOrStdout(), result.Search(hits, err))
	}
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(hits) == 0 {
		fmt.Fprintln(out, "No documents found.")
		return nil
	}

	fmt.Fprintln(out, ui.Header.Render(fmt.Sprintf("Found %d results", len(hits))))
	fmt.Fprintln(out)
	for i, h := range hits {
		fmt.Fprintf(out, "[%d] %s %s\n", i+1, ui.FormatDocHeader(h.ID, h.CreatedAt), ui.FormatDistance(h.Distance))
		if searchContent {
			fmt.Fprintln(out, ui.DocContent.Render(ui.Preview(h.Content, previewLength)))
			fmt.Fprintln(out)
		}
	}
	return nil
}
