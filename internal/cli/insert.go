package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/nickcecere/vecdoc/internal/config"
	"github.com/nickcecere/vecdoc/internal/result"
	"github.com/nickcecere/vecdoc/internal/ui"
	"github.com/nickcecere/vecdoc/internal/vector"
)

var (
	insertVector string
	insertJSON   bool
)

// insertCmd stores one document
var insertCmd = &cobra.Command{
	Use:   "insert <content>",
	Short: "Insert a document with its embedding",
	Long: `Insert one document. The embedding is given as a JSON array literal and
must have exactly store.dimensions values, or "@path" to read it from a
file. Use "-" as content to read it from stdin.

Examples:
  vecdoc insert "hello world" --vector "[0.1,0.2,0.3,0.4]"
  cat note.txt | vecdoc insert - --vector @note.vec --json`,
	Args: cobra.ExactArgs(1),
	RunE: runInsert,
}

func init() {
	insertCmd.Flags().StringVarP(&insertVector, "vector", "v", "", "embedding as a JSON array, e.g. [0.1,0.2]")
	insertCmd.Flags().BoolVar(&insertJSON, "json", false, "output the result as JSON")
	_ = insertCmd.MarkFlagRequired("vector")
}

func runInsert(cmd *cobra.Command, args []string) error {
	content := args[0]
	if content == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read content: %w", err)
		}
		content = strings.TrimRight(string(data), "\n")
	}

	if limit := config.Get().Bridge.MaxContentLength; limit > 0 {
		if n := utf8.RuneCountInString(content); n > limit {
			return fmt.Errorf("content is %d characters, limit is %d", n, limit)
		}
	}

	embedding, err := readVectorFlag(insertVector)
	if err != nil {
		return fmt.Errorf("invalid --vector: %w", err)
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	ref, err := st.Insert(content, embedding)
	if insertJSON {
		return printJSON(cmd.OutOrStdout(), result.Insert(ref, err))
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.Success.Render("Inserted"), ui.FormatDocHeader(ref.ID, ref.CreatedAt))
	return nil
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// readVectorFlag decodes a vector literal, reading it from a file when it starts with @.
func readVectorFlag(flag string) ([]float32, error) {
	if path, ok := strings.CutPrefix(flag, "@"); ok {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read vector file: %w", err)
		}
		flag = strings.TrimSpace(string(data))
	}
	return vector.Decode(flag)
}
