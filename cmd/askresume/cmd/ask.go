package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// askOptions holds CLI flags for ask.
type askOptions struct {
	topK   int
	format string // "text", "json"
}

func newAskCmd() *cobra.Command {
	var opts askOptions

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Run a one-shot retrieval query",
		Long: `Run a retrieval query against the résumé and print the ranked
chunks.

Examples:
  askresume ask "where did you study"
  askresume ask "golang experience" -k 5 --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd, strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().IntVarP(&opts.topK, "top-k", "k", 0, "Number of chunks to return (defaults to config)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")

	return cmd
}

func runAsk(cmd *cobra.Command, query string, opts askOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := buildStack(cfg)
	if err != nil {
		return err
	}

	topK := opts.topK
	if topK < 1 {
		topK = cfg.Retrieve.TopK
	}

	result, err := st.engine.Retrieve(query, topK)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	if len(result.Chunks) == 0 {
		fmt.Fprintln(out, "No results.")
		return nil
	}
	fmt.Fprintf(out, "Confidence: %.3f\n\n", result.Confidence)
	for rank, c := range result.Chunks {
		fmt.Fprintf(out, "%d. [chunk %d, score %.3f]\n%s\n\n", rank+1, c.Index, c.Score, c.Text)
	}
	return nil
}
