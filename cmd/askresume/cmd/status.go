package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/askresume/askresume/internal/document"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show document and index status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd)
		},
	}
}

func runStatus(cmd *cobra.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := buildStack(cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	info, err := st.docs.Info()
	if err != nil {
		if errors.Is(err, document.ErrNotFound) {
			fmt.Fprintf(out, "Document: %s (missing)\n", cfg.Document.Path)
			return nil
		}
		return err
	}

	fmt.Fprintf(out, "Document: %s\n", info.Path)
	fmt.Fprintf(out, "  Pages:    %d\n", info.Pages)
	fmt.Fprintf(out, "  Chars:    %d\n", info.Chars)
	fmt.Fprintf(out, "  Modified: %s\n", info.ModTime.Format("2006-01-02 15:04:05"))

	ix, err := st.index.Ensure()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Index:\n")
	fmt.Fprintf(out, "  Chunks:     %d\n", len(ix.Chunks))
	fmt.Fprintf(out, "  Vocabulary: %d terms\n", len(ix.Vocabulary))
	return nil
}
