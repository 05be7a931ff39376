package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

func newDocsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:    "gen-docs",
		Short:  "Generate documentation for reflink-diff",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE:   runGenDocs,
	}
	cmd.Flags().String("dir", "docs", "output directory")
	cmd.Flags().String("format", "man", "output format (man or markdown)")
	return cmd
}

func runGenDocs(cmd *cobra.Command, _ []string) error {
	dir, _ := cmd.Flags().GetString("dir")       //nolint:errcheck // flag name is hardcoded
	format, _ := cmd.Flags().GetString("format") //nolint:errcheck // flag name is hardcoded

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &exitError{code: 2, err: fmt.Errorf("create output dir: %w", err)}
	}

	root := cmd.Root()
	var err error
	switch format {
	case "man":
		header := &doc.GenManHeader{
			Title:   "REFLINK-DIFF",
			Section: "1",
			Source:  "reflink-diff " + version,
		}
		err = doc.GenManTree(root, header, dir)
	case "markdown":
		err = doc.GenMarkdownTree(root, dir)
	default:
		return fmt.Errorf("unknown format %q (use man or markdown)", format)
	}
	if err != nil {
		return &exitError{code: 2, err: err}
	}
	return nil
}
