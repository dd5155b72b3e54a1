// Package main provides the entry point for the webaudit CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for webaudit.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "webaudit",
		Short: "Design, SEO, and content audit tool for websites",
		Long: `webaudit crawls a website and audits every page it finds.

Each page is checked by three auditors:
- design:  colors, textures, blend modes, and section rules against a brand palette
- seo:     titles, meta descriptions, social tags, headings, canonical links
- content: word counts, placeholder copy, empty headings

Findings stream into one ordered report, available as text, CSV, JSON,
Markdown, or Excel output, and are saved for later comparison.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewAuditCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
