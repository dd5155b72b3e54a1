package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

//go:embed templates/webaudit.yaml
var paletteTemplate embed.FS

// paletteFileName is the default palette file name.
const paletteFileName = "palette.yaml"

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a starter brand palette file",
		Long: `Init creates a starter palette.yaml in the current directory.

The generated file includes:
- Example brand colors, textures, and blend modes
- An opacity range for texture overlays
- Commented section rules keyed by class-name substrings

Edit the file to match your brand, then pass it to the design auditor
with 'webaudit audit --palette palette.yaml <url>'.

Examples:
  # Create palette.yaml in current directory
  webaudit init

  # Create the palette at a specific path
  webaudit init -o brand/acme.yaml

  # Force overwrite existing file
  webaudit init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", paletteFileName,
		"Output file path for the palette")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing palette file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	// Check if file already exists
	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("palette file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := paletteTemplate.ReadFile("templates/webaudit.yaml")
	if err != nil {
		return fmt.Errorf("failed to read palette template: %w", err)
	}

	// Create parent directories if needed
	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write palette file: %w", err)
	}

	fmt.Printf("Created palette file: %s\n", outputPath)
	fmt.Println("\nEdit this file to describe your brand:")
	fmt.Println("  - Approved colors, textures, and blend modes")
	fmt.Println("  - Texture opacity limits")
	fmt.Println("  - Per-section rules keyed by class-name substrings")

	return nil
}
