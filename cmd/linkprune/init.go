package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/linkprune/linkprune/internal/config"
)

//go:embed templates/linkprune.yaml
var policyTemplate embed.FS

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter policy file",
		Long: `Init creates a .linkprune policy file in the current directory with
every setting documented and commented out.

Examples:
  # Create .linkprune in the current directory
  linkprune init

  # Create the policy file at a specific path
  linkprune init -o ~/.config/linkprune/config.yaml

  # Overwrite an existing file
  linkprune init -f`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultPolicyFile,
		"Output path for the policy file")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite an existing policy file")

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

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("policy file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := policyTemplate.ReadFile("templates/linkprune.yaml")
	if err != nil {
		return fmt.Errorf("read policy template: %w", err)
	}

	if dir := filepath.Dir(outputPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("write policy file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created policy file: %s\n", outputPath)
	return nil
}
