package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/daryltucker/bench-trend/internal/assets"
	"github.com/daryltucker/bench-trend/internal/output"
)

var (
	initDir   string
	initForce bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter bench_trend.yaml",
	RunE: func(cmd *cobra.Command, args []string) error {
		output.Logger.Info("Writing starter files...", "target", initDir)

		if err := os.MkdirAll(initDir, 0755); err != nil {
			return fmt.Errorf("failed to create target directory %s: %w", initDir, err)
		}

		// Read embedded files from internal/assets/templates/
		entries, err := fs.ReadDir(assets.Templates, "templates")
		if err != nil {
			return fmt.Errorf("failed to read embedded templates: %w", err)
		}

		count := 0
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}

			targetPath := filepath.Join(initDir, entry.Name())
			if _, err := os.Stat(targetPath); err == nil && !initForce {
				output.Logger.Warn("Not overwriting existing file (use --force)", "path", targetPath)
				continue
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("failed to check %s: %w", targetPath, err)
			}

			content, err := fs.ReadFile(assets.Templates, "templates/"+entry.Name())
			if err != nil {
				return fmt.Errorf("failed to read embedded file %s: %w", entry.Name(), err)
			}

			if err := os.WriteFile(targetPath, content, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", targetPath, err)
			}

			output.Logger.Info("Wrote file", "path", targetPath)
			count++
		}

		output.Logger.Info("Init Complete", "total_files", count)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVar(&initDir, "dir", ".", "Directory to write the starter files into")
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing files")
}
