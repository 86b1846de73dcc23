package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"native-launchers/go/pkg/distarchive"
)

var (
	archiveOutPath         string
	archiveExcludePatterns []string
)

var archiveCmd = &cobra.Command{
	Use:   "archive <image_dir>",
	Short: "Packs an image directory with its launchers into a .tar.zst archive.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmdCobra *cobra.Command, args []string) {
		sourceDir := filepath.Clean(args[0])
		out := archiveOutPath
		if out == "" {
			out = sourceDir + distarchive.Extension
		}

		data, err := distarchive.Create(log, sourceDir, archiveExcludePatterns)
		if err != nil {
			log.Error("archive", "pack", "error", "Failed to archive image directory", "path", sourceDir, "error", err)
			os.Exit(1)
		}
		if err := os.WriteFile(out, data, 0644); err != nil {
			log.Error("archive", "write", "error", "Failed to write archive", "path", out, "error", err)
			os.Exit(1)
		}
		log.Info("archive", "write", "success", "Archive written", "path", out)
	},
}

func init() {
	archiveCmd.Flags().StringVarP(&archiveOutPath, "out", "o", "", "Archive path (default <image_dir>.tar.zst).")
	archiveCmd.Flags().StringArrayVar(&archiveExcludePatterns, "exclude", []string{"*.c"}, "Glob patterns to exclude from the archive.")
	rootCmd.AddCommand(archiveCmd)
}
