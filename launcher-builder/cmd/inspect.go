package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"native-launchers/go/pkg/distarchive"
)

var (
	inspectExtractTo string
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <archive>",
	Short: "Verifies an archive against its manifest and lists its files.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmdCobra *cobra.Command, args []string) {
		path := args[0]
		log.Info("archive", "verify", "progress", "Verifying archive", "path", path)

		file, err := os.Open(path)
		if err != nil {
			log.Error("archive", "read", "error", "Failed to open archive", "path", path, "error", err)
			os.Exit(1)
		}
		defer file.Close()

		manifest, err := distarchive.Verify(file)
		if err != nil {
			log.Error("archive", "verify", "failure", "Archive verification failed", "error", err)
			os.Exit(1)
		}
		for _, f := range manifest.Files {
			mode := "-"
			if f.Executable {
				mode = "x"
			}
			fmt.Printf("%s %10d %s %s\n", mode, f.Size, f.Sha256, f.PathInArchive)
		}
		log.Info("archive", "verify", "success", "Archive is intact", "files", len(manifest.Files))

		if inspectExtractTo == "" {
			return
		}
		if _, err := file.Seek(0, 0); err != nil {
			log.Error("archive", "read", "error", "Failed to rewind archive", "error", err)
			os.Exit(1)
		}
		files, err := distarchive.Extract(file, inspectExtractTo)
		if err != nil {
			log.Error("archive", "write", "error", "Failed to extract archive", "dest", inspectExtractTo, "error", err)
			os.Exit(1)
		}
		log.Info("archive", "write", "success", "Archive extracted", "dest", inspectExtractTo, "files", len(files))
	},
}

func init() {
	inspectCmd.Flags().StringVar(&inspectExtractTo, "extract-to", "", "Also extract the verified archive into this directory.")
	rootCmd.AddCommand(inspectCmd)
}
