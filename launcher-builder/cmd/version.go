package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"native-launchers/go/pkg/cgen"
	"native-launchers/go/pkg/platform"
	"native-launchers/go/pkg/toolchain"
)

// Version, Commit and Date are set at build time.
var Version = "dev"
var Commit = "none"
var Date = "unknown"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of launcher-builder and the toolchain it would look for",
	Run: func(cmd *cobra.Command, args []string) {
		log.Info("system", "version", "info", "launcher-builder version information", "version", Version, "commit", Commit, "date", Date)
		printVersion(os.Stdout, platform.Host(), os.Getenv(toolchain.GraalHomeEnvVar))
	},
}

func printVersion(w io.Writer, p platform.Profile, graalHome string) {
	fmt.Fprintf(w, "launcher-builder version %s (commit: %s, built: %s)\n", Version, Commit, Date)
	fmt.Fprintf(w, "template:   %s (embedded)\n", cgen.DefaultTemplate)
	fmt.Fprintf(w, "platform:   %s\n", p)
	fmt.Fprintf(w, "compilers:  %v\n", toolchain.DefaultCandidates(p, graalHome))
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
