package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"native-launchers/go/pkg/launchers"
	"native-launchers/go/pkg/platform"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Generates and compiles every configured launcher.",
	Run: func(cmdCobra *cobra.Command, args []string) {
		settings, specs, err := flags.resolve(cmdCobra)
		if err != nil {
			log.Error("config", "load", "error", "Failed to load build settings", "error", err)
			os.Exit(1)
		}
		if len(specs) == 0 {
			log.Warn("launcher", "select", "skip", "No launchers to build.")
			return
		}

		o := launchers.NewOrchestrator(settings, platform.Host(), log)
		artifacts, err := o.Build(specs)
		if err != nil {
			log.Error("builder", "build", "failure", "Build failed", "kind", launchers.KindOf(err).String(), "error", err)
			os.Exit(1)
		}
		for _, a := range artifacts {
			fmt.Println(a.OutputPath)
		}
	},
}

func init() {
	addBuildFlags(buildCmd)
	rootCmd.AddCommand(buildCmd)
}
