package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"native-launchers/go/pkg/launchers"
	"native-launchers/go/pkg/platform"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Writes the C source of every configured launcher without compiling it.",
	Run: func(cmdCobra *cobra.Command, args []string) {
		settings, specs, err := flags.resolve(cmdCobra)
		if err != nil {
			log.Error("config", "load", "error", "Failed to load build settings", "error", err)
			os.Exit(1)
		}

		o := launchers.NewOrchestrator(settings, platform.Host(), log)
		plans, err := o.Generate(specs)
		if err != nil {
			log.Error("template", "generate", "failure", "Source generation failed", "kind", launchers.KindOf(err).String(), "error", err)
			os.Exit(1)
		}
		for _, p := range plans {
			fmt.Println(p.SourcePath())
		}
	},
}

func init() {
	addBuildFlags(generateCmd)
	rootCmd.AddCommand(generateCmd)
}
