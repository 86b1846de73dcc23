package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"native-launchers/go/pkg/launchers"
	"native-launchers/go/pkg/platform"
	"native-launchers/go/pkg/toolchain"
)

var toolchainCmd = &cobra.Command{
	Use:   "toolchain",
	Short: "Shows the compiler that would be used and the command line of each launcher.",
	Run: func(cmdCobra *cobra.Command, args []string) {
		settings, specs, err := flags.resolve(cmdCobra)
		if err != nil {
			log.Error("config", "load", "error", "Failed to load build settings", "error", err)
			os.Exit(1)
		}
		host := platform.Host()

		compiler := settings.Compiler
		if len(compiler) == 0 {
			resolver := toolchain.NewResolver(host, log)
			found, err := resolver.Resolve()
			if err != nil {
				log.Error("toolchain", "resolve", "notfound", "No compiler available", "error", err)
				os.Exit(1)
			}
			compiler = found.Command
			fmt.Printf("compiler: %s (%s)\n", strings.Join(compiler, " "), found.Path)
		} else {
			fmt.Printf("compiler: %s (configured)\n", strings.Join(compiler, " "))
		}
		fmt.Printf("platform: %s\n", host)

		o := launchers.NewOrchestrator(settings, host, log)
		o.Settings.Compiler = compiler
		for _, l := range specs {
			p := o.Plan(l)
			argv, err := o.CompileArgs(p)
			if err != nil {
				log.Error("toolchain", "resolve", "error", "Failed to build command line", "launcher", l.Name, "error", err)
				os.Exit(1)
			}
			fmt.Printf("%s: (in %s) %s\n", l.Name, p.Dir, strings.Join(argv, " "))
			if !l.Console && host.IsWindows {
				fmt.Printf("%s: (in %s) %s\n", l.Name, p.Dir, strings.Join(toolchain.HideConsoleArgs(p.OutputName), " "))
			}
		}
	},
}

func init() {
	addBuildFlags(toolchainCmd)
	rootCmd.AddCommand(toolchainCmd)
}
