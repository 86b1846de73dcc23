package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"native-launchers/go/pkg/logbowl"
)

var (
	log       logbowl.Logger
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "launcher-builder",
	Short: "Generates and compiles small native executables that start entry points of a native image.",
	Long: `launcher-builder writes a C launcher for every configured entry point of a
GraalVM native image shared library and compiles it with the first C compiler
found on PATH (or the one given with --compiler).

Settings are read from launchers.hcl when present; flags override them.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log = logbowl.CreateWithOptions(loggerOptions(cmd))
	},
}

// loggerOptions starts from LAUNCHERS_LOG_LEVEL/LAUNCHERS_LOG_FORMAT and lets
// --log-level and --log-format override them.
func loggerOptions(cmd *cobra.Command) logbowl.Options {
	o := logbowl.OptionsFromEnv("launcher-builder")
	if cmd.Flags().Changed("log-level") {
		o.Level = logbowl.ParseLevel(logLevel)
	}
	if cmd.Flags().Changed("log-format") {
		o.Format = logFormat
	}
	return o
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if log.Logger != nil {
			log.Error("system", "stop", "error", "Failed to execute command", "error", err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: trace, debug, info, warn or error (overrides "+logbowl.LogLevelEnvVar+").")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", logbowl.FormatEmoji, "Log format: emoji, text or json (overrides "+logbowl.LogFormatEnvVar+").")
}
