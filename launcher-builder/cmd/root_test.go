package cmd

import (
	"bytes"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"native-launchers/go/pkg/logbowl"
	"native-launchers/go/pkg/platform"
)

func TestLoggerOptionsFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv(logbowl.LogLevelEnvVar, "debug")
	t.Setenv(logbowl.LogFormatEnvVar, "text")

	c := &cobra.Command{}
	c.Flags().StringVar(&logLevel, "log-level", "info", "")
	c.Flags().StringVar(&logFormat, "log-format", logbowl.FormatEmoji, "")

	o := loggerOptions(c)
	assert.Equal(t, hclog.Debug, o.Level)
	assert.Equal(t, logbowl.FormatText, o.Format)

	require.NoError(t, c.Flags().Set("log-level", "warn"))
	require.NoError(t, c.Flags().Set("log-format", "json"))
	o = loggerOptions(c)
	assert.Equal(t, hclog.Warn, o.Level)
	assert.Equal(t, logbowl.FormatJSON, o.Format)
}

func TestPrintVersion(t *testing.T) {
	var buf bytes.Buffer

	printVersion(&buf, platform.Windows, "")

	out := buf.String()
	assert.Contains(t, out, "launcher-builder version dev")
	assert.Contains(t, out, "template:   main-dynamic.c (embedded)")
	assert.Contains(t, out, "platform:   windows")
	assert.Contains(t, out, "[cl.exe zig.exe gcc.exe clang.exe]")
}
