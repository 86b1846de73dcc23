package launchers

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"native-launchers/go/pkg/logbowl"
	"native-launchers/go/pkg/platform"
	"native-launchers/go/pkg/procrun"
	"native-launchers/go/pkg/toolchain"
)

// recordingRunner records every invocation and replays queued outcomes.
// Once the queue is empty every run succeeds.
type recordingRunner struct {
	calls    []procrun.Invocation
	timeouts []time.Duration
	outcomes []procrun.Outcome
}

func (r *recordingRunner) Run(inv procrun.Invocation, timeout time.Duration) procrun.Outcome {
	r.calls = append(r.calls, inv)
	r.timeouts = append(r.timeouts, timeout)
	if len(r.outcomes) == 0 {
		return procrun.Success{}
	}
	o := r.outcomes[0]
	r.outcomes = r.outcomes[1:]
	return o
}

func (r *recordingRunner) argvs() [][]string {
	out := make([][]string, 0, len(r.calls))
	for _, c := range r.calls {
		out = append(out, c.Argv)
	}
	return out
}

// onPath returns a resolver that sees exactly the named executables on PATH.
func onPath(p platform.Profile, names ...string) *toolchain.Resolver {
	present := make(map[string]bool, len(names))
	for _, n := range names {
		present[n] = true
	}
	env := map[string]string{"PATH": "/opt/bin"}
	if p.IsWindows {
		env["PATH"] = `C:\mingw\bin`
	}
	return &toolchain.Resolver{
		Platform: p,
		Getenv:   func(k string) string { return env[k] },
		Probe:    func(path string) bool { return present[filepath.Base(path)] },
		Log:      logbowl.Discard(),
	}
}

func newTestOrchestrator(t *testing.T, p platform.Profile, resolver CompilerResolver) (*Orchestrator, *recordingRunner) {
	t.Helper()
	runner := &recordingRunner{}
	return &Orchestrator{
		Settings: BuildSettings{
			ImageDirectory: t.TempDir(),
			ImageName:      "libapp",
			TimeoutSeconds: DefaultTimeoutSeconds,
		},
		Platform: p,
		Resolver: resolver,
		Runner:   runner,
		Log:      logbowl.Discard(),
	}, runner
}

func TestBuildWindowsNonConsoleLauncher(t *testing.T) {
	o, runner := newTestOrchestrator(t, platform.Windows, onPath(platform.Windows, "gcc.exe"))

	artifacts, err := o.Build([]LauncherSpec{{Name: "App1", Console: false}})

	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"gcc.exe", "-o", "App1.exe", "App1.c"},
		{"EditBin.exe", "/Subsystem:windows", "App1.exe"},
	}, runner.argvs())
	for _, c := range runner.calls {
		assert.Equal(t, o.Settings.ImageDirectory, c.Dir)
	}
	require.Len(t, artifacts, 1)
	assert.True(t, artifacts[0].ConsoleHidden)
	assert.Equal(t, filepath.Join(o.Settings.ImageDirectory, "App1.exe"), artifacts[0].OutputPath)

	src, err := os.ReadFile(filepath.Join(o.Settings.ImageDirectory, "App1.c"))
	require.NoError(t, err)
	assert.Contains(t, string(src), `"run_App1_main"`)
	assert.Contains(t, string(src), `"libapp"`)
}

func TestBuildUnixLinksLibdl(t *testing.T) {
	o, runner := newTestOrchestrator(t, platform.Unix, onPath(platform.Unix, "clang"))

	artifacts, err := o.Build([]LauncherSpec{{Name: "App1", Console: false}})

	require.NoError(t, err)
	assert.Equal(t, [][]string{{"clang", "-o", "App1", "App1.c", "-ldl"}}, runner.argvs())
	require.Len(t, artifacts, 1)
	assert.False(t, artifacts[0].ConsoleHidden)
	assert.FileExists(t, filepath.Join(o.Settings.ImageDirectory, "App1.c"))
}

func TestBuildConsoleLauncherIsNotPatched(t *testing.T) {
	o, runner := newTestOrchestrator(t, platform.Windows, onPath(platform.Windows, "cl.exe"))

	_, err := o.Build([]LauncherSpec{{Name: "Tool", Console: true}})

	require.NoError(t, err)
	assert.Equal(t, [][]string{{"cl.exe", "-o", "Tool.exe", "Tool.c"}}, runner.argvs())
}

func TestBuildZigGetsCcSubcommand(t *testing.T) {
	o, runner := newTestOrchestrator(t, platform.Unix, onPath(platform.Unix, "zig"))

	_, err := o.Build([]LauncherSpec{{Name: "App1", Console: true}})

	require.NoError(t, err)
	assert.Equal(t, [][]string{{"zig", "cc", "-o", "App1", "App1.c", "-ldl"}}, runner.argvs())
}

func TestBuildPassesSettingsThrough(t *testing.T) {
	o, runner := newTestOrchestrator(t, platform.Unix, onPath(platform.Unix, "cc"))
	o.Settings.CompilerArgs = []string{"-O2"}
	o.Settings.LinkerArgs = []string{"-lm"}
	o.Settings.Debug = true
	o.Settings.TimeoutSeconds = 7

	_, err := o.Build([]LauncherSpec{{Name: "App1", Console: true}})

	require.NoError(t, err)
	assert.Equal(t, [][]string{{"cc", "-O2", "-o", "App1", "App1.c", "-DDEBUG", "-ldl", "-lm"}}, runner.argvs())
	assert.Equal(t, []time.Duration{7 * time.Second}, runner.timeouts)
}

func TestBuildCompilerOverrideSkipsResolution(t *testing.T) {
	o, runner := newTestOrchestrator(t, platform.Unix, onPath(platform.Unix))
	o.Settings.Compiler = []string{"/usr/local/bin/mycc", "--target=x86_64"}

	_, err := o.Build([]LauncherSpec{{Name: "App1", Console: true}})

	require.NoError(t, err)
	assert.Equal(t, [][]string{{"/usr/local/bin/mycc", "--target=x86_64", "-o", "App1", "App1.c", "-ldl"}}, runner.argvs())
}

func TestBuildLauncherOverridesImageLocation(t *testing.T) {
	o, runner := newTestOrchestrator(t, platform.Unix, onPath(platform.Unix, "cc"))
	other := t.TempDir()

	artifacts, err := o.Build([]LauncherSpec{{Name: "cli", MainClass: "com.example.Main", ImageDirectory: other, ImageName: "libother", Console: true}})

	require.NoError(t, err)
	require.Len(t, runner.calls, 1)
	assert.Equal(t, other, runner.calls[0].Dir)
	assert.Equal(t, filepath.Join(other, "cli"), artifacts[0].OutputPath)

	src, err := os.ReadFile(filepath.Join(other, "cli.c"))
	require.NoError(t, err)
	assert.Contains(t, string(src), `"run_com_example_Main_main"`)
	assert.Contains(t, string(src), `"libother"`)
	assert.NoFileExists(t, filepath.Join(o.Settings.ImageDirectory, "cli.c"))
}

func TestBuildStopsAtFirstFailure(t *testing.T) {
	o, runner := newTestOrchestrator(t, platform.Unix, onPath(platform.Unix, "cc"))
	runner.outcomes = []procrun.Outcome{procrun.NonZeroExit{Code: 1}}

	artifacts, err := o.Build([]LauncherSpec{{Name: "first", Console: true}, {Name: "second", Console: true}})

	require.Error(t, err)
	assert.Nil(t, artifacts)
	assert.Equal(t, ProcessNonZeroExit, KindOf(err))
	assert.Len(t, runner.calls, 1)
	assert.NoFileExists(t, filepath.Join(o.Settings.ImageDirectory, "second.c"))

	var be *BuildError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, "first", be.Launcher)
	assert.Equal(t, 1, be.ExitCode)
	assert.Equal(t, "cc -o first first.c -ldl", be.Command)
}

func TestBuildProcessFailuresMapToKinds(t *testing.T) {
	cause := errors.New("exec: not found")
	cases := []struct {
		name    string
		outcome procrun.Outcome
		kind    ErrorKind
	}{
		{"non-zero exit", procrun.NonZeroExit{Code: 2}, ProcessNonZeroExit},
		{"timeout", procrun.TimedOut{After: time.Minute}, ProcessTimeout},
		{"launch failure", procrun.LaunchFailed{Cause: cause}, ProcessLaunchFailure},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o, runner := newTestOrchestrator(t, platform.Unix, onPath(platform.Unix, "gcc"))
			runner.outcomes = []procrun.Outcome{tc.outcome}

			_, err := o.Build([]LauncherSpec{{Name: "App1", Console: true}})

			require.Error(t, err)
			assert.Equal(t, tc.kind, KindOf(err))
			assert.Contains(t, err.Error(), "gcc -o App1 App1.c -ldl")
		})
	}

	t.Run("launch failure keeps cause", func(t *testing.T) {
		o, runner := newTestOrchestrator(t, platform.Unix, onPath(platform.Unix, "gcc"))
		runner.outcomes = []procrun.Outcome{procrun.LaunchFailed{Cause: cause}}

		_, err := o.Build([]LauncherSpec{{Name: "App1", Console: true}})
		assert.ErrorIs(t, err, cause)
	})
}

func TestBuildPostProcessFailureIsFatal(t *testing.T) {
	o, runner := newTestOrchestrator(t, platform.Windows, onPath(platform.Windows, "gcc.exe"))
	runner.outcomes = []procrun.Outcome{procrun.Success{}, procrun.NonZeroExit{Code: 1}}

	_, err := o.Build([]LauncherSpec{{Name: "App1"}, {Name: "App2"}})

	require.Error(t, err)
	assert.Equal(t, ProcessNonZeroExit, KindOf(err))
	assert.Contains(t, err.Error(), "EditBin.exe /Subsystem:windows App1.exe")
	assert.Len(t, runner.calls, 2)
}

func TestBuildCompilerNotFound(t *testing.T) {
	o, runner := newTestOrchestrator(t, platform.Windows, onPath(platform.Windows))

	_, err := o.Build([]LauncherSpec{{Name: "App1", Console: true}})

	require.Error(t, err)
	assert.Equal(t, CompilerNotFound, KindOf(err))
	assert.Empty(t, runner.calls)

	var notFound *toolchain.CompilerNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, []string{"cl.exe", "zig.exe", "gcc.exe", "clang.exe"}, notFound.Candidates)
}

func TestBuildTemplateFailureHappensBeforeAnyLauncher(t *testing.T) {
	o, runner := newTestOrchestrator(t, platform.Unix, onPath(platform.Unix, "cc"))
	o.Settings.Template = filepath.Join(t.TempDir(), "missing.c")

	_, err := o.Build([]LauncherSpec{{Name: "App1", Console: true}})

	require.Error(t, err)
	assert.Equal(t, TemplateLoadFailure, KindOf(err))
	assert.Empty(t, runner.calls)
	assert.NoFileExists(t, filepath.Join(o.Settings.ImageDirectory, "App1.c"))
}

func TestBuildCustomTemplate(t *testing.T) {
	o, _ := newTestOrchestrator(t, platform.Unix, onPath(platform.Unix, "cc"))
	tmpl := filepath.Join(t.TempDir(), "custom.c")
	require.NoError(t, os.WriteFile(tmpl, []byte("// {{IMAGE_NAME}} {{METHOD_NAME}}\n"), 0644))
	o.Settings.Template = tmpl

	_, err := o.Build([]LauncherSpec{{Name: "App1", Console: true}})
	require.NoError(t, err)

	src, err := os.ReadFile(filepath.Join(o.Settings.ImageDirectory, "App1.c"))
	require.NoError(t, err)
	assert.Equal(t, "// libapp run_App1_main\n", string(src))
}

func TestBuildFileSystemFailure(t *testing.T) {
	o, runner := newTestOrchestrator(t, platform.Unix, onPath(platform.Unix, "cc"))
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))
	o.Settings.ImageDirectory = filepath.Join(blocker, "image")

	_, err := o.Build([]LauncherSpec{{Name: "App1", Console: true}})

	require.Error(t, err)
	assert.Equal(t, FileSystemFailure, KindOf(err))
	assert.Empty(t, runner.calls)
}

func TestBuildInvalidConfiguration(t *testing.T) {
	o, runner := newTestOrchestrator(t, platform.Unix, onPath(platform.Unix, "cc"))
	o.Settings.TimeoutSeconds = 0

	_, err := o.Build([]LauncherSpec{{Name: "App1"}})

	require.Error(t, err)
	assert.Equal(t, InvalidConfiguration, KindOf(err))
	assert.Empty(t, runner.calls)
}

func TestBuildNoLaunchers(t *testing.T) {
	o, runner := newTestOrchestrator(t, platform.Unix, onPath(platform.Unix))

	artifacts, err := o.Build(nil)

	require.NoError(t, err)
	assert.Empty(t, artifacts)
	assert.Empty(t, runner.calls)
}

func TestGenerateWritesSourcesOnly(t *testing.T) {
	o, runner := newTestOrchestrator(t, platform.Windows, onPath(platform.Windows))

	plans, err := o.Generate([]LauncherSpec{{Name: "a"}, {Name: "b", MainClass: "pkg.B"}})

	require.NoError(t, err)
	assert.Empty(t, runner.calls)
	require.Len(t, plans, 2)
	assert.Equal(t, "a.exe", plans[0].OutputName)
	assert.Equal(t, "run_pkg_B_main", plans[1].MethodName)
	assert.FileExists(t, plans[0].SourcePath())
	assert.FileExists(t, plans[1].SourcePath())
}

func TestCompileArgsPreview(t *testing.T) {
	o, runner := newTestOrchestrator(t, platform.Unix, onPath(platform.Unix, "gcc"))

	argv, err := o.CompileArgs(o.Plan(LauncherSpec{Name: "App1"}))

	require.NoError(t, err)
	assert.Equal(t, []string{"gcc", "-o", "App1", "App1.c", "-ldl"}, argv)
	assert.Empty(t, runner.calls)
}

func TestBuildFailureIsNotLogged(t *testing.T) {
	o, runner := newTestOrchestrator(t, platform.Unix, onPath(platform.Unix, "cc"))
	var buf bytes.Buffer
	o.Log = logbowl.CreateWithOptions(logbowl.Options{Name: "test", Level: hclog.Error, Format: logbowl.FormatText, Output: &buf})
	runner.outcomes = []procrun.Outcome{procrun.NonZeroExit{Code: 1}}

	_, err := o.Build([]LauncherSpec{{Name: "App1", Console: true}})

	require.Error(t, err)
	assert.Empty(t, buf.String())
}

func TestZeroValueOrchestrator(t *testing.T) {
	var o Orchestrator

	assert.NotPanics(t, func() {
		_, err := o.Build([]LauncherSpec{{Name: "App1"}})
		assert.Equal(t, InvalidConfiguration, KindOf(err))
	})
}

func TestKindOfForeignError(t *testing.T) {
	assert.Equal(t, ErrorKind(0), KindOf(errors.New("plain")))
	assert.Equal(t, ErrorKind(0), KindOf(nil))
}

func TestBuildErrorMessage(t *testing.T) {
	err := &BuildError{Kind: ProcessNonZeroExit, Launcher: "App1", Command: "cc -o App1 App1.c", ExitCode: 3}
	assert.Equal(t, "launcher App1: process exited with non-zero status [cc -o App1 App1.c] (exit status 3)", err.Error())

	err = &BuildError{Kind: TemplateLoadFailure, Err: errors.New("boom")}
	assert.Equal(t, "template load failure: boom", err.Error())
}
