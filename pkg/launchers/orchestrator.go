// Package launchers drives the generation and compilation of native launchers.
package launchers

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"native-launchers/go/pkg/cgen"
	"native-launchers/go/pkg/logbowl"
	"native-launchers/go/pkg/platform"
	"native-launchers/go/pkg/procrun"
	"native-launchers/go/pkg/toolchain"
)

// ProcessRunner executes one external command.
type ProcessRunner interface {
	Run(inv procrun.Invocation, timeout time.Duration) procrun.Outcome
}

// CompilerResolver finds the compiler used when no explicit command is configured.
type CompilerResolver interface {
	Resolve() (toolchain.Compiler, error)
}

// Plan is the resolved layout of one launcher build.
type Plan struct {
	Launcher   LauncherSpec
	Dir        string
	ImageName  string
	MethodName string
	OutputName string
	SourceFile string
}

// SourcePath is where the generated C file is written.
func (p Plan) SourcePath() string { return filepath.Join(p.Dir, p.SourceFile) }

// OutputPath is where the compiler writes the launcher executable.
func (p Plan) OutputPath() string { return filepath.Join(p.Dir, p.OutputName) }

// Artifact reports what was produced for one launcher.
type Artifact struct {
	Launcher      string
	SourcePath    string
	OutputPath    string
	Argv          []string
	ConsoleHidden bool
}

// Orchestrator builds launchers one at a time and stops at the first failure.
type Orchestrator struct {
	Settings BuildSettings
	Platform platform.Profile
	Resolver CompilerResolver
	Runner   ProcessRunner
	Log      logbowl.Logger
}

// NewOrchestrator wires an Orchestrator to the host toolchain and process runner.
func NewOrchestrator(settings BuildSettings, p platform.Profile, log logbowl.Logger) *Orchestrator {
	return &Orchestrator{
		Settings: settings,
		Platform: p,
		Resolver: toolchain.NewResolver(p, log),
		Runner:   procrun.NewRunner(log),
		Log:      log,
	}
}

// Plan resolves the effective directory and file names of a launcher.
func (o *Orchestrator) Plan(l LauncherSpec) Plan {
	dir := l.ImageDirectory
	if dir == "" {
		dir = o.Settings.ImageDirectory
	}
	imageName := l.ImageName
	if imageName == "" {
		imageName = o.Settings.ImageName
	}
	return Plan{
		Launcher:   l,
		Dir:        dir,
		ImageName:  imageName,
		MethodName: cgen.ConventionalName(l.Identifier()),
		OutputName: o.Platform.ExecutableName(l.Name),
		SourceFile: cgen.SourceFileName(l.Name),
	}
}

// CompileArgs returns the compiler argv for a plan, resolving the compiler
// unless the settings name one explicitly.
func (o *Orchestrator) CompileArgs(p Plan) ([]string, error) {
	req := toolchain.CompileRequest{
		Override:     o.Settings.Compiler,
		CompilerArgs: o.Settings.CompilerArgs,
		LinkerArgs:   o.Settings.LinkerArgs,
		OutputName:   p.OutputName,
		SourceFile:   p.SourceFile,
		Debug:        o.Settings.Debug,
		Platform:     o.Platform,
	}
	if len(req.Override) == 0 {
		compiler, err := o.Resolver.Resolve()
		if err != nil {
			return nil, &BuildError{Kind: CompilerNotFound, Launcher: p.Launcher.Name, Err: err}
		}
		req.Compiler = compiler
	}
	return toolchain.BuildCompileArgs(req), nil
}

// Generate renders and writes the C sources of all launchers without compiling them.
func (o *Orchestrator) Generate(specs []LauncherSpec) ([]Plan, error) {
	log, tmpl, err := o.begin(specs)
	if err != nil {
		return nil, err
	}
	plans := make([]Plan, 0, len(specs))
	for _, l := range specs {
		p := o.Plan(l)
		if err := o.writeSource(log, tmpl, p); err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, nil
}

// Build generates, compiles and, where needed, post-processes every launcher.
// Errors are returned, not logged.
func (o *Orchestrator) Build(specs []LauncherSpec) ([]Artifact, error) {
	log, tmpl, err := o.begin(specs)
	if err != nil {
		return nil, err
	}
	artifacts := make([]Artifact, 0, len(specs))
	for _, l := range specs {
		a, err := o.buildOne(log, tmpl, l)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, a)
	}
	log.Info("builder", "finish", "success", "All launchers built", "count", len(artifacts))
	return artifacts, nil
}

// begin validates the run and loads the template before any launcher is touched.
func (o *Orchestrator) begin(specs []LauncherSpec) (logbowl.Logger, string, error) {
	log := o.Log.With("run", uuid.NewString())
	if err := o.Settings.Validate(specs); err != nil {
		return log, "", &BuildError{Kind: InvalidConfiguration, Err: err}
	}
	tmpl, err := cgen.Load(o.Settings.Template)
	if err != nil {
		return log, "", &BuildError{Kind: TemplateLoadFailure, Err: err}
	}
	log.Debug("builder", "start", "progress", "Starting launcher build", "launchers", len(specs), "platform", o.Platform.String())
	return log, tmpl, nil
}

func (o *Orchestrator) buildOne(log logbowl.Logger, tmpl string, l LauncherSpec) (Artifact, error) {
	p := o.Plan(l)
	if err := o.writeSource(log, tmpl, p); err != nil {
		return Artifact{}, err
	}

	argv, err := o.CompileArgs(p)
	if err != nil {
		return Artifact{}, err
	}
	if err := o.run(l.Name, procrun.Invocation{Dir: p.Dir, Argv: argv}); err != nil {
		return Artifact{}, err
	}
	a := Artifact{Launcher: l.Name, SourcePath: p.SourcePath(), OutputPath: p.OutputPath(), Argv: argv}

	// The template has no WinMain, so the console subsystem is patched out of
	// the finished executable instead.
	if !l.Console && o.Platform.IsWindows {
		log.Debug("builder", "patch", "progress", "Changing "+p.OutputName+" to a non-console app.")
		if err := o.run(l.Name, procrun.Invocation{Dir: p.Dir, Argv: toolchain.HideConsoleArgs(p.OutputName)}); err != nil {
			return Artifact{}, err
		}
		a.ConsoleHidden = true
	}
	log.Info("builder", "build", "success", "Launcher built", "launcher", l.Name, "output", a.OutputPath)
	return a, nil
}

func (o *Orchestrator) writeSource(log logbowl.Logger, tmpl string, p Plan) error {
	content := cgen.Render(tmpl, cgen.Bindings{ImageName: p.ImageName, MethodName: p.MethodName})
	if err := os.MkdirAll(p.Dir, 0755); err != nil {
		return &BuildError{Kind: FileSystemFailure, Launcher: p.Launcher.Name, Err: err}
	}
	path := p.SourcePath()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return &BuildError{Kind: FileSystemFailure, Launcher: p.Launcher.Name, Err: err}
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	log.Info("template", "generate", "success", "Generated C source file: "+path)
	return nil
}

func (o *Orchestrator) run(launcher string, inv procrun.Invocation) error {
	return outcomeError(launcher, inv, o.Runner.Run(inv, o.Settings.Timeout()))
}

func outcomeError(launcher string, inv procrun.Invocation, outcome procrun.Outcome) error {
	cmdline := inv.CommandLine()
	switch v := outcome.(type) {
	case procrun.Success:
		return nil
	case procrun.NonZeroExit:
		return &BuildError{Kind: ProcessNonZeroExit, Launcher: launcher, Command: cmdline, ExitCode: v.Code}
	case procrun.TimedOut:
		return &BuildError{Kind: ProcessTimeout, Launcher: launcher, Command: cmdline, Err: fmt.Errorf("no exit after %s", v.After)}
	case procrun.LaunchFailed:
		return &BuildError{Kind: ProcessLaunchFailure, Launcher: launcher, Command: cmdline, Err: v.Cause}
	}
	return &BuildError{Kind: ProcessLaunchFailure, Launcher: launcher, Command: cmdline, Err: fmt.Errorf("unexpected outcome %v", outcome)}
}
