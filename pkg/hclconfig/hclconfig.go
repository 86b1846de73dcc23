// Package hclconfig loads launcher build configuration from HCL files.
//
// A configuration file looks like:
//
//	image_directory = "build/native"
//	image_name      = "libapp"
//	linker_args     = ["-lm"]
//	timeout         = 120
//
//	launcher "app" {
//	  main_class = "com.example.Main"
//	}
//
//	launcher "app-gui" {
//	  main_class = "com.example.Gui"
//	  console    = false
//	}
//
// Expressions may read environment variables through the env object, for
// example image_name = "lib${env.APP_NAME}".
package hclconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"native-launchers/go/pkg/launchers"
)

// DefaultFile is the configuration file looked up when none is given.
const DefaultFile = "launchers.hcl"

// Config is a decoded configuration file.
type Config struct {
	Settings  launchers.BuildSettings
	Launchers []launchers.LauncherSpec
}

type hclFile struct {
	ImageDirectory *string        `hcl:"image_directory,optional"`
	ImageName      *string        `hcl:"image_name,optional"`
	Compiler       []string       `hcl:"compiler,optional"`
	CompilerArgs   []string       `hcl:"compiler_args,optional"`
	LinkerArgs     []string       `hcl:"linker_args,optional"`
	Debug          *bool          `hcl:"debug,optional"`
	Timeout        *int           `hcl:"timeout,optional"`
	Template       *string        `hcl:"template,optional"`
	Launchers      []*hclLauncher `hcl:"launcher,block"`
}

type hclLauncher struct {
	Name           string  `hcl:"name,label"`
	MainClass      *string `hcl:"main_class,optional"`
	Console        *bool   `hcl:"console,optional"`
	ImageDirectory *string `hcl:"image_directory,optional"`
	ImageName      *string `hcl:"image_name,optional"`
}

// Load reads and decodes the file at path. Relative image directories and
// template paths are resolved against the directory holding the file.
func Load(path string) (*Config, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	cfg, err := Parse(src, path)
	if err != nil {
		return nil, err
	}
	base := filepath.Dir(path)
	cfg.Settings.ImageDirectory = relativeTo(base, cfg.Settings.ImageDirectory)
	cfg.Settings.Template = relativeTo(base, cfg.Settings.Template)
	for i := range cfg.Launchers {
		cfg.Launchers[i].ImageDirectory = relativeTo(base, cfg.Launchers[i].ImageDirectory)
	}
	return cfg, nil
}

// Parse decodes configuration source. filename is only used in diagnostics.
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}

	var raw hclFile
	diags = gohcl.DecodeBody(file.Body, EvalContext(os.Environ()), &raw)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}
	return raw.toConfig(filename)
}

// EvalContext exposes the given KEY=VALUE environment as the env object.
func EvalContext(environ []string) *hcl.EvalContext {
	env := make(map[string]cty.Value, len(environ))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		env[k] = cty.StringVal(v)
	}
	return &hcl.EvalContext{Variables: map[string]cty.Value{"env": cty.ObjectVal(env)}}
}

func (f *hclFile) toConfig(filename string) (*Config, error) {
	s := launchers.BuildSettings{
		ImageDirectory: deref(f.ImageDirectory),
		ImageName:      deref(f.ImageName),
		Compiler:       f.Compiler,
		CompilerArgs:   f.CompilerArgs,
		LinkerArgs:     f.LinkerArgs,
		Debug:          f.Debug != nil && *f.Debug,
		TimeoutSeconds: launchers.DefaultTimeoutSeconds,
		Template:       deref(f.Template),
	}
	if f.Timeout != nil {
		s.TimeoutSeconds = *f.Timeout
	}

	seen := make(map[string]bool, len(f.Launchers))
	specs := make([]launchers.LauncherSpec, 0, len(f.Launchers))
	for _, l := range f.Launchers {
		if seen[l.Name] {
			return nil, fmt.Errorf("%s: launcher %q is declared more than once", filename, l.Name)
		}
		seen[l.Name] = true
		specs = append(specs, launchers.LauncherSpec{
			Name:           l.Name,
			MainClass:      deref(l.MainClass),
			ImageDirectory: deref(l.ImageDirectory),
			ImageName:      deref(l.ImageName),
			Console:        l.Console == nil || *l.Console,
		})
	}
	return &Config{Settings: s, Launchers: specs}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func relativeTo(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
