package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"native-launchers/go/pkg/hclconfig"
	"native-launchers/go/pkg/launchers"
)

// buildFlags are the flags shared by every command that works on launchers.
// Values given on the command line take precedence over the config file.
type buildFlags struct {
	configFile     string
	imageDirectory string
	imageName      string
	compiler       string
	compilerArgs   []string
	linkerArgs     []string
	debug          bool
	timeout        int
	template       string
	launchers      []string
	noConsole      []string
	only           []string
}

var flags buildFlags

func addBuildFlags(c *cobra.Command) {
	f := c.Flags()
	f.StringVarP(&flags.configFile, "config", "c", "", "HCL config file (default \""+hclconfig.DefaultFile+"\" when present).")
	f.StringVar(&flags.imageDirectory, "image-dir", "", "Directory holding the native image; launchers are written next to it.")
	f.StringVar(&flags.imageName, "image-name", "", "Base name of the native image shared library.")
	f.StringVar(&flags.compiler, "compiler", "", "Compiler command to use instead of searching PATH, e.g. \"zig cc\".")
	f.StringArrayVar(&flags.compilerArgs, "compiler-arg", nil, "Extra argument placed before -o (repeatable).")
	f.StringArrayVar(&flags.linkerArgs, "linker-arg", nil, "Extra argument placed at the end of the command (repeatable).")
	f.BoolVar(&flags.debug, "debug", false, "Compile launchers with -DDEBUG.")
	f.IntVar(&flags.timeout, "timeout", launchers.DefaultTimeoutSeconds, "Seconds each compiler or post-processor run may take.")
	f.StringVar(&flags.template, "template", "", "C template file to use instead of the built-in one.")
	f.StringArrayVar(&flags.launchers, "launcher", nil, "Ad-hoc launcher as NAME or NAME=MAIN_CLASS (repeatable).")
	f.StringArrayVar(&flags.noConsole, "no-console", nil, "Launcher built without a console window on Windows (repeatable).")
	f.StringArrayVar(&flags.only, "only", nil, "Only handle launchers whose name matches this glob (repeatable).")
}

// loadConfig reads the explicitly named config file, or the default one if it
// exists in the working directory.
func (f *buildFlags) loadConfig() (*hclconfig.Config, error) {
	path := f.configFile
	if path == "" {
		if _, err := os.Stat(hclconfig.DefaultFile); errors.Is(err, fs.ErrNotExist) {
			return &hclconfig.Config{Settings: launchers.BuildSettings{TimeoutSeconds: launchers.DefaultTimeoutSeconds}}, nil
		}
		path = hclconfig.DefaultFile
	}
	log.Debug("config", "load", "progress", "Loading config file", "path", path)
	return hclconfig.Load(path)
}

// apply merges the flags that were set on the command line into cfg and
// returns the selected launchers.
func (f *buildFlags) apply(cfg *hclconfig.Config, changed func(name string) bool) ([]launchers.LauncherSpec, error) {
	s := &cfg.Settings
	if changed("image-dir") {
		s.ImageDirectory = f.imageDirectory
	}
	if changed("image-name") {
		s.ImageName = f.imageName
	}
	if changed("compiler") {
		s.Compiler = strings.Fields(f.compiler)
	}
	if changed("compiler-arg") {
		s.CompilerArgs = f.compilerArgs
	}
	if changed("linker-arg") {
		s.LinkerArgs = f.linkerArgs
	}
	if changed("debug") {
		s.Debug = f.debug
	}
	if changed("timeout") {
		s.TimeoutSeconds = f.timeout
	}
	if changed("template") {
		s.Template = f.template
	}

	specs := cfg.Launchers
	for _, l := range f.launchers {
		name, mainClass, _ := strings.Cut(l, "=")
		specs = append(specs, launchers.LauncherSpec{Name: name, MainClass: mainClass, Console: true})
	}
	for _, name := range f.noConsole {
		found := false
		for i := range specs {
			if specs[i].Name == name {
				specs[i].Console = false
				found = true
			}
		}
		if !found {
			return nil, fmt.Errorf("--no-console names unknown launcher %q", name)
		}
	}
	return launchers.Select(specs, f.only)
}

// resolve is the config loading and flag merging every launcher command starts with.
func (f *buildFlags) resolve(c *cobra.Command) (launchers.BuildSettings, []launchers.LauncherSpec, error) {
	cfg, err := f.loadConfig()
	if err != nil {
		return launchers.BuildSettings{}, nil, err
	}
	specs, err := f.apply(cfg, c.Flags().Changed)
	if err != nil {
		return launchers.BuildSettings{}, nil, err
	}
	log.Debug("launcher", "select", "progress", "Selected launchers", "count", len(specs))
	return cfg.Settings, specs, nil
}
