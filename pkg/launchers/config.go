package launchers

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultTimeoutSeconds bounds every compiler and post-processor run.
const DefaultTimeoutSeconds = 60

// LauncherSpec identifies one launcher to build.
type LauncherSpec struct {
	Name string
	// MainClass names the entry point inside the image. The launcher name is
	// used when it is empty.
	MainClass string
	// ImageDirectory and ImageName override the BuildSettings defaults when set.
	ImageDirectory string
	ImageName      string
	// Console keeps the console window on Windows.
	Console bool
}

// Identifier is the value the conventional entry-point name is derived from.
func (l LauncherSpec) Identifier() string {
	if l.MainClass != "" {
		return l.MainClass
	}
	return l.Name
}

// BuildSettings are the process-wide defaults of a build run.
type BuildSettings struct {
	ImageDirectory string
	ImageName      string
	// Compiler, when set, replaces compiler discovery entirely.
	Compiler       []string
	CompilerArgs   []string
	LinkerArgs     []string
	Debug          bool
	TimeoutSeconds int
	// Template is a C template file; empty means the embedded default.
	Template string
}

// Timeout converts TimeoutSeconds to a duration.
func (s BuildSettings) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// Validate checks the settings together with the launchers they apply to.
func (s BuildSettings) Validate(specs []LauncherSpec) error {
	if s.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeout must be a positive number of seconds, got %d", s.TimeoutSeconds)
	}
	seen := make(map[string]bool, len(specs))
	for _, l := range specs {
		if l.Name == "" {
			return fmt.Errorf("launcher without a name")
		}
		if filepath.Base(l.Name) != l.Name {
			return fmt.Errorf("launcher name %q must not contain a path", l.Name)
		}
		if seen[l.Name] {
			return fmt.Errorf("duplicate launcher %q", l.Name)
		}
		seen[l.Name] = true
		if s.ImageDirectory == "" && l.ImageDirectory == "" {
			return fmt.Errorf("launcher %q has no image directory", l.Name)
		}
		if s.ImageName == "" && l.ImageName == "" {
			return fmt.Errorf("launcher %q has no image name", l.Name)
		}
	}
	return nil
}

// Select keeps the launchers whose name matches any of the glob patterns.
// No patterns selects everything.
func Select(specs []LauncherSpec, patterns []string) ([]LauncherSpec, error) {
	if len(patterns) == 0 {
		return specs, nil
	}
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid launcher pattern %q", p)
		}
	}
	var selected []LauncherSpec
	for _, l := range specs {
		for _, p := range patterns {
			if ok, _ := doublestar.Match(p, l.Name); ok {
				selected = append(selected, l)
				break
			}
		}
	}
	return selected, nil
}
