// Package toolchain finds a host C compiler and assembles its command line.
package toolchain

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"native-launchers/go/pkg/logbowl"
	"native-launchers/go/pkg/platform"
)

// GraalHomeEnvVar points at a GraalVM installation whose LLVM toolchain ships a clang.
const GraalHomeEnvVar = "GRAALVM_HOME"

// CompilerNotFoundError is returned when no candidate exists in any PATH directory.
type CompilerNotFoundError struct {
	Candidates []string
}

func (e *CompilerNotFoundError) Error() string {
	return fmt.Sprintf("none of the supported compilers were found on your system: [%s]", strings.Join(e.Candidates, ", "))
}

// Match is the first candidate found by SearchPath.
type Match struct {
	Name string
	Path string
}

// Probe reports whether path is an executable file.
type Probe func(path string) bool

// SearchPath splits pathEnv on separator and returns the first candidate that
// probe accepts. Directories are walked in order and every candidate is tried
// in one directory before the next directory is considered. Absolute
// candidates are probed as-is, so they are found even when PATH is empty.
// Empty PATH entries are ignored.
func SearchPath(candidates []string, pathEnv string, separator rune, probe Probe) (Match, error) {
	var dirs []string
	for _, dir := range strings.Split(pathEnv, string(separator)) {
		if dir != "" {
			dirs = append(dirs, dir)
		}
	}
	if len(dirs) == 0 {
		dirs = []string{""}
	}
	for _, dir := range dirs {
		for _, name := range candidates {
			if name == "" {
				continue
			}
			path := name
			if !filepath.IsAbs(name) {
				if dir == "" {
					continue
				}
				path = filepath.Join(dir, name)
			}
			if probe(path) {
				return Match{Name: name, Path: path}, nil
			}
		}
	}
	return Match{}, &CompilerNotFoundError{Candidates: candidates}
}

// IsExecutable returns a Probe that checks the file system. On Windows any
// regular file counts; elsewhere at least one execute bit must be set.
func IsExecutable(p platform.Profile) Probe {
	return func(path string) bool {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			return false
		}
		if p.IsWindows {
			return true
		}
		return info.Mode().Perm()&0o111 != 0
	}
}

// DefaultCandidates lists the compilers to look for, most preferred first.
// graalHome may be empty.
func DefaultCandidates(p platform.Profile, graalHome string) []string {
	if p.IsWindows {
		return []string{"cl.exe", "zig.exe", "gcc.exe", "clang.exe"}
	}
	candidates := []string{"cc", "gcc", "clang", "zig"}
	if graalHome != "" {
		if abs, err := filepath.Abs(filepath.Join(graalHome, "languages", "llvm", "native", "bin", "clang")); err == nil {
			candidates = append(candidates, abs)
		}
	}
	return candidates
}

// Compiler is a resolved compiler driver.
type Compiler struct {
	// Path is where the driver was found.
	Path string
	// Command holds the leading argv tokens, e.g. ["gcc"] or ["zig", "cc"].
	Command []string
}

// CompilerCommand returns the leading tokens for a compiler name. zig is a
// multi-tool and needs its cc subcommand to act as a C compiler driver.
func CompilerCommand(name string) []string {
	if strings.HasPrefix(filepath.Base(name), "zig") {
		return []string{name, "cc"}
	}
	return []string{name}
}

// Resolver looks up a compiler using the host environment.
type Resolver struct {
	Platform platform.Profile
	Getenv   func(string) string
	Probe    Probe
	Log      logbowl.Logger
}

// NewResolver returns a Resolver backed by the process environment and file system.
func NewResolver(p platform.Profile, log logbowl.Logger) *Resolver {
	return &Resolver{Platform: p, Getenv: os.Getenv, Probe: IsExecutable(p), Log: log}
}

// Candidates returns the compiler names this resolver will search for.
func (r *Resolver) Candidates() []string {
	return DefaultCandidates(r.Platform, r.Getenv(GraalHomeEnvVar))
}

// Resolve finds the first available compiler on PATH.
func (r *Resolver) Resolve() (Compiler, error) {
	candidates := r.Candidates()
	r.Log.Debug("toolchain", "resolve", "progress", "Searching PATH for a C compiler", "candidates", candidates)
	match, err := SearchPath(candidates, r.Getenv("PATH"), r.Platform.PathListSeparator(), r.Probe)
	if err != nil {
		r.Log.Error("toolchain", "resolve", "notfound", "No supported compiler found", "candidates", candidates)
		return Compiler{}, err
	}
	r.Log.Info("toolchain", "resolve", "success", "Found executable: "+match.Path)
	return Compiler{Path: match.Path, Command: CompilerCommand(match.Name)}, nil
}
