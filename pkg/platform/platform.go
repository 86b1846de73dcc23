// Package platform describes the host facts that change how launchers are built.
package platform

import "runtime"

// Profile is derived once from the host OS name and passed to every component
// that needs platform-conditional behavior.
//
// At most one of IsWindows and IsUnix is set. A profile with neither set is
// valid: it searches PATH with ':' and adds no linker flag.
type Profile struct {
	IsWindows bool
	IsUnix    bool
}

// Windows and Unix are the two fully supported profiles.
var (
	Windows = Profile{IsWindows: true}
	Unix    = Profile{IsUnix: true}
)

// FromGOOS derives a Profile from a GOOS value.
func FromGOOS(goos string) Profile {
	switch goos {
	case "windows":
		return Windows
	case "linux", "aix":
		return Unix
	}
	return Profile{}
}

// Host returns the Profile of the running process.
func Host() Profile {
	return FromGOOS(runtime.GOOS)
}

// PathListSeparator is the separator of PATH-like environment variables.
func (p Profile) PathListSeparator() rune {
	if p.IsWindows {
		return ';'
	}
	return ':'
}

// ExecutableSuffix is appended to compiled output names.
func (p Profile) ExecutableSuffix() string {
	if p.IsWindows {
		return ".exe"
	}
	return ""
}

// ExecutableName appends the platform executable suffix to name.
func (p Profile) ExecutableName(name string) string {
	return name + p.ExecutableSuffix()
}

func (p Profile) String() string {
	switch {
	case p.IsWindows:
		return "windows"
	case p.IsUnix:
		return "unix"
	}
	return "other"
}
