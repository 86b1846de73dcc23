// Package cgen renders the C source of a launcher.
package cgen

import (
	"embed"
	"fmt"
	"os"
	"strings"
)

// Placeholders substituted by Render.
const (
	ImageNamePlaceholder  = "{{IMAGE_NAME}}"
	MethodNamePlaceholder = "{{METHOD_NAME}}"
)

// DefaultTemplate is the name of the embedded dynamic-loading template.
const DefaultTemplate = "main-dynamic.c"

//go:embed templates/*.c
var templates embed.FS

// Bindings are the values substituted into a template.
type Bindings struct {
	ImageName  string
	MethodName string
}

// LoadEmbedded returns a template compiled into the binary.
func LoadEmbedded(name string) (string, error) {
	data, err := templates.ReadFile("templates/" + name)
	if err != nil {
		return "", fmt.Errorf("template resource not found: %s: %w", name, err)
	}
	return string(data), nil
}

// Load returns the template at path, or the embedded default if path is empty.
func Load(path string) (string, error) {
	if path == "" {
		return LoadEmbedded(DefaultTemplate)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read template %s: %w", path, err)
	}
	return string(data), nil
}

// Render replaces every occurrence of both placeholders. Nothing else in the
// template changes; substituted values are not rescanned.
func Render(template string, b Bindings) string {
	return strings.NewReplacer(
		ImageNamePlaceholder, b.ImageName,
		MethodNamePlaceholder, b.MethodName,
	).Replace(template)
}

// ConventionalName derives the exported entry-point symbol for a launcher
// identifier: "run_" + identifier + "_main", with every character outside
// [A-Za-z0-9_] replaced by '_'.
func ConventionalName(identifier string) string {
	var sb strings.Builder
	sb.Grow(len(identifier) + 9)
	sb.WriteString("run_")
	for _, r := range identifier {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	sb.WriteString("_main")
	return sb.String()
}

// SourceFileName is the generated C file name for a launcher.
func SourceFileName(launcherName string) string {
	return launcherName + ".c"
}
