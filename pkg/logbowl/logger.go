package logbowl

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// Environment variable names
const (
	LogLevelEnvVar  = "LAUNCHERS_LOG_LEVEL"
	LogFormatEnvVar = "LAUNCHERS_LOG_FORMAT"
)

// Log formats
const (
	FormatEmoji = "emoji"
	FormatText  = "text"
	FormatJSON  = "json"
)

var domains = map[string]string{"system": "⚙️", "config": "🔩", "file": "📄", "template": "📝", "toolchain": "🧰", "process": "🏃", "builder": "🛠️", "launcher": "🚀", "archive": "📦", "env": "🌿", "test": "🧪", "default": "❓"}
var actions = map[string]string{"init": "🌱", "start": "🚀", "load": "💡", "parse": "🧩", "validate": "🛡️", "resolve": "🔍", "generate": "✨", "write": "📝", "read": "📖", "build": "🏗️", "execute": "▶️", "patch": "🩹", "pack": "📦", "verify": "🔍", "select": "🎯", "version": "🏷️", "finish": "🏁", "default": "⚙️"}
var statuses = map[string]string{"success": "✅", "failure": "❌", "error": "🔥", "warning": "⚠️", "info": "ℹ️", "debug": "🐞", "skip": "⏭️", "timeout": "⏱️", "notfound": "❓", "invalid": "💢", "progress": "➡️", "ok": "✅", "default": "➡️"}

func getEmoji(m map[string]string, key string) string {
	if val, ok := m[key]; ok {
		return val
	}
	return m["default"]
}

// Options configures a Logger explicitly instead of through the environment.
type Options struct {
	Name   string
	Level  hclog.Level
	Format string
	Output io.Writer
}

// Logger wraps hclog.Logger with a domain/action/status message API.
type Logger struct {
	hclog.Logger
	format string
}

// Create creates a new Logger configured from LAUNCHERS_LOG_LEVEL and LAUNCHERS_LOG_FORMAT.
func Create(name string) Logger {
	return CreateWithOptions(OptionsFromEnv(name))
}

// OptionsFromEnv returns the options Create uses, writing to stderr.
func OptionsFromEnv(name string) Options {
	return Options{
		Name:   name,
		Level:  ParseLevel(os.Getenv(LogLevelEnvVar)),
		Format: strings.ToLower(os.Getenv(LogFormatEnvVar)),
		Output: os.Stderr,
	}
}

// ParseLevel maps a level name such as "debug" or "WARN" to an hclog level.
// Unknown names yield hclog.NoLevel, which CreateWithOptions treats as INFO.
func ParseLevel(s string) hclog.Level {
	return hclog.LevelFromString(strings.ToUpper(strings.TrimSpace(s)))
}

// CreateWithOptions creates a Logger from explicit options.
func CreateWithOptions(o Options) Logger {
	if o.Level == hclog.NoLevel {
		o.Level = hclog.Info
	}
	switch o.Format {
	case FormatText, FormatJSON:
	default:
		o.Format = FormatEmoji
	}
	return Logger{
		Logger: hclog.New(&hclog.LoggerOptions{
			Name:       o.Name,
			Level:      o.Level,
			JSONFormat: o.Format == FormatJSON,
			Output:     o.Output,
		}),
		format: o.Format,
	}
}

// Discard returns a Logger that drops everything.
func Discard() Logger {
	return Logger{Logger: hclog.NewNullLogger(), format: FormatText}
}

// With returns a Logger that adds the given key/value pairs to every entry.
func (l Logger) With(args ...interface{}) Logger {
	if l.Logger == nil {
		return l
	}
	return Logger{Logger: l.Logger.With(args...), format: l.format}
}

func (l Logger) log(level hclog.Level, domain, action, status, message string, args ...interface{}) {
	if l.Logger == nil {
		return
	}
	switch l.format {
	case FormatText:
		l.Logger.Log(level, fmt.Sprintf("[%s] %s", strings.ToUpper(domain), message), args...)
	case FormatJSON:
		l.Logger.With("domain", domain, "action", action, "status", status).Log(level, message, args...)
	default:
		l.Logger.Log(level, fmt.Sprintf("%s %s %s %s", getEmoji(domains, domain), getEmoji(actions, action), getEmoji(statuses, status), message), args...)
	}
}

func (l Logger) Info(domain, action, status, message string, args ...interface{}) {
	l.log(hclog.Info, domain, action, status, message, args...)
}
func (l Logger) Debug(domain, action, status, message string, args ...interface{}) {
	l.log(hclog.Debug, domain, action, status, message, args...)
}
func (l Logger) Warn(domain, action, status, message string, args ...interface{}) {
	l.log(hclog.Warn, domain, action, status, message, args...)
}
func (l Logger) Error(domain, action, status, message string, args ...interface{}) {
	l.log(hclog.Error, domain, action, status, message, args...)
}
