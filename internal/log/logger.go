// Package log wraps slog with a component-scoped logger, standard field
// names and request-context plumbing.
package log

import (
	"io"
	"log/slog"
	"os"
)

// Logger is a slog.Logger that always carries exactly one component
// attribute. base holds the same logger without it so the component can be
// swapped.
type Logger struct {
	*slog.Logger
	base      *slog.Logger
	component string
}

func tagged(base *slog.Logger, component string) *Logger {
	if component == "" {
		component = ComponentApp
	}
	return &Logger{Logger: base.With(FieldComponent, component), base: base, component: component}
}

type Config struct {
	Level     slog.Level
	Component string
	Output    io.Writer
	// Handler overrides Level and Output when set.
	Handler slog.Handler
}

func DefaultConfig() Config {
	return Config{
		Level:     slog.LevelInfo,
		Component: ComponentApp,
		Output:    os.Stdout,
	}
}

func New(config Config) *Logger {
	handler := config.Handler
	if handler == nil {
		out := config.Output
		if out == nil {
			out = os.Stdout
		}
		handler = slog.NewTextHandler(out, &slog.HandlerOptions{Level: config.Level})
	}
	return tagged(slog.New(handler), config.Component)
}

// Wrap tags an existing slog logger with component. l should not already
// carry a component attribute.
func Wrap(l *slog.Logger, component string) *Logger {
	if l == nil {
		l = slog.Default()
	}
	return tagged(l, component)
}

func (l *Logger) With(args ...any) *Logger {
	return tagged(l.base.With(args...), l.component)
}

// WithComponent returns a logger whose component attribute is replaced.
func (l *Logger) WithComponent(component string) *Logger {
	return tagged(l.base, component)
}

func (l *Logger) Component() string {
	return l.component
}

// SetDefault sets the default logger for the application
func SetDefault(logger *Logger) {
	slog.SetDefault(logger.Logger)
}
