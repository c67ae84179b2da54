package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-formbind/pkg/diag"
)

// LoggerOptions configures NewLogger.
type LoggerOptions struct {
	Verbose bool
	// Format is "text" (default), "json" or "raw".
	Format  string
	NoColor bool
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// NewLogger builds the process logger writing to out.
func NewLogger(out io.Writer, opts LoggerOptions) (*logrus.Logger, error) {
	logger := &logrus.Logger{
		Out:       out,
		Formatter: new(logrus.TextFormatter),
		Hooks:     make(logrus.LevelHooks),
		Level:     logrus.InfoLevel,
	}
	if opts.Verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	switch opts.Format {
	case "", "text":
		tty := IsTerminal(out)
		logger.SetFormatter(&logrus.TextFormatter{
			ForceColors:      tty && !opts.NoColor,
			DisableColors:    opts.NoColor || !tty,
			DisableTimestamp: true,
		})
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "raw":
		logger.SetFormatter(RawFormatter{})
	default:
		return nil, fmt.Errorf("unsupported log format %q", opts.Format)
	}
	return logger, nil
}

// RawFormatter prints only the message.
type RawFormatter struct{}

// Format renders a single log entry.
func (RawFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	return append([]byte(entry.Message), '\n'), nil
}

// PrintSummary writes a one line outcome of a pass.
func PrintSummary(w io.Writer, report *diag.Report, noColor bool) {
	errs := len(report.Errors())
	warnings := len(report.Warnings())

	c := color.New(color.FgGreen)
	if errs > 0 {
		c = color.New(color.FgRed)
	} else if warnings > 0 {
		c = color.New(color.FgYellow)
	}
	if noColor || !IsTerminal(w) {
		c.DisableColor()
	} else {
		c.EnableColor()
	}
	_, _ = c.Fprintf(w, "%d forms bound, %d errors, %d warnings\n", report.Bound(), errs, warnings)
}
