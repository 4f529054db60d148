package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
	cyan   = color.New(color.FgCyan)
)

type printer struct {
	out io.Writer
	err io.Writer
}

func (p printer) success(format string, a ...any) {
	green.Fprintf(p.out, "✓ %s\n", fmt.Sprintf(format, a...))
}

func (p printer) step(format string, a ...any) {
	cyan.Fprintf(p.out, "→ %s\n", fmt.Sprintf(format, a...))
}

func (p printer) warning(format string, a ...any) {
	yellow.Fprintf(p.out, "⚠️  %s\n", fmt.Sprintf(format, a...))
}

// fail prints title and detail to stderr and returns an error carrying title.
// Cobra is silenced, so this is the only place the failure is shown.
func (p printer) fail(title string, err error, hints ...string) error {
	red.Fprintf(p.err, "%s\n\n", title)
	fmt.Fprintf(p.err, "%v\n", err)
	if len(hints) > 0 {
		fmt.Fprintf(p.err, "\n%s\n", strings.Join(hints, "\n"))
	}
	return fmt.Errorf("%s: %w", title, err)
}
