package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kalambet/jobfill/internal/bridge"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
)

// stderr receives all human-facing output; stdout is kept for data.
var stderr io.Writer = os.Stderr

func colorize(color, text string) string {
	if noColor {
		return text
	}
	return color + text + colorReset
}

func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(stderr, colorize(colorGreen, "✓ "+msg))
}

func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(stderr, colorize(colorRed, "✗ "+msg))
}

func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(stderr, colorize(colorYellow, "⚠ "+msg))
}

func printStatus(label string, format string, args ...any) {
	val := fmt.Sprintf(format, args...)
	l := colorize(colorBold, label+":")
	fmt.Fprintf(stderr, "  %s %s\n", l, val)
}

func printStep(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(stderr, colorize(colorCyan, "→ "+msg))
}

// printFillStatus shows the outcome of a fill followed by the filled fields.
func printFillStatus(resp *bridge.FillResponse, err error) {
	line := bridge.StatusLine(resp, err)
	switch {
	case err != nil:
		fmt.Fprintln(stderr, colorize(colorRed, line))
		return
	case resp != nil && resp.FieldsFilledCount > 0:
		fmt.Fprintln(stderr, colorize(colorGreen, line))
	default:
		fmt.Fprintln(stderr, colorize(colorYellow, line))
		return
	}
	for _, f := range strings.Split(strings.TrimSuffix(bridge.FieldList(resp.FilledFields), "\n"), "\n") {
		fmt.Fprintf(stderr, "  %s\n", f)
	}
}
