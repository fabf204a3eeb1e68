package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/1broseidon/railers/internal/keys"
	"golang.org/x/term"
)

func runConfig(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(stderr, "Usage:")
		fmt.Fprintln(stderr, "  railers config validate [--path PATH]")
		fmt.Fprintln(stderr, "  railers config print [--path PATH]")
		return 2
	}

	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.SetOutput(stderr)
	path := fs.String("path", "", "Config file path (default: <user config dir>/railers/config.yaml)")

	switch args[0] {
	case "validate":
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		res, err := loadConfig(*path)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		if res.File == "" {
			fmt.Fprintln(stdout, "config: ok (no file, using defaults)")
			return 0
		}
		fmt.Fprintf(stdout, "config: ok (%s)\n", res.File)
		return 0

	case "print":
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		res, err := loadConfig(*path)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		data, err := res.Config.Marshal()
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		if res.File != "" {
			fmt.Fprintf(stdout, "# source: %s\n", res.File)
		}
		stdout.Write(data)
		return 0

	default:
		fmt.Fprintf(stderr, "Unknown config command: %s\n", args[0])
		return 2
	}
}

func runKeys(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("keys", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: railers keys")
		fmt.Fprintln(stderr, "")
		fmt.Fprintln(stderr, "List the key names accepted for hotkey, triggers and substitute.")
		fmt.Fprintln(stderr, "Hotkeys combine modifiers with '-', e.g. Shift-F10 or Ctrl-Alt-O.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	width := 0
	if f, ok := stdout.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil {
			width = w
		}
	}
	writeColumns(stdout, keys.Names(), width)
	return 0
}

// writeColumns prints names in columns fitting width, or one per line when
// width is 0.
func writeColumns(w io.Writer, names []string, width int) {
	if width <= 0 {
		for _, n := range names {
			fmt.Fprintln(w, n)
		}
		return
	}

	cell := 0
	for _, n := range names {
		if len(n) > cell {
			cell = len(n)
		}
	}
	cell += 2
	perRow := width / cell
	if perRow < 1 {
		perRow = 1
	}

	var b strings.Builder
	for i, n := range names {
		b.WriteString(n)
		if (i+1)%perRow == 0 || i == len(names)-1 {
			fmt.Fprintln(w, strings.TrimRight(b.String(), " "))
			b.Reset()
			continue
		}
		b.WriteString(strings.Repeat(" ", cell-len(n)))
	}
}
