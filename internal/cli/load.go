package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/lu-zhengda/pytestmap/internal/engine"
	"github.com/lu-zhengda/pytestmap/internal/group"
	"github.com/lu-zhengda/pytestmap/internal/report"
	"github.com/lu-zhengda/pytestmap/internal/session"
	"github.com/lu-zhengda/pytestmap/internal/utils"
)

// stdinArg names standard input as a report source.
const stdinArg = "-"

type loadFlags struct {
	dims   string
	format string
	watch  bool
}

var viewFlags loadFlags

func addLoadFlags(cmd *cobra.Command, f *loadFlags) {
	cmd.Flags().StringVar(&f.dims, "dims", "", "Comma-separated grouping selectors, e.g. key,group,param")
	cmd.Flags().StringVar(&f.format, "input-format", "", "Report format: auto, report or compact")
	cmd.Flags().BoolVar(&f.watch, "watch", false, "Reload when a report file changes")
}

// reportArgs resolves the command arguments to report paths. With no
// arguments a piped stdin is read.
func reportArgs(args []string) []string {
	if len(args) == 0 && !term.IsTerminal(int(os.Stdin.Fd())) {
		return []string{stdinArg}
	}
	return utils.ExpandPaths(args)
}

func buildEngine(paths []string, f loadFlags) (*engine.Engine, error) {
	name := f.format
	if name == "" {
		name = appConfig.Ingest.Format
	}
	format, ok := report.ParseFormat(name)
	if !ok {
		return nil, fmt.Errorf("unknown input format %q (use auto, report or compact)", name)
	}

	e := engine.New()
	e.SetFormat(format)
	e.SetConcurrency(appConfig.Ingest.Concurrency)
	e.SetLogger(logger)
	for _, p := range paths {
		if p == stdinArg {
			e.Register(&engine.ReaderSource{Label: stdinArg, Reader: os.Stdin})
			continue
		}
		e.Register(engine.FileSource{Path: p})
	}
	return e, nil
}

// dimensions returns the selectors from --dims, falling back to the config.
// Unknown names are reported and kept as rollup.
func dimensions(f loadFlags) []group.Dimension {
	spec := f.dims
	if spec == "" {
		spec = strings.Join(appConfig.Dimensions, ",")
	}
	dims, unknown := group.ParseDimensions(spec)
	for _, u := range unknown {
		fmt.Fprintf(os.Stderr, "warning: unknown dimension %q, grouping stops there\n", u)
	}
	return dims
}

func newSession(f loadFlags) *session.Session {
	return session.New(session.OptionsFrom(appConfig), dimensions(f), logger)
}

// watchPaths returns the absolute file paths among paths; stdin cannot be
// watched.
func watchPaths(paths []string) []string {
	var out []string
	for _, p := range paths {
		if p == stdinArg {
			continue
		}
		if abs, err := filepath.Abs(p); err == nil {
			out = append(out, abs)
		}
	}
	return out
}

// printLoadWarnings reports per-source failures without aborting.
func printLoadWarnings(err error) {
	if err == nil {
		return
	}
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		for _, e := range joined.Unwrap() {
			fmt.Fprintf(os.Stderr, "warning: %v\n", e)
		}
		return
	}
	fmt.Fprintf(os.Stderr, "warning: %v\n", err)
}
