package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/lu-zhengda/pytestmap/internal/config"
	"github.com/lu-zhengda/pytestmap/internal/export"
	"github.com/lu-zhengda/pytestmap/internal/session"
	"github.com/lu-zhengda/pytestmap/internal/tui"
)

// Output formats accepted by --output.
var outputFormats = []string{"text", "tree", "grid", "svg", "html", "json"}

const (
	fallbackCols = 80
	fallbackRows = 24
)

type outputFlags struct {
	output string
	focus  string
	width  int
	height int
	out    string
}

func validOutput(format string) bool {
	for _, f := range outputFormats {
		if f == format {
			return true
		}
	}
	return false
}

// terminal reports whether output goes straight to a terminal.
func terminal(o outputFlags) bool {
	return o.out == "" && term.IsTerminal(int(os.Stdout.Fd()))
}

// terminalSize returns the stdout size, or 80x24 when it is not a terminal.
func terminalSize() (int, int) {
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 && h > 0 {
		return w, h
	}
	return fallbackCols, fallbackRows
}

// prepare sizes sess for the format and applies the focus. Character
// formats lay out in terminal cells without margins; image formats use the
// configured canvas.
func prepare(sess *session.Session, o outputFlags) error {
	switch o.output {
	case "grid", "text", "tree":
		cols, rows := terminalSize()
		if o.width > 0 {
			cols = o.width
		}
		if o.height > 0 {
			rows = o.height
		}
		opts := sess.Options()
		opts.Margin = config.Margin{}
		sess.SetOptions(opts)
		// One row holds the breadcrumb.
		sess.Resize(float64(cols), float64(max(rows-1, 0)*tui.CellAspect))
	default:
		w, h := appConfig.Export.Width, appConfig.Export.Height
		if o.width > 0 {
			w = o.width
		}
		if o.height > 0 {
			h = o.height
		}
		sess.Resize(float64(w), float64(h))
	}

	if o.focus != "" {
		if err := sess.Focus(o.focus); err != nil {
			return err
		}
	}
	return nil
}

// writeOutput renders the prepared session in the requested format.
func writeOutput(w io.Writer, sess *session.Session, o outputFlags, color bool) error {
	v := export.FromSession(sess)
	switch o.output {
	case "text":
		return export.Text(w, v)
	case "tree":
		return export.Tree(w, v, 0)
	case "json":
		return export.JSON(w, v)
	case "svg":
		return export.SVG(w, v)
	case "html":
		return export.HTML(w, v)
	case "grid":
		cols, rows := int(v.Width), int(v.Height)/tui.CellAspect
		var sb strings.Builder
		sb.WriteString(v.Breadcrumb + "\n")
		sb.WriteString(tui.RenderGrid(v.Tree, v.Cells, cols, rows, tui.GridOptions{
			Mode:      v.Mode,
			Scale:     v.Scale(),
			Precision: v.Precision,
			Selected:  -1,
			Color:     color,
		}))
		_, err := io.WriteString(w, sb.String())
		return err
	}
	return fmt.Errorf("unsupported output %q (use %s)", o.output, strings.Join(outputFormats, ", "))
}

// emit renders to --out, or to stdout when no file is given.
func emit(stdout io.Writer, sess *session.Session, o outputFlags) error {
	if err := prepare(sess, o); err != nil {
		return err
	}
	if o.out == "" {
		return writeOutput(stdout, sess, o, terminal(o))
	}

	f, err := os.Create(o.out)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := writeOutput(f, sess, o, false); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
