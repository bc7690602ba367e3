package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lu-zhengda/pytestmap/internal/engine"
	"github.com/lu-zhengda/pytestmap/internal/session"
	"github.com/lu-zhengda/pytestmap/internal/watch"
)

var (
	renderLoad loadFlags
	renderOut  outputFlags
)

var renderCmd = &cobra.Command{
	Use:   "render [reports...]",
	Short: "Render the treemap once as text, tree, grid, SVG, HTML or JSON",
	Long: "Render loads the reports, groups them and writes a static view.\n" +
		"With --watch it re-renders every time a report changes until interrupted.",
	RunE: func(cmd *cobra.Command, args []string) error {
		o := renderOut
		if jsonFlag && !cmd.Flags().Changed("output") {
			o.output = "json"
		}
		if !validOutput(o.output) {
			return fmt.Errorf("unsupported output %q", o.output)
		}

		paths := reportArgs(args)
		if len(paths) == 0 {
			return fmt.Errorf("no report files given")
		}
		e, err := buildEngine(paths, renderLoad)
		if err != nil {
			return err
		}
		sess := newSession(renderLoad)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		if err := renderOnce(ctx, cmd.OutOrStdout(), e, sess, o); err != nil {
			return err
		}
		if !renderLoad.watch {
			return nil
		}

		w, err := watch.New(watchPaths(paths), watch.DefaultDebounce, logger)
		if err != nil {
			return err
		}
		defer w.Close()
		fmt.Fprintln(os.Stderr, "Watching for changes (Ctrl+C to stop)")
		err = w.Run(ctx, func(changed []string) {
			logger.Debug("reports changed", zap.Strings("paths", changed))
			if err := renderOnce(ctx, cmd.OutOrStdout(), e, sess, o); err != nil {
				fmt.Fprintf(os.Stderr, "warning: %v\n", err)
			}
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

// renderOnce reloads every source into sess and writes one view.
func renderOnce(ctx context.Context, w io.Writer, e *engine.Engine, sess *session.Session, o outputFlags) error {
	batches, err := e.LoadAll(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	printLoadWarnings(err)
	sess.Ingest(batches)
	return emit(w, sess, o)
}

func init() {
	addLoadFlags(renderCmd, &renderLoad)
	addOutputFlags(renderCmd, &renderOut, "text")
}

func addOutputFlags(cmd *cobra.Command, o *outputFlags, def string) {
	cmd.Flags().StringVarP(&o.output, "output", "o", def, "Output format: text, tree, grid, svg, html or json")
	cmd.Flags().StringVar(&o.focus, "focus", "", "Zoom to a node path first, e.g. a.py/test_x")
	cmd.Flags().IntVar(&o.width, "width", 0, "Canvas width (pixels for svg/html/json, columns for grid)")
	cmd.Flags().IntVar(&o.height, "height", 0, "Canvas height (pixels for svg/html/json, rows for grid)")
	cmd.Flags().StringVar(&o.out, "out", "", "Write to a file instead of stdout")
}
