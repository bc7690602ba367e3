package cli

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lu-zhengda/pytestmap/internal/tui"
	"github.com/lu-zhengda/pytestmap/internal/watch"
)

func runViewer(cmd *cobra.Command, args []string, f loadFlags) error {
	paths := reportArgs(args)
	if len(paths) == 0 {
		return fmt.Errorf("no report files given")
	}
	e, err := buildEngine(paths, f)
	if err != nil {
		return err
	}
	m := tui.New(newSession(f), e, logger)

	if !f.watch {
		return tui.Run(m, nil)
	}

	w, err := watch.New(watchPaths(paths), watch.DefaultDebounce, logger)
	if err != nil {
		return err
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	done := make(chan struct{})
	defer func() {
		cancel()
		<-done
	}()

	return tui.Run(m, func(p *tea.Program) {
		go func() {
			defer close(done)
			err := w.Run(ctx, func(changed []string) {
				logger.Debug("reports changed", zap.Strings("paths", changed))
				p.Send(tui.ReloadMsg{})
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("watcher stopped", zap.Error(err))
			}
		}()
	})
}
