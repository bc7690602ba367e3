package cli

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/lu-zhengda/pytestmap/internal/config"
)

// newLogger builds the process logger. Output goes to cfg.File when set,
// otherwise to stderr; an interactive run without a log file gets a no-op
// logger so nothing scribbles over the viewer.
func newLogger(cfg config.LogConfig, verbose, interactive bool) (*zap.Logger, func(), error) {
	if cfg.File == "" && interactive {
		return zap.NewNop(), func() {}, nil
	}

	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	} else if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
	}

	sink := zapcore.Lock(os.Stderr)
	closeFn := func() {}
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		sink = zapcore.Lock(f)
		closeFn = func() { f.Close() }
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), sink, level)
	l := zap.New(core)
	return l, func() {
		_ = l.Sync()
		closeFn()
	}, nil
}
