// Package logging builds the zap logger used by every binary.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures New.
type Options struct {
	// Path is the JSON log file. Empty disables the file sink.
	Path    string
	Session string
	Level   zapcore.Level
	// Console, when set, receives a human-readable copy of every entry. The
	// TUI leaves it nil so log lines do not land on the screen.
	Console io.Writer

	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// New creates a zap logger that writes JSON to a rotated file and, optionally,
// to a console writer. Session name and PID are included as initial fields.
func New(opts Options) (*zap.Logger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var cores []zapcore.Core
	if opts.Path != "" {
		if err := os.MkdirAll(filepath.Dir(opts.Path), 0700); err != nil {
			return nil, err
		}
		file := &lumberjack.Logger{
			Filename:   opts.Path,
			MaxSize:    orDefault(opts.MaxSizeMB, 10),
			MaxBackups: orDefault(opts.MaxBackups, 3),
			MaxAge:     orDefault(opts.MaxAgeDays, 28),
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(file), opts.Level))
	}
	if opts.Console != nil {
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), zapcore.AddSync(opts.Console), opts.Level))
	}
	if len(cores) == 0 {
		return zap.NewNop(), nil
	}

	logger := zap.New(zapcore.NewTee(cores...),
		zap.Fields(
			zap.String("session", opts.Session),
			zap.Int("pid", os.Getpid()),
		),
	)
	return logger, nil
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
