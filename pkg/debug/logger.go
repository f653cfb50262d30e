// Package debug provides logging and diagnostics for hosting plugins.
package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LevelOff disables logging.
const LevelOff = "off"

// Options selects how NewLogger builds a logger.
type Options struct {
	Level  string // debug, info, warn, error or off
	Format string // console or json
	File   string // empty for stderr

	// Output overrides File when set
	Output io.Writer
}

// ParseLevel parses a level name. An empty name is info.
func ParseLevel(s string) (zapcore.Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return zapcore.InfoLevel, nil
	}
	return zapcore.ParseLevel(s)
}

// NewLogger builds a zap logger from opts.
func NewLogger(opts Options) (*zap.Logger, error) {
	if strings.EqualFold(opts.Level, LevelOff) {
		return zap.NewNop(), nil
	}

	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	switch strings.ToLower(opts.Format) {
	case "", "console":
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	case "json":
		enc = zapcore.NewJSONEncoder(encCfg)
	default:
		return nil, fmt.Errorf("unknown log format %q", opts.Format)
	}

	var sink zapcore.WriteSyncer
	switch {
	case opts.Output != nil:
		sink = zapcore.AddSync(opts.Output)
	case opts.File != "":
		f, err := openLogFile(opts.File)
		if err != nil {
			return nil, err
		}
		sink = zapcore.AddSync(f)
	default:
		sink = zapcore.Lock(os.Stderr)
	}

	return zap.New(zapcore.NewCore(enc, sink, level), zap.AddCaller()), nil
}

// NewFileLogger creates a JSON logger that appends to filename.
func NewFileLogger(filename, level string) (*zap.Logger, error) {
	return NewLogger(Options{Level: level, Format: "json", File: filename})
}

func openLogFile(filename string) (*os.File, error) {
	// Create log directory if it doesn't exist
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return file, nil
}
