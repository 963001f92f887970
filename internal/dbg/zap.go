package dbg

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds a console logger for interactive runs; verbose enables
// per-order debug lines.
func NewLogger(verbose bool) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	return build(cfg)
}

// NewProdLogger builds a JSON logger for batch runs.
func NewProdLogger() *zap.Logger {
	return build(zap.NewProductionConfig())
}

// NewAutoLogger picks the console logger when stderr is a terminal and the
// JSON logger otherwise. verbose always selects the console logger.
func NewAutoLogger(verbose bool) *zap.Logger {
	if verbose || isTerminal(os.Stderr) {
		return NewLogger(verbose)
	}
	return NewProdLogger()
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

func build(cfg zap.Config) *zap.Logger {
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableCaller = true

	logger, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return logger
}
