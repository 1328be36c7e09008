// Package logging builds the process-wide zap logger.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/parisxmas/intake-relay/internal/gelf"
)

const serviceName = "intake-relay"

// New returns a production JSON logger at the given level. When gelfAddr is
// set, entries are also shipped to that GELF UDP endpoint. The returned close
// func flushes the logger and releases the GELF socket.
func New(level, gelfAddr string) (*zap.Logger, func(), error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(lvl)
	config.EncoderConfig.TimeKey = "ts"

	logger, err := config.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if gelfAddr == "" {
		logger = logger.With(zap.String("service", serviceName))
		return logger, func() { _ = logger.Sync() }, nil
	}

	w, err := gelf.New(gelfAddr, serviceName)
	if err != nil {
		logger = logger.With(zap.String("service", serviceName))
		logger.Warn("GELF init failed", zap.String("addr", gelfAddr), zap.Error(err))
		return logger, func() { _ = logger.Sync() }, nil
	}

	gelfCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(config.EncoderConfig),
		zapcore.AddSync(w),
		config.Level,
	)
	logger = tee(logger, gelfCore)
	logger.Info("GELF logging enabled", zap.String("addr", gelfAddr))

	return logger, func() {
		_ = logger.Sync()
		_ = w.Close()
	}, nil
}

// tee fans base out to extra. Context fields are added after the tee so
// every sink carries them.
func tee(base *zap.Logger, extra zapcore.Core) *zap.Logger {
	return base.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		return zapcore.NewTee(c, extra)
	})).With(zap.String("service", serviceName))
}
