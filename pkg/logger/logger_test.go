package logger_test

import (
	"context"
	"finder/pkg/logger"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observed(level zapcore.Level) (context.Context, *observer.ObservedLogs) {
	core, logs := observer.New(level)

	return logger.WithLogger(context.Background(), zap.New(core)), logs
}

func TestSetup(t *testing.T) {
	t.Cleanup(func() { logger.Setup(logger.DevelopmentEnvironment) })

	for _, env := range []string{logger.DevelopmentEnvironment, logger.ProductionEnvironment, "staging"} {
		t.Run(env, func(t *testing.T) {
			require.NotPanics(t, func() { logger.Setup(env) })
			require.NotNil(t, logger.Get(context.Background()))
		})
	}

	logger.Setup(logger.ProductionEnvironment)
	require.False(t, logger.IsDebug(context.Background()))
	logger.Setup(logger.DevelopmentEnvironment)
	require.True(t, logger.IsDebug(context.Background()))
}

func TestGetFallsBackToDefault(t *testing.T) {
	logger.Setup(logger.DevelopmentEnvironment)
	require.NotNil(t, logger.Get(context.Background()))

	custom := zap.NewExample()
	require.Same(t, custom, logger.Get(logger.WithLogger(context.Background(), custom)))
}

func TestWithFieldsAccumulate(t *testing.T) {
	ctx, logs := observed(zap.DebugLevel)

	ctx = logger.WithFields(ctx, zap.String("placeId", "p1"))
	ctx = logger.WithFields(ctx, zap.Int("attempt", 2))
	logger.Info(ctx, "probing website")

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, map[string]any{"placeId": "p1", "attempt": int64(2)}, entries[0].ContextMap())
}

func TestLevelHelpers(t *testing.T) {
	ctx, logs := observed(zap.InfoLevel)
	require.False(t, logger.IsDebug(ctx))

	logger.Debug(ctx, "dropped")
	logger.Info(ctx, "info", zap.String("k", "v"))
	logger.Warn(ctx, "warn")
	logger.Error(ctx, "error")

	var levels []zapcore.Level
	for _, e := range logs.All() {
		levels = append(levels, e.Level)
	}
	require.Equal(t, []zapcore.Level{zap.InfoLevel, zap.WarnLevel, zap.ErrorLevel}, levels)
	require.Equal(t, 1, logs.FilterField(zap.String("k", "v")).Len())
}

func TestSetupWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "finder.log")

	logger.Setup(logger.ProductionEnvironment, logger.WithFile(logger.FileOptions{
		Path:       path,
		MaxSizeMB:  1,
		MaxBackups: 1,
		MaxAgeDays: 1,
	}))
	t.Cleanup(func() { logger.Setup(logger.DevelopmentEnvironment) })

	ctx := context.Background()
	logger.Info(ctx, "written to file", zap.String("component", "test"))
	logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "written to file")
	require.Contains(t, string(data), `"component":"test"`)
}
