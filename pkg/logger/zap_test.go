package logger_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Gunvolt24/cartsync/pkg/ctxmeta"
	"github.com/Gunvolt24/cartsync/pkg/logger"
)

func TestZapLogger_ContextFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := logger.NewFromZap(zap.New(core))

	ctx := ctxmeta.WithUserID(ctxmeta.WithRequestID(context.Background(), "req-1"), "user-1")
	l.Warnf(ctx, "cart %s", "restored")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	assert.Equal(t, "cart restored", entry.Message)

	fields := entry.ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "user-1", fields["user_id"])
}

func TestZapLogger_NoMetadata(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := logger.NewFromZap(zap.New(core))

	l.Infof(context.Background(), "plain")
	l.Errorf(context.Background(), "failed err=%v", "boom")

	require.Equal(t, 2, logs.Len())
	assert.Empty(t, logs.All()[0].Context)
	assert.Equal(t, zapcore.ErrorLevel, logs.All()[1].Level)
}
