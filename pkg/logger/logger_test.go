package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// 把全局 Log 换成写内存的 logger，级别跟随 AtomicLevel
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	buffer := &bytes.Buffer{}
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.MessageKey = "msg"
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(buffer), level)

	old := Log
	Log = zap.New(core)
	t.Cleanup(func() {
		Log = old
		SetLevel("info")
	})
	return buffer
}

func TestLogger_Info_WithTraceID(t *testing.T) {
	buffer := captureLog(t)

	ctx := WithTrace(context.Background(), "run-12345")
	Info(ctx, "match", zap.Uint64("taker", 2), zap.Int64("qty", 4))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buffer.Bytes(), &entry), "日志输出必须是合法的 JSON")
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "match", entry["msg"])
	assert.Equal(t, float64(2), entry["taker"])
	assert.Equal(t, "run-12345", entry["trace_id"])
}

func TestLogger_Error_NoTraceID(t *testing.T) {
	buffer := captureLog(t)

	Error(context.Background(), "cancel of unknown order", zap.Uint64("target", 9))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buffer.Bytes(), &entry))
	_, exists := entry["trace_id"]
	assert.False(t, exists, "没有 TraceID 的 Context 不应该输出 trace_id 字段")
	assert.Equal(t, "error", entry["level"])
}

func TestSetLevel_HotSwitch(t *testing.T) {
	buffer := captureLog(t)

	Debug(context.Background(), "hidden")
	assert.Zero(t, buffer.Len())

	SetLevel("debug")
	assert.Equal(t, zapcore.DebugLevel, Level())
	Debug(context.Background(), "shown")
	assert.Contains(t, buffer.String(), "shown")

	SetLevel("nonsense")
	assert.Equal(t, zapcore.InfoLevel, Level())
}
