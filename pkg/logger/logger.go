package logger

import (
	"context"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// TraceIdKey context 里 trace id 的 key，CLI 用每次运行的 run id 填
const TraceIdKey = "trace_id"

// 全局 Logger 实例，InitWithFile 之前是 Nop，测试里不初始化也能用
var Log = zap.NewNop()

// level 是 AtomicLevel，配置热更新时直接改它
var level = zap.NewAtomicLevelAt(zap.InfoLevel)

type Options struct {
	Service string
	Level   string // debug, info, warn, error
	File    string // 为空则只写 stderr
}

// InitWithFile 同时写 stderr 和文件
func InitWithFile(serviceName string, lvl string, logFile string) {
	InitWithOptions(Options{Service: serviceName, Level: lvl, File: logFile})
}

func InitWithOptions(o Options) {
	SetLevel(o.Level)

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderConfig.MessageKey = "msg"

	// stdout 留给撮合结果，日志走 stderr
	writeSyncers := []zapcore.WriteSyncer{zapcore.AddSync(os.Stderr)}

	if o.File != "" {
		if err := os.MkdirAll(filepath.Dir(o.File), 0o755); err == nil {
			file, err := os.OpenFile(o.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err == nil {
				writeSyncers = append(writeSyncers, zapcore.AddSync(file))
			}
		}
		// 打不开文件就只写 stderr，不中断程序
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.NewMultiWriteSyncer(writeSyncers...),
		level,
	)

	// AddCallerSkip(1)：跳过下面这层封装
	Log = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).
		With(zap.String("service", o.Service))
}

// SetLevel 运行时调整日志级别，不认识的级别按 info 处理
func SetLevel(lvl string) {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(lvl)); err != nil {
		l = zap.InfoLevel
	}
	level.SetLevel(l)
}

func Level() zapcore.Level { return level.Level() }

// Named 给组件用的子 logger，不带 caller skip
func Named(name string) *zap.Logger {
	return Log.WithOptions(zap.AddCallerSkip(-1)).Named(name)
}

// WithTrace 把 trace id 放进 context
func WithTrace(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIdKey, traceID)
}

func Info(ctx context.Context, msg string, fields ...zap.Field) {
	extractTrace(ctx, &fields)
	Log.Info(msg, fields...)
}

func Error(ctx context.Context, msg string, fields ...zap.Field) {
	extractTrace(ctx, &fields)
	Log.Error(msg, fields...)
}

func Warn(ctx context.Context, msg string, fields ...zap.Field) {
	extractTrace(ctx, &fields)
	Log.Warn(msg, fields...)
}

func Debug(ctx context.Context, msg string, fields ...zap.Field) {
	extractTrace(ctx, &fields)
	Log.Debug(msg, fields...)
}

func extractTrace(ctx context.Context, fields *[]zap.Field) {
	if ctx == nil {
		return
	}
	if traceID, ok := ctx.Value(TraceIdKey).(string); ok && traceID != "" {
		*fields = append(*fields, zap.String("trace_id", traceID))
	}
}

// Sync 刷新缓冲区，main 里 defer 调用
func Sync() {
	if Log != nil {
		_ = Log.Sync()
	}
}
