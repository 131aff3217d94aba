package safe

import (
	"context"
	"fmt"
	"runtime/debug"

	"go.uber.org/zap"

	"openbooks.com/pkg/logger"
)

// GoCtx 安全启动携带 context 的协程，日志里保留 trace_id
func GoCtx(ctx context.Context, fn func(ctx context.Context)) {
	if ctx == nil {
		ctx = context.Background()
	}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error(ctx, "goroutine panic recovered",
					zap.Any("panic", r),
					zap.String("stack", string(debug.Stack())),
				)
			}
		}()
		fn(ctx)
	}()
}

// Func 包装 errgroup 用的函数：panic 转成 error 返回，让整组退出
func Func(ctx context.Context, name string, fn func(ctx context.Context) error) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error(ctx, "task panic recovered",
					zap.String("task", name),
					zap.Any("panic", r),
					zap.String("stack", string(debug.Stack())),
				)
				err = fmt.Errorf("%s: panic: %v", name, r)
			}
		}()
		return fn(ctx)
	}
}
