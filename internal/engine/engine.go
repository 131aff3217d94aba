package engine

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"openbooks.com/internal/matching"
	"openbooks.com/pkg/common"
	"openbooks.com/pkg/safe"
)

type EngineConfig struct {
	EventBusSize int
	ActorCfg     ActorConfig
	Logger       *zap.Logger
}

// Engine 单品种：一个 OrderBook、一个 actor、一条事件总线
type Engine struct {
	book  *BookAdapter
	actor *BookActor
	bus   *ChanBus
	log   *zap.Logger

	reqs common.ReqSeq // 调用方没给 ReqID 时由它编号

	startOnce sync.Once
	done      chan struct{} // actor 退出且 bus 已关闭
}

func NewEngine(cfg EngineConfig) *Engine {
	if cfg.EventBusSize <= 0 {
		cfg.EventBusSize = 1 << 16
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	bus := NewChanBus(cfg.EventBusSize)
	book := NewBookAdapter(cfg.Logger.Named("book"))
	return &Engine{
		book:  book,
		actor: NewBookActor(book, bus, cfg.ActorCfg, cfg.Logger.Named("actor")),
		bus:   bus,
		log:   cfg.Logger,
		done:  make(chan struct{}),
	}
}

// Start 启动 actor；ctx 结束或 Close 之后 actor 退出，事件通道随之关闭
func (e *Engine) Start(ctx context.Context) {
	e.startOnce.Do(func() {
		safe.GoCtx(ctx, func(ctx context.Context) {
			defer close(e.done)
			defer e.bus.Close()
			e.actor.Run(ctx)
		})
	})
}

func (e *Engine) Events() <-chan Event  { return e.bus.C() }
func (e *Engine) DroppedEvents() uint64 { return e.actor.EventsDropped() }
func (e *Engine) Done() <-chan struct{} { return e.done }

// TrySubmit 不阻塞；ReqID 为 0 时分配一个
func (e *Engine) TrySubmit(cmd Command) error {
	if err := validate(cmd); err != nil {
		return err
	}
	e.stamp(&cmd)
	return e.actor.TryEnqueue(cmd)
}

func (e *Engine) Submit(ctx context.Context, cmd Command) error {
	if err := validate(cmd); err != nil {
		return err
	}
	e.stamp(&cmd)
	return e.actor.Enqueue(ctx, cmd)
}

func (e *Engine) stamp(cmd *Command) {
	if cmd.ReqID == 0 {
		cmd.ReqID = e.reqs.Next()
	}
}

// Snapshot actor 还在跑就在 actor 协程里取；已经退出就直接读簿
func (e *Engine) Snapshot(ctx context.Context) (Snapshot, error) {
	select {
	case <-e.done:
		return e.book.Snapshot(), nil
	default:
	}
	s, err := e.actor.Snapshot(ctx)
	if errors.Is(err, ErrStopped) {
		<-e.done
		return e.book.Snapshot(), nil
	}
	return s, err
}

// Matches 只在 actor 退出之后可读
func (e *Engine) Matches() ([]matching.Trade, error) {
	select {
	case <-e.done:
		return e.book.B.Matches(), nil
	default:
		return nil, ErrRunning
	}
}

// Close 不再接收命令，等 actor 处理完已入队的命令
func (e *Engine) Close(ctx context.Context) error {
	e.actor.Close()
	select {
	case <-e.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func validate(cmd Command) error {
	switch cmd.Type {
	case CmdSubmit:
		if !cmd.Kind.Valid() || cmd.Kind == matching.Cancel {
			return ErrBadCommand
		}
	case CmdCancel:
	default:
		return ErrBadCommand
	}
	return nil
}
