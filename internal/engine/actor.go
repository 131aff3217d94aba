package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"openbooks.com/pkg/metrics"
	"openbooks.com/pkg/xerr"
)

type ActorConfig struct {
	MailboxSize int  // mailbox 容量
	BatchMax    int  // 一次最多处理多少条
	Lossless    bool // true：事件总线满了就等，不丢事件
}

// BookActor 单写者：一个协程独占 OrderBook，命令从 mailbox 进，事件从 out 出
type BookActor struct {
	book OrderBook
	in   chan Command
	out  EventSink
	cfg  ActorConfig
	log  *zap.Logger

	snap    chan chan Snapshot
	stopped chan struct{}

	mu     sync.RWMutex // 保护 closed 和 close(in)
	closed bool

	seq uint64 // 只在 Run 协程里读写

	mailboxFull uint64
	eventsDrop  uint64
}

func NewBookActor(book OrderBook, out EventSink, cfg ActorConfig, log *zap.Logger) *BookActor {
	if cfg.MailboxSize <= 0 {
		cfg.MailboxSize = 4096
	}
	if cfg.BatchMax <= 0 {
		cfg.BatchMax = 256
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &BookActor{
		book:    book,
		in:      make(chan Command, cfg.MailboxSize),
		out:     out,
		cfg:     cfg,
		log:     log,
		snap:    make(chan chan Snapshot),
		stopped: make(chan struct{}),
	}
}

// TryEnqueue 不阻塞；mailbox 满了直接返回 ErrEngineBusy，用它做背压
func (a *BookActor) TryEnqueue(cmd Command) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return ErrStopped
	}
	select {
	case a.in <- cmd:
		return nil
	default:
		atomic.AddUint64(&a.mailboxFull, 1)
		metrics.MailboxFullTotal.Inc()
		return ErrEngineBusy
	}
}

// Enqueue 阻塞直到入队、ctx 结束或 actor 退出
func (a *BookActor) Enqueue(ctx context.Context, cmd Command) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return ErrStopped
	}
	select {
	case a.in <- cmd:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-a.stopped:
		return ErrStopped
	}
}

// Close 关闭 mailbox；Run 处理完已入队的命令后返回
func (a *BookActor) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.closed {
		a.closed = true
		close(a.in)
	}
}

// Snapshot 在 actor 协程里取簿概况，反映的是之前所有已处理的命令
func (a *BookActor) Snapshot(ctx context.Context) (Snapshot, error) {
	reply := make(chan Snapshot, 1)
	select {
	case a.snap <- reply:
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	case <-a.stopped:
		return Snapshot{}, ErrStopped
	}
	select {
	case s := <-reply:
		return s, nil
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}

func (a *BookActor) Done() <-chan struct{} { return a.stopped }
func (a *BookActor) MailboxFull() uint64   { return atomic.LoadUint64(&a.mailboxFull) }
func (a *BookActor) EventsDropped() uint64 { return atomic.LoadUint64(&a.eventsDrop) }

func (a *BookActor) Run(ctx context.Context) {
	defer close(a.stopped)

	// 复用 batch slice，避免每轮分配
	batch := make([]Command, 0, a.cfg.BatchMax)
	for {
		var first Command
		var ok bool
		// 先阻塞拿 1 条，再尽量多拿几条（不阻塞）
		select {
		case <-ctx.Done():
			return
		case reply := <-a.snap:
			reply <- a.snapshot()
			continue
		case first, ok = <-a.in:
			if !ok {
				a.log.Debug("mailbox closed, actor exit", zap.Uint64("seq", a.seq))
				return
			}
		}
		batch = batch[:0]
		batch = append(batch, first)
		closed := false
		for len(batch) < a.cfg.BatchMax {
			select {
			case cmd, more := <-a.in:
				if !more {
					closed = true
					goto PROCESS
				}
				batch = append(batch, cmd)
			default:
				goto PROCESS
			}
		}
	PROCESS:
		start := time.Now()
		for i := range batch {
			if ctx.Err() != nil {
				return
			}
			a.apply(ctx, batch[i])
		}
		metrics.BatchApplySeconds.Observe(time.Since(start).Seconds())
		a.observeBook()

		if closed {
			a.log.Debug("mailbox closed, actor exit", zap.Uint64("seq", a.seq))
			return
		}
	}
}

func (a *BookActor) apply(ctx context.Context, cmd Command) {
	a.seq++
	emit := &busEmitter{actor: a, ctx: ctx, seq: a.seq}

	switch cmd.Type {
	case CmdSubmit:
		metrics.OrdersTotal.WithLabelValues(cmd.Kind.String()).Inc()
		a.book.Submit(cmd.ReqID, cmd.Kind, cmd.Side, cmd.Qty, cmd.Price, emit)
	case CmdCancel:
		metrics.OrdersTotal.WithLabelValues("cancel").Inc()
		if !a.book.Cancel(cmd.ReqID, cmd.Side, cmd.CancelOrderID, emit) {
			a.log.Debug("cancel rejected", zap.Uint64("req", cmd.ReqID), zap.Uint64("target", cmd.CancelOrderID))
		}
	default:
		emit.Rejected(cmd.ReqID, 0, xerr.BadInstruction, ErrBadCommand.Error())
	}
	// 命令边界：这个 seq 的事件到此完整
	emit.pub(Event{Type: EvCmdEnd, ReqID: cmd.ReqID})
}

func (a *BookActor) snapshot() Snapshot {
	s := a.book.Snapshot()
	s.Seq = a.seq
	return s
}

func (a *BookActor) observeBook() {
	s := a.book.Snapshot()
	metrics.RestingOrders.WithLabelValues("buy").Set(float64(s.Bids))
	metrics.RestingOrders.WithLabelValues("sell").Set(float64(s.Asks))
}

type busEmitter struct {
	actor *BookActor
	ctx   context.Context
	seq   uint64
	idx   uint16
}

func (e *busEmitter) pub(ev Event) {
	ev.Seq, ev.Idx = e.seq, e.idx
	e.idx++

	a := e.actor
	if a.out == nil {
		return
	}
	if a.cfg.Lossless {
		if err := a.out.Publish(e.ctx, ev); err == nil {
			return
		}
	} else if a.out.TryPublish(ev) {
		return
	}
	atomic.AddUint64(&a.eventsDrop, 1)
	metrics.EventsDroppedTotal.Inc()
}

func (e *busEmitter) Accepted(reqID, orderID uint64) {
	e.pub(Event{Type: EvAccepted, ReqID: reqID, OrderID: orderID})
}

func (e *busEmitter) Rejected(reqID, orderID uint64, code int, reason string) {
	metrics.RejectsTotal.WithLabelValues(rejectLabel(code)).Inc()
	e.pub(Event{Type: EvRejected, ReqID: reqID, OrderID: orderID, Code: code, Reason: reason})
}

func (e *busEmitter) Rested(reqID, orderID uint64, price, qty int64) {
	e.pub(Event{Type: EvRested, ReqID: reqID, OrderID: orderID, Price: price, Qty: qty})
}

func (e *busEmitter) Dropped(reqID, orderID uint64, qty int64) {
	e.pub(Event{Type: EvDropped, ReqID: reqID, OrderID: orderID, Qty: qty})
}

func (e *busEmitter) StopParked(reqID, orderID uint64, price, qty int64) {
	e.pub(Event{Type: EvStopParked, ReqID: reqID, OrderID: orderID, Price: price, Qty: qty})
}

func (e *busEmitter) StopTriggered(reqID, orderID uint64, qty int64) {
	metrics.StopsTriggeredTotal.Inc()
	e.pub(Event{Type: EvStopTriggered, ReqID: reqID, OrderID: orderID, Qty: qty})
}

func (e *busEmitter) Cancelled(reqID, orderID uint64, lazy bool) {
	e.pub(Event{Type: EvCancelled, ReqID: reqID, OrderID: orderID, Lazy: lazy})
}

func (e *busEmitter) Trade(reqID uint64, makerOrderID, takerOrderID uint64, price, qty int64) {
	metrics.MatchesTotal.Inc()
	metrics.MatchedQtyTotal.Add(float64(qty))
	e.pub(Event{
		Type: EvTrade, ReqID: reqID,
		MakerOrderID: makerOrderID, TakerOrderID: takerOrderID,
		Price: price, Qty: qty,
	})
}

func rejectLabel(code int) string {
	switch code {
	case xerr.BadInstruction:
		return "bad_instruction"
	case xerr.UnknownOrder:
		return "unknown_order"
	case xerr.EngineBusy:
		return "busy"
	}
	return "other"
}
