package engine

import (
	"errors"

	"go.uber.org/zap"

	"openbooks.com/internal/matching"
	"openbooks.com/pkg/xerr"
)

// BookAdapter 把 matching.OpenBooks 包成 OrderBook：撮合回调翻译成 Emitter 调用
type BookAdapter struct {
	B  *matching.OpenBooks
	br *bridge
}

func NewBookAdapter(log *zap.Logger) *BookAdapter {
	br := &bridge{emit: noopEmitter{}}
	return &BookAdapter{
		B:  matching.NewOpenBooks(matching.WithLogger(log), matching.WithListener(br)),
		br: br,
	}
}

func (a *BookAdapter) Submit(reqID uint64, kind matching.Kind, side matching.Side, qty, price int64, emit Emitter) uint64 {
	if kind == matching.Cancel {
		emit.Rejected(reqID, 0, xerr.BadInstruction, ErrBadCommand.Error())
		return 0
	}
	return a.apply(reqID, kind, side, qty, price, emit)
}

// Cancel 撤单本身也占一个订单 id（目标不存在也占）；目标不存在时发 Rejected
func (a *BookAdapter) Cancel(reqID uint64, side matching.Side, orderID uint64, emit Emitter) bool {
	// 撤单方向不影响结果，没给就按买方向记账
	if !side.Valid() {
		side = matching.Buy
	}
	return a.apply(reqID, matching.Cancel, side, int64(orderID), 0, emit) != 0 && !a.br.failed
}

func (a *BookAdapter) apply(reqID uint64, kind matching.Kind, side matching.Side, qty, price int64, emit Emitter) uint64 {
	a.br.failed = false
	if qty < 0 || price < 0 {
		emit.Rejected(reqID, 0, xerr.BadInstruction, "negative qty or price")
		a.br.failed = true
		return 0
	}
	id, err := a.B.Submit(kind, side, qty, price)
	if err != nil {
		emit.Rejected(reqID, 0, xerr.CodeOf(reject(err)), err.Error())
		a.br.failed = true
		return 0
	}
	emit.Accepted(reqID, id)

	// 回调只在 RunToCompletion 期间发生
	a.br.req, a.br.emit = reqID, emit
	err = a.B.RunToCompletion()
	a.br.req, a.br.emit = 0, noopEmitter{}

	if err != nil {
		emit.Rejected(reqID, id, xerr.CodeOf(reject(err)), err.Error())
		a.br.failed = true
	}
	return id
}

func (a *BookAdapter) Snapshot() Snapshot {
	b := a.B
	s := Snapshot{
		Bids:      b.RestingLen(matching.Buy),
		Asks:      b.RestingLen(matching.Sell),
		StopBuys:  b.StopLen(matching.Buy),
		StopSells: b.StopLen(matching.Sell),
		Matches:   b.MatchCount(),
		LastID:    b.LastID(),
	}
	s.BestBid, s.HasBid = b.MarketPrice(matching.Buy)
	s.BestAsk, s.HasAsk = b.MarketPrice(matching.Sell)
	return s
}

// reject 给撮合错误挂上拒单码；不认识的错误原样返回，CodeOf 按 ServerError 算
func reject(err error) error {
	switch {
	case errors.Is(err, matching.ErrCancelUnknown):
		return xerr.Wrap(err, xerr.UnknownOrder)
	case errors.Is(err, matching.ErrUnknownKind), errors.Is(err, matching.ErrUnknownSide):
		return xerr.Wrap(err, xerr.BadInstruction)
	}
	return err
}

// bridge 实现 matching.Listener，转发给当前命令的 Emitter
type bridge struct {
	req    uint64
	emit   Emitter
	failed bool
}

func (b *bridge) Trade(t matching.Trade) {
	b.emit.Trade(b.req, t.MakerID, t.TakerID, t.Price, t.Qty)
}
func (b *bridge) Rested(o matching.Order)  { b.emit.Rested(b.req, o.ID, o.Price, o.Qty) }
func (b *bridge) Dropped(o matching.Order) { b.emit.Dropped(b.req, o.ID, o.Qty) }
func (b *bridge) StopParked(o matching.Order) {
	b.emit.StopParked(b.req, o.ID, o.Price, o.Qty)
}
func (b *bridge) StopTriggered(id uint64, qty int64) { b.emit.StopTriggered(b.req, id, qty) }
func (b *bridge) Cancelled(target uint64, lazy bool) { b.emit.Cancelled(b.req, target, lazy) }

type noopEmitter struct{}

func (noopEmitter) Accepted(uint64, uint64)                    {}
func (noopEmitter) Rejected(uint64, uint64, int, string)       {}
func (noopEmitter) Rested(uint64, uint64, int64, int64)        {}
func (noopEmitter) Dropped(uint64, uint64, int64)              {}
func (noopEmitter) StopParked(uint64, uint64, int64, int64)    {}
func (noopEmitter) StopTriggered(uint64, uint64, int64)        {}
func (noopEmitter) Cancelled(uint64, uint64, bool)             {}
func (noopEmitter) Trade(uint64, uint64, uint64, int64, int64) {}
