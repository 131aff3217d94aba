package engine

import (
	"context"

	"openbooks.com/internal/matching"
)

type OrderBook interface {
	Submit(reqID uint64, kind matching.Kind, side matching.Side, qty, price int64, emit Emitter) uint64
	Cancel(reqID uint64, side matching.Side, orderID uint64, emit Emitter) bool
	Snapshot() Snapshot
}

type Emitter interface {
	Accepted(reqID, orderID uint64)
	Rejected(reqID, orderID uint64, code int, reason string)
	Rested(reqID, orderID uint64, price, qty int64)
	Dropped(reqID, orderID uint64, qty int64)
	StopParked(reqID, orderID uint64, price, qty int64)
	StopTriggered(reqID, orderID uint64, qty int64)
	Cancelled(reqID, orderID uint64, lazy bool)
	Trade(reqID uint64, makerOrderID, takerOrderID uint64, price, qty int64)
}

// EventSink：下游可能慢。TryPublish 不阻塞，满了丢；Publish 阻塞到 ctx 结束
type EventSink interface {
	TryPublish(ev Event) bool
	Publish(ctx context.Context, ev Event) error
}

type EvCodec interface {
	Encode(dst []byte, ev Event) ([]byte, error)
	Decode(payload []byte) (Event, error)
}
