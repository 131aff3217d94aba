package engine

import (
	"errors"

	"openbooks.com/internal/matching"
	"openbooks.com/pkg/xerr"
)

// 定义命令类型
type CmdType uint8

const (
	CmdSubmit CmdType = iota + 1 // 限价 / 市价 / 止损
	CmdCancel                    // 撤单
)

// 命令是“入队即返回”，结果一律通过事件返回
type Command struct {
	Type  CmdType
	ReqID uint64 // 上游追踪用，原样带回事件里

	// Submit
	Kind  matching.Kind
	Side  matching.Side
	Qty   int64
	Price int64 // 最小价格单位，市价单为 0

	CancelOrderID uint64
}

type EventType uint8

const (
	EvAccepted      EventType = iota + 1 // 分配了订单 id
	EvRejected                           // 拒单
	EvRested                             // 限价单剩余挂入簿
	EvDropped                            // 市价单剩余丢弃
	EvStopParked                         // 止损单进入止损索引
	EvStopTriggered                      // 止损单转市价
	EvCancelled                          // 撤单生效
	EvTrade                              // 成交
)

// 命令结束标记：同一 Seq 的事件到此为止
const EvCmdEnd EventType = 250

func (t EventType) String() string {
	switch t {
	case EvAccepted:
		return "accepted"
	case EvRejected:
		return "rejected"
	case EvRested:
		return "rested"
	case EvDropped:
		return "dropped"
	case EvStopParked:
		return "stop_parked"
	case EvStopTriggered:
		return "stop_triggered"
	case EvCancelled:
		return "cancelled"
	case EvTrade:
		return "trade"
	case EvCmdEnd:
		return "cmd_end"
	}
	return "unknown"
}

type Event struct {
	Type EventType `json:"type"`

	// 同一个 actor 内单调递增，一条命令一个 Seq
	Seq   uint64 `json:"seq"`
	ReqID uint64 `json:"req_id"`
	Idx   uint16 `json:"idx"` // 同一 Seq 内事件序号

	OrderID uint64 `json:"order_id,omitempty"`

	// Trade 字段
	MakerOrderID uint64 `json:"maker_order_id,omitempty"`
	TakerOrderID uint64 `json:"taker_order_id,omitempty"`
	Price        int64  `json:"price,omitempty"`
	Qty          int64  `json:"qty,omitempty"`

	Lazy bool `json:"lazy,omitempty"` // Cancelled：进了撤单集合而不是直接弹出

	// Rejected
	Code   int    `json:"code,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// Snapshot 簿的概况，在 actor 协程里生成
type Snapshot struct {
	Seq       uint64 `json:"seq"`
	BestBid   int64  `json:"best_bid"`
	HasBid    bool   `json:"has_bid"`
	BestAsk   int64  `json:"best_ask"`
	HasAsk    bool   `json:"has_ask"`
	Bids      int    `json:"bids"`
	Asks      int    `json:"asks"`
	StopBuys  int    `json:"stop_buys"`
	StopSells int    `json:"stop_sells"`
	Matches   int    `json:"matches"`
	LastID    uint64 `json:"last_id"`
}

// 定义错误；投递失败的错误带拒单码，xerr.CodeOf 可取
var (
	ErrEngineBusy = xerr.New(xerr.EngineBusy, "engine busy: mailbox full")
	ErrStopped    = xerr.NewErrCode(xerr.EngineStopped)
	ErrBadCommand = xerr.New(xerr.BadInstruction, "bad command")
	ErrRunning    = errors.New("engine still running")
)
