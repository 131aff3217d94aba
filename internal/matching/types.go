package matching

import "errors"

// 定义数据结构

// Side 买卖方向
type Side uint8

const (
	Buy Side = iota + 1
	Sell
)

// Opposite 对手盘方向
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

func (s Side) Valid() bool { return s == Buy || s == Sell }

func (s Side) String() string {
	switch s {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	default:
		return "na"
	}
}

// Kind 订单类型
type Kind uint8

const (
	Limit Kind = iota + 1
	Market
	Stop
	Cancel
)

func (k Kind) Valid() bool { return k >= Limit && k <= Cancel }

func (k Kind) String() string {
	switch k {
	case Limit:
		return "limit"
	case Market:
		return "market"
	case Stop:
		return "stop"
	case Cancel:
		return "cancel"
	default:
		return "na"
	}
}

// KindFromByte 输入协议里的单字符类型：l/m/s/c
func KindFromByte(b byte) (Kind, bool) {
	switch b {
	case 'l':
		return Limit, true
	case 'm':
		return Market, true
	case 's':
		return Stop, true
	case 'c':
		return Cancel, true
	}
	return 0, false
}

// SideFromByte 输入协议里的单字符方向：b/s
func SideFromByte(b byte) (Side, bool) {
	switch b {
	case 'b':
		return Buy, true
	case 's':
		return Sell, true
	}
	return 0, false
}

// Trade 成交记录，价格永远是 maker 的挂单价
type Trade struct {
	TakerID uint64
	MakerID uint64
	Qty     int64
	Price   int64 // 最小单位（×100）
}

// 定义错误
var (
	ErrUnknownKind   = errors.New("matching: unknown order kind")
	ErrUnknownSide   = errors.New("matching: unknown order side")
	ErrCancelUnknown = errors.New("matching: cancel of unknown order")
	ErrNoPending     = errors.New("matching: no submitted order to process")
)
