package matching

import "fmt"

// Order 一笔订单：id 不可变，其余是交易状态。
// Cancel 单不占流动性，要撤的订单 id 放在 Target 里。
type Order struct {
	ID     uint64
	Kind   Kind
	Side   Side
	Qty    int64 // 剩余未成交数量
	Price  int64 // 限价 / 触发价，最小单位
	Target uint64
}

func (o *Order) SetQty(q int64) { o.Qty = q }

// Matchable 根据对手盘最优价判断当前订单能否继续撮合。
// opp/ok 是对手盘的最优价，ok=false 表示对手盘没有流动性。
func (o *Order) Matchable(opp int64, ok bool) bool {
	if o.Qty <= 0 || !ok {
		return false
	}
	switch o.Kind {
	case Limit:
		if o.Side == Sell {
			return o.Price <= opp
		}
		return o.Price >= opp
	case Market:
		return true
	case Stop:
		// 与限价单方向相反：市场价穿过触发价才触发
		if o.Side == Sell {
			return o.Price >= opp
		}
		return o.Price <= opp
	default:
		return false
	}
}

// Transform 止损单触发后转成市价单
func (o *Order) Transform() {
	if o.Kind != Stop {
		return
	}
	o.Kind = Market
	o.Price = 0
}

func (o Order) String() string {
	if o.Kind == Cancel {
		return fmt.Sprintf("%d %s %s %d", o.ID, o.Kind, o.Side, o.Target)
	}
	return fmt.Sprintf("%d %s %s %d %d.%02d", o.ID, o.Kind, o.Side, o.Qty, o.Price/100, o.Price%100)
}
