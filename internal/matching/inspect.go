package matching

import (
	"cmp"
	"slices"
)

// MarketPrice 某一侧的最优价（买一/卖一）。已撤订单不算。
func (b *OpenBooks) MarketPrice(s Side) (int64, bool) {
	return b.queue(s).BestPrice()
}

// Matches 按生成顺序返回全部成交记录（拷贝）
func (b *OpenBooks) Matches() []Trade { return slices.Clone(b.matches) }

func (b *OpenBooks) MatchCount() int { return len(b.matches) }

// Order 账本查询。挂单入簿后的剩余数量以挂单队列为准，这里只是最后一次处理时的状态。
func (b *OpenBooks) Order(id uint64) (Order, bool) {
	if id == 0 || id > uint64(len(b.orders)) {
		return Order{}, false
	}
	return b.orders[id-1], true
}

// LastID 最后分配的订单 id，没有订单时是 0
func (b *OpenBooks) LastID() uint64 { return b.nextID - 1 }

// RestingLen 挂单队列里的条目数，包含还没浮到堆顶的已撤订单
func (b *OpenBooks) RestingLen(s Side) int { return b.queue(s).Len() }

func (b *OpenBooks) StopLen(s Side) int { return b.stops.Len(s) }

// Level 聚合后的价位
type Level struct {
	Price  int64
	Qty    int64
	Orders int
}

// Depth 返回某一侧前 n 档聚合深度，最优价在前；n<=0 返回全部
func (b *OpenBooks) Depth(s Side, n int) []Level {
	byPrice := make(map[int64]*Level)
	b.queue(s).each(func(e entry) {
		lv := byPrice[e.price]
		if lv == nil {
			lv = &Level{Price: e.price}
			byPrice[e.price] = lv
		}
		lv.Qty += e.qty
		lv.Orders++
	})
	out := make([]Level, 0, len(byPrice))
	for _, lv := range byPrice {
		out = append(out, *lv)
	}
	slices.SortFunc(out, func(x, y Level) int {
		if s == Buy {
			return cmp.Compare(y.Price, x.Price)
		}
		return cmp.Compare(x.Price, y.Price)
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
