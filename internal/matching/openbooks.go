package matching

import (
	"cmp"
	"fmt"
	"slices"

	"go.uber.org/zap"
)

// OpenBooks 单品种撮合引擎，持有两侧挂单队列、止损索引、撤单集合和订单账本。
// 不是并发安全的：同一时间只能有一个 goroutine 调用（见 internal/engine 的 actor）。
type OpenBooks struct {
	bids    *priceQueue
	asks    *priceQueue
	stops   *stopIndex
	cancels cancelSet

	orders  []Order // 账本，orders[id-1]
	matches []Trade
	nextID  uint64

	cur uint64 // 最近一次 Submit 还没处理的订单 id，0 表示没有

	log *zap.Logger
	lis Listener
}

type Option func(*OpenBooks)

func WithLogger(l *zap.Logger) Option {
	return func(b *OpenBooks) {
		if l != nil {
			b.log = l
		}
	}
}

func WithListener(l Listener) Option {
	return func(b *OpenBooks) {
		if l != nil {
			b.lis = l
		}
	}
}

func NewOpenBooks(opts ...Option) *OpenBooks {
	cancels := newCancelSet()
	b := &OpenBooks{
		bids:    newPriceQueue(Buy, cancels),
		asks:    newPriceQueue(Sell, cancels),
		stops:   newStopIndex(),
		cancels: cancels,
		// 先预分配好长度
		orders:  make([]Order, 0, 64),
		matches: make([]Trade, 0, 64),
		nextID:  1,
		log:     zap.NewNop(),
		lis:     nopListener{},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Submit 创建订单并记账，分配新的 id。
// Cancel 单的 qty 是要撤销的订单 id（输入协议沿用的写法），存到 Target 里。
// 类型或方向不认识时返回错误，不分配 id，也不能再调用 RunToCompletion。
func (b *OpenBooks) Submit(kind Kind, side Side, qty, price int64) (uint64, error) {
	if !kind.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrUnknownKind, kind)
	}
	if !side.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrUnknownSide, side)
	}
	o := Order{ID: b.nextID, Kind: kind, Side: side, Qty: qty, Price: price}
	if kind == Cancel {
		o.Target, o.Qty, o.Price = uint64(qty), 0, 0
	}
	b.nextID++
	b.orders = append(b.orders, o)
	b.cur = o.ID
	return o.ID, nil
}

// RunToCompletion 处理最近提交的订单，包括它引发的所有止损连锁。
// 连锁是深度优先的：一张触发单自己引发的触发先于它的兄弟处理。
// 用显式的栈代替递归，深度不受调用栈限制。
func (b *OpenBooks) RunToCompletion() error {
	if b.cur == 0 {
		return ErrNoPending
	}
	first := b.orders[b.cur-1]
	b.cur = 0

	var firstErr error
	work := []Order{first}
	for len(work) > 0 {
		o := work[len(work)-1]
		work = work[:len(work)-1]

		bid, bidOK := b.bids.BestPrice()
		ask, askOK := b.asks.BestPrice()

		if err := b.dispatch(&o); err != nil && firstErr == nil {
			firstErr = err
		}
		b.orders[o.ID-1] = o

		// notify 按 id 从大到小返回，倒着压栈，id 最大的先出栈
		trig := b.notify(bid, bidOK, ask, askOK)
		for i := len(trig) - 1; i >= 0; i-- {
			work = append(work, trig[i])
		}
	}
	return firstErr
}

// Apply = Submit + RunToCompletion
func (b *OpenBooks) Apply(kind Kind, side Side, qty, price int64) (uint64, error) {
	id, err := b.Submit(kind, side, qty, price)
	if err != nil {
		return 0, err
	}
	return id, b.RunToCompletion()
}

func (b *OpenBooks) dispatch(o *Order) error {
	switch o.Kind {
	case Limit, Market:
		b.match(o)
		if o.Qty > 0 {
			b.deposit(o)
		}
	case Stop:
		p, ok := b.queue(o.Side.Opposite()).BestPrice()
		if o.Matchable(p, ok) {
			// 市场已经穿过触发价：直接转市价单
			o.Transform()
			b.lis.StopTriggered(o.ID, o.Qty)
			b.log.Debug("stop converted on arrival", zap.Uint64("id", o.ID), zap.Int64("qty", o.Qty))
			return b.dispatch(o)
		}
		b.deposit(o)
	case Cancel:
		return b.cancel(o)
	}
	return nil
}

func (b *OpenBooks) deposit(o *Order) {
	switch o.Kind {
	case Limit:
		b.queue(o.Side).Push(entry{price: o.Price, qty: o.Qty, id: o.ID})
		b.lis.Rested(*o)
	case Stop:
		b.stops.Insert(o.Side, o.Price, o.ID)
		b.lis.StopParked(*o)
	case Market:
		// 市价单没成交完的部分直接丢弃
		b.lis.Dropped(*o)
		b.log.Debug("market residue dropped", zap.Uint64("id", o.ID), zap.Int64("qty", o.Qty))
	}
}

func (b *OpenBooks) cancel(o *Order) error {
	t := o.Target
	// 只能撤比自己早的订单，撤自己也算不存在
	if t == 0 || t >= o.ID {
		b.log.Warn("cancel of unknown order", zap.Uint64("id", o.ID), zap.Uint64("target", t))
		return fmt.Errorf("%w: %d", ErrCancelUnknown, t)
	}
	// 正好在堆顶：O(1) 弹掉
	if b.asks.popIfTop(t) || b.bids.popIfTop(t) {
		b.lis.Cancelled(t, false)
		return nil
	}
	b.cancels.add(t)
	b.lis.Cancelled(t, true)
	return nil
}

// notify 比较处理前后的买一/卖一，变了就去止损索引里找被穿过的止损单。
// 买一变化影响止损卖单，卖一变化影响止损买单。
func (b *OpenBooks) notify(bid int64, bidOK bool, ask int64, askOK bool) []Order {
	var ids []uint64
	if p, ok := b.bids.BestPrice(); ok && (!bidOK || p != bid) {
		ids = append(ids, b.stops.ExtractTriggered(Sell, p)...)
	}
	if p, ok := b.asks.BestPrice(); ok && (!askOK || p != ask) {
		ids = append(ids, b.stops.ExtractTriggered(Buy, p)...)
	}
	if len(ids) == 0 {
		return nil
	}
	slices.SortFunc(ids, func(x, y uint64) int { return cmp.Compare(y, x) })

	out := make([]Order, 0, len(ids))
	for _, id := range ids {
		if b.cancels.take(id) {
			b.log.Debug("skip cancelled stop", zap.Uint64("id", id))
			continue
		}
		src := b.orders[id-1]
		mo := Order{ID: id, Kind: Market, Side: src.Side, Qty: src.Qty}
		b.lis.StopTriggered(id, mo.Qty)
		out = append(out, mo)
	}
	return out
}

func (b *OpenBooks) queue(s Side) *priceQueue {
	if s == Buy {
		return b.bids
	}
	return b.asks
}
