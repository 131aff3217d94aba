package matching

import "container/heap"

// priceQueue 一侧的挂单队列。
// 被撤销的订单不主动删除，Peek/Pop 遇到时才丢掉（lazy deletion）。
type priceQueue struct {
	h       heap.Interface
	cancels cancelSet
}

func newPriceQueue(side Side, cancels cancelSet) *priceQueue {
	var h heap.Interface
	if side == Buy {
		h = &bidHeap{}
	} else {
		h = &askHeap{}
	}
	heap.Init(h)
	return &priceQueue{h: h, cancels: cancels}
}

func (q *priceQueue) Push(e entry) { heap.Push(q.h, e) }

// Len 包含还没浮到堆顶的已撤订单
func (q *priceQueue) Len() int { return q.h.Len() }

func (q *priceQueue) top() entry {
	switch h := q.h.(type) {
	case *bidHeap:
		return (*h)[0]
	case *askHeap:
		return (*h)[0]
	}
	panic("matching: unexpected heap type")
}

// Peek 返回最优的有效挂单；堆顶是已撤订单就弹掉继续找
func (q *priceQueue) Peek() (entry, bool) {
	for q.h.Len() > 0 {
		e := q.top()
		if !q.cancels.take(e.id) {
			return e, true
		}
		heap.Pop(q.h) // lazy：丢掉已撤订单
	}
	return entry{}, false
}

func (q *priceQueue) Pop() (entry, bool) {
	if _, ok := q.Peek(); !ok {
		return entry{}, false
	}
	return heap.Pop(q.h).(entry), true
}

// BestPrice 当前最优价，没有流动性时 ok=false
func (q *priceQueue) BestPrice() (int64, bool) {
	e, ok := q.Peek()
	return e.price, ok
}

// popIfTop 撤单快路径：目标正好在堆顶就直接弹掉
func (q *priceQueue) popIfTop(id uint64) bool {
	e, ok := q.Peek()
	if !ok || e.id != id {
		return false
	}
	heap.Pop(q.h)
	return true
}

// each 遍历所有仍有效的挂单，顺序不保证
func (q *priceQueue) each(fn func(e entry)) {
	var all []entry
	switch h := q.h.(type) {
	case *bidHeap:
		all = *h
	case *askHeap:
		all = *h
	}
	for _, e := range all {
		if q.cancels.has(e.id) {
			continue
		}
		fn(e)
	}
}
