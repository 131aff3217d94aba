package matching

// cancelSet 惰性撤单：撤单时不在堆顶的订单先记下来，
// 等它浮到堆顶（或者被触发）时再丢弃。
type cancelSet map[uint64]struct{}

func newCancelSet() cancelSet { return make(cancelSet, 64) }

func (c cancelSet) add(id uint64) { c[id] = struct{}{} }

func (c cancelSet) has(id uint64) bool {
	_, ok := c[id]
	return ok
}

// take 命中就顺手删掉，一个 id 只会被跳过一次
func (c cancelSet) take(id uint64) bool {
	if _, ok := c[id]; !ok {
		return false
	}
	delete(c, id)
	return true
}
