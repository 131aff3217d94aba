package matching

// entry 挂单快照 (price, qty, id)。
// 入簿之后剩余数量以这里为准，账本里的 Order 只做记录。
type entry struct {
	price int64
	qty   int64
	id    uint64
}

// 买盘：价高优先，同价 id 小的优先
type bidHeap []entry

func (m bidHeap) Len() int {
	return len(m)
}

func (m bidHeap) Less(i, j int) bool {
	if m[i].price != m[j].price {
		return m[i].price > m[j].price
	}
	return m[i].id < m[j].id
}

func (m bidHeap) Swap(i, j int) {
	m[i], m[j] = m[j], m[i]
}

func (m *bidHeap) Push(x any) {
	*m = append(*m, x.(entry))
}

func (m *bidHeap) Pop() any {
	old := *m
	n := len(old)
	x := old[n-1]
	*m = old[:n-1]
	return x
}

// 卖盘：价低优先，同价 id 小的优先
type askHeap []entry

func (m askHeap) Len() int {
	return len(m)
}

func (m askHeap) Less(i, j int) bool {
	if m[i].price != m[j].price {
		return m[i].price < m[j].price
	}
	return m[i].id < m[j].id
}

func (m askHeap) Swap(i, j int) {
	m[i], m[j] = m[j], m[i]
}

func (m *askHeap) Push(x any) {
	*m = append(*m, x.(entry))
}

func (m *askHeap) Pop() any {
	old := *m
	n := len(old)
	x := old[n-1]
	*m = old[:n-1]
	return x
}
