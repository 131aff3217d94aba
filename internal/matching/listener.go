package matching

// Listener 撮合过程中的回调，上层（actor）把它翻译成事件。
// 回调在撮合线程里同步执行，不能阻塞，也不能回调 OpenBooks。
type Listener interface {
	Trade(t Trade)
	Rested(o Order)                 // 限价单剩余部分挂单入簿
	Dropped(o Order)                // 市价单剩余部分丢弃
	StopParked(o Order)             // 止损单进入止损索引
	StopTriggered(id uint64, qty int64)
	Cancelled(target uint64, lazy bool)
}

type nopListener struct{}

func (nopListener) Trade(Trade)                 {}
func (nopListener) Rested(Order)                {}
func (nopListener) Dropped(Order)               {}
func (nopListener) StopParked(Order)            {}
func (nopListener) StopTriggered(uint64, int64) {}
func (nopListener) Cancelled(uint64, bool)      {}
