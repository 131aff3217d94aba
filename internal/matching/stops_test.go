package matching

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// 同一组触发价：9942:{9} 9943:{8,10} 9944:{7} 9948:{3,4} 9952:{1}
func fillStops(x *stopIndex, side Side) {
	x.Insert(side, 9948, 3)
	x.Insert(side, 9948, 4)
	x.Insert(side, 9952, 1)
	x.Insert(side, 9944, 7)
	x.Insert(side, 9943, 8)
	x.Insert(side, 9943, 10)
	x.Insert(side, 9942, 9)
}

func TestStopIndex_SellRangeFromPrice(t *testing.T) {
	x := newStopIndex()
	fillStops(x, Sell)

	// 买一 99.44：触发价 >= 99.44 的止损卖单全部触发
	ids := x.ExtractTriggered(Sell, 9944)
	assert.Equal(t, []uint64{7, 4, 3, 1}, ids)
	assert.Equal(t, 3, x.Len(Sell))

	// 已经取出的不会再出现
	assert.Equal(t, []uint64{10, 9, 8}, x.ExtractTriggered(Sell, 9900))
	assert.Equal(t, 0, x.Len(Sell))
	assert.Nil(t, x.ExtractTriggered(Sell, 0))
}

func TestStopIndex_BuyRangeUpToPrice(t *testing.T) {
	x := newStopIndex()
	fillStops(x, Buy)

	// 卖一 99.44：触发价 <= 99.44 的止损买单全部触发
	ids := x.ExtractTriggered(Buy, 9944)
	assert.Equal(t, []uint64{10, 9, 8, 7}, ids)
	assert.Equal(t, 3, x.Len(Buy))

	assert.Equal(t, []uint64{4, 3, 1}, x.ExtractTriggered(Buy, 10000))
}

func TestStopIndex_SidesIndependent(t *testing.T) {
	x := newStopIndex()
	x.Insert(Buy, 100, 1)
	x.Insert(Sell, 100, 2)

	assert.Equal(t, []uint64{2}, x.ExtractTriggered(Sell, 100))
	assert.Equal(t, 1, x.Len(Buy))
	assert.Nil(t, x.ExtractTriggered(Buy, 99))
	assert.Equal(t, []uint64{1}, x.ExtractTriggered(Buy, 100))
}

func TestStopIndex_BuyAtMaxPrice(t *testing.T) {
	x := newStopIndex()
	x.Insert(Buy, 100, 1)
	x.Insert(Buy, math.MaxInt64, 2)

	// 上界不能 +1 溢出
	assert.Equal(t, []uint64{2, 1}, x.ExtractTriggered(Buy, math.MaxInt64))
	assert.Equal(t, 0, x.Len(Buy))
}
