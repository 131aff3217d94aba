package matching

import (
	"cmp"
	"math"
	"slices"

	"github.com/google/btree"
)

// stopLevel 同一触发价下的止损单，按提交顺序排列
type stopLevel struct {
	price int64
	ids   []uint64
}

func lessStopLevel(a, b *stopLevel) bool { return a.price < b.price }

// stopIndex 止损单索引：每一侧一棵按触发价排序的 btree。
// 止损卖单看买一价，止损买单看卖一价。
type stopIndex struct {
	sides [2]*btree.BTreeG[*stopLevel]
	count [2]int
}

func newStopIndex() *stopIndex {
	return &stopIndex{
		sides: [2]*btree.BTreeG[*stopLevel]{
			btree.NewG(8, lessStopLevel),
			btree.NewG(8, lessStopLevel),
		},
	}
}

func sideIdx(s Side) int {
	if s == Buy {
		return 0
	}
	return 1
}

func (x *stopIndex) Insert(side Side, price int64, id uint64) {
	i := sideIdx(side)
	t := x.sides[i]
	if lv, ok := t.Get(&stopLevel{price: price}); ok {
		lv.ids = append(lv.ids, id)
	} else {
		t.ReplaceOrInsert(&stopLevel{price: price, ids: []uint64{id}})
	}
	x.count[i]++
}

func (x *stopIndex) Len(side Side) int { return x.count[sideIdx(side)] }

// ExtractTriggered 取出被新市场价穿过的止损单并从索引删除。
//   - 止损卖：触发价区间 [price, +∞)
//   - 止损买：触发价区间 (-∞, price]
//
// 返回的 id 按从大到小排序（后提交的先处理）。
func (x *stopIndex) ExtractTriggered(side Side, price int64) []uint64 {
	i := sideIdx(side)
	t := x.sides[i]

	var hit []*stopLevel
	collect := func(lv *stopLevel) bool {
		hit = append(hit, lv)
		return true
	}
	switch {
	case side == Sell:
		t.AscendGreaterOrEqual(&stopLevel{price: price}, collect)
	case price == math.MaxInt64:
		t.Ascend(collect)
	default:
		t.AscendLessThan(&stopLevel{price: price + 1}, collect)
	}
	if len(hit) == 0 {
		return nil
	}

	var ids []uint64
	for _, lv := range hit {
		ids = append(ids, lv.ids...)
		t.Delete(lv)
	}
	x.count[i] -= len(ids)
	slices.SortFunc(ids, func(a, b uint64) int { return cmp.Compare(b, a) })
	return ids
}
