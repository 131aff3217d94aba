package feed

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"openbooks.com/internal/matching"
)

var benchTrade = matching.Trade{TakerID: 1234567, MakerID: 1234, Qty: 250, Price: 6800050}

func TestAppendMatchSameAsDecimal(t *testing.T) {
	for _, p := range []int64{0, 5, 9, 10, 99, 100, 9950, 6800050} {
		tr := matching.Trade{TakerID: 2, MakerID: 1, Qty: 4, Price: p}
		want := fmt.Sprintf("match 2 1 4 %s", FormatPrice(p))
		assert.Equal(t, want, string(AppendMatch(nil, tr)), "price %d", p)
	}
}

func BenchmarkFormatMatchSprintf(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = fmt.Sprintf("match %d %d %d %s", benchTrade.TakerID, benchTrade.MakerID, benchTrade.Qty, FormatPrice(benchTrade.Price))
	}
}

func BenchmarkAppendMatch(b *testing.B) {
	buf := make([]byte, 0, 64)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf = AppendMatch(buf[:0], benchTrade)
	}
}
