package feed

import (
	"fmt"
	"math"
	"strconv"

	"github.com/shopspring/decimal"

	"openbooks.com/internal/matching"
)

var (
	hundred  = decimal.NewFromInt(100)
	maxMinor = decimal.NewFromInt(math.MaxInt64)
)

// ParsePrice "99.50" -> 9950。最多两位小数，不能为负
func ParsePrice(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: price %q", ErrMalformed, s)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("%w: negative price %q", ErrMalformed, s)
	}
	minor := d.Mul(hundred)
	if !minor.IsInteger() {
		return 0, fmt.Errorf("%w: price %q has more than two decimals", ErrMalformed, s)
	}
	// IntPart 超出 int64 会截断，先挡掉
	if minor.GreaterThan(maxMinor) {
		return 0, fmt.Errorf("%w: price %q out of range", ErrMalformed, s)
	}
	return minor.IntPart(), nil
}

// FormatPrice 9950 -> "99.50"，9 -> "0.09"
func FormatPrice(p int64) string {
	return decimal.New(p, -2).StringFixed(2)
}

// FormatMatch 输出行：match <taker> <maker> <qty> <price>
func FormatMatch(t matching.Trade) string {
	return string(AppendMatch(nil, t))
}

// AppendMatch 热路径版本，不带换行，复用调用方的 buffer
func AppendMatch(dst []byte, t matching.Trade) []byte {
	dst = append(dst, "match "...)
	dst = strconv.AppendUint(dst, t.TakerID, 10)
	dst = append(dst, ' ')
	dst = strconv.AppendUint(dst, t.MakerID, 10)
	dst = append(dst, ' ')
	dst = strconv.AppendInt(dst, t.Qty, 10)
	dst = append(dst, ' ')
	return appendPrice(dst, t.Price)
}

// appendPrice 和 FormatPrice 输出一致：整数部分 + 两位补零的小数
func appendPrice(dst []byte, p int64) []byte {
	if p < 0 {
		dst = append(dst, '-')
		p = -p
	}
	dst = strconv.AppendInt(dst, p/100, 10)
	minor := p % 100
	return append(dst, '.', byte('0'+minor/10), byte('0'+minor%10))
}
