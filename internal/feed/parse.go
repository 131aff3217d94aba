package feed

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/segmentio/encoding/json"

	"openbooks.com/internal/matching"
)

var (
	ErrMalformed = errors.New("feed: malformed instruction")
	ErrEmpty     = errors.New("feed: empty line")
)

// Instruction 一行输入解析出来的指令。
// Cancel 的 Qty 是要撤销的订单 id。
type Instruction struct {
	Kind  matching.Kind
	Side  matching.Side
	Qty   int64
	Price int64 // 最小价格单位
}

// ParseLine 支持两种写法：
//
//	l b 10 99.50          （类型、方向只看首字母，limit buy 10 99.50 也行）
//	{"kind":"limit","side":"buy","qty":10,"price":"99.50"}
//
// 市价单和撤单可以不写价格。空行和 # 开头的行返回 ErrEmpty。
func ParseLine(line string) (Instruction, error) {
	line = strings.TrimSpace(line)
	if line == "" || line[0] == '#' {
		return Instruction{}, ErrEmpty
	}
	if line[0] == '{' {
		return parseJSON([]byte(line))
	}

	f := strings.Fields(line)
	if len(f) < 3 || len(f) > 4 {
		return Instruction{}, fmt.Errorf("%w: want 3 or 4 fields, got %d", ErrMalformed, len(f))
	}
	price := ""
	if len(f) == 4 {
		price = f[3]
	}
	return build(f[0], f[1], f[2], price)
}

type jsonInstruction struct {
	Kind  string          `json:"kind"`
	Side  string          `json:"side"`
	Qty   json.Number     `json:"qty"`
	Price json.RawMessage `json:"price"`
}

func parseJSON(b []byte) (Instruction, error) {
	var j jsonInstruction
	if err := json.Unmarshal(b, &j); err != nil {
		return Instruction{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	// 价格可以写成字符串也可以写成数字
	price := string(bytes.Trim(j.Price, `"`))
	if price == "null" {
		price = ""
	}
	return build(j.Kind, j.Side, j.Qty.String(), price)
}

func build(kindStr, sideStr, qtyStr, priceStr string) (Instruction, error) {
	if kindStr == "" || sideStr == "" {
		return Instruction{}, fmt.Errorf("%w: missing kind or side", ErrMalformed)
	}
	kind, ok := matching.KindFromByte(kindStr[0])
	if !ok {
		return Instruction{}, fmt.Errorf("%w: %q", matching.ErrUnknownKind, kindStr)
	}
	side, ok := matching.SideFromByte(sideStr[0])
	if !ok {
		return Instruction{}, fmt.Errorf("%w: %q", matching.ErrUnknownSide, sideStr)
	}
	qty, err := strconv.ParseInt(qtyStr, 10, 64)
	if err != nil || qty < 0 {
		return Instruction{}, fmt.Errorf("%w: qty %q", ErrMalformed, qtyStr)
	}

	in := Instruction{Kind: kind, Side: side, Qty: qty}
	switch {
	case priceStr != "":
		p, err := ParsePrice(priceStr)
		if err != nil {
			return Instruction{}, err
		}
		if kind == matching.Limit || kind == matching.Stop {
			in.Price = p
		}
	case kind == matching.Limit || kind == matching.Stop:
		return Instruction{}, fmt.Errorf("%w: %s order needs a price", ErrMalformed, kind)
	}
	return in, nil
}
