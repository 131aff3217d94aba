package engine

import (
	"encoding/binary"
	"errors"

	"github.com/segmentio/encoding/json"
)

type evJSON struct {
	V  uint8 `json:"v"`
	Ev Event `json:"ev"`
}

// JSONEvCodec 可读格式，给 NATS 下游和调试用
type JSONEvCodec struct{ Version uint8 }

func (c JSONEvCodec) Encode(dst []byte, ev Event) ([]byte, error) {
	b, err := json.Marshal(evJSON{V: c.Version, Ev: ev})
	if err != nil {
		return nil, err
	}
	return append(dst, b...), nil
}

func (c JSONEvCodec) Decode(payload []byte) (Event, error) {
	var rec evJSON
	if err := json.Unmarshal(payload, &rec); err != nil {
		return Event{}, err
	}
	return rec.Ev, nil
}

const (
	evBinVersion = 1
	evRecordLen  = 64

	evOffVer   = 0
	evOffType  = 1  // uint8
	evOffFlags = 2  // uint8，bit0 = Lazy
	evOffIdx   = 3  // uint16
	evOffCode  = 5  // uint16
	evOffSeq   = 7  // uint64
	evOffReqID = 15 // uint64
	evOffOrder = 23 // uint64
	evOffMaker = 31 // uint64
	evOffTaker = 39 // uint64
	evOffPrice = 47 // int64 as uint64
	evOffQty   = 55 // int64 as uint64，最后 1 字节保留
)

var (
	ErrBadEvRecordLen = errors.New("codec: bad event record length")
	ErrBadEvVersion   = errors.New("codec: bad event version")
)

// BinaryEvCodec 定长小端编码，不带 Reason（拒单原因只走 JSON）
type BinaryEvCodec struct{}

func (BinaryEvCodec) Encode(dst []byte, ev Event) ([]byte, error) {
	n := len(dst)
	dst = append(dst, make([]byte, evRecordLen)...)
	rec := dst[n:]

	rec[evOffVer] = evBinVersion
	rec[evOffType] = byte(ev.Type)
	if ev.Lazy {
		rec[evOffFlags] = 1
	}
	binary.LittleEndian.PutUint16(rec[evOffIdx:], ev.Idx)
	binary.LittleEndian.PutUint16(rec[evOffCode:], uint16(ev.Code))
	binary.LittleEndian.PutUint64(rec[evOffSeq:], ev.Seq)
	binary.LittleEndian.PutUint64(rec[evOffReqID:], ev.ReqID)
	binary.LittleEndian.PutUint64(rec[evOffOrder:], ev.OrderID)
	binary.LittleEndian.PutUint64(rec[evOffMaker:], ev.MakerOrderID)
	binary.LittleEndian.PutUint64(rec[evOffTaker:], ev.TakerOrderID)
	binary.LittleEndian.PutUint64(rec[evOffPrice:], uint64(ev.Price))
	binary.LittleEndian.PutUint64(rec[evOffQty:], uint64(ev.Qty))
	return dst, nil
}

func (BinaryEvCodec) Decode(payload []byte) (Event, error) {
	if len(payload) != evRecordLen {
		return Event{}, ErrBadEvRecordLen
	}
	if payload[evOffVer] != evBinVersion {
		return Event{}, ErrBadEvVersion
	}
	return Event{
		Type:         EventType(payload[evOffType]),
		Lazy:         payload[evOffFlags]&1 == 1,
		Idx:          binary.LittleEndian.Uint16(payload[evOffIdx:]),
		Code:         int(binary.LittleEndian.Uint16(payload[evOffCode:])),
		Seq:          binary.LittleEndian.Uint64(payload[evOffSeq:]),
		ReqID:        binary.LittleEndian.Uint64(payload[evOffReqID:]),
		OrderID:      binary.LittleEndian.Uint64(payload[evOffOrder:]),
		MakerOrderID: binary.LittleEndian.Uint64(payload[evOffMaker:]),
		TakerOrderID: binary.LittleEndian.Uint64(payload[evOffTaker:]),
		Price:        int64(binary.LittleEndian.Uint64(payload[evOffPrice:])),
		Qty:          int64(binary.LittleEndian.Uint64(payload[evOffQty:])),
	}, nil
}
