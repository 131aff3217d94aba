package xerr

import (
	"errors"
	"fmt"
)

// 拒单错误码，随 Rejected 事件一起下发
const (
	OK             = 0
	BadInstruction = 400 // 指令格式、类型或方向不认识
	UnknownOrder   = 404 // 撤单目标不存在
	EngineBusy     = 503 // mailbox 满
	EngineStopped  = 504
	ServerError    = 500
)

type CodeError struct {
	Code  int    `json:"code"`
	Msg   string `json:"msg"`
	cause error
}

func (e *CodeError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("ErrCode:%d, Msg:%s: %v", e.Code, e.Msg, e.cause)
	}
	return fmt.Sprintf("ErrCode:%d, Msg:%s", e.Code, e.Msg)
}

func (e *CodeError) Unwrap() error { return e.cause }

func New(code int, msg string) error {
	return &CodeError{Code: code, Msg: msg}
}

func NewErrCode(code int) error {
	return &CodeError{Code: code, Msg: MapErrMsg(code)}
}

// Wrap 给底层错误挂上错误码，errors.Is 仍然能找到原错误
func Wrap(err error, code int) error {
	if err == nil {
		return nil
	}
	return &CodeError{Code: code, Msg: MapErrMsg(code), cause: err}
}

// CodeOf 取错误码；不是 CodeError 的按 ServerError 算
func CodeOf(err error) int {
	if err == nil {
		return OK
	}
	var ce *CodeError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ServerError
}

func MapErrMsg(code int) string {
	switch code {
	case OK:
		return "ok"
	case BadInstruction:
		return "指令错误"
	case UnknownOrder:
		return "订单不存在"
	case EngineBusy:
		return "撮合繁忙"
	case EngineStopped:
		return "撮合已停止"
	case ServerError:
		return "服务器开小差了"
	default:
		return "未知错误"
	}
}
