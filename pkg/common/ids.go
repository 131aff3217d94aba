package common

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// NewRunID 每次进程运行一个 id，写进日志的 trace_id
func NewRunID() string { return uuid.NewString() }

// ReqSeq 进程内请求号，给投递到 actor 的命令编号
type ReqSeq struct{ n atomic.Uint64 }

func (s *ReqSeq) Next() uint64 { return s.n.Add(1) }
