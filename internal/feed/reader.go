package feed

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"golang.org/x/time/rate"
)

// LineError 某一行解析失败，调用方记日志后可以继续读
type LineError struct {
	Line int
	Text string
	Err  error
}

func (e *LineError) Error() string { return fmt.Sprintf("line %d %q: %v", e.Line, e.Text, e.Err) }
func (e *LineError) Unwrap() error { return e.Err }

type Reader struct {
	sc   *bufio.Scanner
	line int
	lim  *rate.Limiter
}

type Option func(*Reader)

// WithRate 限制每秒喂给引擎的指令数，<=0 不限
func WithRate(perSec float64, burst int) Option {
	return func(r *Reader) {
		if perSec <= 0 {
			return
		}
		if burst <= 0 {
			burst = 1
		}
		r.lim = rate.NewLimiter(rate.Limit(perSec), burst)
	}
}

func NewReader(src io.Reader, opts ...Option) *Reader {
	sc := bufio.NewScanner(src)
	sc.Buffer(make([]byte, 0, 4096), 1<<20)
	r := &Reader{sc: sc}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Next 返回下一条指令，跳过空行和注释。
// 坏行返回 *LineError；读完返回 io.EOF。
func (r *Reader) Next(ctx context.Context) (Instruction, error) {
	for r.sc.Scan() {
		r.line++
		text := r.sc.Text()
		in, err := ParseLine(text)
		if errors.Is(err, ErrEmpty) {
			continue
		}
		if err != nil {
			return Instruction{}, &LineError{Line: r.line, Text: text, Err: err}
		}
		if r.lim != nil {
			if err := r.lim.Wait(ctx); err != nil {
				return Instruction{}, err
			}
		}
		return in, nil
	}
	if err := r.sc.Err(); err != nil {
		return Instruction{}, err
	}
	return Instruction{}, io.EOF
}

func (r *Reader) Line() int { return r.line }
