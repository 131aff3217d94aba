package gateway

import (
	"context"
	"sync"
	"sync/atomic"
)

type MemBroker struct {
	mu      sync.RWMutex
	subs    map[string][]chan Message
	bufSize int
	dropped uint64
}

func NewMemBroker(bufSize int) *MemBroker {
	if bufSize <= 0 {
		bufSize = 4096
	}
	return &MemBroker{subs: make(map[string][]chan Message), bufSize: bufSize}
}

// Publish fanout：at-most-once，慢订阅者直接丢
func (b *MemBroker) Publish(ctx context.Context, topic string, payload []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	msg := Message{Topic: topic, Payload: payload}
	for _, ch := range b.subs[topic] {
		select {
		case ch <- msg:
		default:
			atomic.AddUint64(&b.dropped, 1)
		}
	}
	return nil
}

// Subscribe ctx 结束时退订并关闭通道
func (b *MemBroker) Subscribe(ctx context.Context, topics []string) (<-chan Message, error) {
	ch := make(chan Message, b.bufSize)
	b.mu.Lock()
	for _, t := range topics {
		b.subs[t] = append(b.subs[t], ch)
	}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		for _, t := range topics {
			b.subs[t] = remove(b.subs[t], ch)
		}
		b.mu.Unlock()
		close(ch)
	}()
	return ch, nil
}

func (b *MemBroker) Dropped() uint64 { return atomic.LoadUint64(&b.dropped) }

func (b *MemBroker) Close() error { return nil }

func remove(list []chan Message, ch chan Message) []chan Message {
	out := list[:0]
	for _, c := range list {
		if c != ch {
			out = append(out, c)
		}
	}
	return out
}
