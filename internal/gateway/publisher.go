package gateway

import (
	"context"
	"slices"

	"go.uber.org/zap"

	"openbooks.com/internal/engine"
)

// Publisher 把引擎事件编码后发到 broker。只给一个消费协程用
type Publisher struct {
	broker Broker
	codec  engine.EvCodec
	topic  string
	types  []engine.EventType // 为空表示全部
	log    *zap.Logger

	published uint64
	failed    uint64
}

func NewPublisher(b Broker, codec engine.EvCodec, topic string, log *zap.Logger, types ...engine.EventType) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{broker: b, codec: codec, topic: topic, types: types, log: log}
}

func (p *Publisher) Wants(t engine.EventType) bool {
	return len(p.types) == 0 || slices.Contains(p.types, t)
}

// Publish 发布失败只记日志和计数，不影响撮合输出
func (p *Publisher) Publish(ctx context.Context, ev engine.Event) error {
	if !p.Wants(ev.Type) {
		return nil
	}
	// 每条新分配：MemBroker 会把 payload 直接交给订阅者
	payload, err := p.codec.Encode(nil, ev)
	if err != nil {
		p.failed++
		return err
	}
	if err := p.broker.Publish(ctx, p.topic, payload); err != nil {
		p.failed++
		p.log.Warn("broker publish failed", zap.String("topic", p.topic), zap.Uint64("seq", ev.Seq), zap.Error(err))
		return err
	}
	p.published++
	return nil
}

func (p *Publisher) Stats() (published, failed uint64) { return p.published, p.failed }
