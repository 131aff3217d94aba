package gateway

import "context"

type Message struct {
	Topic   string
	Payload []byte
}

// Broker 成交推送的出口：单机用内存，多机走 NATS
type Broker interface {
	Publish(ctx context.Context, topic string, payload []byte) error
	Subscribe(ctx context.Context, topics []string) (<-chan Message, error)
	Close() error
}
