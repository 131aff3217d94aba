package engine

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"openbooks.com/internal/matching"
)

// mockBook：只记调用次数，每次发一个 Rested
type mockBook struct {
	submitCalls uint64
	cancelCalls uint64
}

func (m *mockBook) Submit(reqID uint64, kind matching.Kind, side matching.Side, qty, price int64, emit Emitter) uint64 {
	n := atomic.AddUint64(&m.submitCalls, 1)
	emit.Accepted(reqID, n)
	emit.Rested(reqID, n, price, qty)
	return n
}

func (m *mockBook) Cancel(reqID uint64, side matching.Side, orderID uint64, emit Emitter) bool {
	atomic.AddUint64(&m.cancelCalls, 1)
	emit.Cancelled(reqID, orderID, false)
	return true
}

func (m *mockBook) Snapshot() Snapshot {
	return Snapshot{LastID: atomic.LoadUint64(&m.submitCalls)}
}

func limit(req uint64, side matching.Side, qty, price int64) Command {
	return Command{Type: CmdSubmit, ReqID: req, Kind: matching.Limit, Side: side, Qty: qty, Price: price}
}

// 收集事件直到出现 n 个 EvCmdEnd
func waitCmdEnds(t *testing.T, ch <-chan Event, n int) []Event {
	t.Helper()
	deadline := time.NewTimer(2 * time.Second)
	defer deadline.Stop()

	var out []Event
	for n > 0 {
		select {
		case ev := <-ch:
			out = append(out, ev)
			if ev.Type == EvCmdEnd {
				n--
			}
		case <-deadline.C:
			t.Fatalf("timeout waiting events, got %d", len(out))
		}
	}
	return out
}

func TestActor_TryEnqueue_BusyWhenFull(t *testing.T) {
	a := NewBookActor(&mockBook{}, NewChanBus(16), ActorConfig{MailboxSize: 1}, nil)

	require.NoError(t, a.TryEnqueue(limit(1, matching.Buy, 1, 100)))
	err := a.TryEnqueue(limit(2, matching.Buy, 1, 100))
	assert.ErrorIs(t, err, ErrEngineBusy)
	assert.Equal(t, uint64(1), a.MailboxFull())
}

func TestActor_SeqAndIdx(t *testing.T) {
	bus := NewChanBus(64)
	book := &mockBook{}
	a := NewBookActor(book, bus, ActorConfig{MailboxSize: 8, BatchMax: 4, Lossless: true}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go a.Run(ctx)

	require.NoError(t, a.Enqueue(ctx, limit(10, matching.Buy, 1, 100)))
	require.NoError(t, a.Enqueue(ctx, Command{Type: CmdCancel, ReqID: 11, CancelOrderID: 1}))

	evs := waitCmdEnds(t, bus.C(), 2)
	require.Len(t, evs, 5)

	assert.Equal(t, []EventType{EvAccepted, EvRested, EvCmdEnd, EvCancelled, EvCmdEnd},
		[]EventType{evs[0].Type, evs[1].Type, evs[2].Type, evs[3].Type, evs[4].Type})
	for i, ev := range evs[:3] {
		assert.Equal(t, uint64(1), ev.Seq)
		assert.Equal(t, uint16(i), ev.Idx)
		assert.Equal(t, uint64(10), ev.ReqID)
	}
	assert.Equal(t, uint64(2), evs[3].Seq)
	assert.Equal(t, uint16(0), evs[3].Idx)
	assert.Equal(t, uint64(1), atomic.LoadUint64(&book.cancelCalls))
}

func TestActor_UnknownCommandRejected(t *testing.T) {
	bus := NewChanBus(16)
	a := NewBookActor(&mockBook{}, bus, ActorConfig{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go a.Run(ctx)

	require.NoError(t, a.TryEnqueue(Command{Type: 99, ReqID: 7}))
	evs := waitCmdEnds(t, bus.C(), 1)
	require.Len(t, evs, 2)
	assert.Equal(t, EvRejected, evs[0].Type)
	assert.Equal(t, 400, evs[0].Code)
}

func TestActor_LossyBusCountsDrops(t *testing.T) {
	bus := NewChanBus(1)
	a := NewBookActor(&mockBook{}, bus, ActorConfig{MailboxSize: 4}, nil)
	require.NoError(t, a.TryEnqueue(limit(1, matching.Sell, 1, 100)))
	a.Close()

	// 不消费：第一个事件进总线，后面的全丢
	a.Run(context.Background())
	assert.Equal(t, uint64(2), a.EventsDropped())
	assert.Equal(t, uint64(2), bus.Dropped())
}

func TestActor_CloseDrainsThenStops(t *testing.T) {
	bus := NewChanBus(64)
	book := &mockBook{}
	a := NewBookActor(book, bus, ActorConfig{MailboxSize: 8, BatchMax: 2}, nil)
	for i := 0; i < 5; i++ {
		require.NoError(t, a.TryEnqueue(limit(uint64(i+1), matching.Buy, 1, 100)))
	}
	a.Close()
	assert.ErrorIs(t, a.TryEnqueue(limit(9, matching.Buy, 1, 100)), ErrStopped)
	assert.ErrorIs(t, a.Enqueue(context.Background(), limit(9, matching.Buy, 1, 100)), ErrStopped)

	a.Run(context.Background())
	assert.Equal(t, uint64(5), atomic.LoadUint64(&book.submitCalls))
	select {
	case <-a.Done():
	default:
		t.Fatal("actor not marked stopped")
	}
	_, err := a.Snapshot(context.Background())
	assert.ErrorIs(t, err, ErrStopped)
}

func TestActor_SnapshotOnActorGoroutine(t *testing.T) {
	bus := NewChanBus(64)
	a := NewBookActor(&mockBook{}, bus, ActorConfig{Lossless: true}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go a.Run(ctx)

	require.NoError(t, a.Enqueue(ctx, limit(1, matching.Buy, 1, 100)))
	require.NoError(t, a.Enqueue(ctx, limit(2, matching.Buy, 1, 100)))
	waitCmdEnds(t, bus.C(), 2)

	s, err := a.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), s.Seq)
	assert.Equal(t, uint64(2), s.LastID)
}

func TestActor_EnqueueHonoursContext(t *testing.T) {
	a := NewBookActor(&mockBook{}, NewChanBus(1), ActorConfig{MailboxSize: 1}, nil)
	require.NoError(t, a.TryEnqueue(limit(1, matching.Buy, 1, 100)))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := a.Enqueue(ctx, limit(2, matching.Buy, 1, 100))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
