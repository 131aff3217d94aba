package app

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"openbooks.com/internal/engine"
	"openbooks.com/internal/feed"
	"openbooks.com/internal/gateway"
)

func testCfg() *Cfg {
	return &Cfg{
		Engine: Engine{MailboxSize: 8, BatchMax: 4, EventBusSize: 16, Lossless: true},
		Nats:   Nats{Subject: "openbooks:trade", Codec: "json"},
	}
}

func run(t *testing.T, cfg *Cfg, input string) (string, Report) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var out bytes.Buffer
	rep, err := NewRunner(cfg, nil, nil).Run(ctx, strings.NewReader(input), &out)
	require.NoError(t, err)
	return out.String(), rep
}

func TestRun_SampleFile(t *testing.T) {
	b, err := os.ReadFile("../../testdata/orders.txt")
	require.NoError(t, err)

	out, rep := run(t, testCfg(), string(b))
	assert.Equal(t, "match 2 1 4 99.50\nmatch 6 1 6 99.50\nmatch 4 5 3 99.00\n", out)
	assert.Equal(t, 7, rep.Instructions)
	assert.Equal(t, 3, rep.Matches)
	assert.Zero(t, rep.Skipped)
	assert.False(t, rep.Snapshot.HasBid)
	assert.False(t, rep.Snapshot.HasAsk, "ask 3 was cancelled")
	assert.Equal(t, uint64(7), rep.Snapshot.LastID)
}

func TestRun_PartialFillScenario(t *testing.T) {
	out, rep := run(t, testCfg(), "l b 10 99.50\nl s 4 99.50\n")
	assert.Equal(t, "match 2 1 4 99.50\n", out)
	assert.True(t, rep.Snapshot.HasBid)
	assert.Equal(t, int64(9950), rep.Snapshot.BestBid)
	assert.Equal(t, 1, rep.Snapshot.Bids)
}

func TestRun_BadLinesSkipped(t *testing.T) {
	out, rep := run(t, testCfg(), "l b 10 99.50\nnonsense here\nx b 1 1.00\nl s 4 99.50\nc b 9 0.00\n")
	// 坏行不占订单 id
	assert.Equal(t, "match 2 1 4 99.50\n", out)
	assert.Equal(t, 2, rep.Skipped)
	assert.Equal(t, 3, rep.Instructions)
	assert.Equal(t, 1, rep.Rejected, "cancel of an id never issued")
}

func TestRun_StrictStopsOnBadLine(t *testing.T) {
	cfg := testCfg()
	cfg.Feed.Strict = true
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var out bytes.Buffer
	_, err := NewRunner(cfg, nil, nil).Run(ctx, strings.NewReader("l b 1 1.00\nbad\nl s 1 1.00\n"), &out)
	require.Error(t, err)
	assert.ErrorIs(t, err, feed.ErrMalformed)
}

func TestRun_PublishesTrades(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := gateway.NewMemBroker(16)
	ch, err := b.Subscribe(ctx, []string{"openbooks:trade"})
	require.NoError(t, err)

	cfg := testCfg()
	var out bytes.Buffer
	_, err = NewRunner(cfg, b, nil).Run(ctx, strings.NewReader("l s 5 100.00\nm b 2 0.00\n"), &out)
	require.NoError(t, err)
	assert.Equal(t, "match 2 1 2 100.00\n", out.String())

	select {
	case m := <-ch:
		ev, err := engine.JSONEvCodec{}.Decode(m.Payload)
		require.NoError(t, err)
		assert.Equal(t, engine.EvTrade, ev.Type)
		assert.Equal(t, uint64(2), ev.TakerOrderID)
	case <-time.After(time.Second):
		t.Fatal("no trade published")
	}
}
