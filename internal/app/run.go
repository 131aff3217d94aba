package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"openbooks.com/internal/engine"
	"openbooks.com/internal/feed"
	"openbooks.com/internal/gateway"
	"openbooks.com/internal/matching"
	"openbooks.com/pkg/logger"
	"openbooks.com/pkg/metrics"
	"openbooks.com/pkg/safe"
)

// Report 一次运行的汇总
type Report struct {
	Instructions int // 投递给引擎的指令
	Skipped      int // 解析失败跳过的行
	Rejected     int // 引擎拒绝的指令
	Matches      int
	Snapshot     engine.Snapshot
}

type Runner struct {
	cfg       *Cfg
	publisher *gateway.Publisher
	log       *zap.Logger
}

// NewRunner broker 为 nil 时不推送成交
func NewRunner(cfg *Cfg, broker gateway.Broker, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Runner{cfg: cfg, log: log}
	if broker != nil {
		var codec engine.EvCodec = engine.JSONEvCodec{Version: 1}
		if cfg.Nats.Codec == "binary" {
			codec = engine.BinaryEvCodec{}
		}
		r.publisher = gateway.NewPublisher(broker, codec, cfg.Nats.Subject, log.Named("publisher"), engine.EvTrade)
	}
	return r
}

// Run 读指令、驱动引擎，成交按生成顺序写到 out，每行 match <taker> <maker> <qty> <price>
func (r *Runner) Run(ctx context.Context, in io.Reader, out io.Writer) (Report, error) {
	var rep Report

	g, gctx := errgroup.WithContext(ctx)
	eng := engine.NewEngine(engine.EngineConfig{
		EventBusSize: r.cfg.Engine.EventBusSize,
		ActorCfg: engine.ActorConfig{
			MailboxSize: r.cfg.Engine.MailboxSize,
			BatchMax:    r.cfg.Engine.BatchMax,
			Lossless:    r.cfg.Engine.Lossless,
		},
		Logger: r.log,
	})
	eng.Start(gctx)

	g.Go(safe.Func(gctx, "feeder", func(ctx context.Context) error {
		return r.feed(ctx, eng, in, &rep)
	}))
	g.Go(safe.Func(gctx, "consumer", func(ctx context.Context) error {
		return r.consume(ctx, eng, out, &rep)
	}))

	err := g.Wait()
	if s, serr := eng.Snapshot(ctx); serr == nil {
		rep.Snapshot = s
	}
	if err != nil {
		return rep, err
	}
	if d := eng.DroppedEvents(); d > 0 {
		logger.Warn(ctx, "events dropped, match output incomplete", zap.Uint64("dropped", d))
	}
	return rep, nil
}

func (r *Runner) feed(ctx context.Context, eng *engine.Engine, in io.Reader, rep *Report) error {
	rd := feed.NewReader(in, feed.WithRate(r.cfg.Feed.Rate, r.cfg.Feed.Burst))
	for {
		ins, err := rd.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		var le *feed.LineError
		if errors.As(err, &le) {
			rep.Skipped++
			metrics.RejectsTotal.WithLabelValues("malformed").Inc()
			logger.Warn(ctx, "skip bad line", zap.Int("line", le.Line), zap.String("text", le.Text), zap.Error(le.Err))
			if r.cfg.Feed.Strict {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}

		if err := eng.Submit(ctx, toCommand(uint64(rd.Line()), ins)); err != nil {
			return fmt.Errorf("submit line %d: %w", rd.Line(), err)
		}
		rep.Instructions++
	}
	// 输入读完：关 mailbox，等 actor 把剩下的处理完
	return eng.Close(ctx)
}

func (r *Runner) consume(ctx context.Context, eng *engine.Engine, out io.Writer, rep *Report) error {
	w := bufio.NewWriter(out)
	line := make([]byte, 0, 64)
	for ev := range eng.Events() {
		switch ev.Type {
		case engine.EvTrade:
			rep.Matches++
			line = feed.AppendMatch(line[:0], matching.Trade{
				TakerID: ev.TakerOrderID, MakerID: ev.MakerOrderID, Qty: ev.Qty, Price: ev.Price,
			})
			line = append(line, '\n')
			if _, err := w.Write(line); err != nil {
				return err
			}
		case engine.EvRejected:
			rep.Rejected++
			logger.Warn(ctx, "instruction rejected",
				zap.Uint64("line", ev.ReqID), zap.Uint64("order_id", ev.OrderID),
				zap.Int("code", ev.Code), zap.String("reason", ev.Reason))
		case engine.EvStopTriggered:
			logger.Debug(ctx, "stop triggered", zap.Uint64("order_id", ev.OrderID), zap.Int64("qty", ev.Qty))
		}
		if r.publisher != nil {
			// 推送失败不影响本地输出
			_ = r.publisher.Publish(ctx, ev)
		}
	}
	return w.Flush()
}

func toCommand(req uint64, in feed.Instruction) engine.Command {
	if in.Kind == matching.Cancel {
		return engine.Command{Type: engine.CmdCancel, ReqID: req, Side: in.Side, CancelOrderID: uint64(in.Qty)}
	}
	return engine.Command{
		Type: engine.CmdSubmit, ReqID: req,
		Kind: in.Kind, Side: in.Side, Qty: in.Qty, Price: in.Price,
	}
}
