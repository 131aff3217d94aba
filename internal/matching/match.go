package matching

// 连续撮合：只要 taker 还能撮合就一直吃对手盘堆顶
func (b *OpenBooks) match(taker *Order) {
	opp := b.queue(taker.Side.Opposite())
	for {
		p, ok := opp.BestPrice()
		if !taker.Matchable(p, ok) {
			break
		}
		b.execute(taker, opp)
	}
}

// execute 吃掉对手盘最优的一笔。
// maker 比 taker 大：taker 全部成交，maker 减量后放回（id/价格不变，所以还在堆顶）；
// 否则 maker 全部成交并出簿，taker 减量。
func (b *OpenBooks) execute(taker *Order, opp *priceQueue) {
	maker, ok := opp.Pop()
	if !ok {
		return
	}
	if maker.qty > taker.Qty {
		b.record(Trade{TakerID: taker.ID, MakerID: maker.id, Qty: taker.Qty, Price: maker.price})
		maker.qty -= taker.Qty
		taker.SetQty(0)
		opp.Push(maker)
		return
	}
	b.record(Trade{TakerID: taker.ID, MakerID: maker.id, Qty: maker.qty, Price: maker.price})
	taker.SetQty(taker.Qty - maker.qty)
}

func (b *OpenBooks) record(t Trade) {
	b.matches = append(b.matches, t)
	b.lis.Trade(t)
}
