package backtester

import (
	"math"
	"testing"
	"time"
)

func TestBrokerFrictionlessBuy(t *testing.T) {
	b := NewBroker(0, 0)
	ts := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	trade := b.Buy("TEST", ts, 37.5, 1000)
	if trade == nil {
		t.Fatal("expected a fill")
	}
	if trade.EffectivePrice != 37.5 {
		t.Fatalf("effective price = %v, want quoted 37.5", trade.EffectivePrice)
	}
	if want := int64(math.Floor(1000 / 37.5)); trade.Quantity != want {
		t.Fatalf("quantity = %d, want %d", trade.Quantity, want)
	}
	if trade.Commission != 0 {
		t.Fatalf("commission = %v, want 0", trade.Commission)
	}
}

func TestBrokerBuyWithFriction(t *testing.T) {
	b := NewBroker(0.001, 0.002)

	trade := b.Buy("TEST", time.Time{}, 100, 100000)
	if trade == nil {
		t.Fatal("expected a fill")
	}
	eff := 100 * 1.002
	if trade.EffectivePrice != eff {
		t.Fatalf("effective price = %v, want %v", trade.EffectivePrice, eff)
	}
	wantQty := int64(math.Floor(100000 / (eff * 1.001)))
	if trade.Quantity != wantQty {
		t.Fatalf("quantity = %d, want %d", trade.Quantity, wantQty)
	}
	cost := float64(wantQty) * eff
	if trade.Commission != cost*0.001 || trade.TotalCost != cost+cost*0.001 {
		t.Fatalf("commission %v total %v", trade.Commission, trade.TotalCost)
	}
	if trade.TotalCost > 100000 {
		t.Fatalf("total cost %v exceeds cash", trade.TotalCost)
	}
	if trade.Price != 100 {
		t.Fatalf("price = %v, want quoted price", trade.Price)
	}
}

func TestBrokerBuyUnaffordable(t *testing.T) {
	b := NewBroker(0.001, 0)
	if trade := b.Buy("TEST", time.Time{}, 100, 100); trade != nil {
		t.Fatalf("expected no fill, got %+v", trade)
	}
	if trade := b.Buy("TEST", time.Time{}, 100, 0); trade != nil {
		t.Fatalf("expected no fill with no cash, got %+v", trade)
	}
}

func TestBrokerSell(t *testing.T) {
	b := NewBroker(0.001, 0.002)

	trade := b.Sell("TEST", time.Time{}, 50, 10)
	eff := 50 * (1 - 0.002)
	proceeds := 10 * eff
	if trade.EffectivePrice != eff {
		t.Fatalf("effective price = %v, want %v", trade.EffectivePrice, eff)
	}
	if trade.Commission != proceeds*0.001 {
		t.Fatalf("commission = %v", trade.Commission)
	}
	if trade.NetProceeds != proceeds-proceeds*0.001 {
		t.Fatalf("net proceeds = %v", trade.NetProceeds)
	}
	if b.Sell("TEST", time.Time{}, 50, 0) != nil {
		t.Fatal("selling nothing should not fill")
	}
}

func TestPortfolioRecord(t *testing.T) {
	p := NewPortfolio(1000)
	b := NewBroker(0, 0)

	buy := b.Buy("TEST", time.Time{}, 30, p.GetCash())
	p.ApplyBuy(*buy)
	snap := p.Record(time.Time{}, 31)

	if p.GetPosition() != 33 || p.GetCash() != 10 {
		t.Fatalf("position %d cash %v", p.GetPosition(), p.GetCash())
	}
	if snap.HoldingsValue != 33*31 || snap.Value != 10+33*31 {
		t.Fatalf("snapshot %+v", snap)
	}
	if p.ValueAt(31) != snap.Value {
		t.Fatalf("ValueAt = %v, want %v", p.ValueAt(31), snap.Value)
	}

	sell := b.Sell("TEST", time.Time{}, 32, p.GetPosition())
	p.ApplySell(*sell)
	if p.GetPosition() != 0 || p.GetCash() != 10+33*32 {
		t.Fatalf("after sell position %d cash %v", p.GetPosition(), p.GetCash())
	}
	if len(p.GetTrades()) != 2 || len(p.GetSnapshots()) != 1 {
		t.Fatalf("trades %d snapshots %d", len(p.GetTrades()), len(p.GetSnapshots()))
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	bad := Config{InitialCapital: 0, CommissionRate: -1, SlippageRate: math.NaN()}
	if err := bad.Validate(); err == nil {
		t.Fatal("expected validation error")
	}
	if got := SlippageFromBps(10); got != 0.001 {
		t.Fatalf("SlippageFromBps(10) = %v", got)
	}
}
