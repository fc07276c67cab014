package events

import (
	"testing"

	"shopcraft.gg/internal/sim/item"
	"shopcraft.gg/internal/sim/recipe"
)

type fakeClick struct{ cancelled bool }

func (c *fakeClick) Cancel()         { c.cancelled = true }
func (c *fakeClick) Cancelled() bool { return c.cancelled }

func TestOpenTradeVeto(t *testing.T) {
	b := NewBus()
	order := []string{}
	b.OnOpenTrade(func(e *OpenTrade) { order = append(order, "first") })
	b.OnOpenTrade(func(e *OpenTrade) { order = append(order, "second"); e.Cancel() })
	b.OnOpenTrade(func(e *OpenTrade) { order = append(order, "third") })

	ok := b.PublishOpenTrade(&OpenTrade{PlayerID: "P1", ShopkeeperID: "SK1"})
	if ok {
		t.Fatalf("publish should report the veto")
	}
	// later observers still see the notification, like any event bus
	if len(order) != 3 {
		t.Fatalf("all observers should run, got %v", order)
	}
}

func TestTradeCancelPropagatesToClick(t *testing.T) {
	b := NewBus()
	b.OnTrade(func(e *Trade) { e.Cancel() })
	click := &fakeClick{}
	r := recipe.MustNew(item.New("EMERALD", 5), item.Stack{}, item.New("BREAD", 1))
	ok := b.PublishTrade(&Trade{PlayerID: "P1", ShopkeeperID: "SK1", Recipe: r, Click: click})
	if ok {
		t.Fatalf("trade should be vetoed")
	}
	if !click.cancelled {
		t.Fatalf("vetoing the trade must cancel the underlying click")
	}
}

func TestTradeCompletedIsInformational(t *testing.T) {
	b := NewBus()
	seen := 0
	b.OnTradeCompleted(func(TradeCompleted) { seen++ })
	b.PublishTradeCompleted(TradeCompleted{PlayerID: "P1"})
	if seen != 1 {
		t.Fatalf("observer should have run once, got %d", seen)
	}
}

func TestBusWithNoObservers(t *testing.T) {
	b := NewBus()
	if !b.PublishOpenTrade(&OpenTrade{}) {
		t.Fatalf("no observers means no veto")
	}
	if !b.PublishTrade(&Trade{Click: &fakeClick{}}) {
		t.Fatalf("no observers means no veto")
	}
	b.PublishTradeCompleted(TradeCompleted{})
}
