package naming

import (
	"testing"

	"shopcraft.gg/internal/config"
	"shopcraft.gg/internal/sim/sched"
	"shopcraft.gg/internal/sim/shopkeeper"
)

type testPlayer struct {
	id   string
	msgs []string
}

func (p *testPlayer) ID() string                  { return p.id }
func (p *testPlayer) Name() string                { return p.id }
func (p *testPlayer) HasPermission(string) bool   { return true }
func (p *testPlayer) SendMessage(msg string)      { p.msgs = append(p.msgs, msg) }

func TestRegistryLastWriteWins(t *testing.T) {
	r := NewRegistry()
	r.Begin("P1", "SK000001", 10)
	r.Begin("P1", "SK000002", 11)
	s, ok := r.End("P1")
	if !ok || s.ShopkeeperID != "SK000002" {
		t.Fatalf("End should return the most recent session, got %+v ok=%v", s, ok)
	}
	if _, ok := r.End("P1"); ok {
		t.Fatalf("session must be consumed exactly once")
	}
}

func TestEndWithoutSession(t *testing.T) {
	r := NewRegistry()
	if _, ok := r.End("P1"); ok {
		t.Fatalf("End on an idle player should report no session")
	}
	if r.Len() != 0 {
		t.Fatalf("End must not create state")
	}
}

func TestDrop(t *testing.T) {
	r := NewRegistry()
	r.Begin("P1", "SK000001", 1)
	r.Drop("P1")
	if _, ok := r.End("P1"); ok {
		t.Fatalf("dropped session should be gone")
	}
}

func newTestListener(t *testing.T) (*Listener, *Registry, *shopkeeper.Registry, *sched.Queue) {
	t.Helper()
	reg := NewRegistry()
	shops := shopkeeper.NewRegistry()
	queue := sched.NewQueue()
	policy, err := NewSettingsPolicy(config.Defaults(), nil)
	if err != nil {
		t.Fatalf("policy: %v", err)
	}
	return NewListener(reg, shops, queue, policy, nil), reg, shops, queue
}

func TestChatWithoutSessionIsNotConsumed(t *testing.T) {
	l, _, _, queue := newTestListener(t)
	p := &testPlayer{id: "P1"}
	if l.HandleChat(p, "hello world") {
		t.Fatalf("chat without a session must pass through")
	}
	if queue.Len() != 0 {
		t.Fatalf("nothing should have been scheduled")
	}
}

func TestChatConsumedAndRenameDeferred(t *testing.T) {
	l, reg, shops, queue := newTestListener(t)
	shop := shopkeeper.NewAdmin("SK000001", "Old Name", "", nil)
	shops.Add(shop)
	reg.Begin("P1", "SK000001", 5)

	p := &testPlayer{id: "P1"}
	if !l.HandleChat(p, "  Fancy Shop  ") {
		t.Fatalf("chat with a pending session must be consumed")
	}
	if shop.Name() != "Old Name" {
		t.Fatalf("rename must not apply synchronously")
	}
	queue.Drain()
	if shop.Name() != "Fancy Shop" {
		t.Fatalf("rename should apply on the next tick, got %q", shop.Name())
	}
	if len(p.msgs) != 1 {
		t.Fatalf("player should get a confirmation, got %v", p.msgs)
	}
}

func TestRenameDroppedWhenShopRemoved(t *testing.T) {
	l, reg, shops, queue := newTestListener(t)
	shop := shopkeeper.NewAdmin("SK000001", "Old", "", nil)
	shops.Add(shop)
	reg.Begin("P1", "SK000001", 5)

	p := &testPlayer{id: "P1"}
	if !l.HandleChat(p, "New") {
		t.Fatalf("chat should be consumed")
	}
	shops.Remove("SK000001")
	queue.Drain()
	if shop.Name() != "Old" {
		t.Fatalf("rename must be dropped when the shop is gone")
	}
}

func TestPolicyValidation(t *testing.T) {
	cfg := config.Defaults()
	cfg.NameMaxLen = 10
	policy, err := NewSettingsPolicy(cfg, nil)
	if err != nil {
		t.Fatalf("policy: %v", err)
	}
	shop := shopkeeper.NewAdmin("SK000001", "Old", "", nil)
	p := &testPlayer{id: "P1"}

	policy.RequestNameChange(p, shop, "Way Too Long Name")
	if shop.Name() != "Old" {
		t.Fatalf("overlong name must be rejected")
	}
	policy.RequestNameChange(p, shop, "Bad\x00Name")
	if shop.Name() != "Old" {
		t.Fatalf("name with forbidden characters must be rejected")
	}
	policy.RequestNameChange(p, shop, "Bakery")
	if shop.Name() != "Bakery" {
		t.Fatalf("valid name should apply, got %q", shop.Name())
	}
	policy.RequestNameChange(p, shop, "-")
	if shop.Name() != "" {
		t.Fatalf("dash should clear the name, got %q", shop.Name())
	}
}
