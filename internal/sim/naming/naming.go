// Package naming implements the rename sub-protocol: after a player issues
// a rename action for a shopkeeper, their next chat input is captured and
// applied as the new shop name instead of being broadcast.
package naming

import (
	"log"
	"strings"

	"shopcraft.gg/internal/sim/sched"
	"shopcraft.gg/internal/sim/shopkeeper"
)

// Session is one pending rename request. The shopkeeper is held by id, not
// by reference: the shop may be removed while the session is open.
type Session struct {
	ShopkeeperID string
	CreatedTick  uint64
}

// Registry tracks at most one pending rename per player. It is mutated only
// from the main tick.
type Registry struct {
	sessions map[string]Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: map[string]Session{}}
}

// Begin opens a session, silently replacing any previous one for the same
// player.
func (r *Registry) Begin(playerID, shopkeeperID string, nowTick uint64) {
	r.sessions[playerID] = Session{ShopkeeperID: shopkeeperID, CreatedTick: nowTick}
}

// End takes and clears the player's session. Cheap no-op when none exists,
// so it is safe to call for every chat input.
func (r *Registry) End(playerID string) (Session, bool) {
	s, ok := r.sessions[playerID]
	if ok {
		delete(r.sessions, playerID)
	}
	return s, ok
}

// Drop discards a pending session, e.g. when the player disconnects or the
// shopkeeper is removed.
func (r *Registry) Drop(playerID string) {
	delete(r.sessions, playerID)
}

func (r *Registry) Len() int { return len(r.sessions) }

// Policy validates and applies a new shop name.
type Policy interface {
	RequestNameChange(p shopkeeper.Player, s shopkeeper.Shopkeeper, newName string)
}

// Listener intercepts chat input. It must run before other chat observers
// so a captured name never reaches the broadcast path.
type Listener struct {
	registry *Registry
	shops    *shopkeeper.Registry
	queue    *sched.Queue
	policy   Policy
	log      *log.Logger
}

func NewListener(registry *Registry, shops *shopkeeper.Registry, queue *sched.Queue, policy Policy, logger *log.Logger) *Listener {
	return &Listener{registry: registry, shops: shops, queue: queue, policy: policy, log: logger}
}

// HandleChat consumes the message if the player has a pending session and
// reports whether the chat was consumed. It must be called on the main tick
// (the kernel routes chat there before the broadcast path). The rename
// itself is deferred to the next tick: renaming an entity from within chat
// dispatch is unsafe.
func (l *Listener) HandleChat(p shopkeeper.Player, message string) bool {
	session, ok := l.registry.End(p.ID())
	if !ok {
		return false
	}
	newName := strings.TrimSpace(message)
	l.queue.RunOnNextTick(func() {
		// The shop may have been removed while the session was open.
		shop, ok := l.shops.Get(session.ShopkeeperID)
		if !ok {
			if l.log != nil {
				l.log.Printf("naming: shopkeeper %s gone, dropping rename from %s", session.ShopkeeperID, p.Name())
			}
			return
		}
		l.policy.RequestNameChange(p, shop, newName)
	})
	return true
}
