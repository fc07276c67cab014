package item

import (
	"sort"
	"strconv"
)

// DefaultMaxStack is used for items the catalog doesn't size explicitly.
const DefaultMaxStack = 64

// Stack is an item stack as it appears in an inventory slot. The zero value
// is the empty stack.
type Stack struct {
	Type   string
	Amount int
	Meta   map[string]string
}

func New(itemType string, amount int) Stack {
	return Stack{Type: itemType, Amount: amount}
}

func (s Stack) IsEmpty() bool {
	return s.Type == "" || s.Amount <= 0
}

// Similar reports whether two stacks hold the same kind of item: type and
// metadata must match, amounts are ignored. Two empty stacks are similar.
func (s Stack) Similar(o Stack) bool {
	if s.IsEmpty() || o.IsEmpty() {
		return s.IsEmpty() && o.IsEmpty()
	}
	if s.Type != o.Type {
		return false
	}
	if len(s.Meta) != len(o.Meta) {
		return false
	}
	for k, v := range s.Meta {
		if ov, ok := o.Meta[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// Equal is Similar plus matching amounts.
func (s Stack) Equal(o Stack) bool {
	if s.IsEmpty() || o.IsEmpty() {
		return s.IsEmpty() && o.IsEmpty()
	}
	return s.Amount == o.Amount && s.Similar(o)
}

// Clone returns a deep copy; slots hand out clones so callers can't alias
// inventory state.
func (s Stack) Clone() Stack {
	c := s
	if s.Meta != nil {
		c.Meta = make(map[string]string, len(s.Meta))
		for k, v := range s.Meta {
			c.Meta[k] = v
		}
	}
	return c
}

func (s Stack) WithAmount(amount int) Stack {
	c := s.Clone()
	c.Amount = amount
	return c
}

// NilIfEmpty collapses any empty representation down to the zero Stack.
func NilIfEmpty(s Stack) Stack {
	if s.IsEmpty() {
		return Stack{}
	}
	return s
}

// MetaKeys returns the metadata keys in sorted order, for deterministic
// logging and digests.
func (s Stack) MetaKeys() []string {
	if len(s.Meta) == 0 {
		return nil
	}
	keys := make([]string, 0, len(s.Meta))
	for k := range s.Meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String is a compact diagnostic form, e.g. "EMERALD x12".
func (s Stack) String() string {
	if s.IsEmpty() {
		return "(empty)"
	}
	return s.Type + " x" + strconv.Itoa(s.Amount)
}
