package recipe

import (
	"fmt"

	"shopcraft.gg/internal/sim/item"
)

// TradingRecipe is one trade a shopkeeper offers: up to two input items for
// one result item. Immutable once constructed; the second input is optional.
type TradingRecipe struct {
	item1  item.Stack
	item2  item.Stack
	result item.Stack
}

func New(item1, item2, result item.Stack) (TradingRecipe, error) {
	if item1.IsEmpty() {
		return TradingRecipe{}, fmt.Errorf("trading recipe: first input is required")
	}
	if result.IsEmpty() {
		return TradingRecipe{}, fmt.Errorf("trading recipe: result item is required")
	}
	return TradingRecipe{
		item1:  item1.Clone(),
		item2:  item.NilIfEmpty(item2).Clone(),
		result: result.Clone(),
	}, nil
}

// MustNew is for static recipe tables and tests.
func MustNew(item1, item2, result item.Stack) TradingRecipe {
	r, err := New(item1, item2, result)
	if err != nil {
		panic(err)
	}
	return r
}

func (r TradingRecipe) Item1() item.Stack  { return r.item1.Clone() }
func (r TradingRecipe) Item2() item.Stack  { return r.item2.Clone() }
func (r TradingRecipe) Result() item.Stack { return r.result.Clone() }

func (r TradingRecipe) HasItem2() bool { return !r.item2.IsEmpty() }

func (r TradingRecipe) IsZero() bool { return r.item1.IsEmpty() && r.result.IsEmpty() }

// Similar compares two recipes by item identity, ignoring stack sizes.
func (r TradingRecipe) Similar(o TradingRecipe) bool {
	return r.item1.Similar(o.item1) && r.item2.Similar(o.item2) && r.result.Similar(o.result)
}

// Equal compares item identity and amounts.
func (r TradingRecipe) Equal(o TradingRecipe) bool {
	return r.item1.Equal(o.item1) && r.item2.Equal(o.item2) && r.result.Equal(o.result)
}

// String is a compact diagnostic form for debug logs.
func (r TradingRecipe) String() string {
	if !r.HasItem2() {
		return fmt.Sprintf("%s -> %s", r.item1, r.result)
	}
	return fmt.Sprintf("%s + %s -> %s", r.item1, r.item2, r.result)
}
