package item

import "testing"

func TestSimilarIgnoresAmount(t *testing.T) {
	a := Stack{Type: "EMERALD", Amount: 3}
	b := Stack{Type: "EMERALD", Amount: 40}
	if !a.Similar(b) {
		t.Fatalf("same type should be similar regardless of amount")
	}
	if a.Equal(b) {
		t.Fatalf("differing amounts must not be Equal")
	}
}

func TestSimilarComparesMeta(t *testing.T) {
	a := Stack{Type: "SWORD", Amount: 1, Meta: map[string]string{"name": "Excalibur"}}
	b := Stack{Type: "SWORD", Amount: 1, Meta: map[string]string{"name": "Excalibur"}}
	c := Stack{Type: "SWORD", Amount: 1, Meta: map[string]string{"name": "Rusty"}}
	d := Stack{Type: "SWORD", Amount: 1}
	if !a.Similar(b) {
		t.Fatalf("identical meta should be similar")
	}
	if a.Similar(c) {
		t.Fatalf("differing meta values must not be similar")
	}
	if a.Similar(d) {
		t.Fatalf("missing meta must not be similar")
	}
}

func TestEmptyStacks(t *testing.T) {
	var zero Stack
	if !zero.IsEmpty() {
		t.Fatalf("zero value should be empty")
	}
	if !zero.Similar(Stack{Type: "DIRT", Amount: 0}) {
		t.Fatalf("zero-amount stack should collapse to empty for comparison")
	}
	if zero.Similar(Stack{Type: "DIRT", Amount: 1}) {
		t.Fatalf("empty is not similar to a non-empty stack")
	}
	if got := NilIfEmpty(Stack{Type: "DIRT", Amount: 0}); !got.IsEmpty() || got.Type != "" {
		t.Fatalf("NilIfEmpty should return the zero Stack, got %#v", got)
	}
}

func TestCloneIsDeep(t *testing.T) {
	a := Stack{Type: "SWORD", Amount: 1, Meta: map[string]string{"name": "Excalibur"}}
	b := a.Clone()
	b.Meta["name"] = "Broken"
	if a.Meta["name"] != "Excalibur" {
		t.Fatalf("Clone must not share the meta map")
	}
}

func TestWithAmount(t *testing.T) {
	a := Stack{Type: "EMERALD", Amount: 3}
	b := a.WithAmount(7)
	if b.Amount != 7 || a.Amount != 3 {
		t.Fatalf("WithAmount should copy, got %v and %v", a, b)
	}
}
