package util

import (
	"testing"
)

func TestSortedStringKeys(t *testing.T) {
	m := map[string]int{"c": 1, "a": 2, "b": 3}
	keys := SortedStringKeys(m)
	want := []string{"a", "b", "c"}
	for i, k := range want {
		if keys[i] != k {
			t.Errorf("Expected %q at %d, got %q", k, i, keys[i])
		}
	}
}

func TestUniqueStrings(t *testing.T) {
	out := UniqueStrings([]string{"a", "b", "a", "c", "b"})
	if len(out) != 3 {
		t.Fatalf("Expected 3 unique values, got %d", len(out))
	}
	if out[0] != "a" || out[1] != "b" || out[2] != "c" {
		t.Errorf("Order not preserved: %v", out)
	}
}

func TestClamp(t *testing.T) {
	if Clamp(-1, 0, 1) != 0 {
		t.Error("Expected clamp to lower bound")
	}
	if Clamp(2, 0, 1) != 1 {
		t.Error("Expected clamp to upper bound")
	}
	if Clamp(0.5, 0, 1) != 0.5 {
		t.Error("Expected pass-through")
	}
}

func TestLimiter_Allow(t *testing.T) {
	l := NewLimiter(1, 2)
	if !l.Allow(1) {
		t.Error("Expected first token")
	}
	if !l.Allow(1) {
		t.Error("Expected burst token")
	}
	if l.Allow(1) {
		t.Error("Expected limiter to reject after burst")
	}
}
