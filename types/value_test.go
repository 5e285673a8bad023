package types

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestValueConstructors(t *testing.T) {
	tests := []struct {
		name   string
		value  *Value
		amount uint64
		zero   bool
	}{
		{"NewValue", NewValue(2500), 2500, false},
		{"NewValue zero", NewValue(0), 0, true},
		{"Zero", Zero(), 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value.Amount() != tt.amount {
				t.Errorf("Amount: got %d, want %d", tt.value.Amount(), tt.amount)
			}
			if tt.value.IsZero() != tt.zero {
				t.Errorf("IsZero: got %v, want %v", tt.value.IsZero(), tt.zero)
			}
		})
	}
}

func TestValueSplit(t *testing.T) {
	v := NewValue(1000)

	part, err := v.Split(300)
	if err != nil {
		t.Fatalf("split failed: %v", err)
	}
	if part.Amount() != 300 {
		t.Errorf("split part: got %d, want 300", part.Amount())
	}
	if v.Amount() != 700 {
		t.Errorf("remainder: got %d, want 700", v.Amount())
	}
}

func TestValueSplitExceedsBalance(t *testing.T) {
	v := NewValue(100)

	if _, err := v.Split(101); !errors.Is(err, ErrSplitExceedsBalance) {
		t.Fatalf("expected ErrSplitExceedsBalance, got %v", err)
	}
	// Failed split leaves the source untouched.
	if v.Amount() != 100 {
		t.Errorf("source changed after failed split: got %d, want 100", v.Amount())
	}
}

func TestValueSplitAll(t *testing.T) {
	v := NewValue(450)
	out := v.SplitAll()

	if out.Amount() != 450 {
		t.Errorf("drained: got %d, want 450", out.Amount())
	}
	if !v.IsZero() {
		t.Errorf("source not empty: got %d", v.Amount())
	}

	// Draining an empty Value yields an empty Value.
	again := v.SplitAll()
	if !again.IsZero() {
		t.Errorf("expected empty value, got %d", again.Amount())
	}
}

func TestValueJoin(t *testing.T) {
	a := NewValue(600)
	b := NewValue(400)

	a.Join(b)
	if a.Amount() != 1000 {
		t.Errorf("joined: got %d, want 1000", a.Amount())
	}
	if !b.IsZero() {
		t.Errorf("other not drained: got %d", b.Amount())
	}

	// Joining nil is a no-op.
	a.Join(nil)
	if a.Amount() != 1000 {
		t.Errorf("after nil join: got %d, want 1000", a.Amount())
	}
}

func TestValueConservation(t *testing.T) {
	// Any sequence of splits and joins conserves the total.
	v := NewValue(10000)
	parts := make([]*Value, 0, 4)
	for _, n := range []uint64{1, 99, 2400, 7500} {
		p, err := v.Split(n)
		if err != nil {
			t.Fatalf("split %d: %v", n, err)
		}
		parts = append(parts, p)
	}

	total := v.Amount()
	for _, p := range parts {
		total += p.Amount()
	}
	if total != 10000 {
		t.Errorf("conservation violated: got %d, want 10000", total)
	}

	for _, p := range parts {
		v.Join(p)
	}
	if v.Amount() != 10000 {
		t.Errorf("rejoin: got %d, want 10000", v.Amount())
	}
}

func TestValueJSONRoundTrip(t *testing.T) {
	v := NewValue(1234)

	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded Value
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Amount() != 1234 {
		t.Errorf("round-trip: got %d, want 1234", decoded.Amount())
	}
}
