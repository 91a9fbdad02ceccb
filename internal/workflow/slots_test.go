package workflow

import (
	"testing"
	"time"
)

func TestSlots(t *testing.T) {
	day := func(h, m, s int) time.Time { return time.Date(2026, 3, 14, h, m, s, 0, time.UTC) }

	tests := []struct {
		name  string
		now   time.Time
		first time.Time
	}{
		{"mid quarter", day(10, 7, 0), day(10, 15, 0)},
		{"on the boundary", day(10, 15, 0), day(10, 30, 0)},
		{"just before boundary", day(10, 14, 59), day(10, 15, 0)},
		{"past midnight", day(23, 50, 0), time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slots := Slots(tt.now)
			if len(slots) != SlotCount {
				t.Fatalf("len = %d, want %d", len(slots), SlotCount)
			}
			if !slots[0].Equal(tt.first) {
				t.Errorf("first = %v, want %v", slots[0], tt.first)
			}
			for i := 1; i < len(slots); i++ {
				if slots[i].Sub(slots[i-1]) != SlotInterval {
					t.Fatalf("gap at %d = %v", i, slots[i].Sub(slots[i-1]))
				}
			}
			for _, s := range slots {
				if !s.After(tt.now) {
					t.Errorf("slot %v not after now", s)
				}
			}
		})
	}
}
