package diary

import "testing"

func TestNewPage_Clamps(t *testing.T) {
	tests := []struct {
		name        string
		current     int
		limit       int
		wantCurrent int
		wantLimit   int
	}{
		{"valid", 3, 20, 3, 20},
		{"zero page", 0, 20, 1, 20},
		{"negative page", -5, 20, 1, 20},
		{"zero limit uses default", 2, 0, 2, 10},
		{"negative limit uses default", 2, -1, 2, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPage(tt.current, tt.limit, 10)
			if p.Current != tt.wantCurrent || p.Limit != tt.wantLimit {
				t.Errorf("got page %d limit %d, want page %d limit %d",
					p.Current, p.Limit, tt.wantCurrent, tt.wantLimit)
			}
		})
	}
}

func TestPage_Offset(t *testing.T) {
	if got := NewPage(1, 10, 10).Offset(); got != 0 {
		t.Errorf("page 1 offset: got %d, want 0", got)
	}
	if got := NewPage(4, 25, 10).Offset(); got != 75 {
		t.Errorf("page 4 limit 25 offset: got %d, want 75", got)
	}
}

func TestPage_PreviousStopsAtFirst(t *testing.T) {
	p := NewPage(2, 10, 10)

	p, ok := p.Previous()
	if !ok || p.Current != 1 {
		t.Fatalf("expected move to page 1, got page %d ok=%v", p.Current, ok)
	}

	// Already at the first page: repeated calls never underflow.
	for i := 0; i < 3; i++ {
		var moved bool
		p, moved = p.Previous()
		if moved {
			t.Fatal("moved back past page 1")
		}
		if p.Current != 1 {
			t.Fatalf("page underflowed to %d", p.Current)
		}
	}
}

func TestPage_NextRequiresHasNext(t *testing.T) {
	p := NewPage(1, 10, 10)

	if next, ok := p.Next(); ok || next.Current != 1 {
		t.Errorf("advanced without HasNext: page %d ok=%v", next.Current, ok)
	}

	p.HasNext = true
	next, ok := p.Next()
	if !ok || next.Current != 2 {
		t.Errorf("expected page 2, got page %d ok=%v", next.Current, ok)
	}
}
