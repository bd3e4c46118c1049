package catalog

import (
	"testing"
	"time"
)

func TestParseItemType(t *testing.T) {
	tests := []struct {
		in      string
		want    ItemType
		wantErr bool
	}{
		{"product", Product, false},
		{"bundling", Bundling, false},
		{"Product", "", true},
		{"", "", true},
		{"service", "", true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseItemType(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ParseItemType(%q) err = %v, wantErr %v", tc.in, err, tc.wantErr)
			}
			if got != tc.want {
				t.Errorf("ParseItemType(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestItemKey(t *testing.T) {
	p := Item{ID: 7, Type: Product}
	b := Item{ID: 7, Type: Bundling}
	if p.Key() == b.Key() {
		t.Error("same id with different type must yield different keys")
	}
	if p.Key() != (Key{Type: Product, ID: 7}) {
		t.Errorf("unexpected key %+v", p.Key())
	}
}

func TestSnapshotAge(t *testing.T) {
	fetched := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := Snapshot{FetchedAt: fetched}
	if got := s.Age(fetched.Add(90 * time.Second)); got != 90*time.Second {
		t.Errorf("Age = %v, want 90s", got)
	}
}
