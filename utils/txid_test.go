package utils

import "testing"

func TestNewTransactionID_UniqueAndSized(t *testing.T) {
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		id, err := NewTransactionID()
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if len(id) != 32 {
			t.Fatalf("expected 32 hex chars, got %d (%q)", len(id), id)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate transaction id %q", id)
		}
		seen[id] = struct{}{}
	}
}
