package cache

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestIndexSet(t *testing.T) {
	s := NewIndexSet("main", "web", "main")

	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
	if !s.Has("web") {
		t.Error("Expected web to be a member")
	}
	if s.Has("missing") {
		t.Error("Expected missing not to be a member")
	}
	if diff := cmp.Diff([]string{"main", "web"}, s.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}

	c := s.Clone()
	c["extra"] = struct{}{}
	if s.Has("extra") {
		t.Error("Clone must not share storage")
	}

	var empty IndexSet
	if got := empty.Clone(); got == nil || got.Len() != 0 {
		t.Errorf("Clone() of nil set = %v, want empty non-nil set", got)
	}
}
