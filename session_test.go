package main

import (
	"testing"
)

func newTestSession() *Session {
	return NewSession("/t", GroupByName([]FileRecord{
		record("/t/1/a", 1), record("/t/2/a", 1), record("/t/3/a", 1),
		record("/t/1/b", 1), record("/t/2/b", 1),
	}, false, nil))
}

func TestSessionToggleIsInvolution(t *testing.T) {
	s := newTestSession()

	s.Toggle("/t/2/a")
	if marked := s.Marked(); len(marked) != 1 || marked[0].FullPath != "/t/2/a" {
		t.Fatalf("expected /t/2/a marked, got %v", marked)
	}
	s.Toggle("/t/2/a")
	if marked := s.Marked(); len(marked) != 0 {
		t.Fatalf("expected nothing marked after second toggle, got %v", marked)
	}
}

func TestSessionToggleUnknownIsNoop(t *testing.T) {
	s := newTestSession()
	s.Toggle("/nowhere")
	if marked := s.Marked(); len(marked) != 0 {
		t.Fatalf("expected nothing marked, got %v", marked)
	}
}

func TestSessionSetAll(t *testing.T) {
	s := newTestSession()

	s.SetAll(true)
	marked := s.Marked()
	if len(marked) != 5 {
		t.Fatalf("expected all 5 marked, got %d", len(marked))
	}
	seen := map[string]bool{}
	for _, c := range marked {
		if seen[c.FullPath] {
			t.Errorf("%s returned twice", c.FullPath)
		}
		seen[c.FullPath] = true
	}

	s.SetAll(false)
	if marked := s.Marked(); len(marked) != 0 {
		t.Fatalf("expected none marked, got %d", len(marked))
	}
}

func TestSessionMarkedKeepsListOrder(t *testing.T) {
	s := newTestSession()
	s.Toggle("/t/2/b")
	s.Toggle("/t/1/a")
	s.Toggle("/t/3/a")

	marked := s.Marked()
	want := []string{"/t/1/a", "/t/3/a", "/t/2/b"}
	if len(marked) != len(want) {
		t.Fatalf("expected %d marked, got %d", len(want), len(marked))
	}
	for i, path := range want {
		if marked[i].FullPath != path {
			t.Errorf("marked[%d] = %s, want %s", i, marked[i].FullPath, path)
		}
	}
}

func TestSessionRemoveDiscardsSelection(t *testing.T) {
	s := newTestSession()
	s.SetAll(true)

	if removed := s.Remove([]string{"/t/1/a", "/t/2/b", "/unknown"}); removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}
	if got := len(s.Candidates()); got != 3 {
		t.Fatalf("expected 3 candidates left, got %d", got)
	}

	// Toggling a removed id must not resurrect it.
	s.Toggle("/t/1/a")
	for _, c := range s.Candidates() {
		if c.FullPath == "/t/1/a" {
			t.Fatal("removed candidate came back")
		}
	}

	s.Toggle("/t/3/a")
	if marked := s.Marked(); len(marked) != 2 {
		t.Errorf("expected 2 marked after toggling one off, got %d", len(marked))
	}
}

func TestSessionCandidatesIsSnapshot(t *testing.T) {
	s := newTestSession()
	snapshot := s.Candidates()
	snapshot[0].Marked = true
	if marked := s.Marked(); len(marked) != 0 {
		t.Fatal("mutating a snapshot must not affect the session")
	}
}
