package main

import "sync"

// Session owns the candidate list produced by one scan and its selection
// state. A new scan replaces the session.
type Session struct {
	mu         sync.Mutex
	root       string
	candidates []Candidate
	index      map[string]int
}

func NewSession(root string, candidates []Candidate) *Session {
	s := &Session{root: root, candidates: append([]Candidate(nil), candidates...)}
	s.reindex()
	return s
}

func (s *Session) reindex() {
	s.index = make(map[string]int, len(s.candidates))
	for idx, c := range s.candidates {
		s.index[c.ID()] = idx
	}
}

func (s *Session) Root() string {
	return s.root
}

// Toggle flips the mark on the candidate with the given id. Unknown ids are
// ignored; the candidate may already have been removed by a deletion.
func (s *Session) Toggle(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.index[id]
	if !ok {
		return
	}
	s.candidates[idx].Marked = !s.candidates[idx].Marked
}

func (s *Session) SetAll(value bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for idx := range s.candidates {
		s.candidates[idx].Marked = value
	}
}

// Set marks or unmarks a single candidate.
func (s *Session) Set(id string, value bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx, ok := s.index[id]; ok {
		s.candidates[idx].Marked = value
	}
}

// Marked returns a snapshot of the marked candidates in list order.
func (s *Session) Marked() []Candidate {
	s.mu.Lock()
	defer s.mu.Unlock()
	marked := []Candidate{}
	for _, c := range s.candidates {
		if c.Marked {
			marked = append(marked, c)
		}
	}
	return marked
}

func (s *Session) Candidates() []Candidate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Candidate(nil), s.candidates...)
}

// Remove drops the candidates with the given paths along with their marks.
func (s *Session) Remove(paths []string) int {
	if len(paths) == 0 {
		return 0
	}
	gone := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		gone[p] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.candidates[:0]
	removed := 0
	for _, c := range s.candidates {
		if _, ok := gone[c.ID()]; ok {
			removed++
			continue
		}
		kept = append(kept, c)
	}
	s.candidates = kept
	s.reindex()
	return removed
}
