package main

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func writeFile(t *testing.T, root, rel string, size int) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(strings.Repeat("x", size)), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
	return path
}

func record(path string, size int64) FileRecord {
	return FileRecord{
		Name:       filepath.Base(path),
		FullPath:   path,
		SizeBytes:  size,
		ModifiedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

// faultFS wraps the real file system and injects failures.
type faultFS struct {
	FileSystem

	mu        sync.Mutex
	removeErr map[string]error
	walkErr   map[string]error
	removed   []string

	// When block is set, Remove signals entered and waits on block.
	entered chan struct{}
	block   chan struct{}
}

func newFaultFS() *faultFS {
	return &faultFS{
		FileSystem: newOSFS(),
		removeErr:  map[string]error{},
		walkErr:    map[string]error{},
	}
}

func (f *faultFS) Remove(path string) error {
	if f.block != nil {
		f.entered <- struct{}{}
		<-f.block
	}
	f.mu.Lock()
	err, ok := f.removeErr[path]
	f.mu.Unlock()
	if ok {
		return err
	}
	if err := f.FileSystem.Remove(path); err != nil {
		return err
	}
	f.mu.Lock()
	f.removed = append(f.removed, path)
	f.mu.Unlock()
	return nil
}

func (f *faultFS) WalkDir(root string, fn fs.WalkDirFunc) error {
	return f.FileSystem.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if injected, ok := f.walkErr[path]; ok && err == nil {
			return fn(path, entry, injected)
		}
		return fn(path, entry, err)
	})
}

type recordingEvents struct {
	mu        sync.Mutex
	completed [][]Candidate
	failed    []error
	outcomes  []DeletionOutcome
	statuses  []string
	progress  int
}

func (e *recordingEvents) ScanProgress(int, int) {}

func (e *recordingEvents) ScanCompleted(candidates []Candidate) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.completed = append(e.completed, candidates)
}

func (e *recordingEvents) ScanFailed(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failed = append(e.failed, err)
}

func (e *recordingEvents) DeleteProgress(int, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.progress++
}

func (e *recordingEvents) DeletionCompleted(outcome DeletionOutcome) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.outcomes = append(e.outcomes, outcome)
}

func (e *recordingEvents) StatusChanged(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.statuses = append(e.statuses, text)
}

func (e *recordingEvents) lastStatus() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.statuses) == 0 {
		return ""
	}
	return e.statuses[len(e.statuses)-1]
}
