package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
	"testing"
)

func candidatesFor(paths ...string) []Candidate {
	out := make([]Candidate, 0, len(paths))
	for _, p := range paths {
		out = append(out, Candidate{FileRecord: record(p, 1), Marked: true})
	}
	return out
}

func TestExecuteScenario(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a/report.txt", 1024)
	writeFile(t, root, "b/report.txt", 2048)
	writeFile(t, root, "c/notes.txt", 10)

	result, err := (&Scanner{}).Scan(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	candidates := GroupByName(result.Records, false, nil)
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}
	s := NewSession(root, candidates)
	s.SetAll(true)

	outcome, err := (&Executor{}).Execute(context.Background(), s.Marked())
	if err != nil {
		t.Fatal(err)
	}
	if outcome.Deleted != 2 || outcome.Failed != 0 {
		t.Fatalf("expected 2 deleted, 0 failed, got %+v", outcome)
	}
	if len(outcome.Gone) != 2 {
		t.Fatalf("expected 2 gone, got %v", outcome.Gone)
	}
	for _, c := range candidates {
		if exists(newOSFS(), c.FullPath) {
			t.Errorf("%s still exists", c.FullPath)
		}
	}
	if !exists(newOSFS(), filepath.Join(root, "c", "notes.txt")) {
		t.Error("unmarked notes.txt must survive")
	}
}

func TestExecuteIsolatesFailures(t *testing.T) {
	root := t.TempDir()
	paths := make([]string, 5)
	for i := range paths {
		paths[i] = writeFile(t, root, fmt.Sprintf("%d/dup.txt", i), 8)
	}

	fsys := newFaultFS()
	fsys.removeErr[paths[2]] = &fs.PathError{Op: "remove", Path: paths[2], Err: fs.ErrPermission}

	outcome, err := (&Executor{FS: fsys}).Execute(context.Background(), candidatesFor(paths...))
	if err != nil {
		t.Fatal(err)
	}
	if outcome.Deleted != 4 || outcome.Failed != 1 {
		t.Fatalf("expected 4 deleted, 1 failed, got deleted=%d failed=%d", outcome.Deleted, outcome.Failed)
	}
	if len(fsys.removed) != 4 {
		t.Errorf("expected 4 removals, got %v", fsys.removed)
	}
	if len(outcome.Failures) != 1 || outcome.Failures[0].Path != paths[2] {
		t.Fatalf("unexpected failures %+v", outcome.Failures)
	}
	if outcome.Failures[0].Reason != FailurePermission {
		t.Errorf("expected permission reason, got %s", outcome.Failures[0].Reason)
	}
	for _, gone := range outcome.Gone {
		if gone == paths[2] {
			t.Error("failed path must not be reported gone")
		}
	}
	if len(outcome.Gone) != 4 {
		t.Errorf("expected 4 gone, got %d", len(outcome.Gone))
	}
}

func TestExecuteAlreadyGone(t *testing.T) {
	root := t.TempDir()
	kept := writeFile(t, root, "a/x.txt", 1)
	vanished := writeFile(t, root, "b/x.txt", 1)
	if err := os.Remove(vanished); err != nil {
		t.Fatal(err)
	}

	outcome, err := (&Executor{}).Execute(context.Background(), candidatesFor(kept, vanished))
	if err != nil {
		t.Fatal(err)
	}
	if outcome.Deleted != 1 || outcome.Failed != 0 {
		t.Fatalf("expected 1 deleted, 0 failed, got %+v", outcome)
	}
	found := false
	for _, gone := range outcome.Gone {
		if gone == vanished {
			found = true
		}
	}
	if !found {
		t.Errorf("externally removed file should be reported gone: %v", outcome.Gone)
	}
}

func TestExecuteRemoveRaceCountsAsGone(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "a/x.txt", 1)

	fsys := newFaultFS()
	fsys.removeErr[path] = &fs.PathError{Op: "remove", Path: path, Err: fs.ErrNotExist}

	outcome, err := (&Executor{FS: fsys}).Execute(context.Background(), candidatesFor(path))
	if err != nil {
		t.Fatal(err)
	}
	if outcome.Failed != 0 || outcome.Deleted != 0 {
		t.Fatalf("expected neither deleted nor failed, got %+v", outcome)
	}
}

func TestExecuteRefusesDirectories(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "a", "x.txt")
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatal(err)
	}

	outcome, err := (&Executor{}).Execute(context.Background(), candidatesFor(path))
	if err != nil {
		t.Fatal(err)
	}
	if outcome.Deleted != 0 || outcome.Failed != 1 {
		t.Fatalf("expected 0 deleted, 1 failed, got %+v", outcome)
	}
	if outcome.Failures[0].Reason != FailureInvalid {
		t.Errorf("expected invalid reason, got %s", outcome.Failures[0].Reason)
	}
	if len(outcome.Gone) != 0 {
		t.Errorf("directory must not be reported gone: %v", outcome.Gone)
	}
	if info, err := os.Stat(path); err != nil || !info.IsDir() {
		t.Errorf("directory should still exist: %v", err)
	}
}

func TestExecuteRejectsUnsafePaths(t *testing.T) {
	outcome, err := (&Executor{}).Execute(context.Background(), candidatesFor("relative/x.txt", string(filepath.Separator)))
	if err != nil {
		t.Fatal(err)
	}
	if outcome.Failed != 2 {
		t.Fatalf("expected 2 failures, got %+v", outcome)
	}
	for _, failure := range outcome.Failures {
		if failure.Reason != FailureInvalid {
			t.Errorf("expected invalid reason for %s, got %s", failure.Path, failure.Reason)
		}
	}
}

func TestExecuteConcurrentWorkers(t *testing.T) {
	root := t.TempDir()
	var paths []string
	for i := 0; i < 20; i++ {
		paths = append(paths, writeFile(t, root, fmt.Sprintf("%02d/same.bin", i), 4))
	}

	progress := 0
	exec := &Executor{Workers: 4, Progress: func(done, total int) {
		progress = done
		if total != len(paths) {
			t.Errorf("progress total = %d, want %d", total, len(paths))
		}
	}}
	outcome, err := exec.Execute(context.Background(), candidatesFor(paths...))
	if err != nil {
		t.Fatal(err)
	}
	if outcome.Deleted != 20 || len(outcome.Gone) != 20 {
		t.Fatalf("expected 20 deleted and gone, got %+v", outcome)
	}
	if progress != 20 {
		t.Errorf("expected final progress 20, got %d", progress)
	}
}

func TestExecuteIsNotReentrant(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "a/x.txt", 1)

	fsys := newFaultFS()
	fsys.entered = make(chan struct{})
	fsys.block = make(chan struct{})
	exec := &Executor{FS: fsys}

	done := make(chan error, 1)
	go func() {
		_, err := exec.Execute(context.Background(), candidatesFor(path))
		done <- err
	}()
	<-fsys.entered

	if _, err := exec.Execute(context.Background(), candidatesFor(path)); !errors.Is(err, ErrDeletionInProgress) {
		t.Errorf("expected ErrDeletionInProgress, got %v", err)
	}
	close(fsys.block)
	if err := <-done; err != nil {
		t.Fatalf("first execution failed: %v", err)
	}
}

func TestClassifyDeleteError(t *testing.T) {
	tests := []struct {
		err  error
		want FailureReason
	}{
		{&fs.PathError{Op: "remove", Err: fs.ErrPermission}, FailurePermission},
		{&fs.PathError{Op: "remove", Err: syscall.EACCES}, FailurePermission},
		{&fs.PathError{Op: "remove", Err: syscall.EBUSY}, FailureInUse},
		{errors.New("disk on fire"), FailureIO},
	}
	for _, tt := range tests {
		if got := classifyDeleteError(tt.err); got != tt.want {
			t.Errorf("classifyDeleteError(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}
}

func TestValidateDeletePath(t *testing.T) {
	if _, err := validateDeletePath(""); err == nil {
		t.Error("expected error for empty path")
	}
	if _, err := validateDeletePath("a/b"); err == nil {
		t.Error("expected error for relative path")
	}
	abs := filepath.Join(t.TempDir(), "x")
	if got, err := validateDeletePath(abs + string(filepath.Separator)); err != nil || got != abs {
		t.Errorf("validateDeletePath(%q) = %q, %v", abs, got, err)
	}
}
