package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sync"
	"sync/atomic"
	"syscall"

	"golang.org/x/sync/errgroup"
)

type Executor struct {
	FS      FileSystem
	Workers int
	// Progress, if set, is called after each attempt. Calls are serialized.
	Progress func(done, total int)

	running atomic.Bool
}

type attempt struct {
	deleted bool
	failure *DeleteFailure
}

// Execute removes every candidate in marked. Failures are isolated per file
// and the outcome is only assembled once every attempt has finished. Nothing
// is rolled back.
func (e *Executor) Execute(ctx context.Context, marked []Candidate) (DeletionOutcome, error) {
	if !e.running.CompareAndSwap(false, true) {
		return DeletionOutcome{}, ErrDeletionInProgress
	}
	defer e.running.Store(false)

	fsys := e.FS
	if fsys == nil {
		fsys = newOSFS()
	}
	workers := e.Workers
	if workers < 1 {
		workers = 1
	}

	attempts := make([]attempt, len(marked))
	var progressMu sync.Mutex
	done := 0

	g := new(errgroup.Group)
	g.SetLimit(workers)
	for idx, c := range marked {
		idx, c := idx, c
		g.Go(func() error {
			attempts[idx] = deleteOne(ctx, fsys, c.FullPath)
			if e.Progress != nil {
				progressMu.Lock()
				done++
				e.Progress(done, len(marked))
				progressMu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	outcome := DeletionOutcome{Gone: []string{}}
	for _, a := range attempts {
		if a.deleted {
			outcome.Deleted++
		}
		if a.failure != nil {
			outcome.Failed++
			outcome.Failures = append(outcome.Failures, *a.failure)
		}
	}
	for _, c := range marked {
		if !exists(fsys, c.FullPath) {
			outcome.Gone = append(outcome.Gone, c.FullPath)
		}
	}
	return outcome, nil
}

func deleteOne(ctx context.Context, fsys FileSystem, path string) attempt {
	cleaned, err := validateDeletePath(path)
	if err != nil {
		return attempt{failure: &DeleteFailure{Path: path, Reason: FailureInvalid, Err: err}}
	}
	if err := ctx.Err(); err != nil {
		return attempt{failure: &DeleteFailure{Path: cleaned, Reason: FailureIO, Err: err}}
	}
	info, err := fsys.Stat(cleaned)
	if errors.Is(err, fs.ErrNotExist) {
		return attempt{}
	}
	if err == nil && !info.Mode().IsRegular() {
		return attempt{failure: &DeleteFailure{Path: cleaned, Reason: FailureInvalid, Err: fmt.Errorf("delete %s: not a regular file", cleaned)}}
	}
	if err := fsys.Remove(cleaned); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return attempt{}
		}
		return attempt{failure: &DeleteFailure{Path: cleaned, Reason: classifyDeleteError(err), Err: err}}
	}
	return attempt{deleted: true}
}

func classifyDeleteError(err error) FailureReason {
	switch {
	case errors.Is(err, fs.ErrPermission):
		return FailurePermission
	case errors.Is(err, syscall.EBUSY), errors.Is(err, syscall.ETXTBSY):
		return FailureInUse
	default:
		return FailureIO
	}
}
