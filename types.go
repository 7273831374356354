package main

import (
	"errors"
	"math"
	"time"
)

var (
	// ErrPathNotFound is returned when the scan root is missing or not a directory.
	ErrPathNotFound = errors.New("path not found")
	// ErrBusy is returned when a scan or delete is requested while another is running.
	ErrBusy = errors.New("another operation is in progress")
	// ErrDeletionInProgress is returned by a second concurrent Execute.
	ErrDeletionInProgress = errors.New("deletion already in progress")
)

// FileRecord is a snapshot of one file taken during a scan.
type FileRecord struct {
	Name       string
	FullPath   string
	SizeBytes  int64
	ModifiedAt time.Time
}

// SizeKB returns the size in kilobytes rounded to two decimals.
func (r FileRecord) SizeKB() float64 {
	return math.Round(float64(r.SizeBytes)/1024*100) / 100
}

// Candidate is one entry of the flattened duplicate list.
type Candidate struct {
	FileRecord
	Group  int
	Marked bool
}

// ID identifies the candidate within its session.
func (c Candidate) ID() string {
	return c.FullPath
}

type SkippedEntry struct {
	Path string
	Err  error
}

type ScanResult struct {
	Records []FileRecord
	Skipped []SkippedEntry
	Dirs    int
	Elapsed time.Duration
}

type FailureReason string

const (
	FailurePermission FailureReason = "permission"
	FailureInUse      FailureReason = "in-use"
	FailureIO         FailureReason = "io"
	FailureInvalid    FailureReason = "invalid"
)

type DeleteFailure struct {
	Path   string
	Reason FailureReason
	Err    error
}

// DeletionOutcome aggregates one deletion pass.
type DeletionOutcome struct {
	Deleted  int
	Failed   int
	Gone     []string
	Failures []DeleteFailure
}
