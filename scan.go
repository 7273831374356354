package main

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"
)

type Scanner struct {
	FS       FileSystem
	MaxDepth int
	SkipDirs map[string]struct{}
	// Progress, if set, is called at most every 200ms and once at the end.
	Progress func(dirs, files int)
}

func defaultSkipDirs() map[string]struct{} {
	return map[string]struct{}{
		".git": {},
		".hg":  {},
		".svn": {},
	}
}

// Scan walks root and returns every regular file beneath it. Unreadable
// entries are collected in ScanResult.Skipped and do not fail the scan.
func (s *Scanner) Scan(ctx context.Context, root string) (ScanResult, error) {
	fsys := s.FS
	if fsys == nil {
		fsys = newOSFS()
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return ScanResult{}, fmt.Errorf("scan %s: %w", root, ErrPathNotFound)
	}
	// The walk does not descend through a symlinked root, so resolve it first.
	if resolved, err := filepath.EvalSymlinks(absRoot); err == nil {
		absRoot = resolved
	}
	info, err := fsys.Stat(absRoot)
	if err != nil || !info.IsDir() {
		return ScanResult{}, fmt.Errorf("scan %s: %w", absRoot, ErrPathNotFound)
	}

	start := time.Now()
	result := ScanResult{}
	lastProgress := time.Now()

	sendProgress := func(force bool) {
		if s.Progress == nil {
			return
		}
		if force || time.Since(lastProgress) > 200*time.Millisecond {
			s.Progress(result.Dirs, len(result.Records))
			lastProgress = time.Now()
		}
	}

	err = fsys.WalkDir(absRoot, func(path string, entry fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			result.Skipped = append(result.Skipped, SkippedEntry{Path: path, Err: err})
			if entry != nil && entry.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if entry.Type()&fs.ModeSymlink != 0 {
			return nil
		}

		if entry.IsDir() {
			if path == absRoot {
				return nil
			}
			if _, ok := s.SkipDirs[entry.Name()]; ok {
				return fs.SkipDir
			}
			if s.MaxDepth > 0 && relativeDepth(absRoot, path) > s.MaxDepth {
				return fs.SkipDir
			}
			result.Dirs++
			sendProgress(false)
			return nil
		}

		if !entry.Type().IsRegular() {
			return nil
		}

		fileInfo, infoErr := entry.Info()
		if infoErr != nil {
			result.Skipped = append(result.Skipped, SkippedEntry{Path: path, Err: infoErr})
			return nil
		}
		result.Records = append(result.Records, FileRecord{
			Name:       entry.Name(),
			FullPath:   path,
			SizeBytes:  fileInfo.Size(),
			ModifiedAt: fileInfo.ModTime(),
		})
		sendProgress(false)
		return nil
	})
	if err != nil {
		return ScanResult{}, fmt.Errorf("scan %s: %w", absRoot, err)
	}

	sendProgress(true)
	result.Elapsed = time.Since(start)
	return result, nil
}

// relativeDepth counts directory levels below root; a direct child is 1.
func relativeDepth(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(filepath.ToSlash(rel), "/") + 1
}
