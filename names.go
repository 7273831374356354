package main

import (
	"sort"
	"strings"
)

// commonNames are file names that routinely repeat across a tree without
// being real duplicates. They are only excluded when asked for.
var commonNames = []string{
	".DS_Store",
	"Thumbs.db",
	"desktop.ini",
	".gitkeep",
	".gitignore",
	"__init__.py",
	"README.md",
	"LICENSE",
	"Makefile",
	"go.mod",
	"go.sum",
	"package.json",
	"index.js",
	"index.ts",
}

func buildNameSet(includeCommon bool, extra []string) map[string]struct{} {
	names := map[string]struct{}{}
	if includeCommon {
		for _, name := range commonNames {
			names[name] = struct{}{}
		}
	}
	for _, name := range extra {
		if name == "" {
			continue
		}
		names[name] = struct{}{}
	}
	return names
}

func parseNameList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

func sortedNames(names map[string]struct{}) []string {
	out := make([]string, 0, len(names))
	for name := range names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
