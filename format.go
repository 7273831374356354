package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	runewidth "github.com/mattn/go-runewidth"
)

const timestampLayout = "02/01/2006 15:04:05"

func formatKB(r FileRecord) string {
	return fmt.Sprintf("%.2f KB", r.SizeKB())
}

func formatTimestamp(t time.Time) string {
	return t.Format(timestampLayout)
}

func formatBytes(size int64) string {
	if size < 0 {
		size = 0
	}
	return humanize.IBytes(uint64(size))
}

// truncateLeft cuts from the front so the file name and its parent stay visible.
func truncateLeft(text string, width int) string {
	if width <= 0 || runewidth.StringWidth(text) <= width {
		return text
	}
	reversed := []rune(text)
	for i, j := 0, len(reversed)-1; i < j; i, j = i+1, j-1 {
		reversed[i], reversed[j] = reversed[j], reversed[i]
	}
	cut := runewidth.Truncate(string(reversed), width-1, "")
	runes := []rune(cut)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return "…" + string(runes)
}

func markedBytes(candidates []Candidate) int64 {
	var total int64
	for _, c := range candidates {
		if c.Marked {
			total += c.SizeBytes
		}
	}
	return total
}
