// Package hunk computes line-range differences between an original and a
// proposed text and reconciles them one hunk at a time.
package hunk

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Hunk is a contiguous line-range difference between an original and a
// proposed text. All line numbers are 1-indexed and inclusive; start > end
// denotes a pure insertion or deletion at that boundary.
type Hunk struct {
	OriginalStart int `json:"original_start"`
	OriginalEnd   int `json:"original_end"`
	ModifiedStart int `json:"modified_start"`
	ModifiedEnd   int `json:"modified_end"`
}

// IsInsertion returns true when the hunk adds lines with no original-side
// counterpart.
func (h Hunk) IsInsertion() bool {
	return h.OriginalStart > h.OriginalEnd
}

// IsDeletion returns true when the hunk removes lines with no
// modified-side counterpart.
func (h Hunk) IsDeletion() bool {
	return h.ModifiedStart > h.ModifiedEnd
}

// Compute returns the hunks between the original and proposed texts.
//
// Hunk boundaries come from a standard longest-matching-subsequence line
// diff; callers must not depend on exact boundaries, only on hunk
// semantics. Recompute the full set after each Accept/Reject rather than
// patching coordinates incrementally.
func Compute(original, proposed string) []Hunk {
	a := strings.Split(original, "\n")
	b := strings.Split(proposed, "\n")

	var hunks []Hunk
	for _, op := range difflib.NewMatcher(a, b).GetOpCodes() {
		if op.Tag == 'e' {
			continue
		}
		hunks = append(hunks, Hunk{
			OriginalStart: op.I1 + 1,
			OriginalEnd:   op.I2,
			ModifiedStart: op.J1 + 1,
			ModifiedEnd:   op.J2,
		})
	}
	return hunks
}

// Accept folds the modified-side lines of the hunk into the original text
// and returns the updated original.
//
// A pure insertion splices the modified lines in at OriginalStart without
// deleting; a replacement deletes the original range first. Hunks with
// nonsensical coordinates are a no-op: locations come from a recompute
// that may be stale, so degrading beats panicking.
func Accept(original, proposed string, h Hunk) string {
	origLines := strings.Split(original, "\n")
	modLines := strings.Split(proposed, "\n")

	repl, ok := sliceRange(modLines, h.ModifiedStart, h.ModifiedEnd)
	if !ok {
		return original
	}

	out, ok := spliceRange(origLines, h.OriginalStart, h.OriginalEnd, repl)
	if !ok {
		return original
	}
	return strings.Join(out, "\n")
}

// Reject copies the original-side lines of the hunk back into the proposed
// text and returns the updated proposed.
//
// A pure deletion on the modified side is a no-op: there is nothing to
// revert on the modified text. Nonsensical coordinates are likewise a
// no-op.
func Reject(original, proposed string, h Hunk) string {
	if h.IsDeletion() {
		return proposed
	}

	origLines := strings.Split(original, "\n")
	modLines := strings.Split(proposed, "\n")

	repl, ok := sliceRange(origLines, h.OriginalStart, h.OriginalEnd)
	if !ok {
		return proposed
	}

	out, ok := spliceRange(modLines, h.ModifiedStart, h.ModifiedEnd, repl)
	if !ok {
		return proposed
	}
	return strings.Join(out, "\n")
}

// sliceRange returns lines[start..end] (1-indexed, inclusive). An inverted
// range yields an empty slice; out-of-bounds coordinates yield ok=false.
func sliceRange(lines []string, start, end int) ([]string, bool) {
	if start > end {
		return nil, true
	}
	if start < 1 || end > len(lines) {
		return nil, false
	}
	return lines[start-1 : end], true
}

// spliceRange replaces lines[start..end] with repl. For an inverted range
// (pure insertion) repl is inserted before line start with nothing
// removed. Out-of-bounds coordinates yield ok=false.
func spliceRange(lines []string, start, end int, repl []string) ([]string, bool) {
	if start > end {
		// Insertion point: start may be one past the last line.
		at := start - 1
		if at < 0 || at > len(lines) {
			return nil, false
		}
		out := make([]string, 0, len(lines)+len(repl))
		out = append(out, lines[:at]...)
		out = append(out, repl...)
		out = append(out, lines[at:]...)
		return out, true
	}

	if start < 1 || end > len(lines) {
		return nil, false
	}
	out := make([]string, 0, len(lines)-(end-start+1)+len(repl))
	out = append(out, lines[:start-1]...)
	out = append(out, repl...)
	out = append(out, lines[end:]...)
	return out, true
}
