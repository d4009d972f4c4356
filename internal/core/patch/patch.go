// Package patch applies a suggestion's fix to document content.
package patch

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/colonyops/redline/internal/core/suggestion"
)

// headingPattern matches markdown ATX headings, which bound a section.
var headingPattern = regexp.MustCompile(`^#{1,6}\s`)

// ApplyFix computes new document content from the original content and one
// suggestion's fix. Pure function, no side effects.
//
// Resolution ladder, first applicable rung wins:
//
//  1. Line range: replace lines [LineStart, LineEnd] with the fix.
//  2. Section: insert the fix at the end of the named section.
//  3. Snippet: replace the first occurrence of TextSnippet.
//  4. Append: add the fix to the end of the document behind a comment
//     marker so the reviewer can locate it.
//
// Imprecise locations produced upstream degrade to the next rung rather
// than erroring, so a suggestion is never silently dropped.
func ApplyFix(content string, s suggestion.Suggestion) string {
	if out, ok := applyLineRange(content, s); ok {
		return out
	}
	if out, ok := applySection(content, s); ok {
		return out
	}
	if out, ok := applySnippet(content, s); ok {
		return out
	}
	return applyAppend(content, s)
}

// applyLineRange replaces the inclusive 1-indexed line range with the fix.
// LineEnd defaults to LineStart when unset or inverted, and is clamped to
// the document end when it overshoots.
func applyLineRange(content string, s suggestion.Suggestion) (string, bool) {
	lines := strings.Split(content, "\n")

	if s.LineStart < 1 || s.LineStart > len(lines) {
		return "", false
	}

	end := s.LineEnd
	if end < s.LineStart {
		end = s.LineStart
	}
	if end > len(lines) {
		end = len(lines)
	}

	fixLines := strings.Split(s.SuggestedFix, "\n")

	out := make([]string, 0, len(lines)-(end-s.LineStart+1)+len(fixLines))
	out = append(out, lines[:s.LineStart-1]...)
	out = append(out, fixLines...)
	out = append(out, lines[end:]...)

	return strings.Join(out, "\n"), true
}

// applySection inserts the fix at the end of the first section whose
// heading line contains the section hint (trimmed, case-insensitive).
func applySection(content string, s suggestion.Suggestion) (string, bool) {
	if s.Section == "" {
		return "", false
	}

	lines := strings.Split(content, "\n")
	want := strings.ToLower(s.Section)

	start := -1
	for i, line := range lines {
		if strings.Contains(strings.ToLower(strings.TrimSpace(line)), want) {
			start = i
			break
		}
	}
	if start == -1 {
		return "", false
	}

	// Section runs until the next heading or end of document.
	end := len(lines)
	for i := start + 1; i < len(lines); i++ {
		if headingPattern.MatchString(lines[i]) {
			end = i
			break
		}
	}

	insert := append([]string{""}, strings.Split(s.SuggestedFix, "\n")...)
	insert = append(insert, "")

	out := make([]string, 0, len(lines)+len(insert))
	out = append(out, lines[:end]...)
	out = append(out, insert...)
	out = append(out, lines[end:]...)

	return strings.Join(out, "\n"), true
}

// applySnippet replaces the first verbatim occurrence of the snippet.
func applySnippet(content string, s suggestion.Suggestion) (string, bool) {
	if s.TextSnippet == "" || !strings.Contains(content, s.TextSnippet) {
		return "", false
	}
	return strings.Replace(content, s.TextSnippet, s.SuggestedFix, 1), true
}

// applyAppend adds the fix to the end of the document behind a marker.
func applyAppend(content string, s suggestion.Suggestion) string {
	return fmt.Sprintf("%s\n\n<!-- unplaced suggestion %s -->\n%s", content, s.ID, s.SuggestedFix)
}
