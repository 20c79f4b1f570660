package services

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ExcerptBudgets bound how much raw book text reaches the model. Budgets are
// in characters, not bytes; Tamil text runs three bytes per rune.
type ExcerptBudgets struct {
	// Default is the head-truncation budget when no page is requested.
	Default int
	// Window is the raw slice taken from a located page marker.
	Window int
	// Page is the final budget the window is re-truncated to.
	Page int
}

var pageRequestRe = regexp.MustCompile(`(?i)\bpage(?:\s+number)?\s+(\d+)\b`)

// ResolveExcerpt picks the slice of raw book text to ground this turn on.
// If the learner asked for a specific page and a marker for it can be found,
// the excerpt window starts at that marker and a focus directive is returned.
// Otherwise the head-truncated default stands and the directive is empty;
// an unfound page is a silent no-op, not an error.
func ResolveExcerpt(rawText, message string, budgets ExcerptBudgets) (excerpt, directive string) {
	if rawText == "" {
		return "", ""
	}

	m := pageRequestRe.FindStringSubmatch(message)
	if m != nil {
		page := m[1]
		if idx := findPageMarker(rawText, page); idx >= 0 {
			window := truncateRunes(rawText[idx:], budgets.Window)
			window = truncateRunes(window, budgets.Page)
			directive = fmt.Sprintf("The student asked about page %s. The BOOK TEXT above starts at the marker for page %s. Focus your answer on that part.", page, page)
			return window, directive
		}
	}

	return truncateRunes(rawText, budgets.Default), ""
}

// truncateRunes cuts s to at most max characters, always on a rune boundary.
func truncateRunes(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	count := 0
	for i := range s {
		if count == max {
			return s[:i]
		}
		count++
	}
	return s
}

// findPageMarker locates a page-boundary marker: a newline-delimited page
// number, with a looser whitespace-delimited fallback. The returned index
// points at the delimiter before the number.
func findPageMarker(rawText, page string) int {
	if idx := strings.Index(rawText, "\n"+page+"\n"); idx >= 0 {
		return idx
	}
	for from := 0; from < len(rawText); {
		j := strings.Index(rawText[from:], page)
		if j < 0 {
			return -1
		}
		j += from
		before, beforeSize := utf8.DecodeLastRuneInString(rawText[:j])
		after, _ := utf8.DecodeRuneInString(rawText[j+len(page):])
		if beforeSize > 0 && unicode.IsSpace(before) && unicode.IsSpace(after) {
			return j - beforeSize
		}
		from = j + len(page)
	}
	return -1
}
