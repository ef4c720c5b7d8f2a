// Package heuristics holds the lexical probes the scoring agents run over C
// source text. They are regular-expression and substring checks, not a
// parser: false positives and negatives are expected and accepted. Word and
// whitespace classes are Unicode-aware, so identifiers like café count as
// words and U+00A0 or U+2028 count as spacing. Every function tolerates
// arbitrary bytes, including invalid UTF-8.
package heuristics

import (
	"regexp"
	"strings"
)

const (
	word  = `[\p{L}\p{N}_]`
	space = `[\t\n\v\f\r \x{1c}-\x{1f}\x{85}\p{Z}]`
)

var (
	// A return type and name, a parameter list, then an opening brace on the
	// same line or a later one.
	functionPattern = regexp.MustCompile(word + `+` + space + `+\**` + word + `+` + space + `*\([^)]*\)` + space + `*\{`)
	loopPattern     = regexp.MustCompile(`for` + space + `*\(|while` + space + `*\(`)
	wordPattern     = regexp.MustCompile(word + `+`)
	// Greedy across newlines: any "for" followed anywhere later by printf.
	printfInLoopPattern = regexp.MustCompile(`(?s)for.*printf`)
)

// isLineBreak reports the runes a splitlines pass treats as line ends.
func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', 0x1c, 0x1d, 0x1e, 0x85, 0x2028, 0x2029:
		return true
	}
	return false
}

// LineCount counts lines the way a splitlines pass would: \r\n and every
// single line-break rune end a line, and a trailing terminator does not open
// a new one.
func LineCount(src string) int {
	n := 0
	ended := true
	prevCR := false
	for _, r := range src {
		if prevCR && r == '\n' {
			prevCR = false
			continue
		}
		prevCR = r == '\r'
		if isLineBreak(r) {
			n++
			ended = true
		} else {
			ended = false
		}
	}
	if !ended {
		n++
	}
	return n
}

func CountFunctions(src string) int {
	return len(functionPattern.FindAllStringIndex(src, -1))
}

// CountComments counts comment-start markers, line and block alike.
func CountComments(src string) int {
	return strings.Count(src, "//") + strings.Count(src, "/*")
}

func CountLoops(src string) int {
	return len(loopPattern.FindAllStringIndex(src, -1))
}

// CountBranches counts if, switch and case as whole words.
func CountBranches(src string) int {
	n := 0
	for _, w := range wordPattern.FindAllString(src, -1) {
		switch w {
		case "if", "switch", "case":
			n++
		}
	}
	return n
}

// HasUnfreedAllocation reports malloc appearing with no free anywhere in the text.
func HasUnfreedAllocation(src string) bool {
	return strings.Contains(src, "malloc") && !strings.Contains(src, "free")
}

func HasPrintfInLoop(src string) bool {
	return printfInLoopPattern.MatchString(src)
}
