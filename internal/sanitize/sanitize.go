// Package sanitize repairs probabilistic model output: it strips reasoning
// artifacts, drops corrupted trailing content, and trims the text back to the
// last clean sentence boundary. Clean is pure and idempotent, and its output
// is never longer than its input. The heuristics are conservative; the length
// tripwires downstream catch over-aggressive trimming.
package sanitize

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	tailScanLines       = 10
	nonLatinRunLimit    = 5
	bracketRunLimit     = 10
	tokenRunLimit       = 50
	unprintableLimit    = 10
	sentenceKeepRatio   = 0.8
	terminalPunctuation = ".!?"
)

var (
	thinkBlockExpr = regexp.MustCompile(`(?is)<think>.*?</think>`)
	editorialExpr  = regexp.MustCompile(`(?i)\[(?:note|editorial|edit|comment|reasoning|thinking|internal)\b[^\]]*\]`)
)

// Clean sanitizes raw model output. Bare numeric citation markers like [1]
// survive; bracketed editorial notes do not.
func Clean(raw string) string {
	text := thinkBlockExpr.ReplaceAllString(raw, "")
	text = strings.ReplaceAll(text, "<think>", "")
	text = strings.ReplaceAll(text, "</think>", "")
	text = editorialExpr.ReplaceAllString(text, "")
	text = dropCorruptTail(text)
	text = trimToSentence(text)
	return strings.TrimSpace(text)
}

// dropCorruptTail removes corrupted content from the end of the text. The last
// lines are scanned back to front; a flagged line is cut at the start of its
// first corrupt run, and dropped entirely when nothing readable precedes it.
// Scanning stops at the first non-empty line that is not flagged.
func dropCorruptTail(text string) string {
	lines := strings.Split(text, "\n")
	cut := len(lines)

	examined := 0
	for i := len(lines) - 1; i >= 0 && examined < tailScanLines; i-- {
		examined++
		line := lines[i]
		if strings.TrimSpace(line) == "" {
			continue
		}

		offset := corruptAt(line)
		if offset < 0 {
			break
		}

		prefix := strings.TrimRight(line[:offset], " \t")
		if strings.TrimSpace(prefix) == "" {
			cut = i
			continue
		}

		lines[i] = prefix
		cut = i + 1
		break
	}

	return strings.Join(lines[:cut], "\n")
}

// corruptAt returns the byte offset where the first corrupt run of the line
// begins, or -1 for a clean line.
func corruptAt(line string) int {
	offset := -1

	candidates := []int{
		runStart(line, nonLatinRunLimit, func(r rune) bool {
			return unicode.IsLetter(r) && !unicode.Is(unicode.Latin, r)
		}),
		runStart(line, bracketRunLimit, func(r rune) bool {
			return strings.ContainsRune("[](){}<>", r)
		}),
		runStart(line, unprintableLimit, func(r rune) bool {
			return !unicode.IsPrint(r) && r != '\t'
		}),
		longTokenStart(line, tokenRunLimit),
	}

	for _, candidate := range candidates {
		if candidate < 0 {
			continue
		}
		if offset < 0 || candidate < offset {
			offset = candidate
		}
	}

	return offset
}

// runStart reports the byte offset where a run of at least threshold matching
// runes begins, or -1.
func runStart(line string, threshold int, match func(rune) bool) int {
	length, start := 0, 0
	for i, r := range line {
		if !match(r) {
			length = 0
			continue
		}
		if length == 0 {
			start = i
		}
		length++
		if length >= threshold {
			return start
		}
	}
	return -1
}

// longTokenStart reports the byte offset of the first whitespace-delimited
// token of at least threshold runes, or -1.
func longTokenStart(line string, threshold int) int {
	count, start := 0, -1
	for i, r := range line {
		if unicode.IsSpace(r) {
			count, start = 0, -1
			continue
		}
		if start < 0 {
			start = i
		}
		count++
		if count >= threshold {
			return start
		}
	}
	return -1
}

// trimToSentence truncates at the last sentence-ending punctuation mark when
// the text does not already end in one, but only if the boundary keeps at
// least 80% of the text. A merely differently-punctuated but complete article
// is left alone.
func trimToSentence(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return trimmed
	}

	if strings.ContainsRune(terminalPunctuation, rune(trimmed[len(trimmed)-1])) {
		return trimmed
	}

	idx := strings.LastIndexAny(trimmed, terminalPunctuation)
	if idx < 0 {
		return trimmed
	}
	if float64(idx+1) < sentenceKeepRatio*float64(len(trimmed)) {
		return trimmed
	}

	return trimmed[:idx+1]
}
