package chunking

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	headingRe = regexp.MustCompile(`^(#{1,6})\s+(.*\S)\s*$`)
	fenceRe   = regexp.MustCompile("^\\s*```")
)

type lineKind int

const (
	kindProse lineKind = iota
	kindBlank
	kindHeading
	kindFence
	kindTable
)

// lineInfo is the classification of a single body line.
type lineInfo struct {
	kind  lineKind
	level int    // heading level, 1-6
	text  string // heading text
}

// scanState is the structural context carried from one line to the next.
type scanState struct {
	inCode  bool
	inTable bool
}

func (s scanState) outside() bool {
	return !s.inCode && !s.inTable
}

// step classifies raw and returns the state after it.
// Fences toggle code state regardless of fence length or language. Outside
// code, a line starting with '|' enters a table and a blank line leaves it.
// Headings are only recognized outside both regions.
func (s scanState) step(raw string) (scanState, lineInfo) {
	info := lineInfo{kind: kindProse}
	blank := isBlank(raw)

	if fenceRe.MatchString(raw) {
		s.inCode = !s.inCode
		info.kind = kindFence
	}
	if !s.inCode {
		if isTableLine(raw) {
			s.inTable = true
			if info.kind == kindProse {
				info.kind = kindTable
			}
		} else if s.inTable && blank {
			s.inTable = false
		}
	}

	if info.kind != kindProse {
		return s, info
	}
	if blank {
		info.kind = kindBlank
		return s, info
	}
	if s.outside() {
		if level, text, ok := parseHeading(raw); ok {
			info = lineInfo{kind: kindHeading, level: level, text: text}
		}
	}
	return s, info
}

func parseHeading(raw string) (int, string, bool) {
	m := headingRe.FindStringSubmatch(raw)
	if m == nil {
		return 0, "", false
	}
	return len(m[1]), strings.TrimSpace(m[2]), true
}

func isTableLine(raw string) bool {
	return strings.HasPrefix(strings.TrimLeftFunc(raw, unicode.IsSpace), "|")
}

func isBlank(raw string) bool {
	return strings.TrimSpace(raw) == ""
}

// detectSplitLevel picks the primary boundary heading level: 2 if any level-2
// heading exists outside code, else 3 if any level-3 heading does, else 0.
// Table state does not matter here.
func detectSplitLevel(lines []string) int {
	inCode := false
	hasH2, hasH3 := false, false

	for _, line := range lines {
		if fenceRe.MatchString(line) {
			inCode = !inCode
			continue
		}
		if inCode {
			continue
		}
		level, _, ok := parseHeading(line)
		if !ok {
			continue
		}
		switch level {
		case 2:
			hasH2 = true
		case 3:
			hasH3 = true
		}
	}

	switch {
	case hasH2:
		return 2
	case hasH3:
		return 3
	default:
		return 0
	}
}

// splitLines splits text into lines, accepting \n and \r\n endings.
// A trailing line break does not produce an empty final line.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}

// charLen counts characters the way sizes are configured: in runes.
func charLen(s string) int {
	return utf8.RuneCountInString(s)
}

// linesLen is the length of lines joined with a line break after each.
func linesLen(lines []string) int {
	n := 0
	for _, l := range lines {
		n += charLen(l) + 1
	}
	return n
}
