package chunking

import (
	"strings"
	"unicode"
)

// appendSection flushes one section into out. Trailing blank lines are
// dropped and an empty section emits nothing. A section over the hard cap is
// re-partitioned by splitOverflow; every part shares the section's header.
func appendSection(out []Chunk, doc docContext, lines []string, headingPath string, isTOC bool, sectionIndex int) []Chunk {
	lines = trimTrailingBlank(lines)
	raw := strings.TrimSpace(strings.Join(lines, "\n"))
	if raw == "" {
		return out
	}

	if charLen(raw) <= doc.opts.MaxChars {
		return append(out, doc.newChunk(raw, headingPath, isTOC, sectionIndex, 0))
	}

	for partIndex, part := range splitOverflow(lines, doc.opts) {
		partRaw := strings.TrimSpace(strings.Join(part, "\n"))
		if partRaw == "" {
			continue
		}
		out = append(out, doc.newChunk(partRaw, headingPath, isTOC, sectionIndex, partIndex))
	}
	return out
}

// splitOverflow re-walks an oversized section with its own code/table state.
// Blank lines outside code and tables are safe split points. Once the buffer
// reaches MaxChars outside code and tables it is cut at the latest safe point,
// or at its end when there is none, and the next part is seeded with an
// overlap taken from the tail of the part just emitted.
func splitOverflow(lines []string, opts Options) [][]string {
	var (
		parts    [][]string
		buf      []string
		bufLen   int
		lastSafe int  // 0 means no safe point in buf
		fresh    bool // buf holds at least one line not carried as overlap
		state    scanState
		info     lineInfo
	)

	for _, line := range lines {
		state, info = state.step(line)

		buf = append(buf, line)
		bufLen += charLen(line) + 1
		fresh = true

		if state.outside() && info.kind == kindBlank {
			lastSafe = len(buf)
		}
		if bufLen < opts.MaxChars || !state.outside() {
			continue
		}

		splitAt := lastSafe
		if splitAt == 0 {
			splitAt = len(buf)
		}
		part := append([]string(nil), buf[:splitAt]...)
		remainder := append([]string(nil), buf[splitAt:]...)
		parts = append(parts, part)

		buf, bufLen, lastSafe = nil, 0, 0
		if prefix := overlapPrefix(part, opts.OverlapChars); prefix != "" {
			buf = append(buf, prefix)
			bufLen += charLen(prefix) + 1
		}
		buf = append(buf, remainder...)
		bufLen += linesLen(remainder)
		fresh = len(remainder) > 0
	}

	if len(buf) > 0 && fresh {
		parts = append(parts, buf)
	}
	return parts
}

// overlapPrefix returns up to n trailing characters of part, advanced to the
// start of a line so the carried text never begins mid-line. Only prose after
// the last fence marker or table row is carried, so a seeded part never opens
// inside code or a table.
func overlapPrefix(part []string, n int) string {
	text := strings.TrimRightFunc(strings.Join(part, "\n"), unicode.IsSpace)
	if n <= 0 || text == "" {
		return ""
	}

	runes := []rune(text)
	if len(runes) > n {
		runes = runes[len(runes)-n:]
	}
	prefix := string(runes)
	if i := strings.IndexByte(prefix, '\n'); i != -1 {
		prefix = prefix[i+1:]
	}

	lines := strings.Split(prefix, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if fenceRe.MatchString(lines[i]) || isTableLine(lines[i]) {
			prefix = strings.Join(lines[i+1:], "\n")
			break
		}
	}
	if isBlank(prefix) {
		return ""
	}
	return prefix
}

func trimTrailingBlank(lines []string) []string {
	end := len(lines)
	for end > 0 && isBlank(lines[end-1]) {
		end--
	}
	return lines[:end]
}
