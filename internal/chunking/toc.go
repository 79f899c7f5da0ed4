package chunking

import "regexp"

// tocLineRe matches a list item whose only content is an in-document anchor
// link, e.g. "- [Setup](#setup)" or "2. [Setup](#setup)".
var tocLineRe = regexp.MustCompile(`^\s*(?:[-*+]|\d+[.)])\s+\[.+?\]\(#.+?\)\s*$`)

// extractTOC collects the first run of consecutive anchor-link list lines
// within the first tocScanLines lines. Fenced code is skipped only before the
// run starts; any other line ends it. It returns the lines and the index of
// the last one consumed, or -1 when none were found.
func extractTOC(lines []string) ([]string, int) {
	var toc []string
	last := -1
	inCode := false

	limit := len(lines)
	if limit > tocScanLines {
		limit = tocScanLines
	}
	for i, line := range lines[:limit] {
		if len(toc) > 0 {
			if !tocLineRe.MatchString(line) {
				break
			}
			toc = append(toc, line)
			last = i
			continue
		}
		if fenceRe.MatchString(line) {
			inCode = !inCode
			continue
		}
		if inCode {
			continue
		}
		if tocLineRe.MatchString(line) {
			toc = append(toc, line)
			last = i
		}
	}
	return toc, last
}
