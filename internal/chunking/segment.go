package chunking

// segmenter walks body lines and cuts sections at boundary headings.
// Code and table state is global across sections.
type segmenter struct {
	doc        docContext
	splitLevel int

	state      scanState
	h1         string
	path       string
	section    []string
	sectionLen int
	index      int
}

// run appends the chunks of every section in lines to out, in order.
func (s *segmenter) run(lines []string, out []Chunk) []Chunk {
	for _, line := range lines {
		var info lineInfo
		s.state, info = s.state.step(line)

		if info.kind == kindHeading {
			if info.level == 1 {
				s.h1 = info.text
			}
			if s.isBoundary(info.level) {
				out = s.flush(out)
				s.path = s.boundaryPath(info.level, info.text)
			}
		}

		// The heading that opens a section is its first line.
		s.section = append(s.section, line)
		s.sectionLen += charLen(line) + 1
	}
	return s.flush(out)
}

func (s *segmenter) isBoundary(level int) bool {
	if s.splitLevel == 0 {
		return false
	}
	if level == s.splitLevel {
		return true
	}
	// A level-4 heading only opens a section once the current one is close to
	// the target size.
	return s.splitLevel == 3 && level == 4 && s.sectionLen >= s.doc.opts.secondaryThreshold()
}

func (s *segmenter) boundaryPath(level int, text string) string {
	parent := s.h1
	if parent == "" {
		parent = s.doc.title
	}
	if level == 4 && s.path != "" {
		parent = s.path
	}
	return parent + " > " + text
}

func (s *segmenter) flush(out []Chunk) []Chunk {
	if len(s.section) == 0 {
		return out
	}
	path := s.path
	if path == "" {
		path = IntroHeadingPath
	}
	out = appendSection(out, s.doc, s.section, path, false, s.index)
	s.index++
	s.section = nil
	s.sectionLen = 0
	return out
}
