// Package chunking partitions a normalized help-center document into
// retrieval-sized passages with citation headers and stable identifiers.
//
// Chunking is a pure function of the document text and Options: it performs
// no I/O and keeps no state between calls, so a MarkdownChunker can be shared
// across goroutines.
package chunking

import (
	"fmt"
	"strings"
)

// MarkdownChunker splits documents at heading boundaries without cutting
// through fenced code or tables.
type MarkdownChunker struct {
	opts Options
}

// NewMarkdownChunker creates a chunker with the given options.
// Options are expected to have passed Validate.
func NewMarkdownChunker(opts Options) *MarkdownChunker {
	return &MarkdownChunker{opts: opts}
}

// Options returns the options the chunker was built with.
func (c *MarkdownChunker) Options() Options {
	return c.opts
}

// ChunkMarkdown returns the ordered chunks of document: the TOC chunk first if
// one was extracted, then sections in document order, then overflow parts
// within each section in order.
func (c *MarkdownChunker) ChunkMarkdown(document string) []Chunk {
	meta, body := ParseFrontMatter(document)
	doc := newDocContext(meta, body, c.opts)
	lines := splitLines(body)

	seg := &segmenter{doc: doc, splitLevel: detectSplitLevel(lines)}

	var out []Chunk
	start := 0
	if c.opts.IncludeTOCChunk {
		if toc, last := extractTOC(lines); len(toc) > 0 {
			out = appendSection(out, doc, toc, TOCHeadingPath, true, 0)
			seg.index = 1
			start = last + 1
		}
	}
	return seg.run(lines[start:], out)
}

// Split chunks document with opts.
func Split(document string, opts Options) []Chunk {
	return NewMarkdownChunker(opts).ChunkMarkdown(document)
}

// ResolveTitleURL prefers the metadata title and url. The title falls back to
// the first level-1 heading of body, then "Untitled"; the url falls back to
// the first "Article URL:" line, then "".
func ResolveTitleURL(body string, meta Metadata) (string, string) {
	title := meta.String("title")
	url := meta.String("url")
	lines := splitLines(body)

	if title == "" {
		for _, line := range lines {
			if level, text, ok := parseHeading(line); ok && level == 1 {
				title = text
				break
			}
		}
	}
	if url == "" {
		for _, line := range lines {
			if strings.HasPrefix(strings.ToLower(line), "article url:") {
				_, rest, _ := strings.Cut(line, ":")
				url = strings.TrimSpace(rest)
				break
			}
		}
	}

	if title == "" {
		title = "Untitled"
	}
	return title, url
}

// Body returns the passage text of the chunk without its citation header.
func (c Chunk) Body() string {
	_, body, ok := strings.Cut(c.Text, "\n\n")
	if !ok {
		return strings.TrimSuffix(c.Text, "\n")
	}
	return strings.TrimSuffix(body, "\n")
}

// docContext holds what every chunk of one document shares.
type docContext struct {
	articleID string
	title     string
	url       string
	updatedAt string
	opts      Options
}

func newDocContext(meta Metadata, body string, opts Options) docContext {
	title, url := ResolveTitleURL(body, meta)
	return docContext{
		articleID: meta.String("id"),
		title:     title,
		url:       url,
		updatedAt: meta.String("updated_at"),
		opts:      opts,
	}
}

func (d docContext) header(headingPath string) string {
	var b strings.Builder
	b.WriteString("Title: " + d.title + "\n")
	if d.url != "" {
		b.WriteString("Article URL: " + d.url + "\n")
	} else {
		b.WriteString("Article URL:\n")
	}
	if headingPath != "" {
		b.WriteString("Section: " + headingPath + "\n")
	} else {
		b.WriteString("Section:\n")
	}
	if d.updatedAt != "" {
		b.WriteString("Updated At: " + d.updatedAt + "\n")
	}
	b.WriteString("\n")
	return b.String()
}

func (d docContext) newChunk(raw, headingPath string, isTOC bool, sectionIndex, partIndex int) Chunk {
	prefix := d.articleID
	if prefix == "" {
		prefix = "article"
	}
	n := charLen(raw)
	return Chunk{
		ID:           fmt.Sprintf("%s:%04d:%d", prefix, sectionIndex, partIndex),
		ArticleID:    d.articleID,
		Title:        d.title,
		URL:          d.url,
		HeadingPath:  headingPath,
		IsTOC:        isTOC,
		SectionIndex: sectionIndex,
		PartIndex:    partIndex,
		Text:         d.header(headingPath) + raw + "\n",
		RawChars:     n,
		Oversized:    n > d.opts.MaxChars,
	}
}
