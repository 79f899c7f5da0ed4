package chunking

import (
	"fmt"

	"helpcenter-sync/internal/service"
)

const (
	DefaultTargetChars  = 2200
	DefaultMaxChars     = 4200
	DefaultOverlapChars = 200

	// tocScanLines bounds how far into the body a TOC anchor list is looked for.
	tocScanLines = 200

	IntroHeadingPath = "Intro"
	TOCHeadingPath   = "TOC"
)

// Chunk is one independently indexable passage of a document.
type Chunk struct {
	ID           string `json:"id"` // "{article_id|article}:{section:04d}:{part}"
	ArticleID    string `json:"article_id,omitempty"`
	Title        string `json:"title"`
	URL          string `json:"url"`
	HeadingPath  string `json:"heading_path"` // "Intro", "TOC" or "Parent > Heading"
	IsTOC        bool   `json:"is_toc"`
	SectionIndex int    `json:"section_index"`
	PartIndex    int    `json:"part_index"`
	Text         string `json:"text"` // citation header + blank line + passage
	RawChars     int    `json:"raw_chars"`
	Oversized    bool   `json:"oversized,omitempty"`
}

// Options controls chunk sizing and TOC handling. Sizes are in characters (runes).
type Options struct {
	// TargetChars is only used by the secondary level-4 boundary rule.
	TargetChars int `json:"target_chars" toml:"target_chars"`
	// MaxChars is the hard cap that triggers overflow splitting.
	MaxChars int `json:"max_chars" toml:"max_chars"`
	// OverlapChars bounds the prefix carried from one overflow part to the next.
	OverlapChars    int  `json:"overlap_chars" toml:"overlap_chars"`
	IncludeTOCChunk bool `json:"include_toc_chunk" toml:"include_toc_chunk"`
}

// DefaultOptions returns the stock sizing: target 2200, max 4200, overlap 200, TOC on.
func DefaultOptions() Options {
	return Options{
		TargetChars:     DefaultTargetChars,
		MaxChars:        DefaultMaxChars,
		OverlapChars:    DefaultOverlapChars,
		IncludeTOCChunk: true,
	}
}

// Validate reports the first option that cannot produce a sensible chunking.
func (o Options) Validate() error {
	switch {
	case o.MaxChars <= 0:
		return &service.ValidationError{Field: "max_chars", Message: "must be greater than 0"}
	case o.TargetChars <= 0:
		return &service.ValidationError{Field: "target_chars", Message: "must be greater than 0"}
	case o.OverlapChars < 0:
		return &service.ValidationError{Field: "overlap_chars", Message: "must not be negative"}
	case o.OverlapChars >= o.MaxChars:
		return &service.ValidationError{
			Field:   "overlap_chars",
			Message: fmt.Sprintf("must be smaller than max_chars (%d)", o.MaxChars),
		}
	}
	return nil
}

// secondaryThreshold is 90% of the target size, the point at which a level-4
// heading may open a new section when splitting at level 3.
func (o Options) secondaryThreshold() int {
	return o.TargetChars * 9 / 10
}
