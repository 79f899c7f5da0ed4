package chunking

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var frontMatterDelimRe = regexp.MustCompile(`^---\s*$`)

// Metadata is the key/value block found at the top of a document.
// Values are strings, or []any for bracketed lists.
type Metadata map[string]any

// String returns the trimmed string form of key, or "" when absent.
func (m Metadata) String(key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case []any:
		if len(val) == 0 {
			return ""
		}
		raw, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(raw)
	default:
		return strings.TrimSpace(fmt.Sprint(val))
	}
}

// Strings returns key as a list of strings. A scalar becomes a one-element list.
func (m Metadata) Strings(key string) []string {
	switch val := m[key].(type) {
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			out = append(out, fmt.Sprint(item))
		}
		return out
	case string:
		if val == "" {
			return nil
		}
		return []string{val}
	default:
		return nil
	}
}

// ParseFrontMatter splits a document into its metadata block and body.
// A document whose first line is not a "---" delimiter is returned unchanged
// with empty metadata. A missing closing delimiter consumes the whole input.
func ParseFrontMatter(doc string) (Metadata, string) {
	lines := splitLines(doc)
	if len(lines) == 0 || !frontMatterDelimRe.MatchString(lines[0]) {
		return Metadata{}, doc
	}

	meta := Metadata{}
	i := 1
	for ; i < len(lines) && !frontMatterDelimRe.MatchString(lines[i]); i++ {
		line := strings.TrimSpace(lines[i])
		key, value, ok := strings.Cut(line, ":")
		if line == "" || !ok {
			continue
		}
		meta[strings.TrimSpace(key)] = parseFrontMatterValue(strings.TrimSpace(value))
	}
	if i < len(lines) {
		i++ // closing delimiter
	}

	body := strings.TrimLeft(strings.Join(lines[i:], "\n"), "\n")
	return meta, body
}

func parseFrontMatterValue(v string) any {
	if strings.HasPrefix(v, "[") && strings.HasSuffix(v, "]") {
		var list []any
		if err := json.Unmarshal([]byte(strings.ReplaceAll(v, "'", `"`)), &list); err == nil {
			return list
		}
		return v
	}
	if len(v) >= 2 && v[0] == '"' && v[len(v)-1] == '"' {
		// Titles are written JSON-quoted; decode escapes when the value is valid JSON.
		var s string
		if err := json.Unmarshal([]byte(v), &s); err == nil {
			return s
		}
		return v[1 : len(v)-1]
	}
	if len(v) >= 2 && v[0] == '\'' && v[len(v)-1] == '\'' {
		return v[1 : len(v)-1]
	}
	return v
}
