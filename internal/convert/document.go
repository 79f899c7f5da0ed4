package convert

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"helpcenter-sync/internal/helpcenter"
)

var (
	slugStripRe = regexp.MustCompile(`[^\w\s-]`)
	slugJoinRe  = regexp.MustCompile(`[-\s]+`)
)

// Slug builds an ASCII file-name slug from s. It falls back to "article".
func Slug(s string) string {
	decomposed := norm.NFKD.String(s)

	var sb strings.Builder
	for _, r := range decomposed {
		if r < 0x80 {
			sb.WriteRune(r)
		}
	}

	out := slugStripRe.ReplaceAllString(sb.String(), "")
	out = strings.ToLower(strings.TrimSpace(out))
	out = slugJoinRe.ReplaceAllString(out, "-")
	if out == "" {
		return "article"
	}
	return out
}

func jsonValue(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return `""`
	}
	return strings.TrimRight(buf.String(), "\n")
}

func title(a helpcenter.Article) string {
	if a.Title != "" {
		return a.Title
	}
	return "article-" + a.IDString()
}

func articleURL(a helpcenter.Article) string {
	if a.HTMLURL != "" {
		return a.HTMLURL
	}
	return a.URL
}

// Document renders an article as a normalized Markdown document with a
// front-matter block, an H1 title and an "Article URL:" line.
func Document(a helpcenter.Article) (string, error) {
	body, err := HTMLToMarkdown(a.Body)
	if err != nil {
		return "", fmt.Errorf("failed to convert article %s: %w", a.IDString(), err)
	}

	labels := a.LabelNames
	if labels == nil {
		labels = []string{}
	}
	t := title(a)
	u := articleURL(a)

	var sb strings.Builder
	sb.WriteString("---\n")
	fmt.Fprintf(&sb, "id: %s\n", a.IDString())
	fmt.Fprintf(&sb, "title: %s\n", jsonValue(t))
	fmt.Fprintf(&sb, "url: %s\n", u)
	fmt.Fprintf(&sb, "updated_at: %s\n", a.UpdatedAt)
	fmt.Fprintf(&sb, "labels: %s\n", jsonValue(labels))
	sb.WriteString("---\n")
	fmt.Fprintf(&sb, "# %s\n\n", t)
	fmt.Fprintf(&sb, "Article URL: %s\n\n", u)
	sb.WriteString(strings.TrimSpace(body))
	sb.WriteString("\n")
	return sb.String(), nil
}

// FileName returns the document file name for an article.
func FileName(a helpcenter.Article) string {
	slug := Slug(title(a))
	if id := a.IDString(); id != "" {
		return id + "-" + slug + ".md"
	}
	return slug + ".md"
}

// WriteDocument writes the article document into dir and returns its path.
// An existing file is left untouched unless overwrite is set.
func WriteDocument(a helpcenter.Article, dir string, overwrite bool) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create document dir: %w", err)
	}

	path := filepath.Join(dir, FileName(a))
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("failed to stat document: %w", err)
		}
	}

	doc, err := Document(a)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		return "", fmt.Errorf("failed to write document: %w", err)
	}
	return path, nil
}
