// Package convert turns help-center article HTML into normalized Markdown documents.
package convert

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	anchorOpen  = "HCSYNCANCHOR"
	anchorClose = "ENDANCHOR"
)

var (
	anchorTokenRe = regexp.MustCompile(`[ \t]*` + anchorOpen + `([0-9a-f]*)` + anchorClose + `[ \t]*`)
	blankRunRe    = regexp.MustCompile(`\n{3,}`)
)

func newConverter() *md.Converter {
	conv := md.NewConverter("", true, &md.Options{
		HeadingStyle:     "atx",
		BulletListMarker: "-",
		CodeBlockStyle:   "fenced",
		Fence:            "```",
	})
	conv.Use(plugin.Table())
	return conv
}

// HTMLToMarkdown cleans an article body and converts it to Markdown.
// Scripts and styles are dropped, span and figure wrappers are unwrapped,
// name-only anchors become "<!-- anchor:NAME -->" lines and empty
// paragraphs without images are removed.
func HTMLToMarkdown(body string) (string, error) {
	if strings.TrimSpace(body) == "" {
		return "", nil
	}

	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to parse html: %w", err)
	}
	root := findBody(doc)
	if root == nil {
		root = doc
	}
	clean(root)

	var buf bytes.Buffer
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", fmt.Errorf("failed to render html: %w", err)
		}
	}

	out, err := newConverter().ConvertString(buf.String())
	if err != nil {
		return "", fmt.Errorf("failed to convert html: %w", err)
	}

	out = anchorTokenRe.ReplaceAllStringFunc(out, func(tok string) string {
		m := anchorTokenRe.FindStringSubmatch(tok)
		name, err := hex.DecodeString(m[1])
		if err != nil {
			return tok
		}
		return "\n<!-- anchor:" + string(name) + " -->\n"
	})
	out = blankRunRe.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out), nil
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.Body {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}

func clean(n *html.Node) {
	var next *html.Node
	for c := n.FirstChild; c != nil; c = next {
		next = c.NextSibling
		if c.Type != html.ElementNode {
			continue
		}

		switch c.DataAtom {
		case atom.Script, atom.Style:
			n.RemoveChild(c)
			continue
		case atom.Span, atom.Figure:
			clean(c)
			unwrap(c)
			continue
		case atom.A:
			if name, ok := attr(c, "name"); ok && !hasAttr(c, "href") && strings.TrimSpace(textOf(c)) == "" {
				token := &html.Node{
					Type: html.TextNode,
					Data: " " + anchorOpen + hex.EncodeToString([]byte(name)) + anchorClose + " ",
				}
				n.InsertBefore(token, c)
				n.RemoveChild(c)
				continue
			}
		}

		clean(c)

		if c.DataAtom == atom.P && strings.TrimSpace(textOf(c)) == "" && !hasDescendant(c, atom.Img) {
			n.RemoveChild(c)
		}
	}
}

func unwrap(n *html.Node) {
	parent := n.Parent
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
		parent.InsertBefore(c, n)
	}
	parent.RemoveChild(n)
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func hasAttr(n *html.Node, key string) bool {
	_, ok := attr(n, key)
	return ok
}

func textOf(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(textOf(c))
	}
	return sb.String()
}

func hasDescendant(n *html.Node, a atom.Atom) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == a {
			return true
		}
		if hasDescendant(c, a) {
			return true
		}
	}
	return false
}
