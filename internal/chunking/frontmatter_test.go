package chunking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrontMatter(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		wantMeta Metadata
		wantBody string
	}{
		{
			name: "full block",
			doc: "---\nid: 123\ntitle: \"Hello \\\"World\\\"\"\nurl: https://kb.example.com/a\n" +
				"updated_at: 2024-01-02T03:04:05Z\nlabels: [\"a\", \"b\"]\nno colon here\n---\n\n\n# Hello\n\nBody\n",
			wantMeta: Metadata{
				"id":         "123",
				"title":      `Hello "World"`,
				"url":        "https://kb.example.com/a",
				"updated_at": "2024-01-02T03:04:05Z",
				"labels":     []any{"a", "b"},
			},
			wantBody: "# Hello\n\nBody",
		},
		{
			name:     "no front matter returns input unchanged",
			doc:      "# Title\n\ntext\n",
			wantMeta: Metadata{},
			wantBody: "# Title\n\ntext\n",
		},
		{
			name:     "missing closing delimiter consumes everything",
			doc:      "---\nid: 1\ntitle: x",
			wantMeta: Metadata{"id": "1", "title": "x"},
			wantBody: "",
		},
		{
			name:     "malformed list falls back to raw string",
			doc:      "---\nlabels: [a, b]\nother: [1, 2\n---\nbody",
			wantMeta: Metadata{"labels": "[a, b]", "other": "[1, 2"},
			wantBody: "body",
		},
		{
			name:     "single quotes are stripped and single-quoted lists parse",
			doc:      "---\ntitle: 'Quoted'\nlabels: ['x']\n---\nbody",
			wantMeta: Metadata{"title": "Quoted", "labels": []any{"x"}},
			wantBody: "body",
		},
		{
			name:     "empty document",
			doc:      "",
			wantMeta: Metadata{},
			wantBody: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta, body := ParseFrontMatter(tt.doc)
			assert.Equal(t, tt.wantMeta, meta)
			assert.Equal(t, tt.wantBody, body)
		})
	}
}

func TestMetadata_String(t *testing.T) {
	meta := Metadata{
		"title":  "  padded  ",
		"labels": []any{"a", "b"},
		"empty":  []any{},
	}

	assert.Equal(t, "padded", meta.String("title"))
	assert.Equal(t, `["a","b"]`, meta.String("labels"))
	assert.Equal(t, "", meta.String("empty"))
	assert.Equal(t, "", meta.String("missing"))
	assert.Equal(t, []string{"a", "b"}, meta.Strings("labels"))
	assert.Equal(t, []string{"  padded  "}, meta.Strings("title"))
	assert.Nil(t, meta.Strings("missing"))
}

func TestResolveTitleURL(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		meta      Metadata
		wantTitle string
		wantURL   string
	}{
		{
			name:      "metadata wins",
			body:      "# Heading\nArticle URL: https://body",
			meta:      Metadata{"title": "Meta", "url": "https://meta"},
			wantTitle: "Meta",
			wantURL:   "https://meta",
		},
		{
			name:      "fallback to first level-1 heading and article url line",
			body:      "intro\n## Not this\n# First\narticle URL:  https://kb/1 \n# Second",
			meta:      Metadata{},
			wantTitle: "First",
			wantURL:   "https://kb/1",
		},
		{
			name:      "defaults",
			body:      "plain text",
			meta:      Metadata{},
			wantTitle: "Untitled",
			wantURL:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, url := ResolveTitleURL(tt.body, tt.meta)
			require.Equal(t, tt.wantTitle, title)
			require.Equal(t, tt.wantURL, url)
		})
	}
}
