package convert

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"helpcenter-sync/internal/chunking"
	"helpcenter-sync/internal/helpcenter"
)

func TestHTMLToMarkdown(t *testing.T) {
	tests := []struct {
		name        string
		html        string
		contains    []string
		notContains []string
	}{
		{
			name:        "drops script and style",
			html:        `<p>Visible</p><script>alert("x")</script><style>p{color:red}</style>`,
			contains:    []string{"Visible"},
			notContains: []string{"alert", "color:red"},
		},
		{
			name:     "atx headings",
			html:     `<h2>Install</h2><p>Run the installer.</p>`,
			contains: []string{"## Install", "Run the installer."},
		},
		{
			name:        "unwraps spans",
			html:        `<p>Press <span style="color:red">Save</span> now</p>`,
			contains:    []string{"Press Save now"},
			notContains: []string{"span"},
		},
		{
			name:     "dash bullets",
			html:     `<ul><li>one</li><li>two</li></ul>`,
			contains: []string{"- one", "- two"},
		},
		{
			name:     "fenced code",
			html:     `<pre><code>x := 1</code></pre>`,
			contains: []string{"```", "x := 1"},
		},
		{
			name:     "name-only anchors",
			html:     `<p><a name="setup"></a>Setup steps</p>`,
			contains: []string{"<!-- anchor:setup -->", "Setup steps"},
		},
		{
			name:        "empty paragraphs removed",
			html:        `<p>First</p><p> </p><p></p><p>Second</p>`,
			contains:    []string{"First\n\nSecond"},
			notContains: []string{"\n\n\n"},
		},
		{
			name:     "tables",
			html:     `<table><thead><tr><th>Key</th><th>Value</th></tr></thead><tbody><tr><td>a</td><td>1</td></tr></tbody></table>`,
			contains: []string{"| Key", "Value", "| a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := HTMLToMarkdown(tt.html)
			require.NoError(t, err)
			for _, s := range tt.contains {
				assert.Contains(t, got, s)
			}
			for _, s := range tt.notContains {
				assert.NotContains(t, got, s)
			}
			assert.Equal(t, strings.TrimSpace(got), got)
		})
	}
}

func TestHTMLToMarkdown_Empty(t *testing.T) {
	got, err := HTMLToMarkdown("  ")
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"How to Set Up OptiSigns", "how-to-set-up-optisigns"},
		{"Café & Crème", "cafe-creme"},
		{"  multiple   spaces -- and dashes ", "multiple-spaces-and-dashes"},
		{"snake_case stays", "snake_case-stays"},
		{"日本語", "article"},
		{"", "article"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Slug(tt.in))
		})
	}
}

func sampleArticle() helpcenter.Article {
	return helpcenter.Article{
		ID:         360001,
		Title:      `Pair a "Smart" Screen`,
		Body:       `<h2>Steps</h2><p>Open the app.</p>`,
		HTMLURL:    "https://support.example.com/hc/en-us/articles/360001",
		URL:        "https://support.example.com/api/v2/help_center/en-us/articles/360001.json",
		UpdatedAt:  "2024-05-01T10:00:00Z",
		LabelNames: []string{"pairing", "<screens>"},
	}
}

func TestDocument(t *testing.T) {
	doc, err := Document(sampleArticle())
	require.NoError(t, err)

	want := "---\n" +
		"id: 360001\n" +
		`title: "Pair a \"Smart\" Screen"` + "\n" +
		"url: https://support.example.com/hc/en-us/articles/360001\n" +
		"updated_at: 2024-05-01T10:00:00Z\n" +
		`labels: ["pairing","<screens>"]` + "\n" +
		"---\n" +
		"# Pair a \"Smart\" Screen\n\n" +
		"Article URL: https://support.example.com/hc/en-us/articles/360001\n\n" +
		"## Steps\n\nOpen the app.\n"
	assert.Equal(t, want, doc)
}

func TestDocument_Fallbacks(t *testing.T) {
	doc, err := Document(helpcenter.Article{ID: 9, URL: "https://api/9.json"})
	require.NoError(t, err)
	assert.Contains(t, doc, `title: "article-9"`)
	assert.Contains(t, doc, "url: https://api/9.json\n")
	assert.Contains(t, doc, "labels: []\n")
	assert.Contains(t, doc, "# article-9\n")
}

func TestDocument_ChunksWithFrontMatter(t *testing.T) {
	doc, err := Document(sampleArticle())
	require.NoError(t, err)

	chunks := chunking.Split(doc, chunking.DefaultOptions())
	require.NotEmpty(t, chunks)
	first := chunks[0]
	assert.Equal(t, "360001", first.ArticleID)
	assert.Equal(t, `Pair a "Smart" Screen`, first.Title)
	assert.Equal(t, "https://support.example.com/hc/en-us/articles/360001", first.URL)
}

func TestWriteDocument(t *testing.T) {
	dir := t.TempDir()
	a := sampleArticle()

	path, err := WriteDocument(a, dir, false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "360001-pair-a-smart-screen.md"), path)

	require.NoError(t, os.WriteFile(path, []byte("edited"), 0o644))

	_, err = WriteDocument(a, dir, false)
	require.NoError(t, err)
	got, _ := os.ReadFile(path)
	assert.Equal(t, "edited", string(got), "existing file kept without overwrite")

	_, err = WriteDocument(a, dir, true)
	require.NoError(t, err)
	got, _ = os.ReadFile(path)
	assert.True(t, strings.HasPrefix(string(got), "---\nid: 360001\n"))
}

func TestFileName_NoID(t *testing.T) {
	assert.Equal(t, "release-notes.md", FileName(helpcenter.Article{Title: "Release Notes"}))
}
