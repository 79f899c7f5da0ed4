// Package helpcenter fetches articles from a Zendesk-style help center API.
package helpcenter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"helpcenter-sync/internal/service"
)

const requestTimeout = 30 * time.Second

// Article is a help-center article as returned by the articles API.
type Article struct {
	ID         int64    `json:"id"`
	Title      string   `json:"title"`
	Body       string   `json:"body"`
	HTMLURL    string   `json:"html_url"`
	URL        string   `json:"url"`
	UpdatedAt  string   `json:"updated_at"`
	LabelNames []string `json:"label_names"`
}

// IDString returns the article id in decimal form, or "" when the id is unset.
func (a Article) IDString() string {
	if a.ID == 0 {
		return ""
	}
	return strconv.FormatInt(a.ID, 10)
}

// UpdatedTime parses UpdatedAt as UTC. A missing zone designator is read as UTC.
func (a Article) UpdatedTime() (time.Time, error) {
	s := strings.TrimSpace(a.UpdatedAt)
	if s == "" {
		return time.Time{}, fmt.Errorf("article %d has no updated_at", a.ID)
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.ParseInLocation("2006-01-02T15:04:05.999999999", s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse updated_at %q: %w", a.UpdatedAt, err)
	}
	return t, nil
}

type articlesPage struct {
	Articles []Article `json:"articles"`
	NextPage *string   `json:"next_page"`
}

type articleEnvelope struct {
	Article Article `json:"article"`
}

// Client talks to the help-center articles API.
type Client struct {
	BaseURL string
	Locale  string
	client  *http.Client
}

// NewClient creates a help-center client. An empty locale uses the
// locale-less endpoints.
func NewClient(baseURL, locale string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Locale:  locale,
		client:  &http.Client{Timeout: requestTimeout},
	}
}

func (c *Client) path(suffix string) string {
	if c.Locale != "" {
		return fmt.Sprintf("%s/api/v2/help_center/%s/%s", c.BaseURL, c.Locale, suffix)
	}
	return fmt.Sprintf("%s/api/v2/help_center/%s", c.BaseURL, suffix)
}

// ListArticles follows next_page links until at least limit articles were
// collected or the listing ends. The final page is returned whole, so the
// result may exceed limit.
func (c *Client) ListArticles(ctx context.Context, limit int) ([]Article, error) {
	var out []Article
	url := c.path("articles.json")
	for url != "" && len(out) < limit {
		var page articlesPage
		if err := c.getJSON(ctx, url, &page); err != nil {
			return nil, fmt.Errorf("failed to list articles: %w", err)
		}
		out = append(out, page.Articles...)

		url = ""
		if page.NextPage != nil {
			url = *page.NextPage
		}
	}
	return out, nil
}

// GetArticle fetches a single article by id.
func (c *Client) GetArticle(ctx context.Context, id string) (Article, error) {
	if strings.TrimSpace(id) == "" {
		return Article{}, &service.ValidationError{Field: "article_id", Message: "cannot be empty"}
	}
	var env articleEnvelope
	if err := c.getJSON(ctx, c.path("articles/"+id+".json"), &env); err != nil {
		return Article{}, fmt.Errorf("failed to get article %s: %w", id, err)
	}
	return env.Article, nil
}

func (c *Client) getJSON(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNotFound {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: %w", service.ErrNotFound, &service.StatusError{Service: "helpcenter", StatusCode: resp.StatusCode, Body: string(raw)})
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return &service.StatusError{Service: "helpcenter", StatusCode: resp.StatusCode, Body: string(raw)}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
