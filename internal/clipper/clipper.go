// Package clipper imports recipes from the web: it fetches a page,
// strips it down to readable text, runs the LLM extractor, and saves the
// result into the local recipe repository.
package clipper

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"cookmate/internal/llm"
	"cookmate/internal/recipe"
	"cookmate/internal/shared"
)

// maxPageText caps how much page text is sent to the extractor.
const maxPageText = 20000

// Saver is the destination for clipped recipes.
type Saver interface {
	Save(ctx context.Context, rec recipe.Recipe, sourceURL string) error
}

// Clipper handles fetching and extracting recipes from URLs.
type Clipper struct {
	repo       Saver
	textGen    llm.TextGenerator
	httpClient *http.Client
}

// NewClipper creates a new Clipper instance.
func NewClipper(repo Saver, textGen llm.TextGenerator) *Clipper {
	return &Clipper{
		repo:    repo,
		textGen: textGen,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// ClipURL fetches the URL, extracts the recipe, and saves it locally.
func (c *Clipper) ClipURL(ctx context.Context, url string) (recipe.Recipe, shared.AgentMeta, error) {
	page, err := c.fetchPage(ctx, url)
	if err != nil {
		return recipe.Recipe{}, shared.AgentMeta{}, fmt.Errorf("failed to fetch content: %w", err)
	}

	rec, meta, err := recipe.Extract(ctx, c.textGen, page)
	if err != nil {
		return recipe.Recipe{}, meta, err
	}

	if err := c.repo.Save(ctx, rec, url); err != nil {
		return recipe.Recipe{}, meta, fmt.Errorf("failed to save clipped recipe: %w", err)
	}
	return rec, meta, nil
}

func (c *Clipper) fetchPage(ctx context.Context, url string) (recipe.PageData, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return recipe.PageData{}, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return recipe.PageData{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return recipe.PageData{}, fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return recipe.PageData{}, err
	}

	// Remove noise to save LLM tokens
	doc.Find("script, style, nav, footer, iframe, ads, .ads, #ads").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})

	text := strings.TrimSpace(doc.Find("body").Text())
	if len(text) > maxPageText {
		text = text[:maxPageText]
	}

	return recipe.PageData{
		URL:   url,
		Title: strings.TrimSpace(doc.Find("title").First().Text()),
		Text:  text,
	}, nil
}
