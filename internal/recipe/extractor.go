package recipe

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"text/template"
	"time"

	"github.com/google/uuid"

	"cookmate/internal/llm"
	"cookmate/internal/shared"
)

//go:embed extractor_prompt.md
var extractorPrompt string

// PageData is the clipped content of a cooking web page.
type PageData struct {
	URL   string
	Title string
	Text  string
}

// ErrNotARecipe is returned when the model decides the page holds no
// recipe.
var ErrNotARecipe = fmt.Errorf("page does not contain a recipe")

// Extract normalizes a clipped page into a structured recipe using an
// LLM. The returned meta carries token usage for metrics.
func Extract(
	ctx context.Context,
	textGen llm.TextGenerator,
	page PageData,
) (Recipe, shared.AgentMeta, error) {
	start := time.Now()

	prompt, err := buildExtractorPrompt(page)
	if err != nil {
		return Recipe{}, shared.AgentMeta{}, err
	}

	llmResp, err := textGen.GenerateContent(ctx, prompt)
	meta := shared.AgentMeta{
		AgentName: "Extractor",
		Usage:     llmResp.Usage,
		Latency:   time.Since(start),
	}
	if err != nil {
		return Recipe{}, meta, fmt.Errorf("failed to get LLM response: %w", err)
	}

	var rec Recipe
	if err := json.Unmarshal([]byte(llmResp.Content), &rec); err != nil {
		return Recipe{}, meta, fmt.Errorf("failed to unmarshal LLM response: %w", err)
	}
	if rec.Title == "" {
		return Recipe{}, meta, ErrNotARecipe
	}

	rec.ID = uuid.NewString()
	rec.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	return rec, meta, nil
}

func buildExtractorPrompt(page PageData) (string, error) {
	tmpl, err := template.New("extractor").Parse(extractorPrompt)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, page); err != nil {
		return "", err
	}
	return buf.String(), nil
}
