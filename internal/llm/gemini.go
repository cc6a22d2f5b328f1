package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"cookmate/internal/config"
	"cookmate/internal/shared"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const geminiModel = "gemini-1.5-flash"

// geminiClient is a client for the Google Gemini API. It serves both as a
// plain text generator and as the conversational agent behind the chat
// surface.
type geminiClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiClient creates a new Gemini API client with the kitchen tool
// declarations attached.
func NewGeminiClient(ctx context.Context, cfg *config.Config) (*geminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(geminiModel)
	model.Tools = []*genai.Tool{kitchenTools()}
	return &geminiClient{client: client, model: model}, nil
}

// GenerateContent sends a prompt to the Gemini model and returns the generated text.
func (c *geminiClient) GenerateContent(ctx context.Context, prompt string) (ContentResponse, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return ContentResponse{}, fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return ContentResponse{}, fmt.Errorf("no content generated")
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return ContentResponse{}, fmt.Errorf("generated content is not text")
	}

	return ContentResponse{Content: string(text), Usage: usageFrom(resp)}, nil
}

// Chat sends a system framing plus the user turn and splits the reply
// into narration and tool invocations.
func (c *geminiClient) Chat(ctx context.Context, system, user string) (ChatResponse, error) {
	c.model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}

	resp, err := c.model.GenerateContent(ctx, genai.Text(user))
	if err != nil {
		return ChatResponse{}, fmt.Errorf("failed to generate chat turn: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ChatResponse{}, fmt.Errorf("no content generated")
	}

	var out ChatResponse
	out.Usage = usageFrom(resp)
	for _, part := range resp.Candidates[0].Content.Parts {
		switch p := part.(type) {
		case genai.Text:
			out.Content += string(p)
		case genai.FunctionCall:
			args, err := json.Marshal(p.Args)
			if err != nil {
				return ChatResponse{}, fmt.Errorf("failed to encode arguments for %s: %w", p.Name, err)
			}
			out.ToolCalls = append(out.ToolCalls, ToolCall{Name: p.Name, Arguments: args})
		}
	}
	return out, nil
}

// Close closes the underlying Gemini client.
func (c *geminiClient) Close() error {
	return c.client.Close()
}

func usageFrom(resp *genai.GenerateContentResponse) shared.TokenUsage {
	if resp.UsageMetadata == nil {
		return shared.TokenUsage{Model: geminiModel}
	}
	return shared.TokenUsage{
		PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
		CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
		Model:            geminiModel,
	}
}

// kitchenTools declares the tool surface the model may call. The names
// match the executor's closed kind set exactly.
func kitchenTools() *genai.Tool {
	stringParam := func(desc string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeString, Description: desc}
	}
	numberParam := func(desc string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeNumber, Description: desc}
	}

	return &genai.Tool{
		FunctionDeclarations: []*genai.FunctionDeclaration{
			{
				Name:        "getPantry",
				Description: "List the ingredients currently available in the user's pantry.",
			},
			{
				Name:        "getCart",
				Description: "List the items currently on the user's shopping list.",
			},
			{
				Name:        "addToCart",
				Description: "Add an item to the shopping list.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"name": stringParam("Item name, e.g. 'oat milk'."),
						"qty":  numberParam("Suggested quantity to buy."),
						"unit": stringParam("Unit for the quantity, e.g. 'l' or 'pcs'."),
					},
					Required: []string{"name"},
				},
			},
			{
				Name:        "removeFromCart",
				Description: "Remove an item from the shopping list by name.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"name": stringParam("Name of the item to remove."),
					},
					Required: []string{"name"},
				},
			},
			{
				Name:        "updateCartItem",
				Description: "Change the quantity or unit of an item already on the shopping list.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"name": stringParam("Name of the item to update."),
						"qty":  numberParam("New suggested quantity."),
						"unit": stringParam("New unit."),
					},
					Required: []string{"name"},
				},
			},
			{
				Name:        "summarizeCart",
				Description: "Group the shopping list by store aisle for an overview.",
			},
			{
				Name:        "suggestSubstitutes",
				Description: "Suggest replacements for an ingredient the user is missing.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"missing": stringParam("The ingredient the user does not have."),
					},
					Required: []string{"missing"},
				},
			},
			{
				Name:        "undoLastChange",
				Description: "Revert the most recent shopping list change.",
			},
		},
	}
}
