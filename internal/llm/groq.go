package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"cookmate/internal/config"
	"cookmate/internal/shared"
)

const (
	groqAPIURL = "https://api.groq.com/openai/v1/chat/completions"
	groqModel  = "llama-3.3-70b-versatile"
)

// groqClient is a client for the Groq API, used as the fallback agent
// when Gemini is not configured.
type groqClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewGroqClient creates a new Groq API client.
func NewGroqClient(cfg *config.Config) *groqClient {
	return &groqClient{
		apiKey:  cfg.GroqAPIKey,
		baseURL: groqAPIURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type groqMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type groqToolCall struct {
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type groqResponse struct {
	Choices []struct {
		Message struct {
			Content   string         `json:"content"`
			ToolCalls []groqToolCall `json:"tool_calls"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// GenerateContent sends a prompt to the Groq model and returns the generated text.
func (c *groqClient) GenerateContent(ctx context.Context, prompt string) (ContentResponse, error) {
	reqBody := map[string]interface{}{
		"model":           groqModel,
		"messages":        []groqMessage{{Role: "user", Content: prompt}},
		"temperature":     0.1,
		"response_format": map[string]string{"type": "json_object"},
	}

	resp, err := c.complete(ctx, reqBody)
	if err != nil {
		return ContentResponse{}, err
	}
	if len(resp.Choices) == 0 {
		return ContentResponse{}, fmt.Errorf("no content generated")
	}

	return ContentResponse{
		Content: resp.Choices[0].Message.Content,
		Usage:   c.usageFrom(resp),
	}, nil
}

// Chat sends a system framing plus the user turn. Tool requests come
// back in the OpenAI function-calling shape and are mapped onto the
// executor's invocation format.
func (c *groqClient) Chat(ctx context.Context, system, user string) (ChatResponse, error) {
	reqBody := map[string]interface{}{
		"model": groqModel,
		"messages": []groqMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		"temperature": 0.1,
		"tools":       groqToolSpecs(),
	}

	resp, err := c.complete(ctx, reqBody)
	if err != nil {
		return ChatResponse{}, err
	}
	if len(resp.Choices) == 0 {
		return ChatResponse{}, fmt.Errorf("no content generated")
	}

	out := ChatResponse{
		Content: resp.Choices[0].Message.Content,
		Usage:   c.usageFrom(resp),
	}
	for _, call := range resp.Choices[0].Message.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, ToolCall{
			Name:      call.Function.Name,
			Arguments: json.RawMessage(call.Function.Arguments),
		})
	}
	return out, nil
}

func (c *groqClient) complete(ctx context.Context, reqBody map[string]interface{}) (groqResponse, error) {
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return groqResponse{}, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL, bytes.NewBuffer(jsonBody))
	if err != nil {
		return groqResponse{}, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return groqResponse{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return groqResponse{}, fmt.Errorf("groq api error: status=%d body=%s", resp.StatusCode, string(bodyBytes))
	}

	var parsed groqResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return groqResponse{}, fmt.Errorf("failed to decode response: %w", err)
	}
	return parsed, nil
}

func (c *groqClient) usageFrom(resp groqResponse) shared.TokenUsage {
	return shared.TokenUsage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
		Model:            groqModel,
	}
}

// groqToolSpecs renders the tool surface in the OpenAI tools format.
func groqToolSpecs() []map[string]interface{} {
	objectSchema := func(props map[string]interface{}, required ...string) map[string]interface{} {
		schema := map[string]interface{}{
			"type":       "object",
			"properties": props,
		}
		if len(required) > 0 {
			schema["required"] = required
		}
		return schema
	}
	str := func(desc string) map[string]interface{} {
		return map[string]interface{}{"type": "string", "description": desc}
	}
	num := func(desc string) map[string]interface{} {
		return map[string]interface{}{"type": "number", "description": desc}
	}
	tool := func(name, desc string, params map[string]interface{}) map[string]interface{} {
		fn := map[string]interface{}{
			"name":        name,
			"description": desc,
		}
		if params != nil {
			fn["parameters"] = params
		}
		return map[string]interface{}{"type": "function", "function": fn}
	}

	return []map[string]interface{}{
		tool("getPantry", "List the ingredients currently available in the user's pantry.", nil),
		tool("getCart", "List the items currently on the user's shopping list.", nil),
		tool("addToCart", "Add an item to the shopping list.", objectSchema(map[string]interface{}{
			"name": str("Item name, e.g. 'oat milk'."),
			"qty":  num("Suggested quantity to buy."),
			"unit": str("Unit for the quantity."),
		}, "name")),
		tool("removeFromCart", "Remove an item from the shopping list by name.", objectSchema(map[string]interface{}{
			"name": str("Name of the item to remove."),
		}, "name")),
		tool("updateCartItem", "Change the quantity or unit of a shopping list item.", objectSchema(map[string]interface{}{
			"name": str("Name of the item to update."),
			"qty":  num("New suggested quantity."),
			"unit": str("New unit."),
		}, "name")),
		tool("summarizeCart", "Group the shopping list by store aisle.", nil),
		tool("suggestSubstitutes", "Suggest replacements for a missing ingredient.", objectSchema(map[string]interface{}{
			"missing": str("The ingredient the user does not have."),
		}, "missing")),
		tool("undoLastChange", "Revert the most recent shopping list change.", nil),
	}
}
