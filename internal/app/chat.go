package app

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"cookmate/internal/chattools"
	"cookmate/internal/pantry"
	"cookmate/internal/shared"
	"cookmate/internal/shopping"
)

// mutatingKinds lists the tools whose execution changes state and so
// requires a snapshot save afterwards.
var mutatingKinds = map[chattools.Kind]bool{
	chattools.KindAddToCart:      true,
	chattools.KindRemoveFromCart: true,
	chattools.KindUpdateCartItem: true,
	chattools.KindUndoLastChange: true,
}

// HandleChatTurn sends one user message through the agent, executes any
// requested tool calls, and returns the reply text. The whole turn runs
// inside one critical section so a tool batch sees a consistent store.
func (a *App) HandleChatTurn(ctx context.Context, message string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	start := time.Now()

	resp, err := a.chatGen.Chat(ctx, a.contextSummary(), message)
	if err != nil {
		return "", fmt.Errorf("chat turn failed: %w", err)
	}
	a.recordMeta(shared.AgentMeta{AgentName: "Chat", Usage: resp.Usage, Latency: time.Since(start)})

	if len(resp.ToolCalls) == 0 {
		return resp.Content, nil
	}

	calls := make([]chattools.Call, 0, len(resp.ToolCalls))
	mutated := false
	for _, tc := range resp.ToolCalls {
		call, err := chattools.ParseCall(chattools.Invocation{Name: tc.Name, Arguments: tc.Arguments})
		if err != nil {
			return "", fmt.Errorf("bad tool call from model: %w", err)
		}
		if mutatingKinds[call.Kind] {
			mutated = true
		}
		calls = append(calls, call)
	}

	outcomes := a.executor.ExecuteBatch(calls)

	if mutated {
		if err := a.saveState(ctx); err != nil {
			return "", err
		}
	}

	var sb strings.Builder
	if resp.Content != "" {
		sb.WriteString(resp.Content)
	}
	for _, outcome := range outcomes {
		line := formatOutcome(outcome)
		if line == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(line)
	}
	return sb.String(), nil
}

// formatOutcome renders one tool result as a user-facing confirmation.
func formatOutcome(outcome chattools.Outcome) string {
	switch payload := outcome.Payload.(type) {
	case shopping.Result:
		return payload.Message
	case []pantry.Item:
		if len(payload) == 0 {
			return "The pantry is empty."
		}
		names := make([]string, len(payload))
		for i, item := range payload {
			names[i] = item.Name
		}
		return fmt.Sprintf("Pantry (%d): %s", len(payload), strings.Join(names, ", "))
	case []shopping.Item:
		if len(payload) == 0 {
			return "The shopping list is empty."
		}
		lines := make([]string, len(payload))
		for i, item := range payload {
			lines[i] = "- " + describeItem(item)
		}
		return "Shopping list:\n" + strings.Join(lines, "\n")
	case map[shopping.Aisle][]shopping.Item:
		if len(payload) == 0 {
			return "The shopping list is empty."
		}
		aisles := make([]string, 0, len(payload))
		for aisle := range payload {
			aisles = append(aisles, string(aisle))
		}
		sort.Strings(aisles)

		var sb strings.Builder
		for _, aisle := range aisles {
			fmt.Fprintf(&sb, "%s:\n", aisle)
			for _, item := range payload[shopping.Aisle(aisle)] {
				fmt.Fprintf(&sb, "- %s\n", describeItem(item))
			}
		}
		return strings.TrimRight(sb.String(), "\n")
	case chattools.SubstituteResult:
		parts := make([]string, len(payload.Alternatives))
		for i, alt := range payload.Alternatives {
			parts[i] = alt.Name
			if alt.InPantry {
				parts[i] += " (in your pantry)"
			}
		}
		return fmt.Sprintf("Instead of %s you could use: %s.", payload.Ingredient, strings.Join(parts, ", "))
	}
	return ""
}

func describeItem(item shopping.Item) string {
	if item.SuggestedQty > 0 {
		return fmt.Sprintf("%s (%g %s)", item.Name, item.SuggestedQty, item.Unit)
	}
	return item.Name
}
