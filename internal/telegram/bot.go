// Package telegram is the chat surface: a webhook-driven bot that routes
// messages to the clipper, the suggestion flow, or the conversational
// agent, and renders the results back into the chat.
package telegram

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"cookmate/internal/app"
	"cookmate/internal/config"
	"cookmate/internal/learning"
	"cookmate/internal/metrics"
	"cookmate/internal/recipe"
)

// maxSummaryLen bounds the stored conversation recap.
const maxSummaryLen = 600

// Bot wraps the Telegram API around the application core.
type Bot struct {
	api          *tgbotapi.BotAPI
	application  *app.App
	metricsStore *metrics.Store
	sessions     *SessionRepository
	cfg          *config.Config
}

// NewBot initializes the Telegram Bot and sets the Webhook.
func NewBot(
	cfg *config.Config,
	application *app.App,
	metricsStore *metrics.Store,
	sessions *SessionRepository,
) (*Bot, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}

	log.Printf("Authorized on account %s", bot.Self.UserName)

	wh, _ := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
	resp, err := bot.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
	}
	log.Printf("Webhook set response: %s", resp.Description)

	return &Bot{
		api:          bot,
		application:  application,
		metricsStore: metricsStore,
		sessions:     sessions,
		cfg:          cfg,
	}, nil
}

// RegisterHandlers registers the webhook handler with the default HTTP mux.
func (b *Bot) RegisterHandlers() {
	http.HandleFunc("/webhook", b.handleWebhook)
	http.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	update, err := b.api.HandleUpdate(r)
	if err != nil {
		log.Printf("Error parsing update: %v", err)
		return
	}

	if update.CallbackQuery != nil {
		if update.CallbackQuery.From.ID != b.cfg.TelegramAllowUserID {
			return
		}
		go b.handleCallbackQuery(update.CallbackQuery)
		return
	}

	if update.Message == nil {
		return
	}

	if update.Message.From.ID != b.cfg.TelegramAllowUserID {
		log.Printf("Unauthorized access attempt from UserID: %d (@%s)", update.Message.From.ID, update.Message.From.UserName)
		return
	}

	go b.processMessage(update.Message)
}

func (b *Bot) processMessage(msg *tgbotapi.Message) {
	if len(msg.Photo) > 0 {
		b.handlePhotoRequest(msg)
		return
	}

	switch {
	case msg.Text == "/start":
		b.send(msg.Chat.ID, "Hi! Send me a pantry photo, ask for a recipe with /suggest, paste a recipe URL to import it, or just tell me what you need.")
	case msg.Text == "/metrics":
		b.handleMetricsCommand(msg.Chat.ID)
	case msg.Text == "/restock":
		b.handleRestockRequest(msg)
	case msg.Text == "/undo":
		b.handleUndoRequest(msg)
	case strings.HasPrefix(msg.Text, "/suggest"):
		b.handleSuggestRequest(msg.Chat.ID, "")
	case strings.HasPrefix(msg.Text, "http://") || strings.HasPrefix(msg.Text, "https://"):
		b.handleClipperRequest(msg)
	default:
		b.handleChatRequest(msg)
	}
}

func (b *Bot) handlePhotoRequest(msg *tgbotapi.Message) {
	statusMsg, err := b.api.Send(tgbotapi.NewMessage(msg.Chat.ID, "Looking at your pantry..."))
	if err != nil {
		log.Printf("Failed to send initial reply: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
	defer cancel()

	// Telegram sends several sizes; the last one is the largest.
	photo := msg.Photo[len(msg.Photo)-1]
	data, err := b.downloadFile(photo.FileID)
	if err != nil {
		b.edit(msg.Chat.ID, statusMsg.MessageID, fmt.Sprintf("Could not download the photo: %v", err))
		return
	}

	items, err := b.application.CommitPhoto(ctx, [][]byte{data})
	if err != nil {
		b.edit(msg.Chat.ID, statusMsg.MessageID, fmt.Sprintf("Could not read the photo: %v", err))
		return
	}

	names := make([]string, len(items))
	for i, item := range items {
		names[i] = item.Name
	}
	b.edit(msg.Chat.ID, statusMsg.MessageID,
		fmt.Sprintf("Added to your pantry: %s", strings.Join(names, ", ")))
}

func (b *Bot) handleClipperRequest(msg *tgbotapi.Message) {
	statusMsg, err := b.api.Send(tgbotapi.NewMessage(msg.Chat.ID, "Clipping recipe..."))
	if err != nil {
		log.Printf("Failed to send initial reply: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
	defer cancel()

	rec, err := b.application.ImportRecipe(ctx, msg.Text)
	if err != nil {
		log.Printf("Error clipping recipe: %v", err)
		b.edit(msg.Chat.ID, statusMsg.MessageID, fmt.Sprintf("Could not clip that page: %v", err))
		return
	}

	b.edit(msg.Chat.ID, statusMsg.MessageID,
		fmt.Sprintf("Saved %q (%d min). It is now part of your suggestions.", rec.Title, rec.TimeMin))
}

// handleSuggestRequest sends the best suggestion, skipping excludeID when
// the user just asked for another one.
func (b *Bot) handleSuggestRequest(chatID int64, excludeID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	suggestions, err := b.application.Suggestions(ctx, 3)
	if err != nil {
		b.send(chatID, fmt.Sprintf("Could not rank recipes: %v", err))
		return
	}

	var pick *recipe.Recipe
	for i := range suggestions {
		if suggestions[i].ID != excludeID {
			pick = &suggestions[i]
			break
		}
	}
	if pick == nil {
		b.send(chatID, "Nothing cookable with your current pantry. Try adding items or running /restock.")
		return
	}

	text := formatSuggestion(*pick, b.application.WhyThis(*pick))

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Cook it", "accept|"+pick.ID),
			tgbotapi.NewInlineKeyboardButtonData("Another", "another|"+pick.ID),
			tgbotapi.NewInlineKeyboardButtonData("Skip", "skip|"+pick.ID),
		),
	)

	reply := tgbotapi.NewMessage(chatID, text)
	reply.ReplyMarkup = keyboard
	b.api.Send(reply)

	_ = b.application.RecordSignal(ctx, learning.SignalViewed, pick.ID)
}

func (b *Bot) handleCallbackQuery(query *tgbotapi.CallbackQuery) {
	parts := strings.Split(query.Data, "|")
	if len(parts) != 2 {
		return
	}
	action, recipeID := parts[0], parts[1]

	// Answer callback to remove spinner
	b.api.Request(tgbotapi.NewCallback(query.ID, ""))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	chatID := query.Message.Chat.ID
	switch action {
	case "accept":
		matched, err := b.application.AcceptRecipe(ctx, recipeID)
		if err != nil {
			b.send(chatID, fmt.Sprintf("Could not record that: %v", err))
			return
		}
		b.send(chatID, fmt.Sprintf("Enjoy! I marked %d pantry ingredients as used and queued what you are missing. Send /undo if you change your mind.", matched))
	case "another":
		if err := b.application.RecordSignal(ctx, learning.SignalAnother, recipeID); err != nil {
			log.Printf("failed to record signal: %v", err)
		}
		b.handleSuggestRequest(chatID, recipeID)
	case "skip":
		if err := b.application.RecordSignal(ctx, learning.SignalSkip, recipeID); err != nil {
			log.Printf("failed to record signal: %v", err)
		}
		b.send(chatID, "Noted. I will show fewer recipes like that.")
	}
}

func (b *Bot) handleRestockRequest(msg *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	outcome, err := b.application.RunRestock(ctx)
	if err != nil {
		b.send(msg.Chat.ID, fmt.Sprintf("Restock pass failed: %v", err))
		return
	}

	if len(outcome.QueuedItems) == 0 {
		b.send(msg.Chat.ID, "Your pantry looks fine, nothing new on the list.")
		return
	}
	b.send(msg.Chat.ID, fmt.Sprintf("Running low, added to your list: %s", strings.Join(outcome.QueuedItems, ", ")))
}

func (b *Bot) handleUndoRequest(msg *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	undone, err := b.application.UndoLastUsage(ctx)
	if err != nil {
		b.send(msg.Chat.ID, fmt.Sprintf("Undo failed: %v", err))
		return
	}
	if !undone {
		b.send(msg.Chat.ID, "Nothing to undo.")
		return
	}
	b.send(msg.Chat.ID, "Done, your pantry is back to how it was.")
}

func (b *Bot) handleChatRequest(msg *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
	defer cancel()

	message := msg.Text
	var prior *Session
	if b.sessions != nil {
		var err error
		prior, err = b.sessions.Get(ctx, msg.Chat.ID)
		if err != nil {
			log.Printf("failed to load chat session: %v", err)
		}
		if prior != nil && prior.Summary != "" {
			message = withRecap(prior.Summary, msg.Text)
		}
	}

	reply, err := b.application.HandleChatTurn(ctx, message)
	if err != nil {
		log.Printf("Chat turn failed: %v", err)
		b.send(msg.Chat.ID, "Sorry, I could not process that right now.")
		return
	}
	if reply == "" {
		reply = "Done."
	}
	b.send(msg.Chat.ID, reply)

	if b.sessions != nil {
		var priorSummary string
		if prior != nil {
			priorSummary = prior.Summary
		}
		summary := rollSummary(priorSummary, msg.Text, reply)
		if err := b.sessions.Save(ctx, msg.Chat.ID, summary); err != nil {
			log.Printf("failed to save chat session: %v", err)
		}
	}
}

// formatSuggestion renders a suggestion card for the chat.
func formatSuggestion(rec recipe.Recipe, reasons []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (%d min)\n", rec.Title, rec.TimeMin)
	fmt.Fprintf(&sb, "Needs: %s\n", strings.Join(rec.Needs, ", "))
	for _, reason := range reasons {
		fmt.Fprintf(&sb, "%s\n", reason)
	}
	return sb.String()
}

// withRecap prepends the stored conversation recap to the user's message.
func withRecap(summary, text string) string {
	return fmt.Sprintf("Earlier in this chat:\n%s\n\nNow the user says: %s", summary, text)
}

// rollSummary appends the latest exchange to the recap, keeping only the
// most recent maxSummaryLen bytes.
func rollSummary(prior, userText, reply string) string {
	summary := fmt.Sprintf("User: %s\nBot: %s", userText, reply)
	if prior != "" {
		summary = prior + "\n" + summary
	}
	if len(summary) > maxSummaryLen {
		summary = summary[len(summary)-maxSummaryLen:]
	}
	return summary
}

func (b *Bot) handleMetricsCommand(chatID int64) {
	usage, err := b.metricsStore.GetDailyUsage(7)
	if err != nil {
		b.send(chatID, "Error fetching metrics.")
		return
	}

	health := metrics.GetSysHealth(b.cfg.StatePath)

	var sb strings.Builder
	sb.WriteString("Usage & Health Report\n\n")

	sb.WriteString("Recent LLM Activity\n")
	if len(usage) == 0 {
		sb.WriteString("No data yet\n")
	}
	for _, d := range usage {
		sb.WriteString(fmt.Sprintf("- %s: %d tokens (%d execs)\n", d.Date, d.TotalPrompt+d.TotalCompletion, d.TotalExecution))
	}

	sb.WriteString("\nSystem Health\n")
	sb.WriteString(fmt.Sprintf("- RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB))
	sb.WriteString(fmt.Sprintf("- Goroutines: %d\n", health.Goroutines))
	sb.WriteString(fmt.Sprintf("- Disk Data: %s\n", health.DataDiskSize))

	b.send(chatID, sb.String())
}

func (b *Bot) downloadFile(fileID string) ([]byte, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, err
	}

	resp, err := http.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("file download failed: status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (b *Bot) send(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		log.Printf("Failed to send message: %v", err)
	}
}

func (b *Bot) edit(chatID int64, messageID int, text string) {
	if _, err := b.api.Send(tgbotapi.NewEditMessageText(chatID, messageID, text)); err != nil {
		log.Printf("Failed to edit message: %v", err)
	}
}
