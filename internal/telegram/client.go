// Package telegram delivers daily reminders through the Telegram Bot API and
// answers /status with the current tracker summary.
//
// Messages use MarkdownV2, so every dynamic fragment is escaped before it is
// embedded. Sends are retried with a linear backoff.
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rewired-gh/pooptracker/internal/analytics"
	"github.com/rewired-gh/pooptracker/internal/display"
	"github.com/rewired-gh/pooptracker/internal/logger"
	"github.com/rewired-gh/pooptracker/internal/reminder"
)

// sender is the subset of the bot API the client uses.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// StatusProvider supplies the summary for /status replies.
type StatusProvider interface {
	Refresh(ctx context.Context) error
	Summary(now time.Time) analytics.Summary
}

// Client handles Telegram notifications
type Client struct {
	bot            *tgbotapi.BotAPI
	sender         sender
	chatID         int64
	maxRetries     int
	retryDelayBase time.Duration
	location       *time.Location
}

// NewClient creates a new Telegram client
func NewClient(botToken, chatID string, maxRetries int, retryDelayBase time.Duration, loc *time.Location) (*Client, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	c, err := newClient(bot, chatID, maxRetries, retryDelayBase, loc)
	if err != nil {
		return nil, err
	}
	c.bot = bot
	return c, nil
}

func newClient(s sender, chatID string, maxRetries int, retryDelayBase time.Duration, loc *time.Location) (*Client, error) {
	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chat ID: %w", err)
	}

	if maxRetries <= 0 {
		maxRetries = 3
	}
	if retryDelayBase <= 0 {
		retryDelayBase = time.Second
	}
	if loc == nil {
		loc = time.Local
	}

	return &Client{
		sender:         s,
		chatID:         chatIDInt,
		maxRetries:     maxRetries,
		retryDelayBase: retryDelayBase,
		location:       loc,
	}, nil
}

// Notify sends a daily reminder. It satisfies reminder.Notifier.
func (c *Client) Notify(ctx context.Context, r reminder.Reminder) error {
	return c.send(ctx, c.chatID, formatReminder(r))
}

// SendStatus sends the status block for s.
func (c *Client) SendStatus(ctx context.Context, s analytics.Summary) error {
	return c.send(ctx, c.chatID, formatStatus(s, c.location))
}

func (c *Client) send(ctx context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2

	var lastErr error
	for i := 0; i < c.maxRetries; i++ {
		_, err := c.sender.Send(msg)
		if err == nil {
			return nil
		}
		lastErr = err
		logger.Debug("Telegram send attempt %d failed: %v", i+1, err)

		select {
		case <-ctx.Done():
			return fmt.Errorf("telegram send cancelled: %w", ctx.Err())
		case <-time.After(c.retryDelayBase * time.Duration(i+1)):
		}
	}

	return fmt.Errorf("failed to send message after %d retries: %w", c.maxRetries, lastErr)
}

// ListenForCommands answers /status and /start from the configured chat
// until ctx is cancelled. It returns immediately; updates are handled on a
// background goroutine.
func (c *Client) ListenForCommands(ctx context.Context, status StatusProvider) {
	if c.bot == nil {
		return
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := c.bot.GetUpdatesChan(u)

	go func() {
		for {
			select {
			case <-ctx.Done():
				c.bot.StopReceivingUpdates()
				return
			case update, ok := <-updates:
				if !ok {
					return
				}
				c.handleUpdate(ctx, update, status)
			}
		}
	}()
	logger.Info("Listening for Telegram commands")
}

func (c *Client) handleUpdate(ctx context.Context, update tgbotapi.Update, status StatusProvider) {
	if update.Message == nil || !update.Message.IsCommand() {
		return
	}
	if update.Message.Chat == nil || update.Message.Chat.ID != c.chatID {
		logger.Debug("Ignoring command from unknown chat")
		return
	}

	var text string
	switch update.Message.Command() {
	case "status":
		if err := status.Refresh(ctx); err != nil {
			logger.Warn("Failed to refresh history for /status: %v", err)
		}
		text = formatStatus(status.Summary(time.Now()), c.location)
	case "start", "help":
		text = escapeMarkdownV2("Send /status to see your latest entry, regularity and constipation risk.")
	default:
		return
	}

	if err := c.send(ctx, c.chatID, text); err != nil {
		logger.Warn("Failed to answer /%s: %v", update.Message.Command(), err)
	}
}

// formatReminder formats a reminder into a Telegram message
func formatReminder(r reminder.Reminder) string {
	var b strings.Builder
	b.WriteString("🚽 *" + escapeMarkdownV2(r.Title) + "*\n\n")
	b.WriteString(escapeMarkdownV2(r.Text))
	if r.ID != "" {
		b.WriteString("\n\n_" + escapeMarkdownV2("ref "+r.ID) + "_")
	}
	return b.String()
}

// formatStatus formats the status block into a Telegram message
func formatStatus(s analytics.Summary, loc *time.Location) string {
	st := display.StatusOf(s, loc)

	var b strings.Builder
	b.WriteString("📋 *Status*\n\n")
	for _, line := range st.Lines() {
		b.WriteString(escapeMarkdownV2(line) + "\n")
	}
	if s.HasData() {
		b.WriteString("\n" + escapeMarkdownV2(fmt.Sprintf("%d entries recorded", s.Total)))
	}
	return b.String()
}

// escapeMarkdownV2 escapes special characters for Telegram MarkdownV2
func escapeMarkdownV2(text string) string {
	// Characters that need escaping in MarkdownV2:
	// _ * [ ] ( ) ~ ` > # + - = | { } . !
	var b strings.Builder
	for _, char := range text {
		switch char {
		case '_', '*', '[', ']', '(', ')', '~', '`', '>', '#', '+', '-', '=', '|', '{', '}', '.', '!', '\\':
			b.WriteRune('\\')
		}
		b.WriteRune(char)
	}
	return b.String()
}
