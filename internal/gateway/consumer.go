package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/shihanqu/discord-quote-bot/internal/models"
	"github.com/shihanqu/discord-quote-bot/internal/platform"
	"github.com/shihanqu/discord-quote-bot/internal/service"
)

// MessageFetcher resolves reacted-on messages.
type MessageFetcher interface {
	GetMessage(ctx context.Context, channelID, messageID int64) (*platform.Message, error)
}

// Announcer posts the bot's pin announcements.
type Announcer interface {
	SendMessage(ctx context.Context, channelID int64, content string) (*platform.Message, error)
}

// QuoteStore is the slice of the quote service the consumer needs.
type QuoteStore interface {
	TryAdd(ctx context.Context, p service.AddQuoteParams) (*models.Quote, bool, error)
	Delete(ctx context.Context, messageID, requesterID int64, requesterIsAdmin bool) error
}

// Consumer turns qualifying reaction events into stored quotes. A reaction
// qualifies when its emoji matches the configured pin emoji and neither the
// reactor nor the message author is a bot.
type Consumer struct {
	quotes   QuoteStore
	fetcher  MessageFetcher
	announce Announcer
	emoji    models.EmojiRef
	logger   *slog.Logger

	botUserID atomic.Int64
}

// NewConsumer creates a Consumer pinning on the given emoji.
func NewConsumer(quotes QuoteStore, fetcher MessageFetcher, announce Announcer, emoji models.EmojiRef, logger *slog.Logger) *Consumer {
	return &Consumer{
		quotes:   quotes,
		fetcher:  fetcher,
		announce: announce,
		emoji:    emoji,
		logger:   logger,
	}
}

// HandleEvent is the gateway dispatch handler.
func (c *Consumer) HandleEvent(ctx context.Context, event string, data json.RawMessage) {
	switch event {
	case EventReady:
		var ready ReadyData
		if err := json.Unmarshal(data, &ready); err == nil {
			c.botUserID.Store(ready.User.ID.Int64())
		}

	case EventMessageReactionAdd:
		var reaction ReactionAddData
		if err := json.Unmarshal(data, &reaction); err != nil {
			c.logger.Error("invalid reaction payload", "error", err)
			return
		}
		c.handleReactionAdd(ctx, reaction)

	case EventMessageDelete:
		var deleted MessageDeleteData
		if err := json.Unmarshal(data, &deleted); err != nil {
			c.logger.Error("invalid message delete payload", "error", err)
			return
		}
		c.handleMessageDelete(ctx, deleted)
	}
}

func (c *Consumer) handleReactionAdd(ctx context.Context, reaction ReactionAddData) {
	if !c.emoji.Matches(reaction.Emoji.Ref()) {
		return
	}
	if reaction.UserID.Int64() == c.botUserID.Load() {
		return
	}

	msg, err := c.fetcher.GetMessage(ctx, reaction.ChannelID.Int64(), reaction.MessageID.Int64())
	if errors.Is(err, platform.ErrNotFound) {
		return
	}
	if err != nil {
		c.logger.Error("fetching reacted message failed",
			"channel_id", reaction.ChannelID.Int64(),
			"message_id", reaction.MessageID.Int64(),
			"error", err)
		return
	}
	if msg.Author.Bot {
		return
	}

	content := msg.Content
	if content == "" && len(msg.Attachments) > 0 {
		// Image-only messages are pinned with the attachment link.
		content = msg.Attachments[0].URL
	}

	quote, added, err := c.quotes.TryAdd(ctx, service.AddQuoteParams{
		MessageID:  reaction.MessageID.Int64(),
		GuildID:    reaction.GuildID.Int64(),
		ChannelID:  reaction.ChannelID.Int64(),
		AuthorID:   msg.Author.ID.Int64(),
		AuthorName: msg.Author.Username,
		Content:    content,
		JumpURL:    platform.JumpURL(reaction.GuildID.Int64(), reaction.ChannelID.Int64(), reaction.MessageID.Int64()),
		AdderID:    reaction.UserID.Int64(),
	})
	if err != nil {
		c.logger.Error("pinning quote failed",
			"message_id", reaction.MessageID.Int64(),
			"error", err)
		return
	}
	if !added {
		return
	}

	c.logger.Info("quote pinned",
		"message_id", quote.MessageID,
		"author", quote.AuthorName,
		"adder_id", quote.AdderID)

	announcement := fmt.Sprintf("Pinned a quote by %s: %s", quote.AuthorName, quote.JumpURL)
	if _, err := c.announce.SendMessage(ctx, quote.ChannelID, announcement); err != nil {
		c.logger.Warn("announcing pin failed", "channel_id", quote.ChannelID, "error", err)
	}
}

// handleMessageDelete drops the quote for a message deleted on the
// platform. The bot acts with admin authority here; there is no requester.
func (c *Consumer) handleMessageDelete(ctx context.Context, deleted MessageDeleteData) {
	err := c.quotes.Delete(ctx, deleted.ID.Int64(), c.botUserID.Load(), true)
	if err != nil && !errors.Is(err, service.ErrNotFound) {
		c.logger.Error("removing quote for deleted message failed",
			"message_id", deleted.ID.Int64(),
			"error", err)
		return
	}
	if err == nil {
		c.logger.Info("quote removed with source message", "message_id", deleted.ID.Int64())
	}
}
