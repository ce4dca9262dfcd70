package service

import (
	"context"
	"time"

	"github.com/shihanqu/discord-quote-bot/internal/database"
	"github.com/shihanqu/discord-quote-bot/internal/models"
	"github.com/shihanqu/discord-quote-bot/internal/snowflake"
)

// QuoteService handles quote lifecycle: ingestion, lookup and deletion.
// Selection and ranking policy lives in Selector.
type QuoteService struct {
	quotes    database.QuoteRepository
	snowflake *snowflake.Generator
}

// NewQuoteService creates a QuoteService.
func NewQuoteService(quotes database.QuoteRepository, sf *snowflake.Generator) *QuoteService {
	return &QuoteService{quotes: quotes, snowflake: sf}
}

// AddQuoteParams carries the snapshot of a message being pinned. The caller
// (reaction consumer or manual-add handler) has already resolved the message
// and filtered out bot authors and non-qualifying reactions.
type AddQuoteParams struct {
	MessageID  int64
	GuildID    int64
	ChannelID  int64
	AuthorID   int64
	AuthorName string
	Content    string
	JumpURL    string
	AdderID    int64
}

// TryAdd inserts a quote for a message, once. It returns the stored quote
// and whether this call created it. Two concurrent reactions on the same
// message can both pass the existence pre-check; the unique constraint on
// message_id is the authoritative guard, and losing that race reports
// "already exists" rather than an error.
func (s *QuoteService) TryAdd(ctx context.Context, p AddQuoteParams) (*models.Quote, bool, error) {
	if p.MessageID <= 0 || p.ChannelID <= 0 || p.AuthorID <= 0 {
		return nil, false, BadRequest("INVALID_ID", "message, channel and author ids must be positive")
	}

	// Fast path: most duplicate reactions hit an existing row.
	existing, err := s.quotes.GetByMessageID(ctx, p.MessageID)
	if err != nil {
		return nil, false, StorageUnavailable(err)
	}
	if existing != nil {
		return existing, false, nil
	}

	quote := &models.Quote{
		ID:         s.snowflake.Generate().Int64(),
		MessageID:  p.MessageID,
		GuildID:    p.GuildID,
		ChannelID:  p.ChannelID,
		AuthorID:   p.AuthorID,
		AuthorName: p.AuthorName,
		Content:    p.Content,
		JumpURL:    p.JumpURL,
		AdderID:    p.AdderID,
		AddedAt:    time.Now().UTC(),
	}

	err = s.quotes.Create(ctx, quote)
	if err == database.ErrDuplicateKey {
		// Lost the insert race; the winner's row is the quote.
		existing, getErr := s.quotes.GetByMessageID(ctx, p.MessageID)
		if getErr != nil {
			return nil, false, StorageUnavailable(getErr)
		}
		if existing == nil {
			// Inserted concurrently and deleted before we could read it back.
			return nil, false, NotFound("NOT_FOUND", "quote not found")
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, StorageUnavailable(err)
	}
	return quote, true, nil
}

// Get returns a quote by the id of the message it was pinned from.
func (s *QuoteService) Get(ctx context.Context, messageID int64) (*models.Quote, error) {
	if messageID <= 0 {
		return nil, BadRequest("INVALID_ID", "invalid message id")
	}
	quote, err := s.quotes.GetByMessageID(ctx, messageID)
	if err != nil {
		return nil, StorageUnavailable(err)
	}
	if quote == nil {
		return nil, NotFound("NOT_FOUND", "quote not found")
	}
	return quote, nil
}

// Delete removes a quote. The adder, the quoted author, or an admin may
// delete; the admin decision is made by the caller from platform roles.
func (s *QuoteService) Delete(ctx context.Context, messageID, requesterID int64, requesterIsAdmin bool) error {
	if messageID <= 0 {
		return BadRequest("INVALID_ID", "invalid message id")
	}
	quote, err := s.quotes.GetByMessageID(ctx, messageID)
	if err != nil {
		return StorageUnavailable(err)
	}
	if quote == nil {
		return NotFound("NOT_FOUND", "quote not found")
	}
	if requesterID != quote.AdderID && requesterID != quote.AuthorID && !requesterIsAdmin {
		return Forbidden("FORBIDDEN", "only the adder, the author, or an admin can delete a quote")
	}
	if err := s.quotes.Delete(ctx, messageID); err != nil {
		return StorageUnavailable(err)
	}
	return nil
}

// ListAuthors returns each author with at least one quote, once, by name.
func (s *QuoteService) ListAuthors(ctx context.Context) ([]models.Author, error) {
	authors, err := s.quotes.ListDistinctAuthors(ctx)
	if err != nil {
		return nil, StorageUnavailable(err)
	}
	if authors == nil {
		authors = []models.Author{}
	}
	return authors, nil
}

// QuotesByAuthor returns all quotes for one author in insertion order.
func (s *QuoteService) QuotesByAuthor(ctx context.Context, authorID int64) ([]models.Quote, error) {
	if authorID <= 0 {
		return nil, BadRequest("INVALID_ID", "invalid author id")
	}
	quotes, err := s.quotes.ListByAuthorID(ctx, authorID)
	if err != nil {
		return nil, StorageUnavailable(err)
	}
	if quotes == nil {
		quotes = []models.Quote{}
	}
	return quotes, nil
}
