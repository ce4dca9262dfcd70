package database

import (
	"context"
	"errors"

	"github.com/shihanqu/discord-quote-bot/internal/models"
)

// ErrDuplicateKey is returned by Create when a quote for the same
// message_id already exists. The unique constraint is the authoritative
// guard; callers may pre-check with GetByMessageID as a fast path only.
var ErrDuplicateKey = errors.New("duplicate key")

// QuoteRepository is the persistence interface for quotes. Lookups report
// absence as (nil, nil) or an empty slice, never as an error.
type QuoteRepository interface {
	Create(ctx context.Context, quote *models.Quote) error
	GetByMessageID(ctx context.Context, messageID int64) (*models.Quote, error)
	GetRandom(ctx context.Context) (*models.Quote, error)
	GetRandomExcludingAuthor(ctx context.Context, authorID, channelID int64) (*models.Quote, error)
	SearchContent(ctx context.Context, substring string) ([]models.Quote, error)
	SearchAuthorName(ctx context.Context, substring string) ([]models.Quote, error)
	ListDistinctAuthors(ctx context.Context) ([]models.Author, error)
	ListByAuthorID(ctx context.Context, authorID int64) ([]models.Quote, error)
	Delete(ctx context.Context, messageID int64) error
	Count(ctx context.Context) (int64, error)
	CountExcludingAuthorInChannel(ctx context.Context, authorID, channelID int64) (int64, error)
	GetLastAuthor(ctx context.Context, channelID int64) (*int64, error)
}
