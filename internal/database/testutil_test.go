package database

import (
	"context"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shihanqu/discord-quote-bot/internal/models"
)

// testPool returns a pgxpool.Pool connected to the test database.
// It skips the test if DATABASE_URL is not set.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connecting to test database: %v", err)
	}
	t.Cleanup(func() { pool.Close() })
	return pool
}

// testIDCounter provides unique IDs across all tests in the package.
// Starts well above zero to avoid conflicts with any existing data.
var testIDCounter int64 = 900000

func nextID() int64 {
	return atomic.AddInt64(&testIDCounter, 1)
}

// createTestQuote inserts a quote with generated ids and registers cleanup.
func createTestQuote(t *testing.T, repo QuoteRepository, channelID, authorID int64, authorName, content string) *models.Quote {
	t.Helper()
	q := &models.Quote{
		ID:         nextID(),
		MessageID:  nextID(),
		GuildID:    nextID(),
		ChannelID:  channelID,
		AuthorID:   authorID,
		AuthorName: authorName,
		Content:    content,
		JumpURL:    "https://chat.example/c/m",
		AdderID:    nextID(),
		AddedAt:    time.Now().Truncate(time.Microsecond),
	}
	if err := repo.Create(context.Background(), q); err != nil {
		t.Fatalf("Create: %v", err)
	}
	msgID := q.MessageID
	t.Cleanup(func() { _ = repo.Delete(context.Background(), msgID) })
	return q
}
