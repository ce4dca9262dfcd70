package database

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shihanqu/discord-quote-bot/internal/models"
)

func TestQuoteRepo_CreateRoundTrip(t *testing.T) {
	pool := testPool(t)
	repo := NewQuoteRepository(pool)
	ctx := context.Background()

	q := &models.Quote{
		ID:         nextID(),
		MessageID:  nextID(),
		GuildID:    nextID(),
		ChannelID:  nextID(),
		AuthorID:   nextID(),
		AuthorName: "lena",
		Content:    "ship it and find out",
		JumpURL:    "https://chat.example/g/c/m",
		AdderID:    nextID(),
		AddedAt:    time.Now().Truncate(time.Microsecond),
	}
	if err := repo.Create(ctx, q); err != nil {
		t.Fatalf("Create: %v", err)
	}
	t.Cleanup(func() { _ = repo.Delete(ctx, q.MessageID) })

	got, err := repo.GetByMessageID(ctx, q.MessageID)
	if err != nil {
		t.Fatalf("GetByMessageID: %v", err)
	}
	if got == nil {
		t.Fatal("GetByMessageID returned nil after Create")
	}
	if got.Content != q.Content {
		t.Errorf("Content = %q, want %q", got.Content, q.Content)
	}
	if got.AuthorName != q.AuthorName {
		t.Errorf("AuthorName = %q, want %q", got.AuthorName, q.AuthorName)
	}
	if got.JumpURL != q.JumpURL {
		t.Errorf("JumpURL = %q, want %q", got.JumpURL, q.JumpURL)
	}
	if got.AdderID != q.AdderID {
		t.Errorf("AdderID = %d, want %d", got.AdderID, q.AdderID)
	}
	if !got.AddedAt.Equal(q.AddedAt) {
		t.Errorf("AddedAt = %v, want %v", got.AddedAt, q.AddedAt)
	}
}

func TestQuoteRepo_CreateDuplicateMessageID(t *testing.T) {
	pool := testPool(t)
	repo := NewQuoteRepository(pool)
	ctx := context.Background()

	q := createTestQuote(t, repo, nextID(), nextID(), "marco", "first")

	dup := *q
	dup.ID = nextID()
	dup.Content = "second"
	err := repo.Create(ctx, &dup)
	if !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("Create duplicate: got %v, want ErrDuplicateKey", err)
	}

	// The store must still hold exactly the first row.
	got, err := repo.GetByMessageID(ctx, q.MessageID)
	if err != nil {
		t.Fatalf("GetByMessageID: %v", err)
	}
	if got == nil || got.Content != "first" {
		t.Errorf("stored quote = %+v, want original row", got)
	}
}

func TestQuoteRepo_GetByMessageID_Absent(t *testing.T) {
	pool := testPool(t)
	repo := NewQuoteRepository(pool)

	got, err := repo.GetByMessageID(context.Background(), nextID())
	if err != nil {
		t.Fatalf("GetByMessageID: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}

func TestQuoteRepo_GetRandomExcludingAuthor(t *testing.T) {
	pool := testPool(t)
	repo := NewQuoteRepository(pool)
	ctx := context.Background()

	channelID := nextID()
	excluded := nextID()
	other := nextID()
	createTestQuote(t, repo, channelID, excluded, "excluded", "from the excluded author")
	want := createTestQuote(t, repo, channelID, other, "other", "from the other author")

	for i := 0; i < 10; i++ {
		got, err := repo.GetRandomExcludingAuthor(ctx, excluded, channelID)
		if err != nil {
			t.Fatalf("GetRandomExcludingAuthor: %v", err)
		}
		if got == nil {
			t.Fatal("expected a quote, got nil")
		}
		if got.AuthorID == excluded {
			t.Fatalf("returned excluded author %d", excluded)
		}
		if got.MessageID != want.MessageID {
			t.Fatalf("got message %d, want %d", got.MessageID, want.MessageID)
		}
	}
}

func TestQuoteRepo_GetRandomExcludingAuthor_NoCandidates(t *testing.T) {
	pool := testPool(t)
	repo := NewQuoteRepository(pool)
	ctx := context.Background()

	channelID := nextID()
	onlyAuthor := nextID()
	createTestQuote(t, repo, channelID, onlyAuthor, "solo", "only voice in here")

	got, err := repo.GetRandomExcludingAuthor(ctx, onlyAuthor, channelID)
	if err != nil {
		t.Fatalf("GetRandomExcludingAuthor: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}

func TestQuoteRepo_SearchContent(t *testing.T) {
	pool := testPool(t)
	repo := NewQuoteRepository(pool)
	ctx := context.Background()

	marker := fmt.Sprintf("zxq%d", nextID())
	channelID := nextID()
	createTestQuote(t, repo, channelID, nextID(), "a", "something "+marker+" here")
	createTestQuote(t, repo, channelID, nextID(), "b", "UPPER "+marker+" CASE")
	createTestQuote(t, repo, channelID, nextID(), "c", "unrelated content")

	// Case-insensitive substring match.
	got, err := repo.SearchContent(ctx, marker)
	if err != nil {
		t.Fatalf("SearchContent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d results, want 2", len(got))
	}
	if got[0].ID > got[1].ID {
		t.Error("results not in insertion order")
	}
}

func TestQuoteRepo_SearchAuthorName(t *testing.T) {
	pool := testPool(t)
	repo := NewQuoteRepository(pool)
	ctx := context.Background()

	marker := fmt.Sprintf("auth%d", nextID())
	createTestQuote(t, repo, nextID(), nextID(), "Captain "+marker, "one")
	createTestQuote(t, repo, nextID(), nextID(), "somebody else", "two")

	got, err := repo.SearchAuthorName(ctx, marker)
	if err != nil {
		t.Fatalf("SearchAuthorName: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d results, want 1", len(got))
	}
}

func TestQuoteRepo_ListDistinctAuthors(t *testing.T) {
	pool := testPool(t)
	repo := NewQuoteRepository(pool)
	ctx := context.Background()

	authorID := nextID()
	name := fmt.Sprintf("dupauthor%d", authorID)
	createTestQuote(t, repo, nextID(), authorID, name, "first quote")
	createTestQuote(t, repo, nextID(), authorID, name, "second quote")

	authors, err := repo.ListDistinctAuthors(ctx)
	if err != nil {
		t.Fatalf("ListDistinctAuthors: %v", err)
	}

	seen := 0
	for _, a := range authors {
		if a.ID == authorID {
			seen++
		}
	}
	if seen != 1 {
		t.Errorf("author appears %d times, want exactly once", seen)
	}
	for i := 1; i < len(authors); i++ {
		if authors[i-1].Name > authors[i].Name {
			t.Fatalf("authors not sorted by name: %q > %q", authors[i-1].Name, authors[i].Name)
		}
	}
}

func TestQuoteRepo_ListByAuthorID(t *testing.T) {
	pool := testPool(t)
	repo := NewQuoteRepository(pool)
	ctx := context.Background()

	authorID := nextID()
	createTestQuote(t, repo, nextID(), authorID, "prolific", "alpha")
	createTestQuote(t, repo, nextID(), authorID, "prolific", "beta")

	got, err := repo.ListByAuthorID(ctx, authorID)
	if err != nil {
		t.Fatalf("ListByAuthorID: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d quotes, want 2", len(got))
	}
	if got[0].Content != "alpha" || got[1].Content != "beta" {
		t.Errorf("quotes out of insertion order: %q, %q", got[0].Content, got[1].Content)
	}
}

func TestQuoteRepo_DeleteAbsentIsNoop(t *testing.T) {
	pool := testPool(t)
	repo := NewQuoteRepository(pool)
	ctx := context.Background()

	missing := nextID()
	if err := repo.Delete(ctx, missing); err != nil {
		t.Fatalf("Delete absent: %v", err)
	}
	got, err := repo.GetByMessageID(ctx, missing)
	if err != nil {
		t.Fatalf("GetByMessageID: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil after delete of absent id, got %+v", got)
	}
}

func TestQuoteRepo_Counts(t *testing.T) {
	pool := testPool(t)
	repo := NewQuoteRepository(pool)
	ctx := context.Background()

	channelID := nextID()
	a := nextID()
	b := nextID()
	createTestQuote(t, repo, channelID, a, "a", "one")
	createTestQuote(t, repo, channelID, a, "a", "two")
	createTestQuote(t, repo, channelID, b, "b", "three")

	total, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if total < 3 {
		t.Errorf("Count = %d, want at least 3", total)
	}

	n, err := repo.CountExcludingAuthorInChannel(ctx, a, channelID)
	if err != nil {
		t.Fatalf("CountExcludingAuthorInChannel: %v", err)
	}
	if n != 1 {
		t.Errorf("CountExcludingAuthorInChannel = %d, want 1", n)
	}
}

func TestQuoteRepo_GetLastAuthor(t *testing.T) {
	pool := testPool(t)
	repo := NewQuoteRepository(pool)
	ctx := context.Background()

	channelID := nextID()

	last, err := repo.GetLastAuthor(ctx, channelID)
	if err != nil {
		t.Fatalf("GetLastAuthor empty channel: %v", err)
	}
	if last != nil {
		t.Errorf("expected nil for empty channel, got %d", *last)
	}

	first := nextID()
	second := nextID()
	createTestQuote(t, repo, channelID, first, "first", "older")
	createTestQuote(t, repo, channelID, second, "second", "newer")

	last, err = repo.GetLastAuthor(ctx, channelID)
	if err != nil {
		t.Fatalf("GetLastAuthor: %v", err)
	}
	if last == nil || *last != second {
		t.Errorf("GetLastAuthor = %v, want %d", last, second)
	}
}
