package api

import (
	"context"
	"io"
	"net/http/httptest"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/shihanqu/discord-quote-bot/internal/models"
	"github.com/shihanqu/discord-quote-bot/internal/platform"
	"github.com/shihanqu/discord-quote-bot/internal/snowflake"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

func newTestContext(method, path string, body io.Reader) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}

func setAuthUser(c echo.Context, userID int64, admin bool) {
	c.Set("user_id", userID)
	c.Set("is_admin", admin)
}

func testSnowflake() *snowflake.Generator {
	sf, _ := snowflake.NewGenerator(1)
	return sf
}

func testQuote(messageID, authorID int64) models.Quote {
	return models.Quote{
		ID:         messageID,
		MessageID:  messageID,
		GuildID:    5,
		ChannelID:  20,
		AuthorID:   authorID,
		AuthorName: "ana",
		Content:    "quoted words",
		JumpURL:    "https://discord.com/channels/5/20/100",
		AdderID:    9,
		AddedAt:    time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

// ---------------------------------------------------------------------------
// Mock platform fetcher
// ---------------------------------------------------------------------------

type mockFetcher struct {
	GetMessageFn func(ctx context.Context, channelID, messageID int64) (*platform.Message, error)
}

func (m *mockFetcher) GetMessage(ctx context.Context, channelID, messageID int64) (*platform.Message, error) {
	if m.GetMessageFn != nil {
		return m.GetMessageFn(ctx, channelID, messageID)
	}
	return nil, platform.ErrNotFound
}

type mockMemberFetcher struct {
	GetGuildMemberFn func(ctx context.Context, guildID, userID int64) (*platform.Member, error)
}

func (m *mockMemberFetcher) GetGuildMember(ctx context.Context, guildID, userID int64) (*platform.Member, error) {
	if m.GetGuildMemberFn != nil {
		return m.GetGuildMemberFn(ctx, guildID, userID)
	}
	return nil, platform.ErrNotFound
}

// ---------------------------------------------------------------------------
// Mock quote repository
// ---------------------------------------------------------------------------

// mockQuoteRepo implements database.QuoteRepository.
type mockQuoteRepo struct {
	CreateFn                        func(ctx context.Context, quote *models.Quote) error
	GetByMessageIDFn                func(ctx context.Context, messageID int64) (*models.Quote, error)
	GetRandomFn                     func(ctx context.Context) (*models.Quote, error)
	GetRandomExcludingAuthorFn      func(ctx context.Context, authorID, channelID int64) (*models.Quote, error)
	SearchContentFn                 func(ctx context.Context, substring string) ([]models.Quote, error)
	SearchAuthorNameFn              func(ctx context.Context, substring string) ([]models.Quote, error)
	ListDistinctAuthorsFn           func(ctx context.Context) ([]models.Author, error)
	ListByAuthorIDFn                func(ctx context.Context, authorID int64) ([]models.Quote, error)
	DeleteFn                        func(ctx context.Context, messageID int64) error
	CountFn                         func(ctx context.Context) (int64, error)
	CountExcludingAuthorInChannelFn func(ctx context.Context, authorID, channelID int64) (int64, error)
	GetLastAuthorFn                 func(ctx context.Context, channelID int64) (*int64, error)
}

func (m *mockQuoteRepo) Create(ctx context.Context, quote *models.Quote) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, quote)
	}
	return nil
}

func (m *mockQuoteRepo) GetByMessageID(ctx context.Context, messageID int64) (*models.Quote, error) {
	if m.GetByMessageIDFn != nil {
		return m.GetByMessageIDFn(ctx, messageID)
	}
	return nil, nil
}

func (m *mockQuoteRepo) GetRandom(ctx context.Context) (*models.Quote, error) {
	if m.GetRandomFn != nil {
		return m.GetRandomFn(ctx)
	}
	return nil, nil
}

func (m *mockQuoteRepo) GetRandomExcludingAuthor(ctx context.Context, authorID, channelID int64) (*models.Quote, error) {
	if m.GetRandomExcludingAuthorFn != nil {
		return m.GetRandomExcludingAuthorFn(ctx, authorID, channelID)
	}
	return nil, nil
}

func (m *mockQuoteRepo) SearchContent(ctx context.Context, substring string) ([]models.Quote, error) {
	if m.SearchContentFn != nil {
		return m.SearchContentFn(ctx, substring)
	}
	return nil, nil
}

func (m *mockQuoteRepo) SearchAuthorName(ctx context.Context, substring string) ([]models.Quote, error) {
	if m.SearchAuthorNameFn != nil {
		return m.SearchAuthorNameFn(ctx, substring)
	}
	return nil, nil
}

func (m *mockQuoteRepo) ListDistinctAuthors(ctx context.Context) ([]models.Author, error) {
	if m.ListDistinctAuthorsFn != nil {
		return m.ListDistinctAuthorsFn(ctx)
	}
	return nil, nil
}

func (m *mockQuoteRepo) ListByAuthorID(ctx context.Context, authorID int64) ([]models.Quote, error) {
	if m.ListByAuthorIDFn != nil {
		return m.ListByAuthorIDFn(ctx, authorID)
	}
	return nil, nil
}

func (m *mockQuoteRepo) Delete(ctx context.Context, messageID int64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, messageID)
	}
	return nil
}

func (m *mockQuoteRepo) Count(ctx context.Context) (int64, error) {
	if m.CountFn != nil {
		return m.CountFn(ctx)
	}
	return 0, nil
}

func (m *mockQuoteRepo) CountExcludingAuthorInChannel(ctx context.Context, authorID, channelID int64) (int64, error) {
	if m.CountExcludingAuthorInChannelFn != nil {
		return m.CountExcludingAuthorInChannelFn(ctx, authorID, channelID)
	}
	return 0, nil
}

func (m *mockQuoteRepo) GetLastAuthor(ctx context.Context, channelID int64) (*int64, error) {
	if m.GetLastAuthorFn != nil {
		return m.GetLastAuthorFn(ctx, channelID)
	}
	return nil, nil
}
