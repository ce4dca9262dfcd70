package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/shihanqu/discord-quote-bot/internal/auth"
	"github.com/shihanqu/discord-quote-bot/internal/platform"
	"github.com/shihanqu/discord-quote-bot/internal/service"
)

// MessageFetcher resolves a message link to the message it points at.
type MessageFetcher interface {
	GetMessage(ctx context.Context, channelID, messageID int64) (*platform.Message, error)
}

// MemberFetcher resolves a guild member, including their roles.
type MemberFetcher interface {
	GetGuildMember(ctx context.Context, guildID, userID int64) (*platform.Member, error)
}

// QuoteHandler handles quote endpoints.
type QuoteHandler struct {
	quotes      *service.QuoteService
	selector    *service.Selector
	fetcher     MessageFetcher
	members     MemberFetcher
	adminRoleID int64
}

// NewQuoteHandler creates a QuoteHandler. adminRoleID 0 disables the live
// guild-role admin check; the token claim still applies.
func NewQuoteHandler(quotes *service.QuoteService, selector *service.Selector, fetcher MessageFetcher, members MemberFetcher, adminRoleID int64) *QuoteHandler {
	return &QuoteHandler{
		quotes:      quotes,
		selector:    selector,
		fetcher:     fetcher,
		members:     members,
		adminRoleID: adminRoleID,
	}
}

type addQuoteRequest struct {
	MessageLink string `json:"message_link"`
}

type addQuoteResponse struct {
	Quote any  `json:"quote"`
	Added bool `json:"added"`
}

// AddQuote handles POST /api/v1/quotes. It accepts a message link, fetches
// the message from the platform, and pins it as a quote.
func (h *QuoteHandler) AddQuote(c echo.Context) error {
	var req addQuoteRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	guildID, channelID, messageID, err := parseMessageLink(req.MessageLink)
	if err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_LINK", "invalid message link")
	}

	msg, err := h.fetcher.GetMessage(c.Request().Context(), channelID, messageID)
	if errors.Is(err, platform.ErrNotFound) {
		return Error(c, http.StatusNotFound, "MESSAGE_NOT_FOUND", "message not found")
	}
	if err != nil {
		return Error(c, http.StatusBadGateway, "PLATFORM_UNAVAILABLE", "could not fetch message")
	}
	if msg.Author.Bot {
		return Error(c, http.StatusBadRequest, "BOT_AUTHOR", "bot messages cannot be quoted")
	}

	quote, added, err := h.quotes.TryAdd(c.Request().Context(), service.AddQuoteParams{
		MessageID:  messageID,
		GuildID:    guildID,
		ChannelID:  channelID,
		AuthorID:   msg.Author.ID.Int64(),
		AuthorName: msg.Author.Username,
		Content:    msg.Content,
		JumpURL:    platform.JumpURL(guildID, channelID, messageID),
		AdderID:    auth.GetUserID(c),
	})
	if err != nil {
		return mapServiceError(c, err)
	}

	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	return c.JSON(status, addQuoteResponse{Quote: quote, Added: added})
}

// RandomQuote handles GET /api/v1/quotes/random.
func (h *QuoteHandler) RandomQuote(c echo.Context) error {
	var channelID int64
	if raw := c.QueryParam("channel_id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid channel ID")
		}
		channelID = parsed
	}

	quote, err := h.selector.RandomQuote(c.Request().Context(), channelID)
	if err != nil {
		return mapServiceError(c, err)
	}
	if quote == nil {
		return Error(c, http.StatusNotFound, "NO_QUOTES", "no quotes stored yet")
	}
	return c.JSON(http.StatusOK, quote)
}

// SearchContent handles GET /api/v1/quotes/search.
func (h *QuoteHandler) SearchContent(c echo.Context) error {
	matches, err := h.selector.SearchContent(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusOK, matches)
}

// SearchAuthor handles GET /api/v1/quotes/search/authors.
func (h *QuoteHandler) SearchAuthor(c echo.Context) error {
	matches, err := h.selector.SearchAuthor(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusOK, matches)
}

// ListAuthors handles GET /api/v1/authors.
func (h *QuoteHandler) ListAuthors(c echo.Context) error {
	authors, err := h.quotes.ListAuthors(c.Request().Context())
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusOK, authors)
}

// QuotesByAuthor handles GET /api/v1/authors/:id/quotes.
func (h *QuoteHandler) QuotesByAuthor(c echo.Context) error {
	authorID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid author ID")
	}

	quotes, err := h.quotes.QuotesByAuthor(c.Request().Context(), authorID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusOK, quotes)
}

// GetQuote handles GET /api/v1/quotes/:message_id.
func (h *QuoteHandler) GetQuote(c echo.Context) error {
	messageID, err := strconv.ParseInt(c.Param("message_id"), 10, 64)
	if err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid message ID")
	}

	quote, err := h.quotes.Get(c.Request().Context(), messageID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusOK, quote)
}

// DeleteQuote handles DELETE /api/v1/quotes/:message_id. Admin standing
// comes from the token claim, or from the requester's live guild roles
// when an admin role is configured.
func (h *QuoteHandler) DeleteQuote(c echo.Context) error {
	messageID, err := strconv.ParseInt(c.Param("message_id"), 10, 64)
	if err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_ID", "invalid message ID")
	}

	requesterID := auth.GetUserID(c)
	admin := auth.IsAdmin(c)
	if !admin && h.adminRoleID != 0 {
		quote, err := h.quotes.Get(c.Request().Context(), messageID)
		if err != nil {
			return mapServiceError(c, err)
		}
		// Role lookup failures degrade to the token claim; the adder and
		// author can still delete.
		member, err := h.members.GetGuildMember(c.Request().Context(), quote.GuildID, requesterID)
		if err == nil && member.HasRole(h.adminRoleID) {
			admin = true
		}
	}

	if err := h.quotes.Delete(c.Request().Context(), messageID, requesterID, admin); err != nil {
		return mapServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// parseMessageLink extracts the guild, channel and message ids from a
// message link of the form https://<host>/channels/<guild>/<channel>/<message>.
func parseMessageLink(link string) (guildID, channelID, messageID int64, err error) {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return 0, 0, 0, err
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) != 4 || parts[0] != "channels" {
		return 0, 0, 0, errors.New("not a message link")
	}
	ids := make([]int64, 3)
	for i, raw := range parts[1:] {
		ids[i], err = strconv.ParseInt(raw, 10, 64)
		if err != nil || ids[i] <= 0 {
			return 0, 0, 0, errors.New("not a message link")
		}
	}
	return ids[0], ids[1], ids[2], nil
}
