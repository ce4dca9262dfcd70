package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/shihanqu/discord-quote-bot/internal/auth"
	"github.com/shihanqu/discord-quote-bot/internal/selectmenu"
	"github.com/shihanqu/discord-quote-bot/internal/service"
)

// SelectionHandler runs searches that return multiple quotes and tracks
// which option the requester picks.
type SelectionHandler struct {
	quotes   *service.QuoteService
	selector *service.Selector
	sessions *selectmenu.Manager
}

// NewSelectionHandler creates a SelectionHandler.
func NewSelectionHandler(quotes *service.QuoteService, selector *service.Selector, sessions *selectmenu.Manager) *SelectionHandler {
	return &SelectionHandler{quotes: quotes, selector: selector, sessions: sessions}
}

type beginSelectionRequest struct {
	Kind      string `json:"kind"`
	Query     string `json:"query"`
	ChannelID int64  `json:"channel_id,string"`
}

type selectionOption struct {
	MessageID int64  `json:"message_id,string"`
	Label     string `json:"label"`
	Score     int    `json:"score"`
}

type beginSelectionResponse struct {
	SessionID string            `json:"session_id"`
	Options   []selectionOption `json:"options"`
}

// Begin handles POST /api/v1/selections. It runs a search and, when it
// matches, opens a session mapping menu options to quotes.
func (h *SelectionHandler) Begin(c echo.Context) error {
	var req beginSelectionRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	var matches []service.Match
	var err error
	switch req.Kind {
	case "content":
		matches, err = h.selector.SearchContent(c.Request().Context(), req.Query)
	case "author":
		matches, err = h.selector.SearchAuthor(c.Request().Context(), req.Query)
	default:
		return Error(c, http.StatusBadRequest, "INVALID_KIND", `kind must be "content" or "author"`)
	}
	if err != nil {
		return mapServiceError(c, err)
	}
	if len(matches) == 0 {
		return Error(c, http.StatusNotFound, "NO_MATCHES", "no quotes matched")
	}

	messageIDs := make([]int64, len(matches))
	options := make([]selectionOption, len(matches))
	for i, m := range matches {
		messageIDs[i] = m.Quote.MessageID
		options[i] = selectionOption{
			MessageID: m.Quote.MessageID,
			Label:     optionLabel(m),
			Score:     m.Score,
		}
	}

	sess, err := h.sessions.Begin(c.Request().Context(), auth.GetUserID(c), req.ChannelID, req.Kind, req.Query, messageIDs)
	if err != nil {
		return Error(c, http.StatusInternalServerError, "INTERNAL", "could not open selection")
	}
	return c.JSON(http.StatusCreated, beginSelectionResponse{SessionID: sess.ID, Options: options})
}

type pickRequest struct {
	Choice int `json:"choice"`
}

// Pick handles POST /api/v1/selections/:id/pick. The picked quote is
// returned and the session ends.
func (h *SelectionHandler) Pick(c echo.Context) error {
	var req pickRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
	}

	messageID, err := h.sessions.Pick(c.Request().Context(), c.Param("id"), auth.GetUserID(c), req.Choice)
	switch {
	case errors.Is(err, selectmenu.ErrSessionNotFound):
		return Error(c, http.StatusNotFound, "SESSION_NOT_FOUND", "selection expired or does not exist")
	case errors.Is(err, selectmenu.ErrNotRequester):
		return Error(c, http.StatusForbidden, "NOT_REQUESTER", "selection belongs to another user")
	case errors.Is(err, selectmenu.ErrBadChoice):
		return Error(c, http.StatusBadRequest, "INVALID_CHOICE", "choice out of range")
	case err != nil:
		return Error(c, http.StatusInternalServerError, "INTERNAL", "could not resolve selection")
	}

	quote, err := h.quotes.Get(c.Request().Context(), messageID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusOK, quote)
}

// Cancel handles DELETE /api/v1/selections/:id.
func (h *SelectionHandler) Cancel(c echo.Context) error {
	if err := h.sessions.End(c.Request().Context(), c.Param("id")); err != nil {
		return Error(c, http.StatusInternalServerError, "INTERNAL", "could not cancel selection")
	}
	return c.NoContent(http.StatusNoContent)
}

// optionLabel renders a select-menu label, truncated to the platform's
// 100-character limit.
func optionLabel(m service.Match) string {
	label := []rune(m.Quote.AuthorName + ": " + m.Quote.Content)
	if len(label) > 100 {
		return string(label[:97]) + "..."
	}
	return string(label)
}
