package service

import (
	"context"
	"sort"
	"strings"
	"sync"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"github.com/shihanqu/discord-quote-bot/internal/database"
	"github.com/shihanqu/discord-quote-bot/internal/models"
)

const maxSearchResults = 25

// Scorer rates the similarity of a query against a candidate string on a
// 0-100 scale. Both arguments arrive lowercased.
type Scorer func(query, candidate string) int

// Match pairs a quote with its similarity score.
type Match struct {
	Quote models.Quote `json:"quote"`
	Score int          `json:"score"`
}

// SelectorConfig tunes selection policy. Zero thresholds fall back to the
// defaults (50 for content, 60 for author names).
type SelectorConfig struct {
	ContentThreshold int
	AuthorThreshold  int
	RepeatAvoidance  bool
	Scorer           Scorer
}

// Selector turns query intents into store calls and, for fuzzy queries,
// ranks the candidates. It owns the per-channel "last shown author" state
// used for repeat avoidance: process-wide, reset on restart, best-effort.
type Selector struct {
	quotes database.QuoteRepository
	cfg    SelectorConfig

	mu        sync.Mutex
	lastShown map[int64]int64 // channel id -> author id of last shown quote
}

// NewSelector creates a Selector over the given store.
func NewSelector(quotes database.QuoteRepository, cfg SelectorConfig) *Selector {
	if cfg.ContentThreshold <= 0 {
		cfg.ContentThreshold = 50
	}
	if cfg.AuthorThreshold <= 0 {
		cfg.AuthorThreshold = 60
	}
	if cfg.Scorer == nil {
		cfg.Scorer = func(query, candidate string) int {
			return fuzzy.TokenSetRatio(query, candidate)
		}
	}
	return &Selector{
		quotes:    quotes,
		cfg:       cfg,
		lastShown: make(map[int64]int64),
	}
}

// RandomQuote picks a uniform-random quote for a channel. With repeat
// avoidance on, it first tries to exclude the author shown last in that
// channel and falls back to an unconstrained pick when the exclusion
// leaves nothing. A nil result means the store is empty, not an error.
func (s *Selector) RandomQuote(ctx context.Context, channelID int64) (*models.Quote, error) {
	quote, err := s.pickRandom(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if quote != nil {
		s.mu.Lock()
		s.lastShown[channelID] = quote.AuthorID
		s.mu.Unlock()
	}
	return quote, nil
}

func (s *Selector) pickRandom(ctx context.Context, channelID int64) (*models.Quote, error) {
	if !s.cfg.RepeatAvoidance {
		return s.random(ctx)
	}

	s.mu.Lock()
	lastAuthor, haveLast := s.lastShown[channelID]
	s.mu.Unlock()
	if !haveLast {
		return s.random(ctx)
	}

	quote, err := s.quotes.GetRandomExcludingAuthor(ctx, lastAuthor, channelID)
	if err != nil {
		return nil, StorageUnavailable(err)
	}
	if quote != nil {
		return quote, nil
	}
	// Channel has quotes only from the last author, or none at all.
	return s.random(ctx)
}

func (s *Selector) random(ctx context.Context) (*models.Quote, error) {
	quote, err := s.quotes.GetRandom(ctx)
	if err != nil {
		return nil, StorageUnavailable(err)
	}
	return quote, nil
}

// SearchContent runs a fuzzy search over quote text: a substring pre-filter
// in the store, then similarity ranking. Only rows containing the literal
// query substring reach ranking.
func (s *Selector) SearchContent(ctx context.Context, term string) ([]Match, error) {
	if strings.TrimSpace(term) == "" {
		return nil, BadRequest("INVALID_QUERY", "search term must not be empty")
	}
	candidates, err := s.quotes.SearchContent(ctx, term)
	if err != nil {
		return nil, StorageUnavailable(err)
	}
	return s.rank(term, candidates, s.cfg.ContentThreshold, func(q *models.Quote) string {
		return q.Content
	}), nil
}

// SearchAuthor runs a fuzzy search over author display names.
func (s *Selector) SearchAuthor(ctx context.Context, term string) ([]Match, error) {
	if strings.TrimSpace(term) == "" {
		return nil, BadRequest("INVALID_QUERY", "search term must not be empty")
	}
	candidates, err := s.quotes.SearchAuthorName(ctx, term)
	if err != nil {
		return nil, StorageUnavailable(err)
	}
	return s.rank(term, candidates, s.cfg.AuthorThreshold, func(q *models.Quote) string {
		return q.AuthorName
	}), nil
}

// rank scores every candidate before truncating: which 25 survive depends
// on score order, so the full set must be ranked first. Ties keep their
// retrieval order.
func (s *Selector) rank(term string, candidates []models.Quote, threshold int, key func(*models.Quote) string) []Match {
	query := strings.ToLower(term)
	matches := make([]Match, 0, len(candidates))
	for i := range candidates {
		score := s.cfg.Scorer(query, strings.ToLower(key(&candidates[i])))
		if score < threshold {
			continue
		}
		matches = append(matches, Match{Quote: candidates[i], Score: score})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > maxSearchResults {
		matches = matches[:maxSearchResults]
	}
	return matches
}
