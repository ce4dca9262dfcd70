package service

import (
	"context"
	"math/rand"
	"sort"
	"strings"
	"sync"

	"github.com/shihanqu/discord-quote-bot/internal/database"
	"github.com/shihanqu/discord-quote-bot/internal/models"
	"github.com/shihanqu/discord-quote-bot/internal/snowflake"
)

func testSnowflake() *snowflake.Generator {
	sf, _ := snowflake.NewGenerator(1)
	return sf
}

// memQuoteRepo is an in-memory QuoteRepository for service tests. Setting
// failWith makes every call return that error, for storage-failure paths.
type memQuoteRepo struct {
	mu       sync.Mutex
	quotes   []models.Quote
	failWith error
}

var _ database.QuoteRepository = (*memQuoteRepo)(nil)

func (m *memQuoteRepo) Create(_ context.Context, q *models.Quote) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	for i := range m.quotes {
		if m.quotes[i].MessageID == q.MessageID {
			return database.ErrDuplicateKey
		}
	}
	m.quotes = append(m.quotes, *q)
	return nil
}

func (m *memQuoteRepo) GetByMessageID(_ context.Context, messageID int64) (*models.Quote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	for i := range m.quotes {
		if m.quotes[i].MessageID == messageID {
			q := m.quotes[i]
			return &q, nil
		}
	}
	return nil, nil
}

func (m *memQuoteRepo) GetRandom(_ context.Context) (*models.Quote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	if len(m.quotes) == 0 {
		return nil, nil
	}
	q := m.quotes[rand.Intn(len(m.quotes))]
	return &q, nil
}

func (m *memQuoteRepo) GetRandomExcludingAuthor(_ context.Context, authorID, channelID int64) (*models.Quote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	var candidates []models.Quote
	for _, q := range m.quotes {
		if q.AuthorID != authorID && q.ChannelID == channelID {
			candidates = append(candidates, q)
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	q := candidates[rand.Intn(len(candidates))]
	return &q, nil
}

func (m *memQuoteRepo) SearchContent(_ context.Context, substring string) ([]models.Quote, error) {
	return m.search(substring, func(q *models.Quote) string { return q.Content })
}

func (m *memQuoteRepo) SearchAuthorName(_ context.Context, substring string) ([]models.Quote, error) {
	return m.search(substring, func(q *models.Quote) string { return q.AuthorName })
}

func (m *memQuoteRepo) search(substring string, key func(*models.Quote) string) ([]models.Quote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	needle := strings.ToLower(substring)
	var out []models.Quote
	for i := range m.quotes {
		if strings.Contains(strings.ToLower(key(&m.quotes[i])), needle) {
			out = append(out, m.quotes[i])
		}
	}
	return out, nil
}

func (m *memQuoteRepo) ListDistinctAuthors(_ context.Context) ([]models.Author, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	seen := make(map[int64]bool)
	var authors []models.Author
	for _, q := range m.quotes {
		if !seen[q.AuthorID] {
			seen[q.AuthorID] = true
			authors = append(authors, models.Author{ID: q.AuthorID, Name: q.AuthorName})
		}
	}
	sort.Slice(authors, func(i, j int) bool { return authors[i].Name < authors[j].Name })
	return authors, nil
}

func (m *memQuoteRepo) ListByAuthorID(_ context.Context, authorID int64) ([]models.Quote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	var out []models.Quote
	for _, q := range m.quotes {
		if q.AuthorID == authorID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (m *memQuoteRepo) Delete(_ context.Context, messageID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	for i := range m.quotes {
		if m.quotes[i].MessageID == messageID {
			m.quotes = append(m.quotes[:i], m.quotes[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *memQuoteRepo) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return 0, m.failWith
	}
	return int64(len(m.quotes)), nil
}

func (m *memQuoteRepo) CountExcludingAuthorInChannel(_ context.Context, authorID, channelID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return 0, m.failWith
	}
	var n int64
	for _, q := range m.quotes {
		if q.AuthorID != authorID && q.ChannelID == channelID {
			n++
		}
	}
	return n, nil
}

func (m *memQuoteRepo) GetLastAuthor(_ context.Context, channelID int64) (*int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	var last *int64
	var lastID int64
	for _, q := range m.quotes {
		if q.ChannelID == channelID && q.ID > lastID {
			lastID = q.ID
			author := q.AuthorID
			last = &author
		}
	}
	return last, nil
}
