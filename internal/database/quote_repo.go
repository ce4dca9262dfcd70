package database

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shihanqu/discord-quote-bot/internal/models"
)

const quoteColumns = `id, message_id, guild_id, channel_id, author_id, author_name, content, jump_url, adder_id, added_at`

type quoteRepo struct {
	pool *pgxpool.Pool
}

func NewQuoteRepository(pool *pgxpool.Pool) QuoteRepository {
	return &quoteRepo{pool: pool}
}

func (r *quoteRepo) Create(ctx context.Context, q *models.Quote) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO quotes (id, message_id, guild_id, channel_id, author_id, author_name, content, jump_url, adder_id, added_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		q.ID, q.MessageID, q.GuildID, q.ChannelID, q.AuthorID, q.AuthorName, q.Content, q.JumpURL, q.AdderID, q.AddedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateKey
	}
	return err
}

func (r *quoteRepo) GetByMessageID(ctx context.Context, messageID int64) (*models.Quote, error) {
	return r.queryOne(ctx,
		`SELECT `+quoteColumns+` FROM quotes WHERE message_id = $1`, messageID)
}

func (r *quoteRepo) GetRandom(ctx context.Context) (*models.Quote, error) {
	return r.queryOne(ctx,
		`SELECT `+quoteColumns+` FROM quotes ORDER BY RANDOM() LIMIT 1`)
}

func (r *quoteRepo) GetRandomExcludingAuthor(ctx context.Context, authorID, channelID int64) (*models.Quote, error) {
	return r.queryOne(ctx,
		`SELECT `+quoteColumns+` FROM quotes
		 WHERE author_id != $1 AND channel_id = $2
		 ORDER BY RANDOM() LIMIT 1`,
		authorID, channelID)
}

func (r *quoteRepo) SearchContent(ctx context.Context, substring string) ([]models.Quote, error) {
	return r.queryMany(ctx,
		`SELECT `+quoteColumns+` FROM quotes WHERE content ILIKE '%' || $1 || '%' ORDER BY id`,
		substring)
}

func (r *quoteRepo) SearchAuthorName(ctx context.Context, substring string) ([]models.Quote, error) {
	return r.queryMany(ctx,
		`SELECT `+quoteColumns+` FROM quotes WHERE author_name ILIKE '%' || $1 || '%' ORDER BY id`,
		substring)
}

func (r *quoteRepo) ListDistinctAuthors(ctx context.Context) ([]models.Author, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT author_id, author_name FROM (
		   SELECT DISTINCT ON (author_id) author_id, author_name
		   FROM quotes ORDER BY author_id, id DESC
		 ) a ORDER BY author_name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var authors []models.Author
	for rows.Next() {
		var a models.Author
		if err := rows.Scan(&a.ID, &a.Name); err != nil {
			return nil, err
		}
		authors = append(authors, a)
	}
	return authors, rows.Err()
}

func (r *quoteRepo) ListByAuthorID(ctx context.Context, authorID int64) ([]models.Quote, error) {
	return r.queryMany(ctx,
		`SELECT `+quoteColumns+` FROM quotes WHERE author_id = $1 ORDER BY id`,
		authorID)
}

func (r *quoteRepo) Delete(ctx context.Context, messageID int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM quotes WHERE message_id = $1`, messageID)
	return err
}

func (r *quoteRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM quotes`).Scan(&n)
	return n, err
}

func (r *quoteRepo) CountExcludingAuthorInChannel(ctx context.Context, authorID, channelID int64) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM quotes WHERE author_id != $1 AND channel_id = $2`,
		authorID, channelID).Scan(&n)
	return n, err
}

func (r *quoteRepo) GetLastAuthor(ctx context.Context, channelID int64) (*int64, error) {
	var authorID int64
	err := r.pool.QueryRow(ctx,
		`SELECT author_id FROM quotes WHERE channel_id = $1 ORDER BY id DESC LIMIT 1`,
		channelID).Scan(&authorID)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &authorID, nil
}

func (r *quoteRepo) queryOne(ctx context.Context, sql string, args ...any) (*models.Quote, error) {
	q := &models.Quote{}
	err := r.pool.QueryRow(ctx, sql, args...).Scan(
		&q.ID, &q.MessageID, &q.GuildID, &q.ChannelID, &q.AuthorID,
		&q.AuthorName, &q.Content, &q.JumpURL, &q.AdderID, &q.AddedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return q, nil
}

func (r *quoteRepo) queryMany(ctx context.Context, sql string, args ...any) ([]models.Quote, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var quotes []models.Quote
	for rows.Next() {
		var q models.Quote
		if err := rows.Scan(
			&q.ID, &q.MessageID, &q.GuildID, &q.ChannelID, &q.AuthorID,
			&q.AuthorName, &q.Content, &q.JumpURL, &q.AdderID, &q.AddedAt,
		); err != nil {
			return nil, err
		}
		quotes = append(quotes, q)
	}
	return quotes, rows.Err()
}
