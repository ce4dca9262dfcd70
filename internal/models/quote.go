package models

import "time"

// Quote is a persisted snapshot of a pinned platform message. Author name
// and content are captured at add time and never re-resolved; the platform
// entities they came from may vanish later.
type Quote struct {
	ID         int64     `json:"id,string"`
	MessageID  int64     `json:"message_id,string"`
	GuildID    int64     `json:"guild_id,string"`
	ChannelID  int64     `json:"channel_id,string"`
	AuthorID   int64     `json:"author_id,string"`
	AuthorName string    `json:"author_name"`
	Content    string    `json:"content"`
	JumpURL    string    `json:"jump_url"`
	AdderID    int64     `json:"adder_id,string"`
	AddedAt    time.Time `json:"added_at"`
}

// IsImageOnly reports whether the quote has no text content. The store and
// selector treat such quotes like any other; only presentation differs.
func (q *Quote) IsImageOnly() bool {
	return q.Content == ""
}

// Author is one distinct quote author.
type Author struct {
	ID   int64  `json:"id,string"`
	Name string `json:"name"`
}
