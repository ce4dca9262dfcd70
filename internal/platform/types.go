package platform

import (
	"fmt"
	"strconv"
	"time"
)

// Snowflake is an ID as the chat platform sends it: a decimal string on
// the wire, an int64 everywhere in this codebase.
type Snowflake int64

func (s Snowflake) Int64() int64 { return int64(s) }

func (s Snowflake) String() string { return strconv.FormatInt(int64(s), 10) }

func (s Snowflake) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

func (s *Snowflake) UnmarshalJSON(data []byte) error {
	str := string(data)
	if len(str) >= 2 && str[0] == '"' {
		str = str[1 : len(str)-1]
	}
	if str == "" || str == "null" {
		*s = 0
		return nil
	}
	v, err := strconv.ParseInt(str, 10, 64)
	if err != nil {
		return fmt.Errorf("parsing snowflake %q: %w", str, err)
	}
	*s = Snowflake(v)
	return nil
}

// User is a platform user as returned by the REST API.
type User struct {
	ID       Snowflake `json:"id"`
	Username string    `json:"username"`
	Bot      bool      `json:"bot"`
}

// Attachment is a file attached to a message.
type Attachment struct {
	ID  Snowflake `json:"id"`
	URL string    `json:"url"`
}

// Message is a platform message as returned by the REST API.
type Message struct {
	ID          Snowflake    `json:"id"`
	ChannelID   Snowflake    `json:"channel_id"`
	GuildID     Snowflake    `json:"guild_id,omitempty"`
	Author      User         `json:"author"`
	Content     string       `json:"content"`
	Attachments []Attachment `json:"attachments"`
	Timestamp   time.Time    `json:"timestamp"`
}

// Member is a guild member, carrying the role ids used for admin checks.
type Member struct {
	User  User        `json:"user"`
	Roles []Snowflake `json:"roles"`
}

// HasRole reports whether the member carries the given role.
func (m *Member) HasRole(roleID int64) bool {
	for _, r := range m.Roles {
		if r.Int64() == roleID {
			return true
		}
	}
	return false
}

// JumpURL builds the permanent link to a message.
func JumpURL(guildID, channelID, messageID int64) string {
	return fmt.Sprintf("https://discord.com/channels/%d/%d/%d", guildID, channelID, messageID)
}
