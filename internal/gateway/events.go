package gateway

import (
	"encoding/json"

	"github.com/shihanqu/discord-quote-bot/internal/models"
	"github.com/shihanqu/discord-quote-bot/internal/platform"
)

// Op codes for gateway payloads.
const (
	OpDispatch     = 0
	OpHeartbeat    = 1
	OpIdentify     = 2
	OpResume         = 6
	OpReconnect      = 7
	OpInvalidSession = 9
	OpHello          = 10
	OpHeartbeatAck   = 11
)

// Event names for DISPATCH payloads the bot cares about.
const (
	EventReady              = "READY"
	EventMessageDelete      = "MESSAGE_DELETE"
	EventMessageReactionAdd = "MESSAGE_REACTION_ADD"
)

// Payload is the envelope for all gateway messages.
type Payload struct {
	Op       int             `json:"op"`
	Data     json.RawMessage `json:"d,omitempty"`
	Sequence *int64          `json:"s,omitempty"`
	Event    *string         `json:"t,omitempty"`
}

// IdentifyData is sent in an Op 2 IDENTIFY.
type IdentifyData struct {
	Token   string `json:"token"`
	Intents int64  `json:"intents"`
}

// ResumeData is sent in an Op 6 RESUME.
type ResumeData struct {
	Token     string `json:"token"`
	SessionID string `json:"session_id"`
	Sequence  int64  `json:"seq"`
}

// HelloData is sent by the server after WebSocket connect.
type HelloData struct {
	HeartbeatInterval int `json:"heartbeat_interval"`
}

// ReadyData is sent by the server after successful IDENTIFY.
type ReadyData struct {
	SessionID string        `json:"session_id"`
	User      platform.User `json:"user"`
}

// EmojiData is the emoji fragment in reaction events. Standard emoji carry
// only a name; custom emoji carry a non-null id.
type EmojiData struct {
	ID   *platform.Snowflake `json:"id"`
	Name string              `json:"name"`
}

// Ref converts the wire fragment into an emoji reference.
func (e EmojiData) Ref() models.EmojiRef {
	if e.ID != nil {
		return models.CustomEmoji(e.ID.Int64())
	}
	return models.StandardEmoji(e.Name)
}

// ReactionAddData is the payload for MESSAGE_REACTION_ADD events.
type ReactionAddData struct {
	UserID    platform.Snowflake `json:"user_id"`
	ChannelID platform.Snowflake `json:"channel_id"`
	MessageID platform.Snowflake `json:"message_id"`
	GuildID   platform.Snowflake `json:"guild_id"`
	Emoji     EmojiData          `json:"emoji"`
}

// MessageDeleteData is the payload for MESSAGE_DELETE events.
type MessageDeleteData struct {
	ID        platform.Snowflake `json:"id"`
	ChannelID platform.Snowflake `json:"channel_id"`
	GuildID   platform.Snowflake `json:"guild_id"`
}
