package models

import (
	"fmt"
	"strconv"
	"strings"
)

// EmojiKind distinguishes custom (uploaded, id-addressed) emoji from
// standard unicode emoji, which only carry a name.
type EmojiKind int

const (
	EmojiStandard EmojiKind = iota
	EmojiCustom
)

// EmojiRef identifies an emoji either by custom id or by standard name.
// Custom emoji are compared by id only; renaming a custom emoji must not
// change which reactions qualify.
type EmojiRef struct {
	Kind EmojiKind `json:"kind"`
	ID   int64     `json:"id,string,omitempty"`
	Name string    `json:"name,omitempty"`
}

// CustomEmoji returns an EmojiRef for an uploaded emoji.
func CustomEmoji(id int64) EmojiRef {
	return EmojiRef{Kind: EmojiCustom, ID: id}
}

// StandardEmoji returns an EmojiRef for a unicode emoji.
func StandardEmoji(name string) EmojiRef {
	return EmojiRef{Kind: EmojiStandard, Name: name}
}

// ParseEmojiRef parses the configuration form of an emoji reference:
// "custom:<id>" for uploaded emoji, anything else is a standard emoji name.
func ParseEmojiRef(s string) (EmojiRef, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return EmojiRef{}, fmt.Errorf("empty emoji reference")
	}
	if raw, ok := strings.CutPrefix(s, "custom:"); ok {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return EmojiRef{}, fmt.Errorf("invalid custom emoji id %q: %w", raw, err)
		}
		return CustomEmoji(id), nil
	}
	return StandardEmoji(s), nil
}

// Matches reports whether two references name the same emoji.
func (e EmojiRef) Matches(other EmojiRef) bool {
	if e.Kind != other.Kind {
		return false
	}
	switch e.Kind {
	case EmojiCustom:
		return e.ID == other.ID
	default:
		return e.Name == other.Name
	}
}

func (e EmojiRef) String() string {
	if e.Kind == EmojiCustom {
		return "custom:" + strconv.FormatInt(e.ID, 10)
	}
	return e.Name
}
