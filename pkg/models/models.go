package models

import "strconv"

// ChannelIDOffset is added to a channel's entity id before negating it to
// form the marked chat id (-100<id>)
const ChannelIDOffset int64 = 1_000_000_000_000

// ChatKind distinguishes the peer types a chat query can resolve to
type ChatKind string

const (
	ChatKindChannel ChatKind = "channel"
	ChatKindGroup   ChatKind = "group"
	ChatKindUser    ChatKind = "user"
)

// Chat is a resolved remote conversation
type Chat struct {
	ID       int64    `json:"id"`
	Kind     ChatKind `json:"kind"`
	Title    string   `json:"title,omitempty"`
	Username string   `json:"username,omitempty"`

	// Peer is the transport's addressing handle for the chat. It is opaque
	// outside the transport package.
	Peer any `json:"-"`
}

// DisplayName returns a human readable name for the chat
func (c Chat) DisplayName() string {
	switch {
	case c.Title != "":
		return c.Title
	case c.Username != "":
		return "@" + c.Username
	default:
		return strconv.FormatInt(c.ID, 10)
	}
}

// EntityID returns the unmarked id Telegram assigns to the peer itself,
// without the channel or group sign convention
func (c Chat) EntityID() int64 {
	switch {
	case c.ID < -ChannelIDOffset:
		return -c.ID - ChannelIDOffset
	case c.ID < 0:
		return -c.ID
	default:
		return c.ID
	}
}
