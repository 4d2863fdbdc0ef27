package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gotd/td/telegram/query"
	"github.com/gotd/td/telegram/query/dialogs"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"

	errs "tgmedia/pkg/errors"
	"tgmedia/pkg/models"
)

type queryKind int

const (
	queryUsername queryKind = iota
	queryInvite
	queryID
)

// chatQuery is a parsed user-entered chat reference
type chatQuery struct {
	kind     queryKind
	username string
	hash     string
	id       int64
}

var linkPrefixes = []string{"https://", "http://"}
var linkHosts = []string{"t.me/", "telegram.me/", "telegram.dog/"}

// parseQuery recognises invite links, public links, @usernames, bare
// usernames and numeric chat ids
func parseQuery(raw string) (chatQuery, error) {
	q := strings.TrimSpace(raw)
	if q == "" {
		return chatQuery{}, errs.InvalidInput("chat query is empty")
	}

	if i := strings.Index(q, "t.me/+"); i >= 0 {
		return inviteQuery(q[i+len("t.me/+"):])
	}
	if i := strings.Index(q, "t.me/joinchat/"); i >= 0 {
		return inviteQuery(q[i+len("t.me/joinchat/"):])
	}

	link := q
	for _, p := range linkPrefixes {
		link = strings.TrimPrefix(link, p)
	}
	for _, h := range linkHosts {
		if strings.HasPrefix(link, h) {
			name := trimLinkTail(strings.TrimPrefix(link, h))
			if name == "" {
				return chatQuery{}, errs.InvalidInput(fmt.Sprintf("link %q has no chat name", raw))
			}
			return chatQuery{kind: queryUsername, username: name}, nil
		}
	}

	if id, err := strconv.ParseInt(q, 10, 64); err == nil {
		if id == 0 {
			return chatQuery{}, errs.InvalidInput("chat id cannot be zero")
		}
		return chatQuery{kind: queryID, id: id}, nil
	}

	name := strings.TrimPrefix(q, "@")
	if name == "" || strings.ContainsAny(name, " /") {
		return chatQuery{}, errs.InvalidInput(fmt.Sprintf("%q is not a username, link or chat id", raw))
	}
	return chatQuery{kind: queryUsername, username: name}, nil
}

func inviteQuery(rest string) (chatQuery, error) {
	hash := trimLinkTail(rest)
	if hash == "" {
		return chatQuery{}, errs.InvalidInput("invite link has no hash")
	}
	return chatQuery{kind: queryInvite, hash: hash}, nil
}

// trimLinkTail drops a trailing path, query string or fragment
func trimLinkTail(s string) string {
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	return s
}

// Resolve turns a user-entered chat reference into a chat handle. Invite
// links are joined first. Every failure wraps ErrUnresolvable.
func (c *Client) Resolve(ctx context.Context, raw string) (models.Chat, error) {
	q, err := parseQuery(raw)
	if err != nil {
		return models.Chat{}, fmt.Errorf("%w: %w", ErrUnresolvable, err)
	}

	var chat models.Chat
	switch q.kind {
	case queryInvite:
		chat, err = c.joinInvite(ctx, q.hash)
	case queryID:
		chat, err = c.findDialog(ctx, q.id)
	default:
		chat, err = c.resolveUsername(ctx, q.username)
	}
	if err != nil {
		return models.Chat{}, fmt.Errorf("%w %q: %w", ErrUnresolvable, raw, err)
	}

	c.logger.WithFields(map[string]interface{}{
		"chat_id": chat.ID,
		"kind":    chat.Kind,
		"name":    chat.DisplayName(),
	}).Info("Resolved chat")
	return chat, nil
}

func (c *Client) resolveUsername(ctx context.Context, username string) (models.Chat, error) {
	res, err := call(ctx, c, func(ctx context.Context) (*tg.ContactsResolvedPeer, error) {
		return c.api.ContactsResolveUsername(ctx, &tg.ContactsResolveUsernameRequest{Username: username})
	})
	if err != nil {
		return models.Chat{}, err
	}

	switch p := res.Peer.(type) {
	case *tg.PeerUser:
		for _, uc := range res.Users {
			if u, ok := uc.(*tg.User); ok && u.ID == p.UserID {
				return chatFromUser(u), nil
			}
		}
	case *tg.PeerChannel:
		for _, cc := range res.Chats {
			if cc.GetID() == p.ChannelID {
				if chat, ok := chatFromClass(cc); ok {
					return chat, nil
				}
			}
		}
	case *tg.PeerChat:
		for _, cc := range res.Chats {
			if cc.GetID() == p.ChatID {
				if chat, ok := chatFromClass(cc); ok {
					return chat, nil
				}
			}
		}
	}
	return models.Chat{}, errs.NotFound(fmt.Sprintf("@%s is not accessible", username), nil)
}

// joinInvite imports an invite link. When the account is already a member
// the invite is checked instead to find the chat.
func (c *Client) joinInvite(ctx context.Context, hash string) (models.Chat, error) {
	updates, err := call(ctx, c, func(ctx context.Context) (tg.UpdatesClass, error) {
		return c.api.MessagesImportChatInvite(ctx, hash)
	})
	if err == nil {
		for _, cc := range updatesChats(updates) {
			if chat, ok := chatFromClass(cc); ok {
				c.logger.WithField("chat", chat.DisplayName()).Info("Joined chat from invite link")
				return chat, nil
			}
		}
		return models.Chat{}, errs.NotFound("invite link did not return a chat", nil)
	}
	if !tgerr.Is(err, "USER_ALREADY_PARTICIPANT") {
		return models.Chat{}, err
	}

	invite, err := call(ctx, c, func(ctx context.Context) (tg.ChatInviteClass, error) {
		return c.api.MessagesCheckChatInvite(ctx, hash)
	})
	if err != nil {
		return models.Chat{}, err
	}
	switch inv := invite.(type) {
	case *tg.ChatInviteAlready:
		if chat, ok := chatFromClass(inv.Chat); ok {
			return chat, nil
		}
	case *tg.ChatInvitePeek:
		if chat, ok := chatFromClass(inv.Chat); ok {
			return chat, nil
		}
	}
	return models.Chat{}, errs.NotFound("invite link points to a chat that is not joined", nil)
}

func updatesChats(u tg.UpdatesClass) []tg.ChatClass {
	switch v := u.(type) {
	case *tg.Updates:
		return v.Chats
	case *tg.UpdatesCombined:
		return v.Chats
	default:
		return nil
	}
}

var errDialogFound = errors.New("dialog found")

// findDialog looks a numeric id up among the account's dialogs, which is
// the only place an access hash for an arbitrary id can come from
func (c *Client) findDialog(ctx context.Context, id int64) (models.Chat, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return models.Chat{}, err
	}

	var found models.Chat
	err := query.GetDialogs(c.api).BatchSize(100).ForEach(ctx, func(_ context.Context, elem dialogs.Elem) error {
		chat, ok := chatFromDialog(elem)
		if !ok || chat.ID != id {
			return nil
		}
		found = chat
		return errDialogFound
	})
	switch {
	case errors.Is(err, errDialogFound):
		return found, nil
	case err != nil:
		return models.Chat{}, mapError(err)
	default:
		return models.Chat{}, errs.NotFound(fmt.Sprintf("no dialog with id %d", id), nil)
	}
}

func chatFromDialog(elem dialogs.Elem) (models.Chat, bool) {
	switch peer := elem.Dialog.GetPeer().(type) {
	case *tg.PeerUser:
		user, ok := elem.Entities.User(peer.UserID)
		if !ok || user == nil {
			return models.Chat{}, false
		}
		chat := chatFromUser(user)
		chat.Peer = elem.Peer
		return chat, true
	case *tg.PeerChat:
		group, ok := elem.Entities.Chat(peer.ChatID)
		if !ok || group == nil {
			return models.Chat{}, false
		}
		return chatFromClass(group)
	case *tg.PeerChannel:
		channel, ok := elem.Entities.Channel(peer.ChannelID)
		if !ok || channel == nil {
			return models.Chat{}, false
		}
		return chatFromClass(channel)
	}
	return models.Chat{}, false
}
