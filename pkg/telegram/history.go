package telegram

import (
	"context"
	"fmt"
	"io"

	"github.com/gotd/td/tg"

	errs "tgmedia/pkg/errors"
	"tgmedia/pkg/media"
	"tgmedia/pkg/models"
)

const historyBatchSize = 100

// IterateMessages walks the chat history newest first and calls fn for at
// most limit messages. Service and empty messages count toward the limit
// but are not passed to fn.
func (c *Client) IterateMessages(ctx context.Context, chat models.Chat, limit int, fn func(media.Message) error) error {
	peer, err := inputPeer(chat)
	if err != nil {
		return err
	}

	offsetID := 0
	remaining := limit
	for remaining > 0 {
		batch := min(historyBatchSize, remaining)
		page, err := call(ctx, c, func(ctx context.Context) (tg.MessagesMessagesClass, error) {
			return c.api.MessagesGetHistory(ctx, &tg.MessagesGetHistoryRequest{
				Peer:     peer,
				OffsetID: offsetID,
				Limit:    batch,
			})
		})
		if err != nil {
			return fmt.Errorf("failed to get history page at offset %d: %w", offsetID, err)
		}

		modified, ok := page.AsModified()
		if !ok {
			return nil
		}
		messages := modified.GetMessages()
		if len(messages) == 0 {
			return nil
		}

		pageMinID := 0
		for _, mc := range messages {
			id := mc.GetID()
			if pageMinID == 0 || id < pageMinID {
				pageMinID = id
			}
			remaining--

			if msg, ok := mc.(*tg.Message); ok {
				if err := fn(convertMessage(msg)); err != nil {
					return err
				}
			}
			if remaining <= 0 {
				return nil
			}
		}

		if len(messages) < batch || pageMinID <= 1 || pageMinID == offsetID {
			return nil
		}
		offsetID = pageMinID
	}
	return nil
}

// FetchMedia streams the attachment's bytes to w. Flood waits surface as
// rate limit errors so the caller decides how long to pause.
func (c *Client) FetchMedia(ctx context.Context, msg media.Message, w io.Writer) error {
	loc, ok := inputLocation(msg.Attachment)
	if !ok {
		return errs.InvalidInput(fmt.Sprintf("message %d has no downloadable media", msg.ID))
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	if _, err := c.downloader.Download(c.api, loc).Stream(ctx, w); err != nil {
		return mapError(err)
	}
	return nil
}

func inputPeer(chat models.Chat) (tg.InputPeerClass, error) {
	peer, ok := chat.Peer.(tg.InputPeerClass)
	if !ok || peer == nil {
		return nil, errs.InvalidInput(fmt.Sprintf("chat %s was not resolved by this client", chat.DisplayName()))
	}
	return peer, nil
}
