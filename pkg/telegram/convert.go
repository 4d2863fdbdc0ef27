package telegram

import (
	"github.com/gotd/td/tg"

	"tgmedia/pkg/media"
	"tgmedia/pkg/models"
)

// convertMessage reduces a history message to the fields the downloader
// needs. The attachment variant is decided here, once.
func convertMessage(msg *tg.Message) media.Message {
	out := media.Message{ID: msg.ID}
	if gid, ok := msg.GetGroupedID(); ok {
		out.GroupID = gid
	}
	if mc, ok := msg.GetMedia(); ok {
		out.Attachment = convertMedia(mc)
	}
	return out
}

func convertMedia(mc tg.MessageMediaClass) media.Attachment {
	switch m := mc.(type) {
	case *tg.MessageMediaEmpty:
		return nil
	case *tg.MessageMediaPhoto:
		// A photo envelope is a photo even when its body is gone; the
		// fetch then fails and is reported for that message.
		pc, ok := m.GetPhoto()
		if !ok {
			return &media.Photo{}
		}
		return convertPhotoClass(pc)
	case *tg.MessageMediaWebPage:
		page, ok := m.Webpage.(*tg.WebPage)
		if !ok {
			return &media.Unsupported{Type: m.TypeName()}
		}
		pc, ok := page.GetPhoto()
		if !ok {
			return &media.Unsupported{Type: m.TypeName()}
		}
		return convertPhotoClass(pc)
	case *tg.MessageMediaDocument:
		dc, ok := m.GetDocument()
		if !ok {
			return &media.Unsupported{Type: m.TypeName()}
		}
		doc, ok := dc.AsNotEmpty()
		if !ok {
			return &media.Unsupported{Type: m.TypeName()}
		}
		return convertDocument(doc)
	default:
		return &media.Unsupported{Type: mc.TypeName()}
	}
}

func convertPhotoClass(pc tg.PhotoClass) media.Attachment {
	photo, ok := pc.AsNotEmpty()
	if !ok {
		return &media.Photo{}
	}
	return convertPhoto(photo)
}

func convertPhoto(photo *tg.Photo) media.Attachment {
	sizeType, size, ok := largestPhotoSize(photo.Sizes)
	if !ok {
		return &media.Photo{ID: photo.ID}
	}
	return &media.Photo{
		ID:            photo.ID,
		AccessHash:    photo.AccessHash,
		FileReference: photo.FileReference,
		DCID:          photo.DCID,
		SizeType:      sizeType,
		Size:          size,
	}
}

// largestPhotoSize picks the downloadable size with the biggest side.
// Cached and stripped thumbnails are inline and never fetched.
func largestPhotoSize(sizes []tg.PhotoSizeClass) (string, int64, bool) {
	var (
		bestType string
		bestSize int64
		bestDim  = -1
	)
	for _, s := range sizes {
		var (
			typ  string
			dim  int
			size int64
		)
		switch v := s.(type) {
		case *tg.PhotoSize:
			typ, dim, size = v.Type, max(v.W, v.H), int64(v.Size)
		case *tg.PhotoSizeProgressive:
			typ, dim = v.Type, max(v.W, v.H)
			if n := len(v.Sizes); n > 0 {
				size = int64(v.Sizes[n-1])
			}
		default:
			continue
		}
		if dim > bestDim {
			bestType, bestSize, bestDim = typ, size, dim
		}
	}
	return bestType, bestSize, bestDim >= 0
}

func convertDocument(doc *tg.Document) media.Attachment {
	out := &media.Document{
		ID:            doc.ID,
		AccessHash:    doc.AccessHash,
		FileReference: doc.FileReference,
		DCID:          doc.DCID,
		MimeType:      doc.MimeType,
		Size:          doc.Size,
	}
	for _, attr := range doc.Attributes {
		switch a := attr.(type) {
		case *tg.DocumentAttributeFilename:
			out.FileName = a.FileName
		case *tg.DocumentAttributeVideo:
			out.Video = &media.VideoAttributes{
				Duration:     a.Duration,
				Width:        a.W,
				Height:       a.H,
				RoundMessage: a.RoundMessage,
			}
		}
	}
	return out
}

// inputLocation builds the file location for a downloadable attachment
func inputLocation(att media.Attachment) (tg.InputFileLocationClass, bool) {
	switch a := att.(type) {
	case *media.Photo:
		if !a.Fetchable() {
			return nil, false
		}
		return &tg.InputPhotoFileLocation{
			ID:            a.ID,
			AccessHash:    a.AccessHash,
			FileReference: a.FileReference,
			ThumbSize:     a.SizeType,
		}, true
	case *media.Document:
		return &tg.InputDocumentFileLocation{
			ID:            a.ID,
			AccessHash:    a.AccessHash,
			FileReference: a.FileReference,
		}, true
	default:
		return nil, false
	}
}

// chatFromClass converts a group or channel entity. Forbidden entities
// are not reachable and report false.
func chatFromClass(cc tg.ChatClass) (models.Chat, bool) {
	switch c := cc.(type) {
	case *tg.Chat:
		return models.Chat{
			ID:    -c.ID,
			Kind:  models.ChatKindGroup,
			Title: c.Title,
			Peer:  &tg.InputPeerChat{ChatID: c.ID},
		}, true
	case *tg.Channel:
		kind := models.ChatKindChannel
		if c.Megagroup {
			kind = models.ChatKindGroup
		}
		return models.Chat{
			ID:       -(models.ChannelIDOffset + c.ID),
			Kind:     kind,
			Title:    c.Title,
			Username: c.Username,
			Peer:     &tg.InputPeerChannel{ChannelID: c.ID, AccessHash: c.AccessHash},
		}, true
	default:
		return models.Chat{}, false
	}
}

// chatFromUser converts a user peer. Users carry no title, so their folder
// falls back to the username or the numeric id.
func chatFromUser(u *tg.User) models.Chat {
	return models.Chat{
		ID:       u.ID,
		Kind:     models.ChatKindUser,
		Username: u.Username,
		Peer:     &tg.InputPeerUser{UserID: u.ID, AccessHash: u.AccessHash},
	}
}
