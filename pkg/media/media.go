package media

import (
	"fmt"
	"strings"
)

// Kind is the downloadable category of a message's attachment
type Kind int

const (
	KindNone Kind = iota
	KindPhoto
	KindVideo
)

func (k Kind) String() string {
	switch k {
	case KindPhoto:
		return "photo"
	case KindVideo:
		return "video"
	default:
		return "none"
	}
}

// Attachment is the media carried by a message. The variants are Photo,
// Document and Unsupported.
type Attachment interface {
	attachment()
}

// Photo is a compressed image
type Photo struct {
	ID            int64
	AccessHash    int64
	FileReference []byte
	DCID          int
	// SizeType is the thumbnail type of the largest available size
	SizeType string
	Size     int64
}

// Document is any file attachment. Video is set when the document
// carries video attributes.
type Document struct {
	ID            int64
	AccessHash    int64
	FileReference []byte
	DCID          int
	MimeType      string
	FileName      string
	Size          int64
	Video         *VideoAttributes
}

// VideoAttributes describe a playable video document
type VideoAttributes struct {
	Duration     float64
	Width        int
	Height       int
	RoundMessage bool
}

// Unsupported is media the downloader never fetches (polls, contacts,
// geo points, web pages without a preview photo and similar)
type Unsupported struct {
	Type string
}

// Fetchable reports whether the photo carries a location to download from.
// A photo envelope whose body was removed has none.
func (p *Photo) Fetchable() bool {
	return p.ID != 0 && p.SizeType != ""
}

func (*Photo) attachment()       {}
func (*Document) attachment()    {}
func (*Unsupported) attachment() {}

// Message is a history entry reduced to what the downloader needs
type Message struct {
	ID int
	// GroupID is non-zero when the message belongs to an album
	GroupID    int64
	Attachment Attachment
}

// HasMedia reports whether the message carries any attachment
func (m Message) HasMedia() bool {
	return m.Attachment != nil
}

// InAlbum reports whether the message is part of a grouped album
func (m Message) InAlbum() bool {
	return m.GroupID != 0
}

// Size returns the declared byte size of the attachment, or zero
func (m Message) Size() int64 {
	switch a := m.Attachment.(type) {
	case *Photo:
		return a.Size
	case *Document:
		return a.Size
	default:
		return 0
	}
}

// Classify maps an attachment to its downloadable kind. Only photos and
// documents with video attributes are downloadable.
func Classify(att Attachment) Kind {
	switch a := att.(type) {
	case *Photo:
		return KindPhoto
	case *Document:
		if a.Video != nil {
			return KindVideo
		}
		return KindNone
	case *Unsupported, nil:
		return KindNone
	default:
		return KindNone
	}
}

// Filter selects which kinds a pass collects
type Filter int

const (
	FilterBoth Filter = iota
	FilterPhotos
	FilterVideos
)

// ParseFilter parses photos, videos or both
func ParseFilter(s string) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "photos", "photo":
		return FilterPhotos, nil
	case "videos", "video":
		return FilterVideos, nil
	case "both", "":
		return FilterBoth, nil
	default:
		return FilterBoth, fmt.Errorf("unknown media type %q (photos, videos, both)", s)
	}
}

func (f Filter) String() string {
	switch f {
	case FilterPhotos:
		return "photos"
	case FilterVideos:
		return "videos"
	default:
		return "both"
	}
}

// Matches reports whether kind is selected by the filter. KindNone never matches.
func (f Filter) Matches(kind Kind) bool {
	switch kind {
	case KindPhoto:
		return f == FilterPhotos || f == FilterBoth
	case KindVideo:
		return f == FilterVideos || f == FilterBoth
	default:
		return false
	}
}
