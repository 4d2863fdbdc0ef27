package ledger

import (
	"encoding/json"
	"sort"
	"strconv"

	"tgmedia/pkg/models"
)

// FileName is the name of the ledger file inside a chat folder
const FileName = "_downloaded.json"

// Ledger is the set of message IDs already downloaded for one chat
type Ledger struct {
	ChatID   *int64
	ChatName string
	ids      map[int]struct{}
}

// New returns an empty ledger
func New() *Ledger {
	return &Ledger{ids: make(map[int]struct{})}
}

// Contains reports whether id was already downloaded
func (l *Ledger) Contains(id int) bool {
	_, ok := l.ids[id]
	return ok
}

// Add records id and reports whether it was new
func (l *Ledger) Add(id int) bool {
	if l.ids == nil {
		l.ids = make(map[int]struct{})
	}
	if _, ok := l.ids[id]; ok {
		return false
	}
	l.ids[id] = struct{}{}
	return true
}

// Len returns the number of recorded IDs
func (l *Ledger) Len() int {
	return len(l.ids)
}

// IDs returns the recorded IDs in ascending order
func (l *Ledger) IDs() []int {
	ids := make([]int, 0, len(l.ids))
	for id := range l.ids {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// SetChat stores the chat identity alongside the IDs. The id is the
// unmarked entity id. The name is the title, then the username, then
// that id.
func (l *Ledger) SetChat(chat models.Chat) {
	id := chat.EntityID()
	l.ChatID = &id
	switch {
	case chat.Title != "":
		l.ChatName = chat.Title
	case chat.Username != "":
		l.ChatName = chat.Username
	default:
		l.ChatName = strconv.FormatInt(id, 10)
	}
}

type ledgerFile struct {
	ChatID        *int64 `json:"chat_id"`
	ChatName      string `json:"chat_name"`
	DownloadedIDs []int  `json:"downloaded_ids"`
}

// MarshalJSON writes the on-disk form with sorted, unique IDs
func (l *Ledger) MarshalJSON() ([]byte, error) {
	return json.Marshal(ledgerFile{
		ChatID:        l.ChatID,
		ChatName:      l.ChatName,
		DownloadedIDs: l.IDs(),
	})
}

// UnmarshalJSON reads the on-disk form; duplicate IDs collapse
func (l *Ledger) UnmarshalJSON(data []byte) error {
	var f ledgerFile
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	l.ChatID = f.ChatID
	l.ChatName = f.ChatName
	l.ids = make(map[int]struct{}, len(f.DownloadedIDs))
	for _, id := range f.DownloadedIDs {
		l.ids[id] = struct{}{}
	}
	return nil
}
