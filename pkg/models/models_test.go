package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChatDisplayName(t *testing.T) {
	tests := []struct {
		name string
		chat Chat
		want string
	}{
		{"title wins", Chat{ID: 1, Title: "News", Username: "news"}, "News"},
		{"username", Chat{ID: 1, Username: "news"}, "@news"},
		{"id only", Chat{ID: -1001234}, "-1001234"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.chat.DisplayName())
		})
	}
}

func TestChatEntityID(t *testing.T) {
	tests := []struct {
		name string
		id   int64
		want int64
	}{
		{"channel", -1001234567890, 1234567890},
		{"small channel", -1000000000042, 42},
		{"basic group", -4567, 4567},
		{"user", 777000, 777000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Chat{ID: tt.id}.EntityID())
		})
	}
}
