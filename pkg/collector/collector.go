package collector

import (
	"context"
	"fmt"
	"slices"
	"strings"

	errs "tgmedia/pkg/errors"
	"tgmedia/pkg/logger"
	"tgmedia/pkg/media"
	"tgmedia/pkg/models"
)

// progressEvery controls how often scan progress is logged
const progressEvery = 100

// Source delivers a chat's history newest first. fn is called once per
// message, service messages included, for at most limit messages.
type Source interface {
	IterateMessages(ctx context.Context, chat models.Chat, limit int, fn func(media.Message) error) error
}

// Order is the sequence in which collected messages are returned
type Order int

const (
	OrderOldest Order = iota
	OrderNewest
)

// ParseOrder parses newest or oldest
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "oldest", "":
		return OrderOldest, nil
	case "newest":
		return OrderNewest, nil
	default:
		return OrderOldest, fmt.Errorf("unknown order %q (newest, oldest)", s)
	}
}

func (o Order) String() string {
	if o == OrderNewest {
		return "newest"
	}
	return "oldest"
}

// Collector selects downloadable messages from a chat's recent history
type Collector struct {
	source Source
	logger logger.Logger
}

// New creates a Collector reading from source
func New(source Source, log logger.Logger) *Collector {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Collector{source: source, logger: log}
}

// Collect scans the limit most recent messages of chat and returns those
// whose attachment matches filter. Newest-first unless order is
// OrderOldest. An empty result is not an error.
func (c *Collector) Collect(ctx context.Context, chat models.Chat, filter media.Filter, limit int, order Order) ([]media.Message, error) {
	if limit <= 0 {
		return nil, errs.InvalidInput(fmt.Sprintf("limit must be positive, got %d", limit))
	}

	c.logger.InfoWithFields("Scanning chat history", map[string]interface{}{
		"chat":   chat.DisplayName(),
		"filter": filter.String(),
		"limit":  limit,
		"order":  order.String(),
	})

	collected := make([]media.Message, 0)
	scanned := 0
	err := c.source.IterateMessages(ctx, chat, limit, func(msg media.Message) error {
		scanned++
		if scanned%progressEvery == 0 {
			logger.LogScanProgress(c.logger, chat.DisplayName(), scanned, len(collected), limit)
		}

		if !msg.HasMedia() {
			return nil
		}
		if filter.Matches(media.Classify(msg.Attachment)) {
			collected = append(collected, msg)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", chat.DisplayName(), err)
	}

	if order == OrderOldest {
		slices.Reverse(collected)
	}

	c.logger.InfoWithFields("Scan complete", map[string]interface{}{
		"chat":    chat.DisplayName(),
		"scanned": scanned,
		"matched": len(collected),
	})
	return collected, nil
}
