// Package retry runs operations with exponential backoff.
//
// Only errors classified as network or rate limit failures are retried.
// A rate limit error carries the wait the server asked for; Do sleeps at
// least that long and does not count the wait against MaxAttempts.
//
//	page, err := retry.DoWithResult(ctx, func(ctx context.Context) (tg.MessagesMessagesClass, error) {
//		return api.MessagesGetHistory(ctx, req)
//	}, retry.FromConfig(cfg.Retry, log))
package retry
