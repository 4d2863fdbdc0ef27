// Package ratelimit paces Telegram API requests so the client stays under
// the server's flood thresholds. TokenBucket is backed by golang.org/x/time/rate.
package ratelimit
