// Package downloader runs a download pass over collected messages.
//
// For each message, in order:
//
//  1. an ID already in the ledger is Skipped
//  2. album members go to a group_<id> subfolder, others to the chat root
//  3. a file already at the destination is recorded in the ledger and Skipped
//  4. otherwise the media is fetched; success is recorded and Downloaded
//  5. a rate limit pauses the whole pass for the requested time and retries
//     the same message, as often as the server asks
//  6. any other error marks the message Failed and the pass moves on
//
// The ledger is flushed every Options.FlushEvery additions and always at
// the end of the pass.
package downloader
