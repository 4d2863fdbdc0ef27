// Package telegram is the MTProto transport for the downloader, built on
// gotd/td. It signs a user account in, resolves chat references, pages
// through history and streams media bytes.
//
// All requests go through the configured rate limiter. History and
// resolution calls retry transient failures; media fetches do not, since
// the download orchestrator owns the flood wait loop for them.
//
//	client, err := telegram.NewClient(telegram.Config{APIID: id, APIHash: hash, SessionPath: path})
//	err = client.Run(ctx, authenticator, func(ctx context.Context) error {
//	    chat, err := client.Resolve(ctx, "@channel")
//	    ...
//	})
package telegram
