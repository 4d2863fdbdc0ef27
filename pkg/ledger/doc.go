// Package ledger persists, per chat folder, the message IDs whose media has
// already been downloaded. The file is the single source of truth for
// deduplication across runs:
//
//	{
//	  "chat_id": -1001234567890,
//	  "chat_name": "Example Channel",
//	  "downloaded_ids": [3, 7, 12]
//	}
//
// Writes go through a temp file and a rename so a crash never leaves a torn
// ledger behind. Reads are tolerant: anything unparsable is an empty ledger.
package ledger
