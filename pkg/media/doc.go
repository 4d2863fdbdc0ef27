// Package media models message attachments and decides which of them are
// downloadable photos or videos.
package media
