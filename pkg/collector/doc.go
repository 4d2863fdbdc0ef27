// Package collector scans a chat's recent history and keeps the messages
// whose media matches the requested type, in the requested order.
package collector
