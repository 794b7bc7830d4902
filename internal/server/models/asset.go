// Package models defines server-side data models persisted in the database.
package models

import "time"

// Asset describes server-side metadata for an image stored in the CDN.
// The binary itself lives in object storage under the asset id; the row
// here only becomes Committed after the client confirms a successful
// upload with the final metadata.
type Asset struct {
	// ID is the CDN-wide asset id: "<folder-slug>/<local-id>".
	ID string
	// Folder is the slug of the folder the asset belongs to.
	Folder string
	// FileName is the original file name on the client.
	FileName string

	SizeBytes int64
	MimeType  string
	Width     int
	Height    int

	// Profile is the delivery profile the asset was uploaded under.
	Profile string

	// Committed is set once metadata has been confirmed after upload.
	// Pending rows (intent issued, upload not confirmed) stay false.
	Committed bool

	CreatedAt   time.Time
	CommittedAt *time.Time
}
