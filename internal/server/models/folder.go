package models

import "time"

// Folder groups assets under a slug. Slugs are path-like ("showroom/doors")
// and unique.
type Folder struct {
	// Slug is the unique, slugified identifier of the folder.
	Slug string
	// Name is the display name the folder was created with.
	Name string
	// ParentSlug is the slug of the parent folder, empty for roots.
	ParentSlug string

	CreatedAt time.Time
}
