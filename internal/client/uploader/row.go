// Package uploader implements the direct-upload pipeline: batched intent
// creation against the control plane, sequential byte transfer to one-time
// storage URLs with a bounded conflict-retry ladder, and metadata commit
// for every stored asset.
package uploader

import (
	"fmt"
	"path"
	"strings"

	"github.com/mkraev/atelier/internal/common"
)

// Mode controls how the control plane treats a target folder that already
// exists.
type Mode string

const (
	// ModeOverride reuses existing asset ids, replacing stored bytes.
	ModeOverride Mode = "override"
	// ModeCopy keeps existing assets and lets the server rename the
	// target folder on collision.
	ModeCopy Mode = "copy"
)

// Profile selects the transform applied by storage when serving an asset.
type Profile string

const (
	ProfileOriginal Profile = "original"
	ProfileHigh     Profile = "high"
	ProfileWeb      Profile = "web"
	ProfileLow      Profile = "low"
	ProfileCustom   Profile = "custom"
)

// ResolutionCategory is a coarse bucket derived from pixel count and file
// size, used to pick a default profile.
type ResolutionCategory string

const (
	ResolutionHigh ResolutionCategory = "high"
	ResolutionWeb  ResolutionCategory = "web"
	ResolutionLow  ResolutionCategory = "low"
)

// Transform describes a custom serving transform for a single row.
type Transform struct {
	Width   uint   `json:"width,omitempty"`
	Height  uint   `json:"height,omitempty"`
	Quality uint   `json:"quality,omitempty"`
	Format  string `json:"format,omitempty"`
}

// Row is one local file pending upload.
//
// ID is derived deterministically from the folder hierarchy and file name,
// so uploading the same path twice collides predictably instead of
// accumulating duplicates.
type Row struct {
	ID                 string
	RootSlug           string
	RelativePath       string
	FileName           string
	Path               string // absolute local path the bytes are read from
	SizeBytes          uint64
	MimeType           string
	Width              uint
	Height             uint
	Extension          string
	ResolutionCategory ResolutionCategory
	Profile            Profile
	CustomTransform    *Transform
}

// Slugify lowers a path segment into the restricted character set used for
// asset ids. Shared with the server side so client-derived and
// server-derived ids agree.
func Slugify(s string) string {
	return common.Slugify(s)
}

// DeriveID builds the stable content-path id for a file: the root slug,
// the slugified relative directory and the slugified file name without its
// extension, joined with '/'.
func DeriveID(rootSlug, relativePath, fileName string) string {
	base := strings.TrimSuffix(fileName, path.Ext(fileName))
	parts := []string{Slugify(rootSlug)}
	if dir := path.Dir(relativePath); dir != "." && dir != "/" && dir != "" {
		parts = append(parts, Slugify(dir))
	}
	parts = append(parts, Slugify(base))
	return strings.Join(parts, "/")
}

// resolution thresholds, in pixels and bytes
const (
	highPixelThreshold = 4_000_000 // ~4 MP and above serves print use
	webPixelThreshold  = 1_000_000
	highSizeThreshold  = 4 << 20
)

// CategorizeResolution buckets a file by its dimensions, falling back to
// raw size when dimensions are unknown.
func CategorizeResolution(width, height uint, sizeBytes uint64) ResolutionCategory {
	pixels := uint64(width) * uint64(height)
	switch {
	case pixels >= highPixelThreshold:
		return ResolutionHigh
	case pixels >= webPixelThreshold:
		return ResolutionWeb
	case pixels == 0 && sizeBytes >= highSizeThreshold:
		return ResolutionHigh
	case pixels == 0 && sizeBytes > 0:
		return ResolutionWeb
	default:
		return ResolutionLow
	}
}

// DefaultProfile maps a resolution category to the serving profile used
// when the operator picked none.
func DefaultProfile(c ResolutionCategory) Profile {
	switch c {
	case ResolutionHigh:
		return ProfileHigh
	case ResolutionWeb:
		return ProfileWeb
	default:
		return ProfileLow
	}
}

func (r *Row) String() string {
	return fmt.Sprintf("%s (%s, %d bytes)", r.ID, r.MimeType, r.SizeBytes)
}
