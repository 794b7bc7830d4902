// Package scan turns a local directory tree into upload rows: stable
// content-path ids, mime detection and image dimension probing.
package scan

import (
	"fmt"
	"image"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"

	// dimension probing for the common raster formats
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/mkraev/atelier/internal/client/uploader"
)

// Dir walks root and returns one row per regular file, ordered by relative
// path so repeated scans produce identical queues. Hidden files and
// directories (dot-prefixed) are skipped.
func Dir(root string) ([]uploader.Row, error) {
	rootSlug := uploader.Slugify(filepath.Base(root))

	var rows []uploader.Row
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}

		row, err := File(rootSlug, filepath.ToSlash(rel), p)
		if err != nil {
			return fmt.Errorf("scanning %s: %w", p, err)
		}
		rows = append(rows, *row)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].RelativePath < rows[j].RelativePath })
	return rows, nil
}

// File builds one upload row for a single local file.
func File(rootSlug, relativePath, absPath string) (*uploader.Row, error) {
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, err
	}

	fileName := filepath.Base(absPath)
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))

	width, height := probeDimensions(absPath)
	category := uploader.CategorizeResolution(width, height, uint64(info.Size()))

	row := &uploader.Row{
		ID:                 uploader.DeriveID(rootSlug, relativePath, fileName),
		RootSlug:           rootSlug,
		RelativePath:       relativePath,
		FileName:           fileName,
		Path:               absPath,
		SizeBytes:          uint64(info.Size()),
		MimeType:           mimeType(ext),
		Width:              width,
		Height:             height,
		Extension:          ext,
		ResolutionCategory: category,
		Profile:            uploader.DefaultProfile(category),
	}
	return row, nil
}

// probeDimensions decodes just the image header; unknown or non-image
// content yields 0x0.
func probeDimensions(path string) (uint, uint) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil || cfg.Width < 0 || cfg.Height < 0 {
		return 0, 0
	}
	return uint(cfg.Width), uint(cfg.Height)
}

func mimeType(ext string) string {
	if ext == "" {
		return "application/octet-stream"
	}
	if t := mime.TypeByExtension("." + ext); t != "" {
		// strip charset parameters; the control plane stores bare types
		if i := strings.IndexByte(t, ';'); i >= 0 {
			t = strings.TrimSpace(t[:i])
		}
		return t
	}
	return "application/octet-stream"
}
