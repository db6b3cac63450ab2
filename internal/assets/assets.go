// Package assets validates that configured wallpaper files are usable.
package assets

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	_ "golang.org/x/image/webp"

	"github.com/darkawower/musicpaper/internal/mapping"
)

// Problem describes one unusable wallpaper asset.
type Problem struct {
	// Song is the mapping key referencing the asset.
	Song string

	// Path is the full resolved file path.
	Path string

	// Reason says what is wrong with it.
	Reason string
}

// Validate checks every resolved wallpaper under dir: the file must exist
// and decode as an image (png, jpeg, gif or webp). Returns one problem per
// bad entry; an empty result means the mapping is fully backed by assets.
func Validate(dir string, resolved mapping.Resolved) []Problem {
	var problems []Problem

	for _, entry := range resolved {
		path := filepath.Join(dir, entry.Wallpaper)

		if _, err := os.Stat(path); err != nil {
			problems = append(problems, Problem{
				Song:   entry.Song,
				Path:   path,
				Reason: "file not found",
			})
			continue
		}

		if err := checkImage(path); err != nil {
			problems = append(problems, Problem{
				Song:   entry.Song,
				Path:   path,
				Reason: err.Error(),
			})
		}
	}

	return problems
}

// checkImage verifies the file header decodes as a known image format.
func checkImage(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("unreadable: %v", err)
	}
	defer f.Close()

	if _, _, err := image.DecodeConfig(f); err != nil {
		return fmt.Errorf("not a supported image: %v", err)
	}
	return nil
}
