// Package controller owns the wallpaper state machine: it decides when the
// matched wallpaper is applied and when the startup wallpaper is restored.
package controller

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/darkawower/musicpaper/internal/backend"
	"github.com/darkawower/musicpaper/internal/mapping"
	"github.com/darkawower/musicpaper/internal/player"
)

// Controller reconciles playback state against the desktop wallpaper. It has
// two states: Default (the startup wallpaper is up) and Active (a matched
// song's wallpaper is up). All transitions happen in Tick; failed ones leave
// the state unchanged so the next poll retries.
type Controller struct {
	backend      backend.Backend
	resolved     mapping.Resolved
	wallpaperDir string

	snapshot backend.Snapshot

	active      bool
	activePath  string
	lastMatched string
}

// New creates a controller in the Default state. CaptureSnapshot must be
// called before the first restore can succeed.
func New(b backend.Backend, resolved mapping.Resolved, wallpaperDir string) *Controller {
	return &Controller{
		backend:      b,
		resolved:     resolved,
		wallpaperDir: wallpaperDir,
	}
}

// CaptureSnapshot records the pre-existing wallpaper state. Called once at
// startup; the snapshot stays valid for the process lifetime.
func (c *Controller) CaptureSnapshot() error {
	snap, err := c.backend.Snapshot()
	if err != nil {
		return fmt.Errorf("failed to capture wallpaper snapshot: %w", err)
	}
	c.snapshot = snap
	return nil
}

// SetMapping swaps in a new resolved mapping (config reload). The last
// matched key is cleared so the current track is re-evaluated against the
// new mapping on the next tick.
func (c *Controller) SetMapping(resolved mapping.Resolved) {
	c.resolved = resolved
	c.lastMatched = ""
}

// Tick advances the state machine for one poll. Errors are reportable, never
// fatal: the caller logs and retries on the next tick.
func (c *Controller) Tick(track player.Track) error {
	if !track.Playing || track.Title == "" {
		return c.restore()
	}

	entry, ok := c.resolved.Match(track.Title)
	if !ok {
		return c.restore()
	}

	return c.apply(entry)
}

// apply transitions to Active for the matched entry. Re-applying the same
// song key, or a path that is already up, is a no-op.
func (c *Controller) apply(entry mapping.Entry) error {
	if c.active && entry.Song == c.lastMatched {
		return nil
	}

	path := filepath.Join(c.wallpaperDir, entry.Wallpaper)

	if c.active && path == c.activePath {
		c.lastMatched = entry.Song
		return nil
	}

	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("wallpaper not found: %s", path)
	}

	if err := c.backend.Apply(path); err != nil {
		return err
	}

	c.active = true
	c.activePath = path
	c.lastMatched = entry.Song
	return nil
}

// restore transitions back to Default. A no-op when already there; on
// backend failure the Active state is kept so the next tick retries.
func (c *Controller) restore() error {
	if !c.active {
		return nil
	}

	if c.snapshot == nil {
		return backend.ErrNoSnapshot
	}

	if err := c.backend.Restore(c.snapshot); err != nil {
		return err
	}

	c.active = false
	c.activePath = ""
	c.lastMatched = ""
	return nil
}

// Shutdown attempts a final restore. Best effort: the outcome is reported
// but must not block process exit.
func (c *Controller) Shutdown() error {
	return c.restore()
}

// Active reports whether a matched wallpaper is currently up.
func (c *Controller) Active() bool {
	return c.active
}

// ActivePath returns the full path of the applied wallpaper, if any.
func (c *Controller) ActivePath() string {
	return c.activePath
}

// LastMatched returns the song key of the currently applied match.
func (c *Controller) LastMatched() string {
	return c.lastMatched
}
