// Package player reads the currently playing track from the media player.
package player

// Track is one poll's snapshot of playback state.
type Track struct {
	Title  string
	Artist string

	// Playing is true only while the player reports active playback.
	Playing bool
}

// Source supplies the currently playing track. An unreachable player is
// reported as an error; callers treat it the same as stopped playback.
type Source interface {
	Track() (Track, error)
}
