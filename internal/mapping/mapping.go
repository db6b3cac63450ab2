// Package mapping resolves the configured song -> wallpaper mapping and
// matches playing track titles against it.
package mapping

import (
	"strings"

	"github.com/samber/lo"
)

// GroupMarker prefixes configuration keys that define a song group rather
// than a single song.
const GroupMarker = "%"

// RawEntry is a single configuration entry as authored: either a song key
// with its wallpaper, or a group key (prefixed with GroupMarker) with a
// member list or a shared wallpaper.
type RawEntry struct {
	// Key is the song name or group key exactly as written in the config.
	Key string

	// Wallpaper is set when the value is a single string.
	Wallpaper string

	// Songs is set when the value is a list (enumerated group members).
	Songs []string
}

// IsGroup reports whether the entry defines a group.
func (e RawEntry) IsGroup() bool {
	return strings.HasPrefix(e.Key, GroupMarker)
}

// RawMapping is the ordered sequence of configuration entries. Order is the
// declaration order in the config file and drives all tie-breaking.
type RawMapping []RawEntry

// Group is a named collection of songs sharing resolution behavior.
type Group struct {
	// Name is the group key without the marker.
	Name string

	// Songs lists explicit members (enumerated group). Empty for fuzzy groups.
	Songs []string

	// Wallpaper is the shared wallpaper of a fuzzy group. Empty for
	// enumerated groups.
	Wallpaper string
}

// Enumerated reports whether the group lists its members explicitly.
func (g Group) Enumerated() bool {
	return g.Songs != nil
}

// Entry is one resolved song -> wallpaper pair.
type Entry struct {
	Song      string
	Wallpaper string
}

// Resolved is the flattened song -> wallpaper lookup used at runtime. It is
// a slice, not a map, so that configured declaration order is preserved for
// matching. Built once, read-only afterwards.
type Resolved []Entry

// Expand flattens a raw mapping into the resolved lookup.
//
// Groups are scanned per song in their declaration order; the first hit wins.
// An enumerated group that lists the song's exact key only validates
// membership: the song keeps its own configured wallpaper. A fuzzy group
// whose name contains the song key (case-insensitively) overrides the song's
// wallpaper with the group's. A song matching no group keeps its own value.
// Group keys themselves never become lookup targets.
func Expand(raw RawMapping) Resolved {
	var groups []Group
	for _, e := range raw {
		if !e.IsGroup() {
			continue
		}
		groups = append(groups, Group{
			Name:      strings.TrimPrefix(e.Key, GroupMarker),
			Songs:     e.Songs,
			Wallpaper: e.Wallpaper,
		})
	}

	resolved := Resolved{}
	for _, e := range raw {
		if e.IsGroup() {
			continue
		}
		resolved = append(resolved, Entry{
			Song:      e.Key,
			Wallpaper: resolveWallpaper(e, groups),
		})
	}

	return resolved
}

// resolveWallpaper picks the wallpaper for a single song entry.
func resolveWallpaper(e RawEntry, groups []Group) string {
	song := strings.ToLower(e.Key)

	for _, g := range groups {
		if g.Enumerated() {
			if lo.Contains(g.Songs, e.Key) {
				// Enumerated groups assert membership only; the song's own
				// wallpaper stands. Intentional, if surprising.
				return e.Wallpaper
			}
			continue
		}
		if strings.Contains(strings.ToLower(g.Name), song) {
			return g.Wallpaper
		}
	}

	return e.Wallpaper
}

// Match finds the first entry whose song key is a case-insensitive substring
// of title. An empty title never matches.
func (r Resolved) Match(title string) (Entry, bool) {
	if title == "" {
		return Entry{}, false
	}

	lower := strings.ToLower(title)
	entry, ok := lo.Find(r, func(e Entry) bool {
		return strings.Contains(lower, strings.ToLower(e.Song))
	})
	return entry, ok
}

// Lookup returns the wallpaper configured for an exact song key.
func (r Resolved) Lookup(song string) (string, bool) {
	for _, e := range r {
		if e.Song == song {
			return e.Wallpaper, true
		}
	}
	return "", false
}
