package player

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	mprisBusPrefix  = "org.mpris.MediaPlayer2."
	mprisObjectPath = "/org/mpris/MediaPlayer2"

	propPlaybackStatus = "org.mpris.MediaPlayer2.Player.PlaybackStatus"
	propMetadata       = "org.mpris.MediaPlayer2.Player.Metadata"

	statusPlaying = "Playing"
)

// MPRISSource reads track info from an MPRIS player over the session bus.
type MPRISSource struct {
	conn   *dbus.Conn
	player string
}

var _ Source = (*MPRISSource)(nil)

// NewMPRIS connects to the session bus for the named player (e.g. "spotify").
func NewMPRIS(player string) (*MPRISSource, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	return &MPRISSource{conn: conn, player: player}, nil
}

// Track fetches the playback status and metadata properties. Errors mean
// the player is not on the bus (not running, or no desktop session).
func (s *MPRISSource) Track() (Track, error) {
	obj := s.conn.Object(mprisBusPrefix+s.player, mprisObjectPath)

	statusVar, err := obj.GetProperty(propPlaybackStatus)
	if err != nil {
		return Track{}, fmt.Errorf("player %s unavailable: %w", s.player, err)
	}

	status, _ := statusVar.Value().(string)
	if status != statusPlaying {
		return Track{Playing: false}, nil
	}

	metaVar, err := obj.GetProperty(propMetadata)
	if err != nil {
		return Track{}, fmt.Errorf("player %s unavailable: %w", s.player, err)
	}

	meta, _ := metaVar.Value().(map[string]dbus.Variant)
	return trackFromMetadata(meta), nil
}

// Close releases the bus connection.
func (s *MPRISSource) Close() error {
	return s.conn.Close()
}

// trackFromMetadata extracts title and first artist from MPRIS metadata.
func trackFromMetadata(meta map[string]dbus.Variant) Track {
	track := Track{Playing: true}

	if v, ok := meta["xesam:title"]; ok {
		track.Title, _ = v.Value().(string)
	}
	if v, ok := meta["xesam:artist"]; ok {
		if artists, ok := v.Value().([]string); ok && len(artists) > 0 {
			track.Artist = artists[0]
		}
	}

	return track
}
