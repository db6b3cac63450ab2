package player

import (
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
)

func TestTrackFromMetadata(t *testing.T) {
	tests := []struct {
		name string
		meta map[string]dbus.Variant
		want Track
	}{
		{
			name: "title and artist",
			meta: map[string]dbus.Variant{
				"xesam:title":  dbus.MakeVariant("Doomer Weekend"),
				"xesam:artist": dbus.MakeVariant([]string{"Molchat Doma", "Other"}),
			},
			want: Track{Title: "Doomer Weekend", Artist: "Molchat Doma", Playing: true},
		},
		{
			name: "missing artist",
			meta: map[string]dbus.Variant{
				"xesam:title": dbus.MakeVariant("Instrumental"),
			},
			want: Track{Title: "Instrumental", Playing: true},
		},
		{
			name: "empty artist list",
			meta: map[string]dbus.Variant{
				"xesam:title":  dbus.MakeVariant("Song"),
				"xesam:artist": dbus.MakeVariant([]string{}),
			},
			want: Track{Title: "Song", Playing: true},
		},
		{
			name: "empty metadata",
			meta: map[string]dbus.Variant{},
			want: Track{Playing: true},
		},
		{
			name: "title of unexpected type is ignored",
			meta: map[string]dbus.Variant{
				"xesam:title": dbus.MakeVariant(42),
			},
			want: Track{Playing: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, trackFromMetadata(tt.meta))
		})
	}
}
