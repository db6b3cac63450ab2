package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/darkawower/musicpaper/internal/mapping"
)

type BackendKind string

const (
	BackendHyprpaper BackendKind = "hyprpaper"
	BackendSwww      BackendKind = "swww"
)

type GeneralConfig struct {
	WallpaperDir  string      `toml:"wallpaper-dir"`
	CheckInterval int         `toml:"check-interval"`
	Backend       BackendKind `toml:"backend"`
	Player        string      `toml:"player"`
}

type HyprpaperConfig struct {
	ConfigPath string `toml:"config-path"`
}

type SwwwConfig struct {
	TransitionType     string `toml:"transition-type"`
	TransitionDuration int    `toml:"transition-duration"`
}

type Config struct {
	General   GeneralConfig   `toml:"general"`
	Hyprpaper HyprpaperConfig `toml:"hyprpaper"`
	Swww      SwwwConfig      `toml:"swww"`

	// SongWallpapers keeps the declaration order of the [song-wallpapers]
	// table, which a decoded Go map would lose.
	SongWallpapers mapping.RawMapping `toml:"-"`

	configPath string
}

func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "musicpaper")
}

func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()

	return &Config{
		General: GeneralConfig{
			WallpaperDir:  filepath.Join(home, "Pictures", "Wallpapers"),
			CheckInterval: 5,
			Backend:       BackendHyprpaper,
			Player:        "spotify",
		},
		Hyprpaper: HyprpaperConfig{
			ConfigPath: filepath.Join(home, ".config", "hypr", "hyprpaper.conf"),
		},
		Swww: SwwwConfig{
			TransitionType:     "simple",
			TransitionDuration: 3,
		},
		SongWallpapers: mapping.RawMapping{
			{Key: "track name", Wallpaper: "name.jpg"},
		},
	}
}

// Load reads the config file at path (or the default location when empty).
// A missing file yields the defaults with no error; an unreadable or
// malformed file yields the defaults together with the parse error so the
// caller can warn without failing startup.
func Load(path string) (*Config, error) {
	if path == "" {
		path = filepath.Join(DefaultConfigDir(), "config.toml")
	}

	path = expandPath(path)

	cfg := DefaultConfig()
	cfg.configPath = path

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	var file struct {
		General   GeneralConfig             `toml:"general"`
		Hyprpaper HyprpaperConfig           `toml:"hyprpaper"`
		Swww      SwwwConfig                `toml:"swww"`
		Songs     map[string]toml.Primitive `toml:"song-wallpapers"`
	}
	file.General = cfg.General
	file.Hyprpaper = cfg.Hyprpaper
	file.Swww = cfg.Swww

	md, err := toml.DecodeFile(path, &file)
	if err != nil {
		return fallback(path), fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.General = file.General
	cfg.Hyprpaper = file.Hyprpaper
	cfg.Swww = file.Swww

	raw, err := decodeSongTable(md, file.Songs)
	if err != nil {
		return fallback(path), err
	}
	cfg.SongWallpapers = raw

	cfg.postProcess()

	if err := cfg.Validate(); err != nil {
		return fallback(path), err
	}

	return cfg, nil
}

func fallback(path string) *Config {
	cfg := DefaultConfig()
	cfg.configPath = path
	return cfg
}

// decodeSongTable rebuilds the [song-wallpapers] table in file order.
// toml.MetaData.Keys returns keys in order of appearance, which is the one
// place declaration order survives decoding.
func decodeSongTable(md toml.MetaData, songs map[string]toml.Primitive) (mapping.RawMapping, error) {
	raw := mapping.RawMapping{}

	for _, key := range md.Keys() {
		if len(key) != 2 || key[0] != "song-wallpapers" {
			continue
		}

		prim, ok := songs[key[1]]
		if !ok {
			continue
		}

		var wallpaper string
		if err := md.PrimitiveDecode(prim, &wallpaper); err == nil {
			raw = append(raw, mapping.RawEntry{Key: key[1], Wallpaper: wallpaper})
			continue
		}

		var members []string
		if err := md.PrimitiveDecode(prim, &members); err == nil {
			raw = append(raw, mapping.RawEntry{Key: key[1], Songs: members})
			continue
		}

		return nil, fmt.Errorf("song-wallpapers.%q: value must be a string or a list of strings", key[1])
	}

	return raw, nil
}

func (c *Config) postProcess() {
	c.General.WallpaperDir = expandPath(c.General.WallpaperDir)
	c.Hyprpaper.ConfigPath = expandPath(c.Hyprpaper.ConfigPath)

	if c.General.CheckInterval <= 0 {
		c.General.CheckInterval = 5
	}
	if c.General.Player == "" {
		c.General.Player = "spotify"
	}
	if c.Swww.TransitionType == "" {
		c.Swww.TransitionType = "simple"
	}
	if c.Swww.TransitionDuration <= 0 {
		c.Swww.TransitionDuration = 3
	}
}

func (c *Config) Validate() error {
	switch c.General.Backend {
	case BackendHyprpaper, BackendSwww:
	default:
		return fmt.Errorf("invalid backend: %s (must be hyprpaper or swww)", c.General.Backend)
	}

	for _, e := range c.SongWallpapers {
		if e.IsGroup() {
			continue
		}
		if e.Wallpaper == "" {
			return fmt.Errorf("song-wallpapers.%q: wallpaper file name is empty", e.Key)
		}
	}

	return nil
}

// Interval returns the poll interval as a duration.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.General.CheckInterval) * time.Second
}

func (c *Config) ConfigPath() string {
	return c.configPath
}

func (c *Config) Save(path string) error {
	if path == "" {
		path = c.configPath
	}
	if path == "" {
		path = filepath.Join(DefaultConfigDir(), "config.toml")
	}

	path = expandPath(path)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	// The ordered mapping carries a custom type, so its table is written
	// separately from the struct encode above.
	songs := map[string]interface{}{}
	for _, e := range c.SongWallpapers {
		if e.Songs != nil {
			songs[e.Key] = e.Songs
		} else {
			songs[e.Key] = e.Wallpaper
		}
	}
	if err := encoder.Encode(map[string]interface{}{"song-wallpapers": songs}); err != nil {
		return fmt.Errorf("failed to encode song mapping: %w", err)
	}

	return nil
}

func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.General.WallpaperDir,
		GetTempDir(),
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// GetTempDir returns the directory holding the startup snapshots.
func GetTempDir() string {
	return filepath.Join(os.TempDir(), "musicpaper")
}

func expandPath(path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
