package backend

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/darkawower/musicpaper/internal/config"
)

const (
	swwwDaemonProcess = "swww-daemon"

	queryImageMarker = "image: "
)

// SwwwBackend drives the swww daemon over its own IPC command. Unlike
// hyprpaper it supports live transitions, but reports success before the
// change lands, so every apply is verified against a follow-up query.
type SwwwBackend struct {
	transitionType     string
	transitionDuration int
	backupPath         string

	run        runner
	procs      procService
	settleWait time.Duration
}

var _ Backend = (*SwwwBackend)(nil)

// NewSwww creates the live-IPC backend.
func NewSwww(cfg config.SwwwConfig) *SwwwBackend {
	return &SwwwBackend{
		transitionType:     cfg.TransitionType,
		transitionDuration: cfg.TransitionDuration,
		backupPath:         filepath.Join(config.GetTempDir(), "swww.wallpaper.backup"),
		run:                execRunner{},
		procs:              gopsProcs{},
		settleWait:         500 * time.Millisecond,
	}
}

func (b *SwwwBackend) Name() string {
	return "swww"
}

// Init starts the daemon if it is not running.
func (b *SwwwBackend) Init() error {
	alive, err := b.procs.Alive(swwwDaemonProcess)
	if err != nil {
		return fmt.Errorf("failed to probe swww daemon: %w", err)
	}
	if alive {
		return nil
	}

	if _, err := b.run.Run("swww", "init"); err != nil {
		return fmt.Errorf("failed to initialize swww: %w", err)
	}
	return nil
}

// Apply sets the wallpaper with the configured transition and verifies the
// daemon actually switched to it.
func (b *SwwwBackend) Apply(path string) error {
	if err := b.Init(); err != nil {
		return err
	}

	_, err := b.run.Run("swww", "img", path,
		"--transition-type", b.transitionType,
		"--transition-duration", strconv.Itoa(b.transitionDuration))
	if err != nil {
		return fmt.Errorf("failed to set swww wallpaper: %w", err)
	}

	// Give the daemon a moment before trusting the query output.
	time.Sleep(b.settleWait)

	current, err := b.Current()
	if err != nil {
		return err
	}
	if current != path {
		return fmt.Errorf("wallpaper verification failed: current %q, expected %q", current, path)
	}

	return nil
}

// Current parses the active wallpaper path out of `swww query`.
func (b *SwwwBackend) Current() (string, error) {
	out, err := b.run.Run("swww", "query")
	if err != nil {
		return "", fmt.Errorf("failed to query swww: %w", err)
	}
	return parseQuery(out), nil
}

type swwwSnapshot struct {
	backupPath string
}

func (s swwwSnapshot) Location() string { return s.backupPath }

// Snapshot records the wallpaper path active at startup.
func (b *SwwwBackend) Snapshot() (Snapshot, error) {
	current, err := b.Current()
	if err != nil {
		// One recovery attempt: the daemon may simply not be up yet.
		if initErr := b.Init(); initErr != nil {
			return nil, initErr
		}
		if current, err = b.Current(); err != nil {
			return nil, err
		}
	}

	if current == "" {
		return swwwSnapshot{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(b.backupPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	if err := os.WriteFile(b.backupPath, []byte(current), 0644); err != nil {
		return nil, fmt.Errorf("failed to back up wallpaper path: %w", err)
	}

	return swwwSnapshot{backupPath: b.backupPath}, nil
}

// StoredSnapshot returns the backup left by a previous capture.
func (b *SwwwBackend) StoredSnapshot() (Snapshot, error) {
	if _, err := os.Stat(b.backupPath); err != nil {
		return nil, ErrNoSnapshot
	}
	return swwwSnapshot{backupPath: b.backupPath}, nil
}

// Restore re-applies the wallpaper captured at startup.
func (b *SwwwBackend) Restore(snap Snapshot) error {
	ss, ok := snap.(swwwSnapshot)
	if !ok {
		return fmt.Errorf("snapshot was captured by a different backend")
	}
	if ss.backupPath == "" {
		return ErrNoSnapshot
	}

	data, err := os.ReadFile(ss.backupPath)
	if err != nil {
		return ErrNoSnapshot
	}

	previous := strings.TrimSpace(string(data))
	// Tolerate raw query output in the backup file.
	if idx := strings.Index(previous, queryImageMarker); idx != -1 {
		previous = previous[idx+len(queryImageMarker):]
	}

	if _, err := os.Stat(previous); err != nil {
		return fmt.Errorf("previous wallpaper file not found: %s", previous)
	}

	return b.Apply(previous)
}

// parseQuery extracts the image path from swww query output, e.g.
// "eDP-1: 1920x1080, scale: 1, currently displaying: image: /path/a.jpg".
func parseQuery(out string) string {
	for _, line := range strings.Split(out, "\n") {
		if idx := strings.Index(line, queryImageMarker); idx != -1 {
			return strings.TrimSpace(line[idx+len(queryImageMarker):])
		}
	}
	return ""
}
