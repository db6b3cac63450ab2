package backend

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/darkawower/musicpaper/internal/config"
)

const (
	hyprpaperProcess = "hyprpaper"

	preloadPrefix   = "preload = "
	wallpaperPrefix = "wallpaper = "
)

// HyprpaperBackend drives hyprpaper by rewriting its config file and
// restarting the daemon. Hyprpaper has no live-reload, so every apply is a
// rewrite-plus-restart.
type HyprpaperBackend struct {
	configPath string
	backupPath string

	run         runner
	procs       procService
	restartWait time.Duration
}

var _ Backend = (*HyprpaperBackend)(nil)

// NewHyprpaper creates the config-file backend.
func NewHyprpaper(cfg config.HyprpaperConfig) *HyprpaperBackend {
	return &HyprpaperBackend{
		configPath:  cfg.ConfigPath,
		backupPath:  filepath.Join(config.GetTempDir(), "hyprpaper.conf.backup"),
		run:         execRunner{},
		procs:       gopsProcs{},
		restartWait: time.Second,
	}
}

func (b *HyprpaperBackend) Name() string {
	return "hyprpaper"
}

// Init starts the daemon if it is not running.
func (b *HyprpaperBackend) Init() error {
	alive, err := b.procs.Alive(hyprpaperProcess)
	if err != nil {
		return fmt.Errorf("failed to probe hyprpaper: %w", err)
	}
	if alive {
		return nil
	}

	if err := b.run.Start(hyprpaperProcess); err != nil {
		return fmt.Errorf("failed to start hyprpaper: %w", err)
	}
	time.Sleep(b.restartWait)
	return nil
}

// Apply rewrites the preload/wallpaper directives and restarts the daemon.
func (b *HyprpaperBackend) Apply(path string) error {
	if err := b.rewriteConfig(path); err != nil {
		return err
	}
	return b.restart()
}

// Current reports the wallpaper directive from the config file.
func (b *HyprpaperBackend) Current() (string, error) {
	data, err := os.ReadFile(b.configPath)
	if err != nil {
		return "", fmt.Errorf("failed to read hyprpaper config: %w", err)
	}

	for _, line := range strings.Split(string(data), "\n") {
		if strings.HasPrefix(line, wallpaperPrefix) {
			value := strings.TrimPrefix(line, wallpaperPrefix)
			// Directive form is "wallpaper = <monitor>,<path>".
			if idx := strings.Index(value, ","); idx != -1 {
				value = value[idx+1:]
			}
			return strings.TrimSpace(value), nil
		}
	}

	return "", nil
}

type hyprpaperSnapshot struct {
	backupPath string
}

func (s hyprpaperSnapshot) Location() string { return s.backupPath }

// Snapshot copies the pre-existing config file aside.
func (b *HyprpaperBackend) Snapshot() (Snapshot, error) {
	if _, err := os.Stat(b.configPath); os.IsNotExist(err) {
		// Nothing to capture; restore will report ErrNoSnapshot.
		return hyprpaperSnapshot{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(b.backupPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	if err := copyFile(b.configPath, b.backupPath); err != nil {
		return nil, fmt.Errorf("failed to back up hyprpaper config: %w", err)
	}

	return hyprpaperSnapshot{backupPath: b.backupPath}, nil
}

// StoredSnapshot returns the backup left by a previous capture.
func (b *HyprpaperBackend) StoredSnapshot() (Snapshot, error) {
	if _, err := os.Stat(b.backupPath); err != nil {
		return nil, ErrNoSnapshot
	}
	return hyprpaperSnapshot{backupPath: b.backupPath}, nil
}

// Restore copies the captured config back and restarts the daemon.
func (b *HyprpaperBackend) Restore(snap Snapshot) error {
	hs, ok := snap.(hyprpaperSnapshot)
	if !ok {
		return fmt.Errorf("snapshot was captured by a different backend")
	}
	if hs.backupPath == "" {
		return ErrNoSnapshot
	}
	if _, err := os.Stat(hs.backupPath); err != nil {
		return ErrNoSnapshot
	}

	if err := copyFile(hs.backupPath, b.configPath); err != nil {
		return fmt.Errorf("failed to restore hyprpaper config: %w", err)
	}
	return b.restart()
}

// restart terminates any running daemon instance and relaunches it. The
// waits give hyprpaper time to release and reacquire the wallpaper surfaces.
func (b *HyprpaperBackend) restart() error {
	if err := b.procs.Terminate(hyprpaperProcess); err != nil {
		return fmt.Errorf("failed to stop hyprpaper: %w", err)
	}
	time.Sleep(b.restartWait)

	if err := b.run.Start(hyprpaperProcess); err != nil {
		return fmt.Errorf("failed to start hyprpaper: %w", err)
	}
	time.Sleep(b.restartWait)

	return nil
}

// rewriteConfig replaces the preload and wallpaper directives in place,
// appending them when absent. Every other line is preserved verbatim.
func (b *HyprpaperBackend) rewriteConfig(wallpaper string) error {
	if err := os.MkdirAll(filepath.Dir(b.configPath), 0755); err != nil {
		return fmt.Errorf("failed to create hyprpaper config directory: %w", err)
	}

	var lines []string
	if data, err := os.ReadFile(b.configPath); err == nil && len(data) > 0 {
		lines = strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	}

	var preloadFound, wallpaperFound bool
	out := make([]string, 0, len(lines)+2)

	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, preloadPrefix):
			out = append(out, preloadPrefix+wallpaper)
			preloadFound = true
		case strings.HasPrefix(line, wallpaperPrefix):
			out = append(out, wallpaperPrefix+","+wallpaper)
			wallpaperFound = true
		default:
			out = append(out, line)
		}
	}

	if !preloadFound {
		out = append(out, preloadPrefix+wallpaper)
	}
	if !wallpaperFound {
		out = append(out, wallpaperPrefix+","+wallpaper)
	}

	if err := os.WriteFile(b.configPath, []byte(strings.Join(out, "\n")+"\n"), 0644); err != nil {
		return fmt.Errorf("failed to write hyprpaper config: %w", err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
