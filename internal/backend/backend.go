// Package backend abstracts the external wallpaper-setting mechanisms.
package backend

import (
	"errors"
	"fmt"
	"os/exec"

	"github.com/darkawower/musicpaper/internal/config"
)

// ErrNoSnapshot is returned by Restore when no usable startup snapshot exists.
var ErrNoSnapshot = errors.New("no snapshot captured")

// Snapshot is the wallpaper state captured once at startup and used for
// restoration. Its concrete type belongs to the backend that captured it.
type Snapshot interface {
	// Location returns the on-disk path of the captured snapshot.
	Location() string
}

// Backend sets and restores the desktop wallpaper through one external
// mechanism.
type Backend interface {
	// Name returns the backend identifier.
	Name() string

	// Init ensures the backing daemon is running, starting it if needed.
	Init() error

	// Apply sets the wallpaper to the image at path.
	Apply(path string) error

	// Current returns the currently active wallpaper path, when the
	// backend can report it.
	Current() (string, error)

	// Snapshot captures the pre-existing wallpaper state for later restore.
	Snapshot() (Snapshot, error)

	// StoredSnapshot returns the snapshot left on disk by a previous
	// capture, or ErrNoSnapshot when there is none.
	StoredSnapshot() (Snapshot, error)

	// Restore brings the wallpaper back to the captured state.
	Restore(snap Snapshot) error
}

// New builds the backend selected by the configuration.
func New(cfg *config.Config) (Backend, error) {
	switch cfg.General.Backend {
	case config.BackendHyprpaper:
		return NewHyprpaper(cfg.Hyprpaper), nil
	case config.BackendSwww:
		return NewSwww(cfg.Swww), nil
	default:
		return nil, fmt.Errorf("unknown backend: %s", cfg.General.Backend)
	}
}

// runner executes external commands, injectable so backend logic is
// testable without the real daemons.
type runner interface {
	// Run executes the command and returns its stdout.
	Run(name string, args ...string) (string, error)

	// Start launches the command without waiting for it.
	Start(name string, args ...string) error
}

type execRunner struct{}

func (execRunner) Run(name string, args ...string) (string, error) {
	out, err := exec.Command(name, args...).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return string(out), fmt.Errorf("%s: %w (stderr: %s)", name, err, exitErr.Stderr)
		}
		return string(out), fmt.Errorf("%s: %w", name, err)
	}
	return string(out), nil
}

func (execRunner) Start(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	// Reap the child when it eventually exits.
	go func() { _ = cmd.Wait() }()
	return nil
}
