package backend

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darkawower/musicpaper/internal/config"
)

// fakeRunner records command invocations and replays canned outputs.
type fakeRunner struct {
	calls   []string
	started []string

	outputs map[string]string
	errs    map[string]error
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{
		outputs: map[string]string{},
		errs:    map[string]error{},
	}
}

func (f *fakeRunner) Run(name string, args ...string) (string, error) {
	key := strings.Join(append([]string{name}, args...), " ")
	f.calls = append(f.calls, key)
	if err := f.errs[key]; err != nil {
		return "", err
	}
	return f.outputs[key], nil
}

func (f *fakeRunner) Start(name string, args ...string) error {
	key := strings.Join(append([]string{name}, args...), " ")
	f.started = append(f.started, key)
	if err := f.errs[key]; err != nil {
		return err
	}
	return nil
}

// fakeProcs simulates the process table.
type fakeProcs struct {
	alive      bool
	aliveErr   error
	terminated []string
}

func (f *fakeProcs) Alive(name string) (bool, error) {
	return f.alive, f.aliveErr
}

func (f *fakeProcs) Terminate(name string) error {
	f.terminated = append(f.terminated, name)
	return nil
}

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		kind     config.BackendKind
		wantName string
		wantErr  bool
	}{
		{name: "hyprpaper", kind: config.BackendHyprpaper, wantName: "hyprpaper"},
		{name: "swww", kind: config.BackendSwww, wantName: "swww"},
		{name: "unknown", kind: "feh", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.General.Backend = tt.kind

			b, err := New(cfg)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "unknown backend")
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantName, b.Name())
		})
	}
}

func TestRestore_SnapshotFromOtherBackend(t *testing.T) {
	hypr := &HyprpaperBackend{run: newFakeRunner(), procs: &fakeProcs{}}
	swww := &SwwwBackend{run: newFakeRunner(), procs: &fakeProcs{}}

	err := hypr.Restore(swwwSnapshot{backupPath: "/tmp/x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "different backend")

	err = swww.Restore(hyprpaperSnapshot{backupPath: "/tmp/x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "different backend")
}

func TestRestore_NoSnapshot(t *testing.T) {
	hypr := &HyprpaperBackend{run: newFakeRunner(), procs: &fakeProcs{}}
	swww := &SwwwBackend{run: newFakeRunner(), procs: &fakeProcs{}}

	assert.ErrorIs(t, hypr.Restore(hyprpaperSnapshot{}), ErrNoSnapshot)
	assert.ErrorIs(t, swww.Restore(swwwSnapshot{}), ErrNoSnapshot)
}

func TestStoredSnapshot_Missing(t *testing.T) {
	hypr := &HyprpaperBackend{backupPath: "/nonexistent/hypr.backup"}
	swww := &SwwwBackend{backupPath: "/nonexistent/swww.backup"}

	_, err := hypr.StoredSnapshot()
	assert.ErrorIs(t, err, ErrNoSnapshot)

	_, err = swww.StoredSnapshot()
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func TestExecRunner_UnknownCommand(t *testing.T) {
	var r runner = execRunner{}

	_, err := r.Run("musicpaper-no-such-command-xyz")
	require.Error(t, err)

	err = r.Start("musicpaper-no-such-command-xyz")
	require.Error(t, err)
}
