// Package main is the entry point for the musicpaper CLI.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/darkawower/musicpaper/internal/assets"
	"github.com/darkawower/musicpaper/internal/backend"
	"github.com/darkawower/musicpaper/internal/config"
	"github.com/darkawower/musicpaper/internal/controller"
	"github.com/darkawower/musicpaper/internal/mapping"
	"github.com/darkawower/musicpaper/internal/player"
	"github.com/darkawower/musicpaper/internal/ui"
)

var (
	// Global flags
	cfgFile string
	verbose bool
	quiet   bool

	// Global output
	out *ui.Output
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "musicpaper",
		Short: "Music-driven wallpaper switcher for Hyprland",
		Long: `Musicpaper watches the currently playing track over MPRIS and switches
the desktop wallpaper whenever a configured song plays, restoring the
original wallpaper when playback stops. Supports the hyprpaper and swww
backends.`,
	}

	// Persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/musicpaper/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-error output")

	// Add commands
	rootCmd.AddCommand(
		newRunCmd(),
		newInitCmd(),
		newCheckCmd(),
		newMappingCmd(),
		newRestoreCmd(),
		newVersionCmd(),
	)

	// Handle signals
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// initOutput initializes the output.
func initOutput() {
	out = ui.DefaultOutput()
	out.SetVerbose(verbose)
	out.SetQuiet(quiet)
}

// loadConfig loads the configuration, falling back to defaults with a
// warning when the file is malformed. Never fails.
func loadConfig() *config.Config {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		out.Warning("Falling back to default configuration: %v", err)
	}
	return cfg
}

// newRunCmd creates the run command.
func newRunCmd() *cobra.Command {
	var interval int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Watch playback and switch wallpapers",
		Long: `Polls the configured media player and applies the wallpaper mapped to
the playing song. The pre-existing wallpaper is captured at startup and
restored when playback stops, when no song matches, and on shutdown.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			initOutput()

			cfg := loadConfig()
			if interval > 0 {
				cfg.General.CheckInterval = interval
			}

			if err := cfg.EnsureDirectories(); err != nil {
				out.Error("Failed to create directories: %v", err)
				return err
			}

			b, err := backend.New(cfg)
			if err != nil {
				out.ErrorWithHint(err.Error(), "Set general.backend to hyprpaper or swww")
				return err
			}

			ctrl := controller.New(b, mapping.Expand(cfg.SongWallpapers), cfg.General.WallpaperDir)

			if err := b.Init(); err != nil {
				out.Warning("Backend not ready: %v", err)
			}
			if err := ctrl.CaptureSnapshot(); err != nil {
				out.Warning("%v", err)
			}

			src, err := player.NewMPRIS(cfg.General.Player)
			if err != nil {
				out.Error("Failed to connect to session bus: %v", err)
				return err
			}
			defer src.Close()

			return runLoop(cmd.Context(), cfg, ctrl, src)
		},
	}

	cmd.Flags().IntVar(&interval, "interval", 0, "poll interval in seconds (overrides config)")

	return cmd
}

// runLoop is the polling loop. It exits only on context cancellation, after
// a best-effort restore of the original wallpaper.
func runLoop(ctx context.Context, cfg *config.Config, ctrl *controller.Controller, src player.Source) error {
	out.Info("Watching %s with %s backend (every %s)", cfg.General.Player, cfg.General.Backend, cfg.Interval())

	changes, err := config.Watch(ctx, cfg.ConfigPath())
	if err != nil {
		out.Debug("Config watching disabled: %v", err)
		changes = nil
	}

	ticker := time.NewTicker(cfg.Interval())
	defer ticker.Stop()

	for {
		tick(ctrl, src)

		select {
		case <-ctx.Done():
			out.Info("Shutting down, restoring original wallpaper")
			if err := ctrl.Shutdown(); err != nil && !errors.Is(err, backend.ErrNoSnapshot) {
				out.Warning("Restore failed: %v", err)
			}
			return nil

		case <-ticker.C:

		case _, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
			reloaded, err := config.Load(cfg.ConfigPath())
			if err != nil {
				out.Warning("Config reload failed, keeping previous mapping: %v", err)
				continue
			}
			// Only the mapping and interval reload live; backend and
			// directory changes need a restart.
			ctrl.SetMapping(mapping.Expand(reloaded.SongWallpapers))
			if reloaded.Interval() != cfg.Interval() {
				ticker.Reset(reloaded.Interval())
				cfg.General.CheckInterval = reloaded.General.CheckInterval
			}
			out.Info("Configuration reloaded (%d mapping entries)", len(reloaded.SongWallpapers))
		}
	}
}

// tick runs one poll iteration. Every failure is reported and retried on
// the next tick; nothing here stops the loop.
func tick(ctrl *controller.Controller, src player.Source) {
	track, err := src.Track()
	if err != nil {
		// Unreachable player is the same as stopped playback.
		out.Debug("Media source unavailable: %v", err)
		track = player.Track{}
	}

	wasActive := ctrl.Active()
	wasKey := ctrl.LastMatched()

	if err := ctrl.Tick(track); err != nil {
		if errors.Is(err, backend.ErrNoSnapshot) {
			out.Debug("No snapshot to restore from")
			return
		}
		out.Warning("%v", err)
		return
	}

	switch {
	case ctrl.Active() && ctrl.LastMatched() != wasKey:
		out.MatchInfo(track.Title, track.Artist, ctrl.LastMatched(), ctrl.ActivePath())
	case wasActive && !ctrl.Active():
		out.Info("Playback stopped or no match, restored original wallpaper")
	}
}

// newInitCmd creates the init command.
func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize musicpaper configuration",
		Long:  "Creates default configuration file and directories.",
		RunE: func(cmd *cobra.Command, args []string) error {
			initOutput()

			configDir := config.DefaultConfigDir()
			configPath := filepath.Join(configDir, "config.toml")

			if _, err := os.Stat(configPath); err == nil && !force {
				out.Warning("Configuration already exists at %s", configPath)
				out.Info("Use --force to overwrite")
				return nil
			}

			cfg := config.DefaultConfig()

			if err := cfg.EnsureDirectories(); err != nil {
				out.Error("Failed to create directories: %v", err)
				return err
			}

			if err := cfg.Save(configPath); err != nil {
				out.Error("Failed to write config: %v", err)
				return err
			}

			out.Success("Musicpaper initialized")
			out.Field("Config", configPath)
			out.Field("Wallpapers", cfg.General.WallpaperDir)
			out.Print("")
			out.Info("Edit %s to map songs to wallpapers", configPath)

			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing configuration")

	return cmd
}

// newCheckCmd creates the check command.
func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate configuration and wallpaper files",
		Long:  "Resolves the song mapping and verifies every wallpaper file exists and decodes as an image.",
		RunE: func(cmd *cobra.Command, args []string) error {
			initOutput()

			cfg, err := config.Load(cfgFile)
			if err != nil {
				out.Error("Config is invalid: %v", err)
				return err
			}

			resolved := mapping.Expand(cfg.SongWallpapers)
			if len(resolved) == 0 {
				out.Warning("No songs configured")
				out.Info("Add entries to [song-wallpapers] in %s", cfg.ConfigPath())
				return nil
			}

			problems := assets.Validate(cfg.General.WallpaperDir, resolved)
			if len(problems) == 0 {
				out.Success("%d songs mapped, all wallpapers valid", len(resolved))
				return nil
			}

			for _, p := range problems {
				out.Error("%q -> %s: %s", p.Song, p.Path, p.Reason)
			}
			return errors.New("invalid wallpaper assets")
		},
	}
}

// newMappingCmd creates the mapping command.
func newMappingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mapping",
		Short: "Show the resolved song to wallpaper mapping",
		RunE: func(cmd *cobra.Command, args []string) error {
			initOutput()

			cfg := loadConfig()
			resolved := mapping.Expand(cfg.SongWallpapers)

			if len(resolved) == 0 {
				out.Warning("No songs configured")
				return nil
			}

			headers := []string{"Song", "Wallpaper"}
			rows := make([][]string, 0, len(resolved))
			for _, e := range resolved {
				rows = append(rows, []string{e.Song, e.Wallpaper})
			}

			out.Print("")
			out.Table(headers, rows)
			out.Print("")

			return nil
		},
	}
}

// newRestoreCmd creates the restore command.
func newRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore",
		Short: "Restore the wallpaper from the last captured snapshot",
		Long:  "Applies the snapshot left behind by a previous run. Useful after a crash.",
		RunE: func(cmd *cobra.Command, args []string) error {
			initOutput()

			cfg := loadConfig()

			b, err := backend.New(cfg)
			if err != nil {
				out.ErrorWithHint(err.Error(), "Set general.backend to hyprpaper or swww")
				return err
			}

			snap, err := b.StoredSnapshot()
			if err != nil {
				if errors.Is(err, backend.ErrNoSnapshot) {
					out.Warning("No snapshot found, nothing to restore")
					return nil
				}
				out.Error("Failed to load snapshot: %v", err)
				return err
			}

			if err := b.Restore(snap); err != nil {
				out.Error("Failed to restore wallpaper: %v", err)
				return err
			}

			out.Success("Wallpaper restored")
			out.Field("Snapshot", snap.Location())
			return nil
		},
	}
}

// newVersionCmd creates the version command.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			initOutput()
			out.Print("musicpaper version 0.1.0")
		},
	}
}
