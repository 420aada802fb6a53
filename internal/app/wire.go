package app

import (
	"fmt"
	"log/slog"
	"strconv"

	"chesslink/internal/core"
	"chesslink/internal/domain"
	"chesslink/internal/game"
	"chesslink/internal/rules"
	"chesslink/internal/store"
)

// Wire bundles all stores, the rules engine and settings for the CLI.
type Wire struct {
	Identity domain.IdentityStore
	Games    domain.GameStore
	Trust    domain.TrustStore
	Settings store.Settings
	Engine   game.Engine
	Logger   *slog.Logger

	settings   *store.SettingsFileStore
	passphrase string
	playerName string
}

// NewWire constructs the dependency graph from cfg. Saved settings are
// loaded first; cfg overrides apply on top without being written back.
func NewWire(cfg Config) (*Wire, error) {
	settingsStore := store.NewSettingsFileStore(cfg.Home)
	settings, err := settingsStore.Load()
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	if cfg.Port != 0 {
		settings.Port = cfg.Port
	}
	name := settings.PlayerName
	if cfg.PlayerName != "" {
		name = cfg.PlayerName
	}

	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	return &Wire{
		Identity:   store.NewIdentityFileStore(cfg.Home),
		Games:      store.NewGameFileStore(cfg.Home),
		Trust:      store.NewTrustFileStore(cfg.Home),
		Settings:   settings,
		Engine:     &rules.Minimal{},
		Logger:     log,
		settings:   settingsStore,
		passphrase: cfg.Passphrase,
		playerName: name,
	}, nil
}

// ListenAddr is the local address hosting binds to.
func (w *Wire) ListenAddr() string {
	return ":" + strconv.Itoa(w.Settings.Port)
}

// SaveSettings persists the current settings.
func (w *Wire) SaveSettings() error {
	return w.settings.Save(w.Settings)
}

// Core loads the local identity and builds the session facade on top of the
// wired stores. The caller owns the returned Core and must Close it.
func (w *Wire) Core() (*core.Core, error) {
	id, err := w.Identity.LoadIdentity(w.passphrase)
	if err != nil {
		return nil, fmt.Errorf("loading identity: %w", err)
	}
	return core.New(core.Config{
		Passphrase: w.passphrase,
		PlayerName: w.playerName,
		AutoSave:   w.Settings.AutoSave,
		Logger:     w.Logger,
	}, w.Engine, id, w.Games, w.Trust)
}
