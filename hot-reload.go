// hot-reload.go: dynamic configuration with Argus integration
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package rcuht

import (
	"sync"
	"time"

	"github.com/agilira/argus"
)

// HotConfig watches a benchmark configuration file and publishes every
// successfully parsed revision. A running trial is never reconfigured:
// callers pick up the new Config before their next Coordinator.Run.
type HotConfig struct {
	watcher *argus.Watcher
	logger  Logger
	path    string
	base    Config

	mu       sync.RWMutex
	config   Config
	revision uint64

	// OnReload is called after configuration is successfully reloaded.
	// This callback is optional and must not block for long.
	OnReload func(oldConfig, newConfig Config)
}

// HotConfigOptions configures hot reload behavior.
type HotConfigOptions struct {
	// ConfigPath is the path to the configuration file to watch.
	// It is read with LoadConfigFile, so YAML or JSON.
	ConfigPath string

	// PollInterval is how often to check for configuration changes.
	// Default: 1 second. Minimum: 100ms.
	PollInterval time.Duration

	// Base is the configuration file values are overlaid on.
	// Default: DefaultConfig().
	Base *Config

	// OnReload is called after configuration is successfully reloaded.
	OnReload func(oldConfig, newConfig Config)

	// Logger for hot reload operations.
	// If nil, Base.Logger or NoOpLogger is used.
	Logger Logger
}

// NewHotConfig creates a hot-reloadable configuration for the file at
// opts.ConfigPath. Call Start to begin watching.
func NewHotConfig(opts HotConfigOptions) (*HotConfig, error) {
	if opts.ConfigPath == "" {
		return nil, NewErrInvalidConfig("config_path", "")
	}

	if opts.PollInterval == 0 {
		opts.PollInterval = 1 * time.Second
	} else if opts.PollInterval < 100*time.Millisecond {
		opts.PollInterval = 100 * time.Millisecond
	}

	base := DefaultConfig()
	if opts.Base != nil {
		base = *opts.Base
	}
	if opts.Logger == nil {
		opts.Logger = base.Logger
	}
	if opts.Logger == nil {
		opts.Logger = NoOpLogger{}
	}

	hc := &HotConfig{
		logger:   opts.Logger,
		path:     opts.ConfigPath,
		base:     base,
		config:   base,
		OnReload: opts.OnReload,
	}

	argusConfig := argus.Config{
		PollInterval: opts.PollInterval,
	}
	watcher, err := argus.UniversalConfigWatcherWithConfig(opts.ConfigPath, hc.handleConfigChange, argusConfig)
	if err != nil {
		return nil, NewErrConfigLoadFailed(opts.ConfigPath, err)
	}
	hc.watcher = watcher

	return hc, nil
}

// Start begins watching the configuration file for changes.
func (hc *HotConfig) Start() error {
	if hc.watcher.IsRunning() {
		return nil
	}
	return hc.watcher.Start()
}

// Stop stops watching the configuration file.
func (hc *HotConfig) Stop() error {
	return hc.watcher.Stop()
}

// GetConfig returns the current configuration (thread-safe).
func (hc *HotConfig) GetConfig() Config {
	hc.mu.RLock()
	defer hc.mu.RUnlock()
	return hc.config
}

// Revision returns how many reloads have been applied.
func (hc *HotConfig) Revision() uint64 {
	hc.mu.RLock()
	defer hc.mu.RUnlock()
	return hc.revision
}

// handleConfigChange is called by Argus when configuration changes.
// Argus's own decoding flattens nested sections, so its data is only a
// trigger: the file is re-read with LoadConfigFile. Revisions that fail
// to load or validate are logged and dropped.
func (hc *HotConfig) handleConfigChange(map[string]interface{}) {
	newConfig, err := LoadConfigFile(hc.path, hc.base)
	if err == nil {
		err = newConfig.Validate()
	}
	if err != nil {
		hc.logger.Warn("ignoring invalid configuration revision", "error", err)
		return
	}

	hc.mu.Lock()
	oldConfig := hc.config
	hc.config = newConfig
	hc.revision++
	hc.mu.Unlock()

	hc.logger.Info("configuration reloaded",
		"strategy", string(newConfig.Strategy),
		"workers", newConfig.Workers,
		"operations", newConfig.Operations)

	if hc.OnReload != nil {
		hc.OnReload(oldConfig, newConfig)
	}
}
