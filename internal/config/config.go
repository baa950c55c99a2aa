// Package config manages persistent CLI defaults for oscmix, stored as
// JSON at os.UserConfigDir/OSCMix/config.json.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Config holds the CLI surface's persistent defaults.
type Config struct {
	Debug bool `json:"debug"`
	DisableMeters bool `json:"disable_meters"`
	RecvAddr string `json:"recv_addr"`
	SendAddr string `json:"send_addr"`
	Multicast bool `json:"multicast"`
	MidiPort string `json:"midi_port"`
}

// Default returns a Config populated with sensible defaults.
func Default() Config {
	return Config{
		RecvAddr: "udp!0.0.0.0!7222",
		SendAddr: "udp!127.0.0.1!8222",
		MidiPort: os.Getenv("MIDIPORT"),
	}
}

// Path returns the absolute path to the config file.
func Path() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "OSCMix", "config.json"), nil
}

// DeviceConfigDir returns <app-data>/OSCMix/device_config/, where
// /dump/save writes its timestamped JSON snapshots.
func DeviceConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "OSCMix", "device_config"), nil
}

// Load reads the config file and returns it. If the file is missing or
// unreadable, the default config is returned, never an error.
func Load() Config {
	path, err := Path()
	if err != nil {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Default()
	}
	cfg := Default()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Default()
	}
	return cfg
}

// Save writes cfg to disk, creating the directory if needed.
func Save(cfg Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", " ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
