package config

import "testing"

func TestDefaultIsUsable(t *testing.T) {
	cfg := Default()
	if cfg.RecvAddr == "" || cfg.SendAddr == "" {
		t.Fatal("default config must carry non-empty recv/send addresses")
	}
}

func TestDeviceConfigDirContainsAppName(t *testing.T) {
	dir, err := DeviceConfigDir()
	if err != nil {
		t.Skipf("no user config dir in this environment: %v", err)
	}
	if dir == "" {
		t.Fatal("expected non-empty device config dir")
	}
}
