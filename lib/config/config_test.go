// Copyright 2026 The Slurdle Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Game.Rounds != 3 {
		t.Errorf("expected rounds=3, got %d", cfg.Game.Rounds)
	}
	if cfg.Game.RoundTimeout.Std() != 15*time.Minute {
		t.Errorf("expected round_timeout=15m, got %s", cfg.Game.RoundTimeout.Std())
	}
	if cfg.Game.DepartureGrace.Std() != 5*time.Minute {
		t.Errorf("expected departure_grace=5m, got %s", cfg.Game.DepartureGrace.Std())
	}
	if cfg.Data.Mode != "one_blind" {
		t.Errorf("expected mode=one_blind, got %s", cfg.Data.Mode)
	}
	if len(cfg.Game.Greeting) == 0 {
		t.Error("expected default greeting lines")
	}
}

func TestLoad_RequiresSlurdleConfig(t *testing.T) {
	t.Setenv("SLURDLE_CONFIG", "")
	os.Unsetenv("SLURDLE_CONFIG")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when SLURDLE_CONFIG not set, got nil")
	}
	if !strings.HasPrefix(err.Error(), "SLURDLE_CONFIG environment variable not set") {
		t.Errorf("unexpected error message: %q", err.Error())
	}
}

func TestLoad_WithSlurdleConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "slurdle.yaml")

	configContent := `
platform:
  server_url: https://slurk.example.org
  task_id: 7
  waiting_room: 42
game:
  rounds: 5
  round_timeout: 10m
data:
  mode: different
  shuffle: true
  seed: 99
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv("SLURDLE_CONFIG", configPath)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Platform.ServerURL != "https://slurk.example.org" {
		t.Errorf("server_url = %s", cfg.Platform.ServerURL)
	}
	if cfg.Platform.TaskID != 7 {
		t.Errorf("task_id = %d, want 7", cfg.Platform.TaskID)
	}
	if cfg.Game.Rounds != 5 {
		t.Errorf("rounds = %d, want 5", cfg.Game.Rounds)
	}
	if cfg.Game.RoundTimeout.Std() != 10*time.Minute {
		t.Errorf("round_timeout = %s, want 10m", cfg.Game.RoundTimeout.Std())
	}
	// Unset fields keep their defaults.
	if cfg.Game.DepartureGrace.Std() != 5*time.Minute {
		t.Errorf("departure_grace = %s, want default 5m", cfg.Game.DepartureGrace.Std())
	}
	if cfg.Data.Mode != "different" || !cfg.Data.Shuffle || cfg.Data.Seed != 99 {
		t.Errorf("data section = %+v", cfg.Data)
	}
}

func TestLoadFile_CredentialsFromEnvironment(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "slurdle.yaml")
	configContent := `
platform:
  token: file-token
  user_id: 1
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv("SLURDLE_TOKEN", "env-token")
	t.Setenv("SLURDLE_USER", "23")

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile() failed: %v", err)
	}
	if cfg.Platform.Token != "env-token" {
		t.Errorf("token = %s, want env-token", cfg.Platform.Token)
	}
	if cfg.Platform.UserID != 23 {
		t.Errorf("user_id = %d, want 23", cfg.Platform.UserID)
	}
}

func TestLoadFile_BadDuration(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "slurdle.yaml")
	configContent := `
game:
  round_timeout: fifteen minutes
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	if _, err := LoadFile(configPath); err == nil {
		t.Fatal("expected error for unparseable duration, got nil")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.Platform.Token = "tok"
		cfg.Platform.UserID = 1
		cfg.Platform.TaskID = 7
		return cfg
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"missing token", func(c *Config) { c.Platform.Token = "" }, "token"},
		{"missing user", func(c *Config) { c.Platform.UserID = 0 }, "user ID"},
		{"missing task", func(c *Config) { c.Platform.TaskID = 0 }, "task_id"},
		{"zero rounds", func(c *Config) { c.Game.Rounds = 0 }, "rounds"},
		{"zero timeout", func(c *Config) { c.Game.RoundTimeout = 0 }, "round_timeout"},
		{"zero grace", func(c *Config) { c.Game.DepartureGrace = 0 }, "departure_grace"},
		{"bad mode", func(c *Config) { c.Data.Mode = "mirror" }, "mode"},
		{"missing word list", func(c *Config) { c.Data.WordList = "" }, "word_list"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.want)
			}
		})
	}
}
