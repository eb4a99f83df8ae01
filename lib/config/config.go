// Copyright 2026 The Slurdle Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings like
// "15m" or "90s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the master configuration for the slurdle bot.
type Config struct {
	// Platform configures the connection to the chat platform.
	Platform PlatformConfig `yaml:"platform"`

	// Game configures the session parameters shared by all rooms.
	Game GameConfig `yaml:"game"`

	// Data configures the word list and image pair sources.
	Data DataConfig `yaml:"data"`
}

// PlatformConfig configures the chat platform connection. Token and
// UserID are normally left empty here and supplied through the
// SLURDLE_TOKEN and SLURDLE_USER environment variables instead.
type PlatformConfig struct {
	// ServerURL is the base URL of the platform server.
	// Default: http://localhost
	ServerURL string `yaml:"server_url"`

	// Token is the bot's API token.
	Token string `yaml:"token"`

	// UserID is the bot's own user ID.
	UserID int64 `yaml:"user_id"`

	// TaskID is the task this bot serves. Rooms created for other
	// tasks are ignored.
	TaskID int64 `yaml:"task_id"`

	// WaitingRoom is the lobby room users gather in before being
	// matched into task rooms.
	WaitingRoom int64 `yaml:"waiting_room"`
}

// GameConfig configures the game flow.
type GameConfig struct {
	// Rounds is how many word puzzles each room plays.
	// Default: 3
	Rounds int `yaml:"rounds"`

	// RoundTimeout bounds how long a single puzzle may run.
	// Default: 15m
	RoundTimeout Duration `yaml:"round_timeout"`

	// DepartureGrace is how long a departed player may stay away
	// before the game is abandoned.
	// Default: 5m
	DepartureGrace Duration `yaml:"departure_grace"`

	// PublicURL is the play URL quoted in the final share message.
	PublicURL string `yaml:"public_url"`

	// Greeting lines are sent into each room when the bot joins.
	Greeting []string `yaml:"greeting"`
}

// DataConfig configures the item and word sources.
type DataConfig struct {
	// Dir is the directory holding the tiered image pair files.
	// Default: data
	Dir string `yaml:"dir"`

	// WordList is the path of the valid-guess dictionary, one word
	// per line.
	// Default: data/wordlist.txt
	WordList string `yaml:"word_list"`

	// Mode selects how images are dealt to the two players:
	// "same", "different", or "one_blind".
	// Default: one_blind
	Mode string `yaml:"mode"`

	// Shuffle randomizes item order instead of dealing sequentially.
	Shuffle bool `yaml:"shuffle"`

	// Seed fixes the shuffle order for reproducible experiments.
	// Zero seeds from the clock.
	Seed int64 `yaml:"seed"`
}

// Default returns the default configuration. These defaults are a base
// for the config file to override, not a substitute for it: Load still
// requires a file.
func Default() *Config {
	return &Config{
		Platform: PlatformConfig{
			ServerURL: "http://localhost",
		},
		Game: GameConfig{
			Rounds:         3,
			RoundTimeout:   Duration(15 * time.Minute),
			DepartureGrace: Duration(5 * time.Minute),
			Greeting: []string{
				"**Welcome to the slurdle game!**",
				"You and your partner see an image as a hint for a word that you need to guess together.",
				"Discuss in the chat, then both enter the same guess into the letter board.",
			},
		},
		Data: DataConfig{
			Dir:      "data",
			WordList: "data/wordlist.txt",
			Mode:     "one_blind",
		},
	}
}

// Load loads configuration from the SLURDLE_CONFIG environment
// variable. There are no fallbacks - if SLURDLE_CONFIG is not set,
// this fails.
func Load() (*Config, error) {
	configPath := os.Getenv("SLURDLE_CONFIG")
	if configPath == "" {
		return nil, fmt.Errorf("SLURDLE_CONFIG environment variable not set; " +
			"set it to the path of your slurdle.yaml config file, or use --config flag")
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path, merging the
// file over the defaults and applying the credential environment
// variables.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg.applyEnvironment()
	return cfg, nil
}

// applyEnvironment fills the platform credentials from the process
// environment. Environment values win over file values so tokens never
// need to live on disk.
func (c *Config) applyEnvironment() {
	if token := os.Getenv("SLURDLE_TOKEN"); token != "" {
		c.Platform.Token = token
	}
	if user := os.Getenv("SLURDLE_USER"); user != "" {
		var id int64
		if _, err := fmt.Sscanf(user, "%d", &id); err == nil {
			c.Platform.UserID = id
		}
	}
}

// Validate checks that the configuration is complete enough to start
// the bot.
func (c *Config) Validate() error {
	if c.Platform.ServerURL == "" {
		return fmt.Errorf("platform.server_url is required")
	}
	if _, err := url.Parse(c.Platform.ServerURL); err != nil {
		return fmt.Errorf("platform.server_url: %w", err)
	}
	if c.Platform.Token == "" {
		return fmt.Errorf("platform token is required (config platform.token or SLURDLE_TOKEN)")
	}
	if c.Platform.UserID == 0 {
		return fmt.Errorf("platform user ID is required (config platform.user_id or SLURDLE_USER)")
	}
	if c.Platform.TaskID == 0 {
		return fmt.Errorf("platform.task_id is required")
	}
	if c.Game.Rounds < 1 {
		return fmt.Errorf("game.rounds must be at least 1, got %d", c.Game.Rounds)
	}
	if c.Game.RoundTimeout.Std() <= 0 {
		return fmt.Errorf("game.round_timeout must be positive")
	}
	if c.Game.DepartureGrace.Std() <= 0 {
		return fmt.Errorf("game.departure_grace must be positive")
	}
	switch c.Data.Mode {
	case "same", "different", "one_blind":
	default:
		return fmt.Errorf("data.mode must be same, different, or one_blind, got %q", c.Data.Mode)
	}
	if c.Data.Dir == "" {
		return fmt.Errorf("data.dir is required")
	}
	if c.Data.WordList == "" {
		return fmt.Errorf("data.word_list is required")
	}
	return nil
}
