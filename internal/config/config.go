// Package config loads the thin TOML file the demo collaborator binary
// uses to feed Connection's typed setters. The core irc package never
// imports this package or reads a file itself.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// DemoConfig covers exactly the "configuration surface recognized by
// collaborators" a framework user would wire up: identity, server
// address, and the channels to join once registered, plus an optional
// channel-prefix override.
type DemoConfig struct {
	Verbose  bool   `toml:"verbose"`
	Nick     string `toml:"nick"`
	UserName string `toml:"user_name"`
	RealName string `toml:"real_name"`
	Version  string `toml:"version"`
	Finger   string `toml:"finger"`

	Server    string   `toml:"server"`
	Port      int      `toml:"port"`
	SSL       bool     `toml:"ssl"`
	VerifySSL bool     `toml:"verify_ssl"`
	Password  string   `toml:"password"`
	Channels  []string `toml:"channels"`

	// ChannelPrefixes overrides the characters a MODE/PRIVMSG target is
	// checked against to decide whether it names a channel. Empty means
	// the network uses the RFC 2812 default ("#&+!").
	ChannelPrefixes string `toml:"channel_prefixes"`
}

// Load reads and parses the TOML file at path.
func Load(path string) (*DemoConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found at %s", path)
	}

	var cfg DemoConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *DemoConfig) error {
	if cfg.Server == "" {
		return fmt.Errorf("server is required")
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", cfg.Port)
	}
	if cfg.Nick == "" {
		return fmt.Errorf("nick is required")
	}
	if cfg.UserName == "" {
		return fmt.Errorf("user_name is required")
	}
	if cfg.RealName == "" {
		return fmt.Errorf("real_name is required")
	}
	return nil
}

// DefaultConfig returns sensible defaults for a first run against Libera.Chat.
func DefaultConfig() *DemoConfig {
	return &DemoConfig{
		Nick:      "ircengine-demo",
		UserName:  "ircengine",
		RealName:  "ircengine demo collaborator",
		Version:   "ircengine-demo 0.1",
		Server:    "irc.libera.chat",
		Port:      6697,
		SSL:       true,
		VerifySSL: true,
		Channels:  []string{"#ircengine-test"},
	}
}
