package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/GopherJ/xactor/core/app"
)

// Config is the file configuration of the xactor command.
type Config struct {
	Log   LogConfig   `yaml:"log"`
	HTTP  HTTPConfig  `yaml:"http"`
	Local LocalConfig `yaml:"local"`
	Actor ActorConfig `yaml:"actor"`
}

type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
	// Format is text or json.
	Format string `yaml:"format"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

type LocalConfig struct {
	Contexts  int    `yaml:"contexts"`
	Seed      string `yaml:"seed"`
	QueueSize int    `yaml:"queue_size"`
}

type ActorConfig struct {
	MailboxSize        int `yaml:"mailbox_size"`
	MaxConcurrentTasks int `yaml:"max_concurrent_tasks"`
}

var errInvalidConfig = errors.New("invalid config")

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Log:   LogConfig{Level: "info", Format: "text"},
		HTTP:  HTTPConfig{Addr: ":8181"},
		Local: LocalConfig{Contexts: 4},
	}
}

// LoadConfig reads a YAML file over the defaults. An empty path yields the
// defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, cfg.Validate()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := decodeConfig(bytes.NewReader(data), cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func decodeConfig(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log.format %q", errInvalidConfig, c.Log.Format)
	}
	if c.HTTP.Addr == "" {
		return fmt.Errorf("%w: http.addr is empty", errInvalidConfig)
	}
	if c.Local.Contexts < 0 {
		return fmt.Errorf("%w: local.contexts must not be negative", errInvalidConfig)
	}
	return nil
}

// AppConfig maps the file configuration onto app.Config.
func (c *Config) AppConfig() app.Config {
	return app.Config{
		Local: app.LocalConfig{
			Contexts:  c.Local.Contexts,
			Seed:      c.Local.Seed,
			QueueSize: c.Local.QueueSize,
		},
		Actor: app.ActorOptions{
			MailboxSize:        c.Actor.MailboxSize,
			MaxConcurrentTasks: c.Actor.MaxConcurrentTasks,
		},
	}
}

// Logger builds the logger described by the configuration.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level, _ := parseLevel(c.Log.Level)
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("%w: log.level %q", errInvalidConfig, s)
	}
	return l, nil
}
