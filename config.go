package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"

	"github.com/bodul/crossword/puzzle"
	"github.com/bodul/crossword/storage"
)

// Config is the server configuration. It is read from an optional TOML
// file, then overridden by the environment.
type Config struct {
	Port           string `toml:"port"`
	AllowNonSquare bool   `toml:"allow_non_square"`

	Storage struct {
		Backend string `toml:"backend"` // "memory", "file" or "mysql"
		Dir     string `toml:"dir"`
		DSN     string `toml:"dsn"`
	} `toml:"storage"`

	Gemini struct {
		ProjectID string `toml:"project_id"`
		Region    string `toml:"region"`
		Model     string `toml:"model"`
	} `toml:"gemini"`
}

func defaultConfig() Config {
	var c Config
	c.Port = "8080"
	c.Storage.Backend = "memory"
	c.Storage.Dir = "guesses"
	c.Gemini.Region = defaultRegion
	c.Gemini.Model = defaultModel
	return c
}

// LoadConfig reads path, if not empty, and applies environment overrides.
func LoadConfig(path string) (Config, error) {
	c := defaultConfig()
	if path != "" {
		if _, err := toml.DecodeFile(path, &c); err != nil {
			return c, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	if err := c.applyEnv(os.LookupEnv); err != nil {
		return c, err
	}
	return c, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	set := func(name string, dst *string) {
		if v, ok := lookup(name); ok && v != "" {
			*dst = v
		}
	}
	set("PORT", &c.Port)
	set("GCP_PROJECT_ID", &c.Gemini.ProjectID)
	set("GCP_REGION", &c.Gemini.Region)
	set("XWORD_STORAGE", &c.Storage.Backend)
	set("XWORD_STORAGE_DIR", &c.Storage.Dir)
	set("XWORD_MYSQL_DSN", &c.Storage.DSN)

	if v, ok := lookup("XWORD_NON_SQUARE"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("XWORD_NON_SQUARE: %w", err)
		}
		c.AllowNonSquare = b
	}
	return nil
}

// OpenStorage opens the configured guess backend. The returned close
// function is never nil.
func (c Config) OpenStorage(ctx context.Context) (puzzle.Storage, func() error, error) {
	noop := func() error { return nil }
	switch c.Storage.Backend {
	case "", "memory":
		return storage.NewMemory(), noop, nil
	case "file":
		f, err := storage.NewFile(c.Storage.Dir)
		if err != nil {
			return nil, noop, err
		}
		return f, noop, nil
	case "mysql":
		if c.Storage.DSN == "" {
			return nil, noop, fmt.Errorf("mysql storage needs a DSN (XWORD_MYSQL_DSN)")
		}
		db, err := storage.OpenMySQL(ctx, c.Storage.DSN)
		if err != nil {
			return nil, noop, err
		}
		return db, db.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
}

func (c Config) logSummary() {
	log.Printf("Stockage des réponses : %s", c.Storage.Backend)
	if c.AllowNonSquare {
		log.Println("Grilles rectangulaires autorisées")
	}
}
