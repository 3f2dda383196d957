// Package config stores the settings of the synchronization in a JSON file, together
// with the watermark of the last successful run.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Environment variables that override the file content.
const (
	EnvToken     = "T212_TOKEN"
	EnvPassword  = "ACTUAL_PASSWORD"
	EnvServerURL = "ACTUAL_SERVER_URL"
	EnvDataDir   = "ACTUAL_DATA_DIR"
)

// Config is the content of the configuration file.
//
// It is a value: operations return an updated copy and the caller decides when to save it.
type Config struct {
	DataDir   string `json:"dataDir"`
	ServerURL string `json:"serverURL"`
	Password  string `json:"password"`
	Token     string `json:"token"`

	AccountID string `json:"accountId,omitempty"`
	BudgetID  string `json:"budgetId,omitempty"`
	Currency  string `json:"currency,omitempty"` // for display only.
	APIURL    string `json:"apiURL,omitempty"`   // broker API base URL, live by default.

	// LastSyncTimestamp is the end of the last successful synchronization. Nil until
	// the first one, which then fetches the whole history.
	LastSyncTimestamp *time.Time `json:"lastSyncTimestamp,omitempty"`
}

// ErrInvalid reports a configuration lacking a mandatory field.
var ErrInvalid = errors.New("invalid configuration")

// Validate checks that the fields required to reach the ledger and the broker are set.
func (c Config) Validate() error {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"dataDir", c.DataDir},
		{"serverURL", c.ServerURL},
		{"password", c.Password},
		{"token", c.Token},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %q, fill them or delete the file to reinitialize", ErrInvalid, missing)
	}
	return nil
}

// WithWatermark returns a copy of c whose last synchronization is t.
func (c Config) WithWatermark(t time.Time) Config {
	t = t.UTC()
	c.LastSyncTimestamp = &t
	return c
}

// Watermark returns the last synchronization time, and false before the first one.
func (c Config) Watermark() (time.Time, bool) {
	if c.LastSyncTimestamp == nil {
		return time.Time{}, false
	}
	return *c.LastSyncTimestamp, true
}

// Store is a configuration file.
type Store struct {
	Path string
	// Getenv reads overrides, os.LookupEnv by default.
	Getenv func(string) (string, bool)
}

// Exists reports whether the configuration file exists.
func (s Store) Exists() bool {
	_, err := os.Stat(s.Path)
	return err == nil
}

// Load reads and validates the configuration, with the environment overrides applied.
// A missing file is reported with an error matching fs.ErrNotExist.
//
// The returned value is meant for the run only: saving it would write the overrides
// to the file. Use SaveWatermark to record a synchronization.
func (s Store) Load() (Config, error) {
	c, err := s.read()
	if err != nil {
		return Config{}, err
	}
	c = s.override(c)
	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %q: %w", s.Path, err)
	}
	return c, nil
}

// read returns the file content as is.
func (s Store) read() (Config, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return Config{}, fmt.Errorf("cannot read config: %w", err)
	}
	var c Config
	if err := json.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("cannot parse config %q: %w", s.Path, err)
	}
	return c, nil
}

// SaveWatermark moves the watermark of the file to t. Every other field keeps the
// value found in the file, environment overrides are never written.
func (s Store) SaveWatermark(t time.Time) error {
	c, err := s.read()
	if err != nil {
		return err
	}
	return s.Save(c.WithWatermark(t))
}

func (s Store) override(c Config) Config {
	getenv := s.Getenv
	if getenv == nil {
		getenv = os.LookupEnv
	}
	for name, field := range map[string]*string{
		EnvToken:     &c.Token,
		EnvPassword:  &c.Password,
		EnvServerURL: &c.ServerURL,
		EnvDataDir:   &c.DataDir,
	} {
		if v, ok := getenv(name); ok && v != "" {
			*field = v
		}
	}
	return c
}

// Save writes c to the file, readable by its owner only. The file is replaced
// atomically, a failed save leaves the previous content intact.
func (s Store) Save(c Config) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("cannot encode config: %w", err)
	}

	dir := filepath.Dir(s.Path)
	tmp, err := os.CreateTemp(dir, ".config-*.json")
	if err != nil {
		return fmt.Errorf("cannot save config: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op once renamed.

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("cannot save config: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("cannot save config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("cannot save config: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return fmt.Errorf("cannot save config: %w", err)
	}
	return nil
}
