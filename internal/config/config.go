// Package config loads keynos settings from the environment.
//
// Command line flags take precedence; these values only fill in what the
// user did not pass explicitly. Keeping the passphrase in KEYNOS_PASSPHRASE
// keeps it out of shell history.
package config

import (
	"fmt"
	"io"
	"os"

	"go-simpler.org/env"
)

// C is the keynos configuration.
type C struct {
	Path       string `env:"KEYNOS_PATH" default:"128h/0h/0h/" usage:"hardened derivation path used by derive"`
	Passphrase string `env:"KEYNOS_PASSPHRASE" usage:"passphrase appended to the access key (unset means no passphrase)"`
	LogLevel   string `env:"KEYNOS_LOG_LEVEL" default:"warn" usage:"log level: trace, debug, info, warn, error or off"`
	LogJSON    bool   `env:"KEYNOS_LOG_JSON" default:"false" usage:"write logs to stderr as JSON"`

	passphraseSet bool
}

// PassphraseSet reports whether KEYNOS_PASSPHRASE was present at all, so an
// empty passphrase can be told apart from none.
func (c *C) PassphraseSet() bool {
	return c.passphraseSet
}

// Vars is a fixed set of variables used in place of the process environment.
type Vars map[string]string

// LookupEnv implements env.Source.
func (v Vars) LookupEnv(key string) (value string, ok bool) {
	value, ok = v[key]
	return
}

type osEnv struct{}

func (osEnv) LookupEnv(key string) (string, bool) { return os.LookupEnv(key) }

// Load reads the configuration from the process environment.
func Load() (*C, error) {
	return LoadFrom(osEnv{})
}

// LoadFrom reads the configuration from src.
func LoadFrom(src env.Source) (*C, error) {
	c := &C{}
	if err := env.Load(c, &env.Options{Source: src}); err != nil {
		return nil, fmt.Errorf("could not load configuration: %w", err)
	}
	_, c.passphraseSet = src.LookupEnv("KEYNOS_PASSPHRASE")
	return c, nil
}

// Usage writes a description of every variable to w.
func Usage(w io.Writer) {
	env.Usage(&C{}, w, nil)
}
