package config

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"

	"github.com/Cyclone1070/fio/internal/errutil"
)

const (
	// ConfigDir is the directory under ~/.config that holds fio settings.
	ConfigDir = "fio"
	// ConfigFile is the settings file inside ConfigDir.
	ConfigFile = "config.json"
)

// Source supplies the home directory and raw config bytes to a Loader.
type Source interface {
	HomeDir() (string, error)
	ReadFile(path string) ([]byte, error)
}

type osSource struct{}

func (osSource) HomeDir() (string, error) { return homedir.Dir() }
func (osSource) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }

// Loader turns a JSON config file into a validated Config.
type Loader struct {
	src Source
}

// NewLoader returns a Loader backed by the operating system.
func NewLoader() *Loader {
	return &Loader{src: osSource{}}
}

// NewLoaderFrom returns a Loader that reads through src.
func NewLoaderFrom(src Source) *Loader {
	return &Loader{src: src}
}

// DefaultPath reports where Load looks for the config file.
func (l *Loader) DefaultPath() (string, error) {
	home, err := l.src.HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", ConfigDir, ConfigFile), nil
}

// Load reads ~/.config/fio/config.json over the defaults. A missing file, or
// an unknown home directory, yields DefaultConfig.
func (l *Loader) Load() (*Config, error) {
	path, err := l.DefaultPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return l.read(path, false)
}

// LoadFile reads configuration from an explicit path. A missing file is a
// NotFoundError.
func (l *Loader) LoadFile(path string) (*Config, error) {
	return l.read(path, true)
}

// read decodes the file over DefaultConfig, so keys present in the file win
// even when zero and absent keys keep their defaults.
func (l *Loader) read(path string, required bool) (*Config, error) {
	cfg := DefaultConfig()

	data, err := l.src.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist) && !required:
		return cfg, nil
	case err != nil:
		return nil, errutil.Classify("read config", path, err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errutil.OpError(errutil.InvalidArgument, "parse config", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
