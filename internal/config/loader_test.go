package config

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cyclone1070/fio/internal/errutil"
)

// fakeSource serves config files from memory.
type fakeSource struct {
	home    string
	homeErr error
	files   map[string]string
	readErr error
}

func (s fakeSource) HomeDir() (string, error) { return s.home, s.homeErr }

func (s fakeSource) ReadFile(path string) ([]byte, error) {
	if s.readErr != nil {
		return nil, s.readErr
	}
	body, ok := s.files[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	return []byte(body), nil
}

const userConfig = "/home/user/.config/fio/config.json"

func loadUserConfig(body string) (*Config, error) {
	src := fakeSource{home: "/home/user", files: map[string]string{userConfig: body}}
	return NewLoaderFrom(src).Load()
}

func TestDefaultPath(t *testing.T) {
	path, err := NewLoaderFrom(fakeSource{home: "/home/user"}).DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, userConfig, path)
}

func TestLoad_FallsBackToDefaults(t *testing.T) {
	sources := map[string]fakeSource{
		"no file":      {home: "/home/user"},
		"no home":      {homeErr: errors.New("no home")},
		"empty object": {home: "/home/user", files: map[string]string{userConfig: `{}`}},
	}
	for name, src := range sources {
		t.Run(name, func(t *testing.T) {
			cfg, err := NewLoaderFrom(src).Load()
			require.NoError(t, err)
			assert.Equal(t, DefaultConfig(), cfg)
		})
	}
}

func TestLoad_EveryKey(t *testing.T) {
	cfg, err := loadUserConfig(`{
		"io": {"buffer_size": 1, "read_chunk_size": 16, "file_perm": "0600", "dir_perm": "0700", "default_encoding": "latin1"},
		"log": {"level": "debug", "format": "json"},
		"ui": {"color_error": "#FF0000", "color_muted": "8"}
	}`)
	require.NoError(t, err)

	assert.Equal(t, IOConfig{
		BufferSize:      1,
		ReadChunkSize:   16,
		FilePerm:        "0600",
		DirPerm:         "0700",
		DefaultEncoding: "latin1",
	}, cfg.IO)
	assert.Equal(t, os.FileMode(0o600), cfg.IO.FileMode())
	assert.Equal(t, os.FileMode(0o700), cfg.IO.DirMode())
	assert.Equal(t, LogConfig{Level: "debug", Format: "json"}, cfg.Log)
	assert.Equal(t, UIConfig{ColorError: "#FF0000", ColorMuted: "8"}, cfg.UI)
}

func TestLoad_SomeKeysKeepOtherDefaults(t *testing.T) {
	cfg, err := loadUserConfig(`{"io": {"buffer_size": 64, "default_encoding": ""}, "extra": true}`)
	require.NoError(t, err)

	want := DefaultConfig()
	want.IO.BufferSize = 64
	want.IO.DefaultEncoding = ""
	assert.Equal(t, want, cfg)
}

func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		kind    errutil.Kind
		message string
	}{
		{"malformed json", `{invalid json`, errutil.InvalidArgument, "invalid"},
		{"array document", `["not", "an", "object"]`, errutil.InvalidArgument, "parse config"},
		{"explicit zero buffer", `{"io": {"buffer_size": 0}}`, errutil.InvalidArgument, "io.buffer_size"},
		{"negative chunk", `{"io": {"read_chunk_size": -1}}`, errutil.InvalidArgument, "validation failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := loadUserConfig(tt.body)
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.message)
			assert.True(t, errutil.IsA(errutil.KindOf(err), tt.kind), "kind %s", errutil.KindOf(err))
		})
	}
}

func TestLoad_UnreadableFile(t *testing.T) {
	cfg, err := NewLoaderFrom(fakeSource{home: "/home/user", readErr: os.ErrPermission}).Load()
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.ErrorIs(t, err, os.ErrPermission)
	assert.Equal(t, errutil.Permission, errutil.KindOf(err))
}

func TestLoadFile(t *testing.T) {
	loader := NewLoaderFrom(fakeSource{files: map[string]string{"/etc/fio.json": `{"log": {"level": "info"}}`}})

	cfg, err := loader.LoadFile("/etc/fio.json")
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Log.Level)

	_, err = loader.LoadFile("/etc/missing.json")
	assert.Equal(t, errutil.NotFound, errutil.KindOf(err), "an explicit path must exist")
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 8192, cfg.IO.BufferSize)
	assert.Equal(t, 4096, cfg.IO.ReadChunkSize)
	assert.Equal(t, os.FileMode(0o644), cfg.IO.FileMode())
	assert.Equal(t, os.FileMode(0o755), cfg.IO.DirMode())
	assert.Equal(t, "utf-8", cfg.IO.DefaultEncoding)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.NotSame(t, DefaultConfig(), cfg)
}
