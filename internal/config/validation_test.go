package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cyclone1070/fio/internal/errutil"
)

func TestValidate_RejectsField(t *testing.T) {
	tests := []struct {
		field  string
		mutate func(*Config)
	}{
		{"io.buffer_size", func(c *Config) { c.IO.BufferSize = 0 }},
		{"io.read_chunk_size", func(c *Config) { c.IO.ReadChunkSize = -4 }},
		{"io.file_perm", func(c *Config) { c.IO.FilePerm = "0999" }},
		{"io.dir_perm", func(c *Config) { c.IO.DirPerm = "07777" }},
		{"io.default_encoding", func(c *Config) { c.IO.DefaultEncoding = "klingon" }},
		{"log.level", func(c *Config) { c.Log.Level = "loud" }},
		{"log.format", func(c *Config) { c.Log.Format = "xml" }},
		{"ui.color_error", func(c *Config) { c.UI.ColorError = "red" }},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
			assert.ErrorIs(t, err, errutil.InvalidArgument)
		})
	}
}

func TestValidate_CollectsEveryProblem(t *testing.T) {
	cfg := DefaultConfig()
	cfg.IO.BufferSize = 0
	cfg.Log.Format = ""
	cfg.UI.ColorMuted = "300"

	err := cfg.Validate()
	require.Error(t, err)
	for _, field := range []string{"io.buffer_size", "log.format", "ui.color_muted"} {
		assert.Contains(t, err.Error(), field)
	}
}

func TestIsValidColor(t *testing.T) {
	valid := []string{"", "0", "255", "#FFF", "#ff5500"}
	invalid := []string{"256", "-1", "#GG0000", "#12345", "red"}

	for _, c := range valid {
		assert.True(t, isValidColor(c), "%q", c)
	}
	for _, c := range invalid {
		assert.False(t, isValidColor(c), "%q", c)
	}
}
