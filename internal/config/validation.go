package config

import (
	"os"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	"golang.org/x/text/encoding/ianaindex"

	"github.com/Cyclone1070/fio/internal/errutil"
)

// Validate checks config values for correctness.
// Returns an InvalidArgumentError listing every invalid value.
func (c *Config) Validate() error {
	var errs []string

	// IO validation
	if c.IO.BufferSize < 1 {
		errs = append(errs, "io.buffer_size must be >= 1")
	}
	if c.IO.ReadChunkSize < 1 {
		errs = append(errs, "io.read_chunk_size must be >= 1")
	}
	if _, err := parsePerm(c.IO.FilePerm); err != nil {
		errs = append(errs, "io.file_perm must be an octal permission such as 0644")
	}
	if _, err := parsePerm(c.IO.DirPerm); err != nil {
		errs = append(errs, "io.dir_perm must be an octal permission such as 0755")
	}
	if c.IO.DefaultEncoding != "" {
		if enc, err := ianaindex.IANA.Encoding(c.IO.DefaultEncoding); err != nil || enc == nil {
			errs = append(errs, "io.default_encoding must name a supported IANA encoding")
		}
	}

	// Log validation
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, "log.level must be one of panic, fatal, error, warn, info, debug, trace")
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, `log.format must be "text" or "json"`)
	}

	// UI validation
	if !isValidColor(c.UI.ColorError) {
		errs = append(errs, "ui.color_error must be an ANSI code (0-255) or hex color")
	}
	if !isValidColor(c.UI.ColorMuted) {
		errs = append(errs, "ui.color_muted must be an ANSI code (0-255) or hex color")
	}

	if len(errs) > 0 {
		return errutil.Newf(errutil.InvalidArgument, "config validation failed: %s", strings.Join(errs, "; "))
	}

	return nil
}

// FileMode returns io.file_perm as a file mode.
func (c IOConfig) FileMode() os.FileMode {
	m, _ := parsePerm(c.FilePerm)
	return m
}

// DirMode returns io.dir_perm as a file mode.
func (c IOConfig) DirMode() os.FileMode {
	m, _ := parsePerm(c.DirPerm)
	return m
}

func parsePerm(s string) (os.FileMode, error) {
	v, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return 0, err
	}
	if v > 0o777 {
		return 0, strconv.ErrRange
	}
	return os.FileMode(v), nil
}

// isValidColor accepts "", ANSI codes 0-255, and #RGB or #RRGGBB hex colors.
func isValidColor(s string) bool {
	if s == "" {
		return true
	}
	if strings.HasPrefix(s, "#") {
		hex := s[1:]
		if len(hex) != 3 && len(hex) != 6 {
			return false
		}
		_, err := strconv.ParseUint(hex, 16, 32)
		return err == nil
	}
	n, err := strconv.Atoi(s)
	return err == nil && n >= 0 && n <= 255
}
