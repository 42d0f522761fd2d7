package config

// Config holds all application configuration values.
// Defaults are set in DefaultConfig() and can be overridden via dotfile.
// NOTE: Values in config files override defaults, including explicit zero values.
// Missing keys are left at their default values.
type Config struct {
	IO  IOConfig  `json:"io"`
	Log LogConfig `json:"log"`
	UI  UIConfig  `json:"ui"`
}

type IOConfig struct {
	// Handles
	BufferSize    int `json:"buffer_size"`     // Default: 8192 (bytes buffered before a write reaches the file)
	ReadChunkSize int `json:"read_chunk_size"` // Default: 4096 (bytes read ahead per fill)

	// Permissions, as octal strings
	FilePerm string `json:"file_perm"` // Default: "0644"
	DirPerm  string `json:"dir_perm"`  // Default: "0755"

	// CLI only; the library always takes an explicit encoding
	DefaultEncoding string `json:"default_encoding"` // Default: "utf-8"
}

type LogConfig struct {
	Level  string `json:"level"`  // Default: "warn"
	Format string `json:"format"` // Default: "text" ("text" or "json")
}

type UIConfig struct {
	// Colors for the unhandled-error report (ANSI 0-255 or hex)
	ColorError string `json:"color_error"` // Default: "196"
	ColorMuted string `json:"color_muted"` // Default: "245"
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		IO: IOConfig{
			BufferSize:      8192,
			ReadChunkSize:   4096,
			FilePerm:        "0644",
			DirPerm:         "0755",
			DefaultEncoding: "utf-8",
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
		UI: UIConfig{
			ColorError: "196",
			ColorMuted: "245",
		},
	}
}
