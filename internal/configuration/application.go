package configuration

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/PapiCZ/foxfs/vfs"
)

const (
	KeyImage      = "FOXFS_IMAGE"
	KeyCreate     = "FOXFS_CREATE"
	KeyLabel      = "FOXFS_LABEL"
	KeyLogLevel   = "FOXFS_LOG_LEVEL"
	KeyAutoFormat = "FOXFS_AUTOFORMAT"
)

// AppConfiguration is the principal structure holding the application configuration.
type AppConfiguration struct {
	ImagePath  string
	Create     bool
	Label      string
	LogLevel   slog.Level
	AutoFormat bool
}

// NewAppConfiguration returns a pointer to a new [AppConfiguration] holding
// the defaults.
func NewAppConfiguration() *AppConfiguration {
	return &AppConfiguration{
		ImagePath: "foxfs.img",
		Create:    true,
		Label:     "FOXFS",
		LogLevel:  slog.LevelInfo,
	}
}

// Load applies the configuration files and then the values returned by
// lookupEnv, so the process environment wins over files.
func (c *ConfigProviderImpl) Load(cfg *AppConfiguration, lookupEnv func(string) (string, bool), filenames ...string) error {
	envMap := make(map[string]string)

	if len(filenames) > 0 {
		fileMap, err := c.ReadGeneric(filenames...)
		if err != nil {
			return fmt.Errorf("(config) %w", err)
		}
		for k, v := range fileMap {
			envMap[k] = v
		}
	}

	for _, key := range []string{KeyImage, KeyCreate, KeyLabel, KeyLogLevel, KeyAutoFormat} {
		if value, ok := lookupEnv(key); ok {
			envMap[key] = value
		}
	}

	if v := c.MapKeyToString(envMap, KeyImage); v != "" {
		cfg.ImagePath = v
	}
	if v := c.MapKeyToString(envMap, KeyLabel); v != "" {
		if len(v) > vfs.LabelLength {
			return fmt.Errorf("(config) %s is longer than %d bytes", KeyLabel, vfs.LabelLength)
		}
		cfg.Label = v
	}
	if v := c.MapKeyToString(envMap, KeyLogLevel); v != "" {
		level, err := ParseLevel(v)
		if err != nil {
			return fmt.Errorf("(config) %w", err)
		}
		cfg.LogLevel = level
	}
	cfg.Create = c.MapKeyToBool(envMap, KeyCreate, cfg.Create)
	cfg.AutoFormat = c.MapKeyToBool(envMap, KeyAutoFormat, cfg.AutoFormat)

	return nil
}

func ParseLevel(value string) (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(strings.TrimSpace(value)))
	if err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", value, err)
	}
	return level, nil
}
