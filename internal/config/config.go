package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jask/emotionpoll/internal/poll"
)

// Config holds application configuration.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Poll   PollConfig   `mapstructure:"poll"`
	UI     UIConfig     `mapstructure:"ui"`
	Log    LogConfig    `mapstructure:"log"`
}

// ServerConfig locates the poll backend.
type ServerConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// PollConfig holds voting settings.
type PollConfig struct {
	Emotions    []string      `mapstructure:"emotions"`
	ResultDelay time.Duration `mapstructure:"result_delay"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	ChartWidth      int    `mapstructure:"chart_width"`
	ChartHeight     int    `mapstructure:"chart_height"`
	ChartBackground string `mapstructure:"chart_background"`
}

// LogConfig holds diagnostics settings. An empty path disables logging.
type LogConfig struct {
	Path  string `mapstructure:"path"`
	Level string `mapstructure:"level"`
}

// Load reads configuration from file and env. Env var overrides use prefix EMOTIONPOLL_.
func Load() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("server.base_url", "http://localhost:5000")
	v.SetDefault("server.timeout", "10s")
	v.SetDefault("poll.emotions", slices.Clone(poll.DefaultEmotions))
	v.SetDefault("poll.result_delay", "1s")
	v.SetDefault("ui.chart_width", 60)
	v.SetDefault("ui.chart_height", 12)
	v.SetDefault("ui.chart_background", "#FFFFFF")
	v.SetDefault("log.path", filepath.Join(os.Getenv("HOME"), ".local", "state", "emotionpoll", "emotionpoll.log"))
	v.SetDefault("log.level", "info")

	v.SetConfigType("toml")

	cfgPath := os.Getenv("EMOTIONPOLL_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "emotionpoll"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("EMOTIONPOLL")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgPath != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	c.Poll.Emotions = splitList(c.Poll.Emotions)
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks values Load cannot type-check.
func (c Config) Validate() error {
	u, err := url.Parse(c.Server.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("config: server.base_url %q must be an http(s) URL", c.Server.BaseURL)
	}
	if c.Server.Timeout < 0 {
		return fmt.Errorf("config: server.timeout must not be negative")
	}
	if c.Poll.ResultDelay < 0 {
		return fmt.Errorf("config: poll.result_delay must not be negative")
	}
	if len(c.Poll.Emotions) == 0 {
		return fmt.Errorf("config: poll.emotions is empty")
	}
	seen := map[string]struct{}{}
	for _, e := range c.Poll.Emotions {
		key := strings.ToLower(strings.TrimSpace(e))
		if key == "" {
			return fmt.Errorf("config: poll.emotions contains a blank entry")
		}
		if strings.EqualFold(key, poll.OtherValue) {
			return fmt.Errorf("config: poll.emotions must not list Other; it is always added")
		}
		if _, dup := seen[key]; dup {
			return fmt.Errorf("config: poll.emotions lists %q twice", e)
		}
		seen[key] = struct{}{}
	}
	if c.UI.ChartWidth <= 0 || c.UI.ChartHeight <= 0 {
		return fmt.Errorf("config: ui.chart_width and ui.chart_height must be positive")
	}
	return nil
}

// splitList accepts both a TOML array and a comma-separated env value.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
