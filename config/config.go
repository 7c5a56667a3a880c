// ABOUTME: Application configuration stored as JSON under the XDG data directory
// ABOUTME: Handles defaults, AMPLIFY_* environment overrides, and persistence
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// AppName names the XDG data directory.
const AppName = "amplify"

// Fallback transports.
const (
	TransportLog   = "log"
	TransportGmail = "gmail"
	TransportSES   = "ses"
)

// Duration is a time.Duration that reads and writes as "30s" in JSON.
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var n int64
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("invalid duration: %s", string(data))
		}
		*d = Duration(time.Duration(n) * time.Second)
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// FallbackConfig controls how undeliverable posts are reported.
type FallbackConfig struct {
	Transport string `json:"transport"`
	Recipient string `json:"recipient,omitempty"`
	Sender    string `json:"sender,omitempty"`
	AWSRegion string `json:"aws_region,omitempty"`
}

// PublisherConfig holds the fan-out pacing.
type PublisherConfig struct {
	PostDelay  Duration `json:"post_delay"`
	RetryDelay Duration `json:"retry_delay"`
	MaxRetries int      `json:"max_retries"`
}

// DaemonConfig holds the fixed polling intervals.
type DaemonConfig struct {
	ResponderInterval  Duration `json:"responder_interval"`
	ScheduleInterval   Duration `json:"schedule_interval"`
	AutomationInterval Duration `json:"automation_interval"`
	MetricsAddr        string   `json:"metrics_addr,omitempty"`
}

// Config is the whole application configuration.
type Config struct {
	DBPath    string            `json:"db_path,omitempty"`
	Fallback  FallbackConfig    `json:"fallback"`
	Publisher PublisherConfig   `json:"publisher"`
	Daemon    DaemonConfig      `json:"daemon"`
	BaseURLs  map[string]string `json:"base_urls,omitempty"`
	Verbose   bool              `json:"verbose,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		DBPath: filepath.Join(Dir(), AppName+".db"),
		Fallback: FallbackConfig{
			Transport: TransportLog,
		},
		Publisher: PublisherConfig{
			PostDelay:  Duration(2 * time.Second),
			RetryDelay: Duration(30 * time.Second),
			MaxRetries: 1,
		},
		Daemon: DaemonConfig{
			ResponderInterval:  Duration(30 * time.Second),
			ScheduleInterval:   Duration(time.Minute),
			AutomationInterval: Duration(time.Hour),
		},
	}
}

// Dir returns the XDG data directory for the app.
func Dir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// Path returns the config file location.
func Path() string {
	return filepath.Join(Dir(), "config.json")
}

// Load reads the config file, fills defaults for anything missing and then
// applies environment overrides:
//   - AMPLIFY_DB_PATH
//   - AMPLIFY_FALLBACK_TRANSPORT
//   - AMPLIFY_FALLBACK_RECIPIENT
//   - AMPLIFY_FALLBACK_SENDER
//   - AMPLIFY_AWS_REGION
//   - AMPLIFY_POST_DELAY, AMPLIFY_RETRY_DELAY
//   - AMPLIFY_METRICS_ADDR
//   - AMPLIFY_VERBOSE
func Load() (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(Path())
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config: %w", err)
		}
	}

	cfg.fillDefaults()
	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) fillDefaults() {
	d := Default()
	if c.DBPath == "" {
		c.DBPath = d.DBPath
	}
	if c.Fallback.Transport == "" {
		c.Fallback.Transport = d.Fallback.Transport
	}
	if c.Publisher.RetryDelay == 0 {
		c.Publisher.RetryDelay = d.Publisher.RetryDelay
	}
	if c.Publisher.MaxRetries == 0 {
		c.Publisher.MaxRetries = d.Publisher.MaxRetries
	}
	if c.Daemon.ResponderInterval == 0 {
		c.Daemon.ResponderInterval = d.Daemon.ResponderInterval
	}
	if c.Daemon.ScheduleInterval == 0 {
		c.Daemon.ScheduleInterval = d.Daemon.ScheduleInterval
	}
	if c.Daemon.AutomationInterval == 0 {
		c.Daemon.AutomationInterval = d.Daemon.AutomationInterval
	}
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("AMPLIFY_DB_PATH"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("AMPLIFY_FALLBACK_TRANSPORT"); v != "" {
		c.Fallback.Transport = strings.ToLower(v)
	}
	if v := os.Getenv("AMPLIFY_FALLBACK_RECIPIENT"); v != "" {
		c.Fallback.Recipient = v
	}
	if v := os.Getenv("AMPLIFY_FALLBACK_SENDER"); v != "" {
		c.Fallback.Sender = v
	}
	if v := os.Getenv("AMPLIFY_AWS_REGION"); v != "" {
		c.Fallback.AWSRegion = v
	}
	if v := os.Getenv("AMPLIFY_METRICS_ADDR"); v != "" {
		c.Daemon.MetricsAddr = v
	}
	if v := os.Getenv("AMPLIFY_VERBOSE"); v != "" {
		c.Verbose = v == "true" || v == "1"
	}
	for env, dst := range map[string]*Duration{
		"AMPLIFY_POST_DELAY":  &c.Publisher.PostDelay,
		"AMPLIFY_RETRY_DELAY": &c.Publisher.RetryDelay,
	} {
		v := os.Getenv(env)
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", env, err)
		}
		*dst = Duration(d)
	}
	if v := os.Getenv("AMPLIFY_MAX_RETRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid AMPLIFY_MAX_RETRIES: %w", err)
		}
		c.Publisher.MaxRetries = n
	}
	return nil
}

// Validate rejects configurations the daemon cannot run with.
func (c *Config) Validate() error {
	switch c.Fallback.Transport {
	case TransportLog:
	case TransportGmail, TransportSES:
		if c.Fallback.Recipient == "" {
			return fmt.Errorf("fallback transport %s requires a recipient", c.Fallback.Transport)
		}
	default:
		return fmt.Errorf("unknown fallback transport: %s", c.Fallback.Transport)
	}
	if c.Publisher.PostDelay < 0 || c.Publisher.RetryDelay < 0 {
		return fmt.Errorf("publisher delays must not be negative")
	}
	if c.Publisher.MaxRetries < 0 {
		return fmt.Errorf("max retries must not be negative")
	}
	return nil
}

// Save writes the config file with restricted permissions.
func (c *Config) Save() error {
	if err := os.MkdirAll(Dir(), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(Path(), data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// BaseURL returns the API base URL override for a platform, or def.
func (c *Config) BaseURL(platform, def string) string {
	if u, ok := c.BaseURLs[platform]; ok && u != "" {
		return u
	}
	return def
}
