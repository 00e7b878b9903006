package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Acquisition modes.
const (
	ModeStream = "stream"
	ModePoll   = "poll"
	ModeSheet  = "sheet"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultHTTPPort          = 8080
	DefaultTitle             = "Who comes first?"
	DefaultBroadcastInterval = 5 * time.Second
	DefaultPollInterval      = 5 * time.Second
	DefaultSheetInterval     = 3 * time.Second
	DefaultRequestTimeout    = 10 * time.Second
	DefaultHandshakeTimeout  = 10 * time.Second
	DefaultStreamIdleTimeout = 45 * time.Second
	DefaultBaseURLEnv        = "REVEAL_API_BASE"
	DefaultLabelA            = "Boy"
	DefaultLabelB            = "Girl"
	DefaultColor             = "#8884d8"
)

// Config is the top-level dashboard configuration.
// Fields map 1:1 to config.example.yaml.
type Config struct {
	Dashboard DashboardConfig `yaml:"dashboard"`
	Source    Source          `yaml:"source"`
	Labels    Labels          `yaml:"labels"`
	Chart     ChartConfig     `yaml:"chart"`
}

// DashboardConfig holds the HTTP surface settings.
type DashboardConfig struct {
	// HTTPPort is the port for the page, REST API, metrics and WebSocket hub.
	HTTPPort int `yaml:"http_port"`

	// Title is shown above the chart.
	Title string `yaml:"title"`

	// BroadcastInterval is how often the WebSocket hub re-sends the current
	// state even when nothing changed.
	BroadcastInterval time.Duration `yaml:"broadcast_interval"`
}

// Source describes where the value pair comes from.
type Source struct {
	// Mode is one of: stream | poll | sheet.
	// stream tries the push channel first and falls back to polling.
	Mode string `yaml:"mode"`

	// BaseURL is the backend root; /api/values and /api/stream are appended.
	BaseURL string `yaml:"base_url"`

	// BaseURLEnv names an environment variable that overrides BaseURL when set.
	BaseURLEnv string `yaml:"base_url_env"`

	// PollInterval is the delay between the end of one poll and the next.
	PollInterval time.Duration `yaml:"poll_interval"`

	// RequestTimeout bounds a single poll request.
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// HandshakeTimeout bounds the wait for response headers, including the
	// push channel's handshake.
	HandshakeTimeout time.Duration `yaml:"handshake_timeout"`

	// StreamIdleTimeout is how long the push channel may stay silent before
	// it is treated as failed. The backend sends a keep-alive every 15s.
	// Zero disables the check.
	StreamIdleTimeout time.Duration `yaml:"stream_idle_timeout"`

	// TLS holds optional TLS dial options.
	TLS TLSConfig `yaml:"tls"`

	// Sheet configures the spreadsheet CSV export, used when Mode == "sheet".
	Sheet SheetConfig `yaml:"sheet"`
}

// TLSConfig holds TLS dial options for the backend.
type TLSConfig struct {
	// InsecureSkipVerify disables TLS certificate verification.
	// Only use this for internal CAs in development environments.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify"`
}

// SheetConfig describes a spreadsheet CSV export.
type SheetConfig struct {
	// URL is the full export URL (e.g. ".../export?format=csv").
	URL string `yaml:"url"`

	// AColumn and BColumn name the header cells holding a and b. When both
	// are empty the first two numeric cells of the last row are used.
	AColumn string `yaml:"a_column"`
	BColumn string `yaml:"b_column"`

	// UpdatedColumn optionally names the column holding updatedAt.
	UpdatedColumn string `yaml:"updated_column"`

	// Interval is the delay between sheet polls.
	Interval time.Duration `yaml:"interval"`
}

// Labels name the two counters on the chart.
type Labels struct {
	A string `yaml:"a"`
	B string `yaml:"b"`
}

// ChartConfig holds the colour lookup table.
type ChartConfig struct {
	// DefaultColor is used for any label missing from Colors.
	DefaultColor string `yaml:"default_color"`

	// Colors maps a label to its wedge fill and stroke.
	Colors map[string]ColorConfig `yaml:"colors"`
}

// ColorConfig is one palette entry.
type ColorConfig struct {
	Fill   string `yaml:"fill"`
	Stroke string `yaml:"stroke"`
}

// Base returns the backend root with trailing slashes stripped. The
// environment variable named by BaseURLEnv wins over BaseURL.
func (s Source) Base() string {
	base := s.BaseURL
	if s.BaseURLEnv != "" {
		if v := strings.TrimSpace(os.Getenv(s.BaseURLEnv)); v != "" {
			base = v
		}
	}
	return strings.TrimRight(base, "/")
}

// ValuesURL returns the REST pull endpoint.
func (s Source) ValuesURL() string { return s.Base() + "/api/values" }

// StreamURL returns the push endpoint.
func (s Source) StreamURL() string { return s.Base() + "/api/stream" }

// Load reads and parses the YAML config file at path.
// Missing optional fields are filled with sensible defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML config data, applying defaults and validation.
func Parse(data []byte) (*Config, error) {
	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return defaults()
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Dashboard: DashboardConfig{
			HTTPPort:          DefaultHTTPPort,
			Title:             DefaultTitle,
			BroadcastInterval: DefaultBroadcastInterval,
		},
		Source: Source{
			Mode:              ModeStream,
			BaseURLEnv:        DefaultBaseURLEnv,
			PollInterval:      DefaultPollInterval,
			RequestTimeout:    DefaultRequestTimeout,
			HandshakeTimeout:  DefaultHandshakeTimeout,
			StreamIdleTimeout: DefaultStreamIdleTimeout,
			Sheet: SheetConfig{
				Interval: DefaultSheetInterval,
			},
		},
		Labels: Labels{
			A: DefaultLabelA,
			B: DefaultLabelB,
		},
		Chart: ChartConfig{
			DefaultColor: DefaultColor,
			Colors: map[string]ColorConfig{
				DefaultLabelA: {Fill: "#56b0cbff", Stroke: "#2a5360ff"},
				DefaultLabelB: {Fill: "#FF9EA7", Stroke: "#724d50ff"},
			},
		},
	}
}

// validate checks required fields and structural constraints.
func validate(cfg *Config) error {
	if cfg.Dashboard.HTTPPort <= 0 || cfg.Dashboard.HTTPPort > 65535 {
		return fmt.Errorf("dashboard.http_port %d is out of range [1, 65535]", cfg.Dashboard.HTTPPort)
	}
	if cfg.Dashboard.BroadcastInterval <= 0 {
		return fmt.Errorf("dashboard.broadcast_interval must be positive")
	}

	src := cfg.Source
	switch src.Mode {
	case ModeStream, ModePoll:
		if err := validURL("source.base_url", src.Base()); err != nil {
			return err
		}
	case ModeSheet:
		if err := validURL("source.sheet.url", src.Sheet.URL); err != nil {
			return err
		}
		if (src.Sheet.AColumn == "") != (src.Sheet.BColumn == "") {
			return fmt.Errorf("source.sheet: a_column and b_column must be set together")
		}
		if src.Sheet.Interval <= 0 {
			return fmt.Errorf("source.sheet.interval must be positive")
		}
	default:
		return fmt.Errorf("source.mode %q unknown: want stream|poll|sheet", src.Mode)
	}
	if src.PollInterval <= 0 {
		return fmt.Errorf("source.poll_interval must be positive")
	}
	if src.RequestTimeout <= 0 {
		return fmt.Errorf("source.request_timeout must be positive")
	}
	if src.HandshakeTimeout < 0 {
		return fmt.Errorf("source.handshake_timeout must not be negative")
	}
	if src.StreamIdleTimeout < 0 {
		return fmt.Errorf("source.stream_idle_timeout must not be negative")
	}

	if cfg.Labels.A == "" || cfg.Labels.B == "" {
		return fmt.Errorf("labels.a and labels.b are required")
	}
	if cfg.Labels.A == cfg.Labels.B {
		return fmt.Errorf("labels.a and labels.b must differ")
	}
	return nil
}

func validURL(field, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s is required", field)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s %q: scheme must be http or https", field, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%s %q: host is required", field, raw)
	}
	return nil
}
