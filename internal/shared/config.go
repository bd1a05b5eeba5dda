package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Environment variables that override values read from the config file.
const (
	EnvSpotifyClientID     = "SPOTIFY_CLIENT_ID"
	EnvSpotifyClientSecret = "SPOTIFY_CLIENT_SECRET"
	EnvPort                = "PORT"
	EnvCookies             = "YTGRAB_COOKIES"
	EnvBaseDir             = "YTGRAB_BASE_DIR"
	EnvLogLevel            = "YTGRAB_LOG_LEVEL"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Log         LogConfig         `toml:"log"`
	Server      ServerConfig      `toml:"server"`
	Credentials CredentialsConfig `toml:"credentials"`
	YouTube     YouTubeConfig     `toml:"youtube"`
	Pipeline    PipelineConfig    `toml:"pipeline"`
	Download    DownloadConfig    `toml:"download"`
}

// LogConfig controls the logger level.
type LogConfig struct {
	Level string `toml:"level"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains Spotify API credentials for the client-credentials grant.
type SpotifyConfig struct {
	ClientID          string  `toml:"client_id"`
	ClientSecret      string  `toml:"client_secret"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// YouTubeConfig configures the yt-dlp backed search and download clients.
type YouTubeConfig struct {
	Binary            string  `toml:"binary"`
	Cookies           string  `toml:"cookies"`
	SearchesPerSecond float64 `toml:"searches_per_second"`
}

// PipelineConfig sizes the worker pools and bounds each unit of work.
type PipelineConfig struct {
	MatchWorkers    int           `toml:"match_workers"`
	DownloadWorkers int           `toml:"download_workers"`
	LinkConcurrency int           `toml:"link_concurrency"`
	SearchTimeout   time.Duration `toml:"search_timeout"`
	DownloadTimeout time.Duration `toml:"download_timeout"`
}

// DownloadConfig controls where and how audio files are written.
type DownloadConfig struct {
	BaseDir      string `toml:"base_dir"`
	AudioFormat  string `toml:"audio_format"`
	AudioQuality string `toml:"audio_quality"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the values of [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	config.normalize()
	return config, nil
}

// LoadConfigOrDefault loads path when it exists and falls back to [DefaultConfig] otherwise.
func LoadConfigOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return DefaultConfig(), nil
	}
	return LoadConfig(path)
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	config.normalize()
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: config file already exists at %s", ErrInvalidArgument, path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadEnvFile loads KEY=value pairs from a dotenv file into the process environment.
//
// Variables already present in the environment win. A missing file is not an error.
func LoadEnvFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// ApplyEnv overrides config values with the environment variables named above.
//
// lookup defaults to [os.LookupEnv].
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	if v, ok := lookup(EnvSpotifyClientID); ok && v != "" {
		c.Credentials.Spotify.ClientID = v
	}
	if v, ok := lookup(EnvSpotifyClientSecret); ok && v != "" {
		c.Credentials.Spotify.ClientSecret = v
	}
	if v, ok := lookup(EnvCookies); ok && v != "" {
		c.YouTube.Cookies = v
	}
	if v, ok := lookup(EnvBaseDir); ok && v != "" {
		c.Download.BaseDir = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := lookup(EnvPort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return fmt.Errorf("%w: %s=%q is not a valid port", ErrInvalidConfig, EnvPort, v)
		}
		c.Server.Port = port
	}

	return nil
}

// ValidateSpotify reports [ErrMissingCredentials] when the Spotify client credentials are unset.
func (c *Config) ValidateSpotify() error {
	if c.Credentials.Spotify.ClientID == "" || c.Credentials.Spotify.ClientSecret == "" {
		return fmt.Errorf("%w: set %s and %s or [credentials.spotify] in config.toml",
			ErrMissingCredentials, EnvSpotifyClientID, EnvSpotifyClientSecret)
	}
	return nil
}

// LogLevel parses the configured level, defaulting to info.
func (c *Config) LogLevel() log.Level {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// normalize replaces unset or out-of-range values with working defaults.
func (c *Config) normalize() {
	if c.Pipeline.MatchWorkers <= 0 {
		c.Pipeline.MatchWorkers = 8
	}
	if c.Pipeline.DownloadWorkers <= 0 {
		c.Pipeline.DownloadWorkers = 32
	}
	if c.Pipeline.LinkConcurrency <= 0 {
		c.Pipeline.LinkConcurrency = 4
	}
	if c.Pipeline.SearchTimeout <= 0 {
		c.Pipeline.SearchTimeout = 30 * time.Second
	}
	if c.Pipeline.DownloadTimeout <= 0 {
		c.Pipeline.DownloadTimeout = 10 * time.Minute
	}
	if c.YouTube.Binary == "" {
		c.YouTube.Binary = "yt-dlp"
	}
	if c.Download.BaseDir == "" {
		c.Download.BaseDir = "downloads"
	}
	if c.Download.AudioFormat == "" {
		c.Download.AudioFormat = "mp3"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 5000
	}
}
