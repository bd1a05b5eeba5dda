package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Server.Port != 5000 {
			t.Errorf("expected server port 5000, got %d", config.Server.Port)
		}

		if config.Pipeline.MatchWorkers != 8 {
			t.Errorf("expected 8 match workers, got %d", config.Pipeline.MatchWorkers)
		}

		if config.Pipeline.DownloadWorkers != 32 {
			t.Errorf("expected 32 download workers, got %d", config.Pipeline.DownloadWorkers)
		}

		if config.Pipeline.LinkConcurrency != 4 {
			t.Errorf("expected link concurrency 4, got %d", config.Pipeline.LinkConcurrency)
		}

		if config.Pipeline.SearchTimeout != 30*time.Second {
			t.Errorf("expected search timeout 30s, got %s", config.Pipeline.SearchTimeout)
		}

		if config.Download.AudioFormat != "mp3" {
			t.Errorf("expected audio format mp3, got %s", config.Download.AudioFormat)
		}

		if config.YouTube.Binary != "yt-dlp" {
			t.Errorf("expected yt-dlp binary, got %s", config.YouTube.Binary)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Download.BaseDir != defaultConfig.Download.BaseDir {
			t.Errorf("created config base dir doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[server]
host = "127.0.0.1"
port = 8080

[credentials.spotify]
client_id = "test_client_id"
client_secret = "test_secret"

[pipeline]
match_workers = 5
download_timeout = "2m"

[download]
base_dir = "/music"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Server.Addr() != "127.0.0.1:8080" {
			t.Errorf("expected addr 127.0.0.1:8080, got %s", config.Server.Addr())
		}

		if config.Credentials.Spotify.ClientID != "test_client_id" {
			t.Errorf("expected spotify client_id test_client_id, got %s", config.Credentials.Spotify.ClientID)
		}

		if config.Pipeline.MatchWorkers != 5 {
			t.Errorf("expected 5 match workers, got %d", config.Pipeline.MatchWorkers)
		}

		if config.Pipeline.DownloadWorkers != 32 {
			t.Errorf("unset download workers should keep default, got %d", config.Pipeline.DownloadWorkers)
		}

		if config.Pipeline.DownloadTimeout != 2*time.Minute {
			t.Errorf("expected download timeout 2m, got %s", config.Pipeline.DownloadTimeout)
		}

		if config.Download.BaseDir != "/music" {
			t.Errorf("expected base dir /music, got %s", config.Download.BaseDir)
		}
	})

	t.Run("LoadConfig invalid TOML", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[server\nport = "), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		_, err := LoadConfig(configPath)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("LoadConfigOrDefault missing file", func(t *testing.T) {
		config, err := LoadConfigOrDefault(filepath.Join(t.TempDir(), "missing.toml"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if config.Server.Port != 5000 {
			t.Errorf("expected default port, got %d", config.Server.Port)
		}
	})
}

func TestConfigApplyEnv(t *testing.T) {
	env := func(values map[string]string) func(string) (string, bool) {
		return func(key string) (string, bool) {
			v, ok := values[key]
			return v, ok
		}
	}

	t.Run("overrides", func(t *testing.T) {
		config := DefaultConfig()
		err := config.ApplyEnv(env(map[string]string{
			EnvSpotifyClientID:     "id",
			EnvSpotifyClientSecret: "secret",
			EnvPort:                "9000",
			EnvCookies:             "SID=abc",
			EnvBaseDir:             "/tmp/music",
			EnvLogLevel:            "debug",
		}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if config.Credentials.Spotify.ClientID != "id" || config.Credentials.Spotify.ClientSecret != "secret" {
			t.Errorf("spotify credentials not applied: %+v", config.Credentials.Spotify)
		}
		if config.Server.Port != 9000 {
			t.Errorf("expected port 9000, got %d", config.Server.Port)
		}
		if config.YouTube.Cookies != "SID=abc" {
			t.Errorf("expected cookies override, got %q", config.YouTube.Cookies)
		}
		if config.Download.BaseDir != "/tmp/music" {
			t.Errorf("expected base dir override, got %q", config.Download.BaseDir)
		}
		if config.LogLevel() != log.DebugLevel {
			t.Errorf("expected debug level, got %v", config.LogLevel())
		}
	})

	t.Run("empty values are ignored", func(t *testing.T) {
		config := DefaultConfig()
		if err := config.ApplyEnv(env(map[string]string{EnvBaseDir: ""})); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if config.Download.BaseDir != "downloads" {
			t.Errorf("expected default base dir, got %q", config.Download.BaseDir)
		}
	})

	t.Run("invalid port", func(t *testing.T) {
		config := DefaultConfig()
		err := config.ApplyEnv(env(map[string]string{EnvPort: "http"}))
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestConfigValidateSpotify(t *testing.T) {
	config := DefaultConfig()
	if err := config.ValidateSpotify(); !errors.Is(err, ErrMissingCredentials) {
		t.Errorf("expected ErrMissingCredentials, got %v", err)
	}

	config.Credentials.Spotify.ClientID = "id"
	config.Credentials.Spotify.ClientSecret = "secret"
	if err := config.ValidateSpotify(); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestLoadEnvFile(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		if err := LoadEnvFile(filepath.Join(t.TempDir(), ".env")); err != nil {
			t.Errorf("expected nil for missing file, got %v", err)
		}
	})

	t.Run("loads values", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		if err := os.WriteFile(path, []byte("YTGRAB_TEST_VALUE=loaded\n"), 0644); err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { os.Unsetenv("YTGRAB_TEST_VALUE") })

		if err := LoadEnvFile(path); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := os.Getenv("YTGRAB_TEST_VALUE"); got != "loaded" {
			t.Errorf("expected loaded, got %q", got)
		}
	})
}
