package main

import (
	"context"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/desertthunder/ytgrab/internal/shared"
	"github.com/urfave/cli/v3"
)

// ConfigInit writes the embedded default configuration to the --config path.
func (r *Runner) ConfigInit(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")

	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}
	r.logger.Info("config file created", "path", path)

	r.writePlain("✓ Created %s\n", path)
	r.writePlainln("Next steps:")
	r.writePlain("1. Set credentials.spotify.client_id and client_secret (or %s / %s)\n",
		shared.EnvSpotifyClientID, shared.EnvSpotifyClientSecret)
	r.writePlain("2. Run 'ytgrab download <spotify link>'\n")
	return nil
}

// ConfigShow prints the effective configuration as TOML, after environment overrides.
func (r *Runner) ConfigShow(ctx context.Context, cmd *cli.Command) error {
	if r.config == nil {
		r.config = shared.DefaultConfig()
	}

	masked := *r.config
	masked.Credentials.Spotify.ClientSecret = mask(masked.Credentials.Spotify.ClientSecret)
	masked.YouTube.Cookies = mask(masked.YouTube.Cookies)

	if err := toml.NewEncoder(r.output).Encode(masked); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return "********"
}
