// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// app returns the root command. Running it without a subcommand behaves like download.
func (r *Runner) app() *cli.Command {
	return &cli.Command{
		Name:    "ytgrab",
		Usage:   "Download Spotify playlists, albums and tracks as audio from YouTube",
		Version: "0.1.0",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Print every track and enable debug logging",
			},
		}, downloadFlags(true)...),
		Before:    r.Before,
		Arguments: downloadArgs(),
		Action:    r.Download,
		Commands:  r.register(),
	}
}

func downloadArgs() []cli.Argument {
	return []cli.Argument{
		&cli.StringArgs{Name: "links", Min: 0, Max: -1},
	}
}

// downloadFlags are shared by the root command and download. On the root they are
// local so subcommands do not inherit them.
func downloadFlags(local bool) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "folder",
			Aliases: []string{"f"},
			Usage:   "Subfolder of the download directory to save into, instead of the resource name",
			Local:   local,
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Print the summary as JSON",
			Local: local,
		},
	}
}

// downloadCommand downloads every track of one or more links
func downloadCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "download",
		Aliases:   []string{"dl", "get"},
		Usage:     "Match and download tracks for Spotify links (prompts when none are given)",
		ArgsUsage: "[link ...]",
		Arguments: downloadArgs(),
		Flags:     downloadFlags(false),
		Action:    r.Download,
	}
}

// matchCommand resolves and matches without downloading
func matchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "match",
		Aliases:   []string{"m"},
		Usage:     "List a Spotify resource and find a YouTube video for each track",
		ArgsUsage: "<link>",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "link"},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "format",
				Usage: "Output format: json, csv, txt or markdown",
				Value: "json",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write to a file instead of stdout",
			},
		},
		Action: r.Match,
	}
}

// serveCommand starts the HTTP API
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the HTTP server",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "port",
				Usage: "Port to listen on (overrides config and PORT)",
			},
		},
		Action: r.Serve,
	}
}

// configCommand manages the configuration file
func configCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "init",
				Usage:  "Write the default config.toml to the --config path",
				Action: r.ConfigInit,
			},
			{
				Name:   "show",
				Usage:  "Print the effective configuration with secrets masked",
				Action: r.ConfigShow,
			},
		},
	}
}
