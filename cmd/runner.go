package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytgrab/internal/services"
	"github.com/desertthunder/ytgrab/internal/shared"
	"github.com/desertthunder/ytgrab/internal/tasks"
	"github.com/urfave/cli/v3"
)

// syncWriter serializes writes so concurrent links never interleave within a line.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config       *shared.Config
	pipeline     *tasks.Pipeline
	logger       *log.Logger
	output       io.Writer
	input        io.Reader
	showProgress bool
	verbose      bool

	tempDirs []string
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Config and Pipeline are normally built in [Runner.Before] from the --config flag;
// setting them here skips that step.
type RunnerOpts struct {
	Config       *shared.Config
	Pipeline     *tasks.Pipeline
	Logger       *log.Logger
	Output       io.Writer
	Input        io.Reader
	ShowProgress bool
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}

	return &Runner{
		config:       opts.Config,
		pipeline:     opts.Pipeline,
		logger:       opts.Logger,
		output:       &syncWriter{w: opts.Output},
		input:        opts.Input,
		showProgress: opts.ShowProgress,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		downloadCommand, matchCommand, serveCommand, configCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Before loads the configuration named by --config, applies environment overrides and sets the log level.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	r.verbose = cmd.Bool("verbose")

	if r.config == nil {
		config, err := shared.LoadConfigOrDefault(cmd.String("config"))
		if err != nil {
			return ctx, err
		}
		if err := config.ApplyEnv(nil); err != nil {
			return ctx, err
		}
		r.config = config
	}

	level := r.config.LogLevel()
	if r.verbose {
		level = log.DebugLevel
	}
	shared.SetLogLevel(r.logger, level)

	return ctx, nil
}

// ensurePipeline builds the Spotify catalog, yt-dlp clients and pipeline on first use.
func (r *Runner) ensurePipeline() error {
	if r.pipeline != nil {
		return nil
	}
	if r.config == nil {
		r.config = shared.DefaultConfig()
	}
	if err := r.config.ValidateSpotify(); err != nil {
		return err
	}

	spotify, err := services.NewSpotifyService(services.SpotifyOpts{
		ClientID:          r.config.Credentials.Spotify.ClientID,
		ClientSecret:      r.config.Credentials.Spotify.ClientSecret,
		RequestsPerSecond: r.config.Credentials.Spotify.RequestsPerSecond,
		Logger:            r.logger,
	})
	if err != nil {
		return err
	}

	cookies, err := r.cookiesPath()
	if err != nil {
		return err
	}

	yt := r.config.YouTube
	r.pipeline = tasks.NewPipeline(tasks.PipelineOpts{
		Catalog:  spotify,
		Searcher: services.NewYTDLPSearcher(yt.Binary, cookies),
		Downloader: services.NewYTDLPDownloader(services.DownloaderOpts{
			BinaryPath:   yt.Binary,
			CookiesPath:  cookies,
			AudioFormat:  r.config.Download.AudioFormat,
			AudioQuality: r.config.Download.AudioQuality,
		}),
		MatchWorkers:    r.config.Pipeline.MatchWorkers,
		DownloadWorkers: r.config.Pipeline.DownloadWorkers,
		SearchTimeout:   r.config.Pipeline.SearchTimeout,
		DownloadTimeout: r.config.Pipeline.DownloadTimeout,
		SearchRate:      yt.SearchesPerSecond,
		BaseDir:         r.config.Download.BaseDir,
		Logger:          r.logger,
	})
	return nil
}

// cookiesPath returns a cookies.txt path for yt-dlp.
//
// The configured value is used as-is when it names an existing file. Otherwise it is
// parsed as a cookie blob (header, cURL command or Netscape text) and written to a
// private temp directory removed by [Runner.Close].
func (r *Runner) cookiesPath() (string, error) {
	value := r.config.YouTube.Cookies
	if value == "" {
		return "", nil
	}
	if shared.FileExists(value) {
		return value, nil
	}

	dir, err := os.MkdirTemp("", "ytgrab-cookies-")
	if err != nil {
		return "", fmt.Errorf("failed to create cookie directory: %w", err)
	}
	r.tempDirs = append(r.tempDirs, dir)

	path, err := shared.WriteCookieFile(value, dir)
	if err != nil {
		return "", err
	}
	r.logger.Debug("wrote cookie file", "path", path)
	return path, nil
}

// Close removes temporary files created by the runner.
func (r *Runner) Close() {
	for _, dir := range r.tempDirs {
		if err := os.RemoveAll(dir); err != nil {
			r.logger.Warn("failed to remove temp dir", "dir", dir, "error", err)
		}
	}
	r.tempDirs = nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(append(output, '\n')); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n%v\n═══════════════════════════════════════\n", title)
}
