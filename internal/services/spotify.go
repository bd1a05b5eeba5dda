// Spotify API implementation of [Catalog]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytgrab/internal/models"
	"github.com/desertthunder/ytgrab/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"
)

const (
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	playlistPageSize = 100
	albumPageSize    = 50
)

// SpotifyArtist represents a simplified Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SpotifyTrack represents a Spotify track. Album track listings return the same shape without album data.
type SpotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Artists    []SpotifyArtist `json:"artists"`
	DurationMS int             `json:"duration_ms"`
}

// Title formats the track as "first artist - name".
func (t SpotifyTrack) Title() string {
	if len(t.Artists) == 0 {
		return t.Name
	}
	return t.Artists[0].Name + " - " + t.Name
}

// SpotifyPlaylistTrack represents a track within a playlist context.
//
// Track is null for items that were removed or are unavailable in the market.
type SpotifyPlaylistTrack struct {
	AddedAt string        `json:"added_at"`
	Track   *SpotifyTrack `json:"track"`
}

// SpotifyPaginatedPlaylistTracks is one page of a playlist's tracks.
type SpotifyPaginatedPlaylistTracks struct {
	Items  []SpotifyPlaylistTrack `json:"items"`
	Total  int                    `json:"total"`
	Limit  int                    `json:"limit"`
	Offset int                    `json:"offset"`
	Next   *string                `json:"next"`
}

// SpotifyPaginatedAlbumTracks is one page of an album's tracks.
type SpotifyPaginatedAlbumTracks struct {
	Items  []SpotifyTrack `json:"items"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
	Next   *string        `json:"next"`
}

type namedResource struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SpotifyOpts contains configuration for creating a [SpotifyService].
type SpotifyOpts struct {
	ClientID          string
	ClientSecret      string
	TokenURL          string       // defaults to the Spotify accounts endpoint
	BaseURL           string       // defaults to the Spotify Web API
	HTTPClient        *http.Client // transport used for token and API requests
	RequestsPerSecond float64      // 0 disables pacing
	Logger            *log.Logger
}

// SpotifyService implements [Catalog] for the Spotify Web API.
//
// Uses the [clientcredentials] grant, so only public catalog data is reachable.
type SpotifyService struct {
	config     *clientcredentials.Config
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	logger     *log.Logger
}

// NewSpotifyService creates a new Spotify service with the given client credentials.
func NewSpotifyService(opts SpotifyOpts) (*SpotifyService, error) {
	if opts.ClientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}
	if opts.ClientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}
	if opts.TokenURL == "" {
		opts.TokenURL = spotifyTokenURL
	}
	if opts.BaseURL == "" {
		opts.BaseURL = spotifyBaseURL
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	config := &clientcredentials.Config{
		ClientID:     opts.ClientID,
		ClientSecret: opts.ClientSecret,
		TokenURL:     opts.TokenURL,
	}

	ctx := context.Background()
	if opts.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, opts.HTTPClient)
	}

	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}

	return &SpotifyService{
		config:     config,
		httpClient: config.Client(ctx),
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		limiter:    limiter,
		logger:     shared.WithLogger(opts.Logger, "service", "spotify"),
	}, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// Authenticate fetches an access token so bad credentials surface before any work is scheduled.
func (s *SpotifyService) Authenticate(ctx context.Context) error {
	if _, err := s.config.Token(ctx); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}
	return nil
}

// doRequest performs an authenticated GET against the Spotify API.
//
// endpoint is either a path relative to the base URL or an absolute "next" URL from a paginated response.
func (s *SpotifyService) doRequest(ctx context.Context, endpoint string, result any) error {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	apiURL := endpoint
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		apiURL = s.baseURL + endpoint
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: spotify status %d for %s", shared.ErrAPIRequest, resp.StatusCode, endpoint)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("%w: failed to decode response: %v", shared.ErrAPIRequest, err)
		}
	}

	return nil
}

// Track retrieves a single track by ID.
func (s *SpotifyService) Track(ctx context.Context, trackID string) (*SpotifyTrack, error) {
	var track SpotifyTrack
	if err := s.doRequest(ctx, "/tracks/"+url.PathEscape(trackID), &track); err != nil {
		return nil, err
	}
	return &track, nil
}

// PlaylistTracks retrieves every track of a playlist, following pagination until "next" is null.
//
// Null tracks are skipped.
func (s *SpotifyService) PlaylistTracks(ctx context.Context, playlistID string) ([]SpotifyTrack, error) {
	var tracks []SpotifyTrack
	endpoint := fmt.Sprintf("/playlists/%s/tracks?limit=%d", url.PathEscape(playlistID), playlistPageSize)

	for page := 1; ; page++ {
		var response SpotifyPaginatedPlaylistTracks
		if err := s.doRequest(ctx, endpoint, &response); err != nil {
			return nil, err
		}

		for _, item := range response.Items {
			if item.Track == nil {
				continue
			}
			tracks = append(tracks, *item.Track)
		}

		s.logger.Debug("fetched playlist page", "playlist", playlistID, "page", page, "items", len(response.Items))

		if response.Next == nil || *response.Next == "" {
			break
		}
		endpoint = *response.Next
	}

	return tracks, nil
}

// AlbumTracks retrieves the first page of an album's tracks.
func (s *SpotifyService) AlbumTracks(ctx context.Context, albumID string) ([]SpotifyTrack, error) {
	endpoint := fmt.Sprintf("/albums/%s/tracks?limit=%d", url.PathEscape(albumID), albumPageSize)

	var response SpotifyPaginatedAlbumTracks
	if err := s.doRequest(ctx, endpoint, &response); err != nil {
		return nil, err
	}
	return response.Items, nil
}

// TrackList implements [Catalog].
func (s *SpotifyService) TrackList(ctx context.Context, ref models.ResourceRef) ([]string, error) {
	var tracks []SpotifyTrack

	switch ref.Kind {
	case models.KindPlaylist:
		items, err := s.PlaylistTracks(ctx, ref.ID)
		if err != nil {
			return nil, err
		}
		tracks = items
	case models.KindAlbum:
		items, err := s.AlbumTracks(ctx, ref.ID)
		if err != nil {
			return nil, err
		}
		tracks = items
	case models.KindTrack:
		track, err := s.Track(ctx, ref.ID)
		if err != nil {
			return nil, err
		}
		tracks = []SpotifyTrack{*track}
	default:
		return nil, fmt.Errorf("%w: %q", shared.ErrUnsupportedKind, ref.Kind)
	}

	titles := make([]string, 0, len(tracks))
	for _, track := range tracks {
		titles = append(titles, track.Title())
	}
	return titles, nil
}

// DisplayName implements [Catalog].
func (s *SpotifyService) DisplayName(ctx context.Context, ref models.ResourceRef) (string, error) {
	switch ref.Kind {
	case models.KindPlaylist:
		var playlist namedResource
		if err := s.doRequest(ctx, "/playlists/"+url.PathEscape(ref.ID)+"?fields=id,name", &playlist); err != nil {
			return "", err
		}
		return playlist.Name, nil
	case models.KindAlbum:
		var album namedResource
		if err := s.doRequest(ctx, "/albums/"+url.PathEscape(ref.ID), &album); err != nil {
			return "", err
		}
		return album.Name, nil
	case models.KindTrack:
		track, err := s.Track(ctx, ref.ID)
		if err != nil {
			return "", err
		}
		return track.Title(), nil
	default:
		return "", fmt.Errorf("%w: %q", shared.ErrUnsupportedKind, ref.Kind)
	}
}
