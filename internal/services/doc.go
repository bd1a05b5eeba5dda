// Package services defines the external collaborators of the pipeline and their production implementations.
//
// # Interfaces
//
//   - [Catalog] lists the "artist - title" strings of a catalog resource and names it.
//   - [Searcher] finds a video URL for one title.
//   - [Downloader] fetches and converts the audio of one video.
//
// # Spotify Implementation
//
// [SpotifyService] authenticates with the client-credentials grant; the [clientcredentials]
// transport fetches and refreshes tokens. Playlists are paginated by following "next"
// until it is null, skipping items whose track is null. Albums are a single page and
// tracks a single title. Requests can be paced with a [rate.Limiter].
//
// # yt-dlp Implementations
//
// [YTDLPSearcher] runs "ytsearch1:<query>" through go-ytdlp and returns the
// watch URL of the first hit. [YTDLPDownloader] uses go-ytdlp to download the best
// audio stream and convert it with ffmpeg.
//
// # Error Handling
//
// Services use typed errors from the shared package:
//   - [shared.ErrMissingCredentials] : client id or secret not configured
//   - [shared.ErrAuthFailed] : token request rejected
//   - [shared.ErrAPIRequest] : HTTP request or yt-dlp search failed
//   - [shared.ErrUnsupportedKind] : resource kind is not track, album or playlist
//   - [shared.ErrDownloadFailed] : yt-dlp download failed
//   - [shared.ErrTimeout] : the caller's deadline expired
package services
