// package shared holds logging, configuration and file naming helpers
package shared

import (
	"crypto/md5"
	"encoding/hex"
	"io"
	"os"
	"regexp"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// reserved matches characters that are not allowed in file names on common filesystems.
var reserved = regexp.MustCompile(`[\\/*?:"<>|]`)

// NewLogger creates a new [log.Logger] instance with the specified [io.Writer], with timestamps and caller reporting enabled.
//
// The writer defaults to [os.Stderr]
func NewLogger(w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := log.Options{ReportTimestamp: true, ReportCaller: true}
	return log.NewWithOptions(w, opts)
}

// WithLogger creates a child [log.Logger] with the specified key-value pairs added to all log entries.
func WithLogger(l *log.Logger, kv ...any) *log.Logger {
	return l.With(kv...)
}

// SetLogLevel sets the [log.Level] for the given [log.Logger].
func SetLogLevel(l *log.Logger, ll log.Level) {
	l.SetLevel(ll)
}

// GenerateID generates a new v4 [uuid.UUID] as a string
func GenerateID() string {
	return uuid.New().String()
}

// SanitizeFilename removes characters that cannot appear in a file or directory name.
func SanitizeFilename(name string) string {
	return reserved.ReplaceAllString(name, "")
}

// TitleHash returns the first 8 hex characters of the MD5 digest of title.
func TitleHash(title string) string {
	sum := md5.Sum([]byte(title))
	return hex.EncodeToString(sum[:])[:8]
}

// TrackBasename returns the deterministic file name for a track without its extension.
//
// The hash covers the unsanitized title.
func TrackBasename(title string) string {
	return SanitizeFilename(title) + " [" + TitleHash(title) + "]"
}

// TrackFilename returns the deterministic file name for a track with the given extension (e.g. "mp3").
func TrackFilename(title, ext string) string {
	return TrackBasename(title) + "." + ext
}

// FileExists reports whether path can be stat'ed. Any error, not only a missing file, is false.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
