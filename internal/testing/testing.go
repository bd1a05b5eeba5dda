// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/desertthunder/ytgrab/internal/models"
)

// MockCatalog is a test double for [services.Catalog]
type MockCatalog struct {
	Titles  map[models.ResourceRef][]string
	Names   map[models.ResourceRef]string
	ListErr error
	NameErr error

	ListCalls atomic.Int32
	NameCalls atomic.Int32
}

func (m *MockCatalog) TrackList(ctx context.Context, ref models.ResourceRef) ([]string, error) {
	m.ListCalls.Add(1)
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return m.Titles[ref], nil
}

func (m *MockCatalog) DisplayName(ctx context.Context, ref models.ResourceRef) (string, error) {
	m.NameCalls.Add(1)
	if m.NameErr != nil {
		return "", m.NameErr
	}
	return m.Names[ref], nil
}

func (m *MockCatalog) Name() string { return "mock" }

// MockSearcher is a test double for [services.Searcher].
//
// FindFunc wins when set. Otherwise URLs maps a query to its result and Errs to its error.
type MockSearcher struct {
	FindFunc func(ctx context.Context, query string) (string, error)
	URLs     map[string]string
	Errs     map[string]error

	mu      sync.Mutex
	queries []string
}

func (m *MockSearcher) FindVideo(ctx context.Context, query string) (string, error) {
	m.mu.Lock()
	m.queries = append(m.queries, query)
	m.mu.Unlock()

	if m.FindFunc != nil {
		return m.FindFunc(ctx, query)
	}
	if err, ok := m.Errs[query]; ok {
		return "", err
	}
	return m.URLs[query], nil
}

// Queries returns every query received, in call order.
func (m *MockSearcher) Queries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.queries...)
}

// MockDownloader is a test double for [services.Downloader].
//
// Unless DownloadFunc or Err is set, it writes an empty file at dir/basename.<ext>.
type MockDownloader struct {
	DownloadFunc func(ctx context.Context, url, dir, basename string) error
	Err          error
	Ext          string

	Calls atomic.Int32
}

func (m *MockDownloader) DownloadAudio(ctx context.Context, url, dir, basename string) error {
	m.Calls.Add(1)
	if m.DownloadFunc != nil {
		return m.DownloadFunc(ctx, url, dir, basename)
	}
	if m.Err != nil {
		return m.Err
	}
	return os.WriteFile(filepath.Join(dir, basename+"."+m.Extension()), nil, 0644)
}

func (m *MockDownloader) Extension() string {
	if m.Ext == "" {
		return "mp3"
	}
	return m.Ext
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
