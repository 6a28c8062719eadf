// Package datastore provides the two-tier filesystem store for park data:
// permanent fixtures plus a day-scoped volatile cache, both keyed by park
// code. The store exclusively owns the files under its roots; callers must
// serialize writes per (park, name).
package datastore

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"
)

// Store is the two-tier key-value store over the filesystem.
type Store struct {
	fixturesDir string
	cacheDir    string
	rawDir      string
	logger      *slog.Logger

	// now is swappable for day-rollover tests.
	now func() time.Time
}

// New creates a store rooted at the given directories.
func New(fixturesDir, cacheDir, rawDir string, logger *slog.Logger) *Store {
	return &Store{
		fixturesDir: fixturesDir,
		cacheDir:    cacheDir,
		rawDir:      rawDir,
		logger:      logger,
		now:         time.Now,
	}
}

// ErrMiss is returned when a fixture or cache entry does not exist.
var ErrMiss = errors.New("datastore: miss")

func (s *Store) fixturePath(park, name string) string {
	return filepath.Join(s.fixturesDir, strings.ToUpper(park), name+".json")
}

func (s *Store) cachePath(park, name string) string {
	day := s.now().Local().Format("2006-01-02")
	return filepath.Join(s.cacheDir, strings.ToUpper(park), day, name+".json")
}

// RawPath returns the path for a raw upstream payload dump.
func (s *Store) RawPath(park, name string) string {
	return filepath.Join(s.rawDir, strings.ToUpper(park), name+".json")
}

// LoadFixture reads a fixture into out. Returns ErrMiss when absent; other
// read errors are logged and also surfaced as ErrMiss so callers degrade
// uniformly.
func (s *Store) LoadFixture(park, name string, out any) error {
	return s.read(s.fixturePath(park, name), out)
}

// SaveFixture replaces the whole fixture file atomically.
func (s *Store) SaveFixture(park, name string, data any) error {
	return s.write(s.fixturePath(park, name), data)
}

// HasFixture reports fixture presence without reading it.
func (s *Store) HasFixture(park, name string) bool {
	_, err := os.Stat(s.fixturePath(park, name))
	return err == nil
}

// LoadDailyCache reads today's cache entry into out; a file from any other
// calendar day is a miss by construction of the dated directory.
func (s *Store) LoadDailyCache(park, name string, out any) error {
	return s.read(s.cachePath(park, name), out)
}

// SaveDailyCache writes today's cache entry. The TTL is implicit in the
// directory name.
func (s *Store) SaveDailyCache(park, name string, data any) error {
	return s.write(s.cachePath(park, name), data)
}

// LoadAmenities reads the hub-keyed amenity sub-store for one hub.
func (s *Store) LoadAmenities(park, hubName string, out any) error {
	return s.LoadFixture(park, "amenities_"+Slugify(hubName), out)
}

// SaveAmenities writes the hub-keyed amenity sub-store for one hub.
func (s *Store) SaveAmenities(park, hubName string, data any) error {
	return s.SaveFixture(park, "amenities_"+Slugify(hubName), data)
}

// HasAmenities reports whether a hub's amenity file exists.
func (s *Store) HasAmenities(park, hubName string) bool {
	return s.HasFixture(park, "amenities_"+Slugify(hubName))
}

// SaveRaw dumps a raw upstream payload for later pipeline stages.
func (s *Store) SaveRaw(park, name string, data []byte) error {
	path := s.RawPath(park, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating raw dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing raw %s: %w", name, err)
	}
	return os.Rename(tmp, path)
}

// LoadRaw reads a raw payload into out; returns ErrMiss when absent.
func (s *Store) LoadRaw(park, name string, out any) error {
	return s.read(s.RawPath(park, name), out)
}

// HasRaw reports raw payload presence.
func (s *Store) HasRaw(park, name string) bool {
	_, err := os.Stat(s.RawPath(park, name))
	return err == nil
}

func (s *Store) read(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("datastore read failed", slog.String("path", path), slog.Any("error", err))
		}
		return ErrMiss
	}
	if err := json.Unmarshal(data, out); err != nil {
		s.logger.Warn("datastore decode failed", slog.String("path", path), slog.Any("error", err))
		return ErrMiss
	}
	return nil
}

func (s *Store) write(path string, data any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		s.logger.Error("datastore mkdir failed", slog.String("path", path), slog.Any("error", err))
		return fmt.Errorf("creating dir for %s: %w", path, err)
	}
	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		s.logger.Error("datastore encode failed", slog.String("path", path), slog.Any("error", err))
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	// Write-then-rename keeps readers from observing a partial file.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, encoded, 0o644); err != nil {
		s.logger.Error("datastore write failed", slog.String("path", path), slog.Any("error", err))
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		s.logger.Error("datastore rename failed", slog.String("path", path), slog.Any("error", err))
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

// Slugify lowercases a hub name and folds every non-alphanumeric run to a
// single underscore.
func Slugify(name string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore && b.Len() > 0 {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
