package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// ErrUnknownStat indicates an increment request for a counter that does not exist.
var ErrUnknownStat = errors.New("unknown stat counter")

// Store keeps all user profiles in memory and mirrors them to a single JSON
// document after every mutation. The full document is rewritten on each flush,
// which costs O(total users) per single-field update; acceptable for a
// personal or small-group bot, not for anything larger.
type Store struct {
	mu   sync.Mutex
	path string
	log  *slog.Logger

	users map[int64]Profile

	weatherRequests  int
	forecastRequests int
}

// Open loads the profile document from path. A missing file yields an empty
// store; a malformed file is logged and discarded, because the document is a
// best-effort cache rather than a transactional log.
func Open(path string, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.Default()
	}

	s := &Store{
		path:  path,
		log:   log,
		users: make(map[int64]Profile),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read profile document: %w", err)
	}

	if len(data) == 0 {
		return s, nil
	}

	var users map[int64]Profile
	if err := json.Unmarshal(data, &users); err != nil {
		log.Error("profile document is malformed, starting empty",
			slog.String("path", path), slog.Any("error", err))
		return s, nil
	}

	// A document holding the JSON literal null unmarshals into a nil map.
	if users != nil {
		s.users = users
	}
	return s, nil
}

// Profile returns the stored profile for userID, or a default profile when the
// user has never been seen. It never creates an entry.
func (s *Store) Profile(userID int64) Profile {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.users[userID]
	if p.Language == "" {
		p.Language = LanguageRU
	}
	return p
}

// SetCity stores a validated city for userID, creating the profile entry when
// absent, and flushes synchronously.
func (s *Store) SetCity(userID int64, city string) error {
	city = strings.TrimSpace(city)
	if city == "" {
		return errors.New("city must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.users[userID]
	p.City = city
	s.users[userID] = p

	return s.flushLocked()
}

// SetLanguage stores the interface language for userID, creating the profile
// entry when absent, and flushes synchronously.
func (s *Store) SetLanguage(userID int64, lang Language) error {
	if _, ok := ParseLanguage(string(lang)); !ok {
		return fmt.Errorf("unsupported language %q", lang)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.users[userID]
	p.Language = lang
	s.users[userID] = p

	return s.flushLocked()
}

// Ban marks userID as banned, creating the profile entry when absent.
func (s *Store) Ban(userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.users[userID]
	p.Banned = true
	s.users[userID] = p

	return s.flushLocked()
}

// Unban clears the ban flag for userID. Unbanning an unknown user is a no-op
// that does not create an entry.
func (s *Store) Unban(userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.users[userID]
	if !ok || !p.Banned {
		return nil
	}

	p.Banned = false
	s.users[userID] = p

	return s.flushLocked()
}

// IsBanned reports whether userID is currently banned.
func (s *Store) IsBanned(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.users[userID].Banned
}

// IncrementStat bumps a monotonic usage counter and flushes.
func (s *Store) IncrementStat(name StatName) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch name {
	case StatWeatherRequests:
		s.weatherRequests++
	case StatForecastRequests:
		s.forecastRequests++
	default:
		return fmt.Errorf("%w: %s", ErrUnknownStat, name)
	}

	return s.flushLocked()
}

// Stats derives user totals from the authoritative profile map and combines
// them with the monotonic request counters.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := 0
	for _, p := range s.users {
		if !p.Banned {
			active++
		}
	}

	return Stats{
		TotalUsers:       len(s.users),
		ActiveUsers:      active,
		WeatherRequests:  s.weatherRequests,
		ForecastRequests: s.forecastRequests,
	}
}

// UserIDs returns a sorted snapshot of every known user id.
func (s *Store) UserIDs() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int64, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return ids
}

// Flush rewrites the whole profile document from the in-memory map.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.flushLocked()
}

// HealthCheck reports whether the backing document directory is writable.
func (s *Store) HealthCheck(_ context.Context) error {
	dir := filepath.Dir(s.path)

	probe, err := os.CreateTemp(dir, ".profile-probe-*")
	if err != nil {
		return fmt.Errorf("profile store directory not writable: %w", err)
	}
	probe.Close()

	return os.Remove(probe.Name())
}

// flushLocked serializes the profile map and atomically replaces the backing
// document. A transient write failure is retried once before surfacing; the
// in-memory state stays valid either way.
func (s *Store) flushLocked() error {
	data, err := json.MarshalIndent(s.users, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal profile document: %w", err)
	}

	writeErr := s.writeDocument(data)
	if writeErr == nil {
		return nil
	}

	s.log.Warn("profile flush failed, retrying once",
		slog.String("path", s.path), slog.Any("error", writeErr))

	if writeErr = s.writeDocument(data); writeErr != nil {
		s.log.Error("profile flush failed",
			slog.String("path", s.path), slog.Any("error", writeErr))
		return fmt.Errorf("flush profile document: %w", writeErr)
	}

	return nil
}

func (s *Store) writeDocument(data []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".profile-*.json")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return err
	}

	return nil
}
