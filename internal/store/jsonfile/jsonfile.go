// Package jsonfile stores profiles and settings as pretty-printed JSON files
// under a data directory:
//
//	<dir>/profiles/<name>.json
//	<dir>/settings.json
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/alanyoungcy/marketwatch/internal/domain"
)

const (
	profilesDir  = "profiles"
	settingsFile = "settings.json"
	fileExt      = ".json"
)

// Store is the file-backed profile and settings store.
type Store struct {
	dir string
	mu  sync.RWMutex
}

// New creates the directory layout under dir.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(dir, profilesDir), 0o755); err != nil {
		return nil, fmt.Errorf("jsonfile: create data dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the data directory.
func (s *Store) Dir() string { return s.dir }

// Profiles returns the ProfileStore view.
func (s *Store) Profiles() *ProfileStore { return &ProfileStore{s: s} }

// Settings returns the SettingsStore view.
func (s *Store) Settings() *SettingsStore { return &SettingsStore{s: s} }

func (s *Store) profilePath(name string) string {
	return filepath.Join(s.dir, profilesDir, name+fileExt)
}

// ProfileStore implements domain.ProfileStore.
type ProfileStore struct{ s *Store }

// List returns Default followed by the stored names, sorted.
func (p *ProfileStore) List(_ context.Context) ([]string, error) {
	p.s.mu.RLock()
	defer p.s.mu.RUnlock()

	entries, err := os.ReadDir(filepath.Join(p.s.dir, profilesDir))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("jsonfile: list profiles: %w", err)
	}
	var names []string
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), fileExt)
		if e.IsDir() || !ok || name == domain.DefaultProfileName {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return append([]string{domain.DefaultProfileName}, names...), nil
}

// Load reads the named profile, falling back to defaults when no file exists.
func (p *ProfileStore) Load(_ context.Context, name string) (domain.Profile, error) {
	if name == domain.DefaultProfileName {
		return domain.DefaultProfile(name), nil
	}
	if err := domain.DefaultProfile(name).Validate(); err != nil {
		return domain.Profile{}, err
	}

	p.s.mu.RLock()
	defer p.s.mu.RUnlock()

	data, err := os.ReadFile(p.s.profilePath(name))
	if errors.Is(err, fs.ErrNotExist) {
		return domain.DefaultProfile(name), nil
	}
	if err != nil {
		return domain.Profile{}, fmt.Errorf("jsonfile: read profile %s: %w", name, err)
	}
	var prof domain.Profile
	if err := json.Unmarshal(data, &prof); err != nil {
		return domain.Profile{}, fmt.Errorf("jsonfile: decode profile %s: %w", name, err)
	}
	prof.ProfileName = name
	return prof, nil
}

// Save writes the profile. Default is never written.
func (p *ProfileStore) Save(_ context.Context, prof domain.Profile) error {
	if prof.ProfileName == domain.DefaultProfileName {
		return nil
	}
	if err := prof.Validate(); err != nil {
		return err
	}

	p.s.mu.Lock()
	defer p.s.mu.Unlock()

	if err := writeJSON(p.s.profilePath(prof.ProfileName), prof); err != nil {
		return fmt.Errorf("jsonfile: save profile %s: %w", prof.ProfileName, err)
	}
	return nil
}

// Delete removes the profile file. A missing file is not an error.
func (p *ProfileStore) Delete(_ context.Context, name string) error {
	if name == domain.DefaultProfileName {
		return domain.ErrDefaultProfile
	}
	if err := domain.DefaultProfile(name).Validate(); err != nil {
		return err
	}

	p.s.mu.Lock()
	defer p.s.mu.Unlock()

	if err := os.Remove(p.s.profilePath(name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("jsonfile: delete profile %s: %w", name, err)
	}
	return nil
}

// SettingsStore implements domain.SettingsStore.
type SettingsStore struct{ s *Store }

// Load reads settings.json, falling back to defaults when it does not exist.
func (ss *SettingsStore) Load(_ context.Context) (domain.AppSettings, error) {
	ss.s.mu.RLock()
	defer ss.s.mu.RUnlock()

	data, err := os.ReadFile(filepath.Join(ss.s.dir, settingsFile))
	if errors.Is(err, fs.ErrNotExist) {
		return domain.DefaultSettings(), nil
	}
	if err != nil {
		return domain.AppSettings{}, fmt.Errorf("jsonfile: read settings: %w", err)
	}
	settings := domain.DefaultSettings()
	if err := json.Unmarshal(data, &settings); err != nil {
		return domain.AppSettings{}, fmt.Errorf("jsonfile: decode settings: %w", err)
	}
	return settings, nil
}

// Save writes settings.json.
func (ss *SettingsStore) Save(_ context.Context, settings domain.AppSettings) error {
	ss.s.mu.Lock()
	defer ss.s.mu.Unlock()

	if err := writeJSON(filepath.Join(ss.s.dir, settingsFile), settings); err != nil {
		return fmt.Errorf("jsonfile: save settings: %w", err)
	}
	return nil
}

// writeJSON replaces path atomically via a temp file in the same directory.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

var (
	_ domain.ProfileStore  = (*ProfileStore)(nil)
	_ domain.SettingsStore = (*SettingsStore)(nil)
)
