// Package config stores named session profiles on disk
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"pty-terminal/pkg/session"
)

const (
	profilesFile   = "profiles.json"
	storageVersion = "1.0"
	appDirName     = "pty-terminal"
)

// ErrProfileNotFound is returned for operations on a name that is not stored
var ErrProfileNotFound = errors.New("profile not found")

// ProfileManager defines the operations on saved profiles
type ProfileManager interface {
	SaveProfile(name string, cfg session.Config) error
	LoadProfile(name string) (session.Config, error)
	GetProfile(name string) (Profile, error)
	ListProfiles() ([]Profile, error)
	DeleteProfile(name string) error
	ProfileExists(name string) bool
	SetDescription(name, description string) error
}

// Profile is a named session configuration with its metadata
type Profile struct {
	Name        string         `json:"name"`
	Config      session.Config `json:"config"`
	CreatedAt   time.Time      `json:"created_at"`
	LastUsedAt  time.Time      `json:"last_used_at"`
	Description string         `json:"description,omitempty"`
}

// Validate checks if the profile is valid
func (p Profile) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("profile name cannot be empty")
	}
	if err := p.Config.Validate(); err != nil {
		return fmt.Errorf("invalid session config: %w", err)
	}
	if p.CreatedAt.IsZero() {
		return fmt.Errorf("created_at timestamp cannot be zero")
	}
	return nil
}

// Storage is the on-disk format
type Storage struct {
	Profiles map[string]Profile `json:"profiles"`
	Version  string             `json:"version"`
}

// DefaultConfigDir returns the per-user directory for profiles
func DefaultConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config directory: %w", err)
	}
	return filepath.Join(base, appDirName), nil
}

// FileProfileManager implements ProfileManager with a JSON file
type FileProfileManager struct {
	configDir string
}

// NewFileProfileManager creates a manager storing profiles in configDir
func NewFileProfileManager(configDir string) *FileProfileManager {
	return &FileProfileManager{configDir: configDir}
}

// Path returns the location of the profiles file
func (m *FileProfileManager) Path() string {
	return filepath.Join(m.configDir, profilesFile)
}

// Initialize creates the directory and an empty profiles file if needed
func (m *FileProfileManager) Initialize() error {
	if err := os.MkdirAll(m.configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(m.Path()); os.IsNotExist(err) {
		if err := m.saveStorage(newStorage()); err != nil {
			return fmt.Errorf("failed to initialize profiles file: %w", err)
		}
	}
	return nil
}

func newStorage() Storage {
	return Storage{
		Profiles: make(map[string]Profile),
		Version:  storageVersion,
	}
}

// SaveProfile creates or replaces a profile. Replacing keeps the creation
// time and description.
func (m *FileProfileManager) SaveProfile(name string, cfg session.Config) error {
	if name == "" {
		return fmt.Errorf("profile name cannot be empty")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := m.Initialize(); err != nil {
		return err
	}

	storage, err := m.loadStorage()
	if err != nil {
		return fmt.Errorf("failed to load existing profiles: %w", err)
	}

	now := time.Now()
	profile := Profile{
		Name:       name,
		Config:     cfg,
		CreatedAt:  now,
		LastUsedAt: now,
	}
	if existing, ok := storage.Profiles[name]; ok {
		profile.CreatedAt = existing.CreatedAt
		profile.Description = existing.Description
	}
	storage.Profiles[name] = profile

	if err := m.saveStorage(storage); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// LoadProfile returns a profile's configuration and marks it as used
func (m *FileProfileManager) LoadProfile(name string) (session.Config, error) {
	storage, profile, err := m.lookup(name)
	if err != nil {
		return session.Config{}, err
	}

	profile.LastUsedAt = time.Now()
	storage.Profiles[name] = profile
	// the last-used time is informational, a failed update does not fail the load
	_ = m.saveStorage(storage)

	return profile.Config, nil
}

// GetProfile returns a profile without marking it as used
func (m *FileProfileManager) GetProfile(name string) (Profile, error) {
	_, profile, err := m.lookup(name)
	return profile, err
}

// ListProfiles returns all profiles sorted by name
func (m *FileProfileManager) ListProfiles() ([]Profile, error) {
	storage, err := m.loadStorage()
	if err != nil {
		return nil, fmt.Errorf("failed to load profiles: %w", err)
	}

	profiles := make([]Profile, 0, len(storage.Profiles))
	for _, profile := range storage.Profiles {
		profiles = append(profiles, profile)
	}
	sort.Slice(profiles, func(i, j int) bool {
		return profiles[i].Name < profiles[j].Name
	})
	return profiles, nil
}

// DeleteProfile removes a profile
func (m *FileProfileManager) DeleteProfile(name string) error {
	storage, _, err := m.lookup(name)
	if err != nil {
		return err
	}

	delete(storage.Profiles, name)
	if err := m.saveStorage(storage); err != nil {
		return fmt.Errorf("failed to save profiles after deletion: %w", err)
	}
	return nil
}

// ProfileExists reports whether a profile is stored under name
func (m *FileProfileManager) ProfileExists(name string) bool {
	_, _, err := m.lookup(name)
	return err == nil
}

// SetDescription sets the description of a profile
func (m *FileProfileManager) SetDescription(name, description string) error {
	storage, profile, err := m.lookup(name)
	if err != nil {
		return err
	}

	profile.Description = description
	storage.Profiles[name] = profile
	if err := m.saveStorage(storage); err != nil {
		return fmt.Errorf("failed to save description: %w", err)
	}
	return nil
}

// lookup loads the storage and the named profile
func (m *FileProfileManager) lookup(name string) (Storage, Profile, error) {
	if name == "" {
		return Storage{}, Profile{}, fmt.Errorf("profile name cannot be empty")
	}

	storage, err := m.loadStorage()
	if err != nil {
		return Storage{}, Profile{}, fmt.Errorf("failed to load profiles: %w", err)
	}

	profile, ok := storage.Profiles[name]
	if !ok {
		return Storage{}, Profile{}, fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	return storage, profile, nil
}

// loadStorage reads the profiles file. A missing file is an empty storage.
func (m *FileProfileManager) loadStorage() (Storage, error) {
	data, err := os.ReadFile(m.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return newStorage(), nil
		}
		return Storage{}, fmt.Errorf("failed to read profiles file: %w", err)
	}

	var storage Storage
	if err := json.Unmarshal(data, &storage); err != nil {
		return Storage{}, fmt.Errorf("failed to parse profiles file: %w", err)
	}
	if storage.Profiles == nil {
		storage.Profiles = make(map[string]Profile)
	}
	return storage, nil
}

// saveStorage writes the profiles file through a temporary file and rename
func (m *FileProfileManager) saveStorage(storage Storage) error {
	data, err := json.MarshalIndent(storage, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal profiles: %w", err)
	}

	tempPath := m.Path() + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := os.Rename(tempPath, m.Path()); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}
	return nil
}
