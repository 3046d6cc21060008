// Package persist stores the externally editable relay settings: the backend
// endpoint URL and the debug rendering flag.
package persist

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"pkt.systems/pslog"
)

// Settings is the relay configuration shared with the external settings UI.
type Settings struct {
	URL   string `json:"url"`
	Debug bool   `json:"debug"`
}

// Store reads and writes the settings file. The file is jointly owned with
// an external settings surface, so every read goes back to disk and writes
// are atomic.
type Store struct {
	path string
	log  pslog.Logger
}

// NewStore constructs a settings store at the given path.
func NewStore(path string) (*Store, error) {
	return NewStoreWithLogger(path, nil)
}

// NewStoreWithLogger constructs a settings store with logging.
func NewStoreWithLogger(path string, logger pslog.Logger) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("settings path is required")
	}
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	return &Store{path: path, log: logger.With("settings_file", path)}, nil
}

// Load reads the settings from disk. A missing file is not an error; ok
// reports whether settings exist.
func (s *Store) Load() (Settings, bool, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.log.Debug("settings load miss")
			return Settings{}, false, nil
		}
		s.log.Warn("settings load failed", "err", err)
		return Settings{}, false, err
	}
	var settings Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		s.log.Warn("settings load failed", "err", err)
		return Settings{}, false, err
	}
	return settings, true, nil
}

// Save writes the settings atomically via a temp file and rename.
func (s *Store) Save(settings Settings) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		s.log.Warn("settings save failed", "err", err)
		return err
	}
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), "settings-*.json")
	if err != nil {
		s.log.Warn("settings save failed", "err", err)
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		s.log.Warn("settings save failed", "err", err)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		s.log.Warn("settings save failed", "err", err)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		s.log.Warn("settings save failed", "err", err)
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		_ = os.Remove(tmp.Name())
		s.log.Warn("settings save failed", "err", err)
		return err
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		s.log.Warn("settings save failed", "err", err)
		return err
	}
	s.log.Debug("settings saved", "url_set", settings.URL != "", "debug", settings.Debug)
	return nil
}

// RelaySettings implements the relay client's settings source. A missing
// file yields an empty URL, which the client reports as unconfigured.
func (s *Store) RelaySettings() (string, bool, error) {
	settings, _, err := s.Load()
	if err != nil {
		return "", false, err
	}
	return settings.URL, settings.Debug, nil
}
