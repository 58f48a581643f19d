// Package settings persists display preferences. They are independent of
// reminders.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/peterbourgon/diskv/v3"
)

const (
	ThemeNormal       = "normal"
	ThemeHighContrast = "high-contrast"

	MinTextScale = 0.75
	MaxTextScale = 1.75

	settingsKey = "settings"
)

var ErrUnknownTheme = errors.New("unknown theme")

type Settings struct {
	ThemeName string  `json:"themeName"`
	TextScale float64 `json:"textScale"`
}

func Defaults() Settings {
	return Settings{ThemeName: ThemeNormal, TextScale: 1}
}

// Store keeps Settings in a diskv directory.
type Store struct {
	mu sync.Mutex
	d  *diskv.Diskv
}

func NewStore(dir string) *Store {
	return &Store{d: diskv.New(diskv.Options{
		BasePath:     dir,
		CacheSizeMax: 64 * 1024,
	})}
}

// Get returns the stored settings, or defaults when none are stored or they
// cannot be decoded.
func (s *Store) Get() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked()
}

func (s *Store) SetThemeName(name string) (Settings, error) {
	if name != ThemeNormal && name != ThemeHighContrast {
		return Settings{}, fmt.Errorf("%w: %q", ErrUnknownTheme, name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.getLocked()
	cur.ThemeName = name
	return cur, s.putLocked(cur)
}

// SetTextScale stores scale clamped to [MinTextScale, MaxTextScale].
func (s *Store) SetTextScale(scale float64) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.getLocked()
	cur.TextScale = ClampTextScale(scale)
	return cur, s.putLocked(cur)
}

func ClampTextScale(scale float64) float64 {
	return min(MaxTextScale, max(MinTextScale, scale))
}

func (s *Store) getLocked() Settings {
	data, err := s.d.Read(settingsKey)
	if err != nil {
		return Defaults()
	}
	out := Defaults()
	if err := json.Unmarshal(data, &out); err != nil {
		return Defaults()
	}
	if out.ThemeName != ThemeNormal && out.ThemeName != ThemeHighContrast {
		out.ThemeName = ThemeNormal
	}
	if out.TextScale == 0 {
		out.TextScale = 1
	}
	out.TextScale = ClampTextScale(out.TextScale)
	return out
}

func (s *Store) putLocked(v Settings) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := s.d.Write(settingsKey, data); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}
