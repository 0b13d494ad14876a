package terminal

import (
	"strings"
	"sync"
)

// Theme names a site-wide visual theme.
type Theme string

const (
	ThemeDefault Theme = "default"
	ThemeAngler  Theme = "angler"
	ThemeMagic   Theme = "magic"
	ThemeCmd     Theme = "cmd"
)

// Themes is the closed set accepted by the theme command, in display order.
var Themes = []Theme{ThemeDefault, ThemeAngler, ThemeMagic, ThemeCmd}

// ParseTheme matches name against the known themes.
func ParseTheme(name string) (Theme, bool) {
	for _, t := range Themes {
		if string(t) == name {
			return t, true
		}
	}
	return "", false
}

func themeList() string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

// ThemeController is the side channel through which the terminal asks its
// host to change the site theme. The terminal never stores theme state.
// Sessions call it without holding their own lock, so implementations may
// block or call back into the session.
type ThemeController interface {
	Current() Theme
	SetTheme(Theme)
}

// ThemeState is a ThemeController that keeps the current theme and notifies
// a callback on every change request.
type ThemeState struct {
	mu       sync.RWMutex
	current  Theme
	onChange func(Theme)
}

// NewThemeState creates a controller starting at initial. onChange may be nil.
func NewThemeState(initial Theme, onChange func(Theme)) *ThemeState {
	if _, ok := ParseTheme(string(initial)); !ok {
		initial = ThemeCmd
	}
	return &ThemeState{current: initial, onChange: onChange}
}

// Current returns the active theme.
func (s *ThemeState) Current() Theme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// SetTheme records t and forwards it to the host.
func (s *ThemeState) SetTheme(t Theme) {
	s.mu.Lock()
	s.current = t
	s.mu.Unlock()
	if s.onChange != nil {
		s.onChange(t)
	}
}
