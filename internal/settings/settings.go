// Package settings holds the user-editable display configuration and its
// persistence.
package settings

import (
	"slices"
	"strings"
	"time"
)

// StorageKey is the fixed key the configuration is stored under.
const StorageKey = "fantasy-standings-config"

const (
	DefaultInterval = 20 * time.Second
	MinInterval     = 5 * time.Second
	MaxInterval     = 60 * time.Second

	DefaultAnimationSpeed = 500
	DefaultTheme          = "sports"
)

type DisplaySettings struct {
	ShowLogos      bool   `json:"showLogos" yaml:"showLogos"`
	AnimationSpeed int    `json:"animationSpeed" yaml:"animationSpeed"`
	Theme          string `json:"theme" yaml:"theme"`
}

// AppConfig is what the configuration panel edits. RotationInterval is in
// milliseconds.
type AppConfig struct {
	LeagueIDs        []string        `json:"leagueIds" yaml:"leagueIds"`
	EnabledLeagues   []bool          `json:"enabledLeagues" yaml:"enabledLeagues"`
	RotationInterval int64           `json:"rotationInterval" yaml:"rotationInterval"`
	DisplaySettings  DisplaySettings `json:"displaySettings" yaml:"displaySettings"`
}

type DisplayPatch struct {
	ShowLogos      *bool   `json:"showLogos,omitempty"`
	AnimationSpeed *int    `json:"animationSpeed,omitempty"`
	Theme          *string `json:"theme,omitempty"`
}

// Patch is a partial AppConfig. Nil fields leave the base value alone.
type Patch struct {
	LeagueIDs        *[]string     `json:"leagueIds,omitempty"`
	EnabledLeagues   *[]bool       `json:"enabledLeagues,omitempty"`
	RotationInterval *int64        `json:"rotationInterval,omitempty"`
	DisplaySettings  *DisplayPatch `json:"displaySettings,omitempty"`
}

func Defaults(leagueIDs []string) AppConfig {
	ids := make([]string, 0, len(leagueIDs))
	for _, id := range leagueIDs {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	enabled := make([]bool, len(ids))
	for i := range enabled {
		enabled[i] = true
	}

	return AppConfig{
		LeagueIDs:        ids,
		EnabledLeagues:   enabled,
		RotationInterval: DefaultInterval.Milliseconds(),
		DisplaySettings: DisplaySettings{
			ShowLogos:      true,
			AnimationSpeed: DefaultAnimationSpeed,
			Theme:          DefaultTheme,
		},
	}
}

func (c AppConfig) Clone() AppConfig {
	out := c
	out.LeagueIDs = slices.Clone(c.LeagueIDs)
	out.EnabledLeagues = slices.Clone(c.EnabledLeagues)
	return out
}

func (c AppConfig) Interval() time.Duration {
	return time.Duration(c.RotationInterval) * time.Millisecond
}

// EnabledLeagueIDs lists non-blank league IDs whose flag is on, in order.
func (c AppConfig) EnabledLeagueIDs() []string {
	ids := make([]string, 0, len(c.LeagueIDs))
	for i, id := range c.LeagueIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if i < len(c.EnabledLeagues) && !c.EnabledLeagues[i] {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// Merge applies p over base. Display settings merge field by field.
func Merge(base AppConfig, p Patch) AppConfig {
	out := base.Clone()
	if p.LeagueIDs != nil {
		out.LeagueIDs = slices.Clone(*p.LeagueIDs)
	}
	if p.EnabledLeagues != nil {
		out.EnabledLeagues = slices.Clone(*p.EnabledLeagues)
	}
	if p.RotationInterval != nil {
		out.RotationInterval = *p.RotationInterval
	}
	if d := p.DisplaySettings; d != nil {
		if d.ShowLogos != nil {
			out.DisplaySettings.ShowLogos = *d.ShowLogos
		}
		if d.AnimationSpeed != nil {
			out.DisplaySettings.AnimationSpeed = *d.AnimationSpeed
		}
		if d.Theme != nil {
			out.DisplaySettings.Theme = *d.Theme
		}
	}
	return out
}

// Normalize repairs values a stored or submitted config may get wrong:
// the interval is defaulted and clamped, enable flags are aligned with the
// league list, and blank display values fall back to defaults.
func Normalize(c AppConfig, defaults AppConfig) AppConfig {
	out := c.Clone()

	ids := make([]string, len(out.LeagueIDs))
	for i, id := range out.LeagueIDs {
		ids[i] = strings.TrimSpace(id)
	}
	out.LeagueIDs = ids

	enabled := make([]bool, len(ids))
	for i := range enabled {
		enabled[i] = true
		if i < len(out.EnabledLeagues) {
			enabled[i] = out.EnabledLeagues[i]
		}
	}
	out.EnabledLeagues = enabled

	if out.RotationInterval <= 0 {
		out.RotationInterval = defaults.RotationInterval
	}
	if lo := MinInterval.Milliseconds(); out.RotationInterval < lo {
		out.RotationInterval = lo
	}
	if hi := MaxInterval.Milliseconds(); out.RotationInterval > hi {
		out.RotationInterval = hi
	}

	if out.DisplaySettings.AnimationSpeed < 0 {
		out.DisplaySettings.AnimationSpeed = defaults.DisplaySettings.AnimationSpeed
	}
	if strings.TrimSpace(out.DisplaySettings.Theme) == "" {
		out.DisplaySettings.Theme = defaults.DisplaySettings.Theme
	}
	return out
}
