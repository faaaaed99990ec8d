package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/robfig/cron/v3"
)

type Config struct {
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	Sleeper     Sleeper
	Rotation    Rotation
	Schedule    Schedule
	Server      Server
	Storage     Storage
	TelegramBot TelegramBot
}

type Sleeper struct {
	BaseURL      string        `envconfig:"SLEEPER_BASE_URL" default:"https://api.sleeper.app/v1"`
	Timeout      time.Duration `envconfig:"SLEEPER_TIMEOUT" default:"10s"`
	RequestDelay time.Duration `envconfig:"SLEEPER_REQUEST_DELAY" default:"200ms"`
	CacheTTL     time.Duration `envconfig:"SLEEPER_CACHE_TTL" default:"5m"`
	LeagueIDs    []string      `envconfig:"LEAGUE_IDS" default:"1267631943646707712"`
}

type Rotation struct {
	Interval         time.Duration `envconfig:"ROTATION_INTERVAL" default:"20s"`
	ProgressInterval time.Duration `envconfig:"ROTATION_PROGRESS_INTERVAL" default:"100ms"`
	Loop             bool          `envconfig:"ROTATION_LOOP" default:"true"`
	AutoStart        bool          `envconfig:"ROTATION_AUTOSTART" default:"true"`
}

type Schedule struct {
	RefreshInterval time.Duration `envconfig:"REFRESH_INTERVAL" default:"5m"`
	StandingsCron   string        `envconfig:"STANDINGS_CRON" default:"30 7 * * 3"`
	Location        string        `envconfig:"SCHEDULE_TZ" default:"America/Chicago"`
}

type Server struct {
	Addr      string `envconfig:"HTTP_ADDR" default:":8080"`
	PublicURL string `envconfig:"PUBLIC_URL" default:"http://localhost:8080"`
}

type Storage struct {
	Driver string `envconfig:"STORAGE_DRIVER" default:"file"`
	Path   string `envconfig:"STORAGE_PATH" default:"data/settings.json"`
	Watch  bool   `envconfig:"STORAGE_WATCH" default:"true"`
	// BusyTimeout only applies to the sqlite driver.
	BusyTimeout time.Duration `envconfig:"STORAGE_BUSY_TIMEOUT" default:"5s"`
}

// TelegramBot is optional; the bot stays off without a token.
type TelegramBot struct {
	Token  string `envconfig:"TELEGRAM_TOKEN"`
	ChatID int64  `envconfig:"CHAT_ID"`
}

func (t TelegramBot) Enabled() bool { return strings.TrimSpace(t.Token) != "" }

func New() (*Config, error) {
	var c Config
	err := envconfig.Process("", &c)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	if c.Rotation.Interval <= 0 {
		return fmt.Errorf("ROTATION_INTERVAL must be positive, got %s", c.Rotation.Interval)
	}
	if c.Rotation.ProgressInterval <= 0 {
		return fmt.Errorf("ROTATION_PROGRESS_INTERVAL must be positive, got %s", c.Rotation.ProgressInterval)
	}
	if c.Schedule.RefreshInterval <= 0 {
		return fmt.Errorf("REFRESH_INTERVAL must be positive, got %s", c.Schedule.RefreshInterval)
	}
	// empty disables the scheduled standings post
	if c.Schedule.StandingsCron != "" {
		if _, err := cron.ParseStandard(c.Schedule.StandingsCron); err != nil {
			return fmt.Errorf("invalid STANDINGS_CRON %q: %w", c.Schedule.StandingsCron, err)
		}
	}
	if c.TelegramBot.Enabled() && c.TelegramBot.ChatID == 0 {
		return fmt.Errorf("CHAT_ID is required when TELEGRAM_TOKEN is set")
	}
	return nil
}
