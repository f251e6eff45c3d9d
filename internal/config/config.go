package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/user/jobboard/internal/db"
	"github.com/user/jobboard/internal/notify"
)

type Config struct {
	DataDir string       `mapstructure:"data_dir"`
	Server  ServerConfig `mapstructure:"server"`
	Client  ClientConfig `mapstructure:"client"`
	Notify  NotifyConfig `mapstructure:"notify"`
}

type ServerConfig struct {
	Addr   string `mapstructure:"addr"`
	DBPath string `mapstructure:"db_path"`
	Seed   bool   `mapstructure:"seed"`
}

type ClientConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
	Locale  string        `mapstructure:"locale"`
}

type NotifyConfig struct {
	Interval        time.Duration  `mapstructure:"interval"`
	Cooldown        time.Duration  `mapstructure:"cooldown"`
	InitialDelay    time.Duration  `mapstructure:"initial_delay"`
	BatchSize       int            `mapstructure:"batch_size"`
	PromptTimeout   time.Duration  `mapstructure:"prompt_timeout"`
	DismissalPeriod time.Duration  `mapstructure:"dismissal_period"`
	Telegram        TelegramConfig `mapstructure:"telegram"`
}

type TelegramConfig struct {
	Token  string `mapstructure:"token"`
	ChatID int64  `mapstructure:"chat_id"`
}

// Load reads .env from the working directory, then config.yaml from the data
// directory, then JOBBOARD_* environment variables, in increasing priority.
func Load() (*Config, error) {
	// A missing .env is fine.
	_ = godotenv.Load()

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	defaultDataDir := filepath.Join(homeDir, ".jobboard")

	v := viper.New()
	setDefaults(v, defaultDataDir)

	v.SetEnvPrefix("JOBBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.BindEnv("data_dir", "JOBBOARD_DATA_DIR")
	v.BindEnv("server.addr", "JOBBOARD_SERVER_ADDR", "PORT")
	v.BindEnv("client.base_url", "JOBBOARD_CLIENT_BASE_URL")
	v.BindEnv("notify.telegram.token", "JOBBOARD_NOTIFY_TELEGRAM_TOKEN", "TELEGRAM_BOT_TOKEN")
	v.BindEnv("notify.telegram.chat_id", "JOBBOARD_NOTIFY_TELEGRAM_CHAT_ID", "TELEGRAM_CHAT_ID")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	dataDir := v.GetString("data_dir")
	v.AddConfigPath(dataDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper, dataDir string) {
	def := notify.DefaultConfig()

	v.SetDefault("data_dir", dataDir)
	v.SetDefault("server.addr", ":3000")
	v.SetDefault("server.db_path", "")
	v.SetDefault("server.seed", false)
	v.SetDefault("client.base_url", "http://localhost:3000")
	v.SetDefault("client.timeout", 10*time.Second)
	v.SetDefault("client.locale", "en-IN")
	v.SetDefault("notify.interval", def.Interval)
	v.SetDefault("notify.cooldown", def.Cooldown)
	v.SetDefault("notify.initial_delay", def.InitialDelay)
	v.SetDefault("notify.batch_size", def.BatchSize)
	v.SetDefault("notify.prompt_timeout", def.PromptTimeout)
	v.SetDefault("notify.dismissal_period", def.DismissalPeriod)
	v.SetDefault("notify.telegram.token", "")
	v.SetDefault("notify.telegram.chat_id", 0)
}

func (c *Config) Validate() error {
	if c.DataDir == "" {
		return errors.New("data_dir is required")
	}
	if c.Client.BaseURL == "" {
		return errors.New("client.base_url is required")
	}
	if c.Notify.Interval <= 0 {
		return errors.New("notify.interval must be positive")
	}
	if c.Notify.BatchSize <= 0 {
		return errors.New("notify.batch_size must be positive")
	}
	if c.Notify.Telegram.Token != "" && c.Notify.Telegram.ChatID == 0 {
		return errors.New("notify.telegram.chat_id is required when a token is set")
	}
	return nil
}

// ListenAddr accepts a bare port, as $PORT usually is.
func (c *Config) ListenAddr() string {
	if c.Server.Addr != "" && !strings.Contains(c.Server.Addr, ":") {
		return ":" + c.Server.Addr
	}
	return c.Server.Addr
}

func (c *Config) DBPath() string {
	if c.Server.DBPath != "" {
		return c.Server.DBPath
	}
	return filepath.Join(c.DataDir, db.DBFile)
}

// WatcherConfig converts the notify section for the watcher.
func (c *Config) WatcherConfig() notify.Config {
	return notify.Config{
		Interval:        c.Notify.Interval,
		Cooldown:        c.Notify.Cooldown,
		InitialDelay:    c.Notify.InitialDelay,
		BatchSize:       c.Notify.BatchSize,
		PromptTimeout:   c.Notify.PromptTimeout,
		DismissalPeriod: c.Notify.DismissalPeriod,
	}
}
