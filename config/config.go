package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Quests   QuestsConfig   `mapstructure:"quests"`
	Database DatabaseConfig `mapstructure:"database"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Engine   EngineConfig   `mapstructure:"engine"`
}

type QuestsConfig struct {
	// Dir is the root of the quest definition tree; every *.yaml/*.yml
	// file below it is loaded.
	Dir string `mapstructure:"dir"`
}

type DatabaseConfig struct {
	Mode         string        `mapstructure:"mode"` // memory | sqlite | mysql
	SQLitePath   string        `mapstructure:"sqlite_path"`
	MySQLDSN     string        `mapstructure:"mysql_dsn"`
	MySQLMaxOpen int           `mapstructure:"mysql_max_open"`
	MySQLMaxIdle int           `mapstructure:"mysql_max_idle"`
	MySQLMaxLife time.Duration `mapstructure:"mysql_max_life"`
}

type CacheConfig struct {
	// RedisAddr empty means the in-process local cache is used.
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	StateTTL      time.Duration `mapstructure:"state_ttl"`
	GCInterval    time.Duration `mapstructure:"gc_interval"`
}

type LoggingConfig struct {
	Debug      bool   `mapstructure:"debug"`
	File       string `mapstructure:"file"` // empty = stderr only
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

type EngineConfig struct {
	// Default cooldowns applied after a repeatable quest completes or
	// fails; a quest's timing.cooldown_seconds overrides these.
	DailyCooldown    time.Duration `mapstructure:"daily_cooldown"`
	WeeklyCooldown   time.Duration `mapstructure:"weekly_cooldown"`
	EventCooldown    time.Duration `mapstructure:"event_cooldown"`
	InfiniteCooldown time.Duration `mapstructure:"infinite_cooldown"`
	SweepInterval    time.Duration `mapstructure:"sweep_interval"`
}

// Load reads config from the given YAML file path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Defaults
	v.SetDefault("quests.dir", "./quests")
	v.SetDefault("database.mode", "sqlite")
	v.SetDefault("database.sqlite_path", "./data/quests.db")
	v.SetDefault("database.mysql_max_open", 50)
	v.SetDefault("database.mysql_max_idle", 10)
	v.SetDefault("database.mysql_max_life", "1h")
	v.SetDefault("cache.state_ttl", "5m")
	v.SetDefault("cache.gc_interval", "30s")
	v.SetDefault("logging.debug", false)
	v.SetDefault("logging.max_size_mb", 100)
	v.SetDefault("logging.max_backups", 5)
	v.SetDefault("logging.max_age_days", 30)
	v.SetDefault("engine.daily_cooldown", "24h")
	v.SetDefault("engine.weekly_cooldown", "168h")
	v.SetDefault("engine.event_cooldown", "6h")
	v.SetDefault("engine.infinite_cooldown", "0s")
	v.SetDefault("engine.sweep_interval", "1m")

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
