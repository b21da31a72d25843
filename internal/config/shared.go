package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		ListenAddr     string `mapstructure:"listen_addr"`
		TickInterval   int    `mapstructure:"tick_interval_seconds"`
		PollInterval   int    `mapstructure:"poll_interval_seconds"`
		GCInterval     int    `mapstructure:"gc_interval_seconds"`
		LogLevel       string `mapstructure:"log_level"`
		UpcomingTracks int    `mapstructure:"upcoming_tracks"`
	} `mapstructure:"server"`
	Store struct {
		Address        string `mapstructure:"address"`
		KeyPrefix      string `mapstructure:"key_prefix"`
		TimeoutSeconds int    `mapstructure:"timeout_seconds"`
		CachePath      string `mapstructure:"cache_path"`
	} `mapstructure:"store"`
	Catalog struct {
		APIKey     string `mapstructure:"api_key"`
		PlaylistID string `mapstructure:"playlist_id"`
	} `mapstructure:"catalog"`
	Presence struct {
		StaleAfterMinutes int `mapstructure:"stale_after_minutes"`
	} `mapstructure:"presence"`
	Auth struct {
		JWTSecret string `mapstructure:"jwt_secret"`
	} `mapstructure:"auth"`
}

func (c *Config) StoreTimeout() time.Duration {
	return time.Duration(c.Store.TimeoutSeconds) * time.Second
}

func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.Server.TickInterval) * time.Second
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Server.PollInterval) * time.Second
}

func (c *Config) GCInterval() time.Duration {
	return time.Duration(c.Server.GCInterval) * time.Second
}

func (c *Config) StaleAfter() time.Duration {
	return time.Duration(c.Presence.StaleAfterMinutes) * time.Minute
}

func Load() *Config {
	viper.SetEnvPrefix("RADIO")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Register keys
	viper.BindEnv("server.listen_addr")
	viper.BindEnv("server.tick_interval_seconds")
	viper.BindEnv("server.poll_interval_seconds")
	viper.BindEnv("server.gc_interval_seconds")
	viper.BindEnv("server.log_level")
	viper.BindEnv("server.upcoming_tracks")

	viper.BindEnv("store.address")
	viper.BindEnv("store.key_prefix")
	viper.BindEnv("store.timeout_seconds")
	viper.BindEnv("store.cache_path")

	viper.BindEnv("catalog.api_key")
	viper.BindEnv("catalog.playlist_id")

	viper.BindEnv("presence.stale_after_minutes")
	viper.BindEnv("auth.jwt_secret")

	// Defaults
	viper.SetDefault("server.listen_addr", ":8080")
	viper.SetDefault("server.tick_interval_seconds", 1)
	viper.SetDefault("server.poll_interval_seconds", 60)
	viper.SetDefault("server.gc_interval_seconds", 60)
	viper.SetDefault("server.log_level", "info")
	viper.SetDefault("server.upcoming_tracks", 5)

	viper.SetDefault("store.address", "127.0.0.1:6379")
	viper.SetDefault("store.key_prefix", "schoolradio:")
	viper.SetDefault("store.timeout_seconds", 3)
	viper.SetDefault("store.cache_path", "./schoolradio_cache.db")

	viper.SetDefault("presence.stale_after_minutes", 5)

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("Warning: Config error: %s", err)
		} else {
			log.Println("Info: config.yaml not found, using Environment Variables only.")
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		log.Fatalf("Unable to decode config: %v", err)
	}

	if cfg.Catalog.PlaylistID == "" {
		log.Fatal("Critical: catalog playlist ID is missing (RADIO_CATALOG_PLAYLIST_ID)")
	}

	return &cfg
}
