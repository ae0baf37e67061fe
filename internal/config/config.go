package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/dkeye/Scribe/internal/domain"
)

type Config struct {
	Mode           string        `mapstructure:"mode"`
	Port           int           `mapstructure:"port"`
	LogLevel       string        `mapstructure:"log_level"`
	Secret         string        `mapstructure:"secret"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	ReadLimit      int64         `mapstructure:"read_limit"`
	SendBuffer     int           `mapstructure:"send_buffer"`
	WriteWait      time.Duration `mapstructure:"write_wait"`
	PongWait       time.Duration `mapstructure:"pong_wait"`
	PingPeriod     time.Duration `mapstructure:"ping_period"`
	DefaultContent string        `mapstructure:"default_content"`
	JoinLimit      int           `mapstructure:"join_limit"`
	JoinInterval   time.Duration `mapstructure:"join_interval"`
	Backpressure   string        `mapstructure:"backpressure"`
	MetricsEnabled bool          `mapstructure:"metrics_enabled"`
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("SCRIBE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("mode", "release")
	v.SetDefault("port", 5000)
	v.SetDefault("log_level", "info")
	v.SetDefault("secret", "dev-secret-change")
	v.SetDefault("allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("read_limit", 1<<20)
	v.SetDefault("send_buffer", 64)
	v.SetDefault("write_wait", "5s")
	v.SetDefault("pong_wait", "60s")
	v.SetDefault("ping_period", "54s")
	v.SetDefault("default_content", domain.DefaultContent)
	v.SetDefault("join_limit", 20)
	v.SetDefault("join_interval", "10s")
	v.SetDefault("backpressure", "drop")
	v.SetDefault("metrics_enabled", true)
	return v
}

// Load reads config/config.<CONFIG_ENV>.yaml on top of the defaults.
// SCRIBE_* environment variables override both.
func Load() (*Config, error) {
	v := newViper()

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)
	v.SetConfigFile(fileName)

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).Strs("origins", cfg.AllowedOrigins).Msg("config ready")
	return cfg, nil
}

// Default returns the built-in configuration without reading any file.
func Default() *Config {
	cfg, err := decode(newViper())
	if err != nil {
		panic(err)
	}
	return cfg
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.sanitize()
	return &cfg, nil
}

func (c *Config) sanitize() {
	if c.DefaultContent == "" {
		c.DefaultContent = domain.DefaultContent
	}
	if c.SendBuffer <= 0 {
		c.SendBuffer = 64
	}
	if c.PongWait <= 0 {
		c.PongWait = 60 * time.Second
	}
	if c.PingPeriod <= 0 || c.PingPeriod >= c.PongWait {
		c.PingPeriod = c.PongWait * 9 / 10
	}
	if c.WriteWait <= 0 {
		c.WriteWait = 5 * time.Second
	}
	if c.JoinLimit <= 0 {
		c.JoinLimit = 20
	}
	if c.JoinInterval <= 0 {
		c.JoinInterval = 10 * time.Second
	}
}
