package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Mode        string        `mapstructure:"mode" validate:"oneof=debug release"`
	Port        int           `mapstructure:"port" validate:"gt=0,lte=65535"`
	DBPath      string        `mapstructure:"db_path" validate:"required"`
	RedisAddr   string        `mapstructure:"redis_addr"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl"`
	ReadLimit   int64         `mapstructure:"read_limit" validate:"gt=0"`
	SendBuffer  int           `mapstructure:"send_buffer" validate:"gt=0"`
	PingPeriod  time.Duration `mapstructure:"ping_period" validate:"gt=0"`
	WriteWait   time.Duration `mapstructure:"write_wait" validate:"gt=0"`
	JoinTimeout time.Duration `mapstructure:"join_timeout" validate:"gt=0"`
	Secret      string        `mapstructure:"secret" validate:"required"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 3000)
	v.SetDefault("db_path", "chatserver.db")
	v.SetDefault("redis_addr", "")
	v.SetDefault("cache_ttl", "5m")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("send_buffer", 32)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("write_wait", "5s")
	v.SetDefault("join_timeout", "10s")
	v.SetDefault("secret", "dev-secret-change-me")

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("config file not found (%s), using defaults\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}
