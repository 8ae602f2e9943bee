package redis

import "github.com/spf13/viper"

// RedisConfig backs internal/ratelimit's distributed per-chat token
// bucket. When Addr is empty the rate limiter falls back to an
// in-process golang.org/x/time/rate limiter only.
type RedisConfig struct {
	Addr     string `mapstructure:"addr" env:"REDIS_ADDR"`
	Password string `mapstructure:"password" env:"REDIS_PASSWORD"`
	DB       int    `mapstructure:"db" env:"REDIS_DB"`
}

func SetDefault() {
	viper.SetDefault("redis.addr", "")
	viper.SetDefault("redis.db", 0)
}
