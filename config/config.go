package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/viper"

	appConfig "github.com/gopublicist/publicist/config/app"
	dbConfig "github.com/gopublicist/publicist/config/database"
	httpConfig "github.com/gopublicist/publicist/config/http"
	logConfig "github.com/gopublicist/publicist/config/log"
	redisConfig "github.com/gopublicist/publicist/config/redis"
	workerConfig "github.com/gopublicist/publicist/config/worker"
)

// Config aggregates every ambient/domain config section. YAML (via viper)
// supplies the base values; struct `env` tags (via caarlos0/env) layer
// environment variables on top of that.
type Config struct {
	App        appConfig.AppConfig
	Database   dbConfig.DatabaseConfig
	Http       httpConfig.HttpConfig
	HttpClient httpConfig.ClientConfig `mapstructure:"http_client"`
	Log        logConfig.LogConfig
	Redis      redisConfig.RedisConfig
	Worker     workerConfig.WorkerConfig
}

var Cfg *Config

func setDefault() {
	appConfig.SetDefault()
	dbConfig.SetDefault()
	httpConfig.SetDefault()
	logConfig.SetDefault()
	redisConfig.SetDefault()
	workerConfig.SetDefault()
}

// Load reads config.<APP_ENV>.yaml from the working directory, applies
// built-in defaults for anything missing, then overlays process
// environment variables declared via `env:"..."` struct tags.
func Load() (*Config, error) {
	envName := os.Getenv("APP_ENV")
	if envName == "" {
		envName = "local"
	}

	viper.SetConfigName(fmt.Sprintf("config.%s", envName))
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	setDefault()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: reading config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshalling config: %w", err)
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("config: applying environment overrides: %w", err)
	}

	Cfg = &cfg
	return Cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
