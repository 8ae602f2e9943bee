package log

import "github.com/spf13/viper"

type LogConfig struct {
	Level  string `mapstructure:"level" env:"LOG_LEVEL"`
	Pretty bool   `mapstructure:"pretty" env:"LOG_PRETTY"`
}

func SetDefault() {
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.pretty", false)
}
