package app

import "github.com/spf13/viper"

// AppConfig carries process-wide identity used by logging and by the
// admin read API's /healthz response.
type AppConfig struct {
	Name  string `mapstructure:"name" env:"APP_NAME"`
	Env   string `mapstructure:"env" env:"APP_ENV"`
	Debug bool   `mapstructure:"debug" env:"APP_DEBUG"`
}

func SetDefault() {
	viper.SetDefault("app.name", "publicist")
	viper.SetDefault("app.env", "local")
	viper.SetDefault("app.debug", false)
}
