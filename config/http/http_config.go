package http

import "github.com/spf13/viper"

// CorsConfig is the CORS allowlist shape for the thin admin read API.
type CorsConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// HttpConfig is the admin read API's own listener settings.
type HttpConfig struct {
	Port    int        `mapstructure:"port" env:"HTTP_PORT"`
	Timeout int        `mapstructure:"timeout" env:"HTTP_TIMEOUT_SECONDS"`
	Cors    CorsConfig `mapstructure:"cors"`
}

// ClientConfig is the outbound resty client used by internal/messaging to
// talk to the remote messaging service. Timeout defaults to a fixed 20s.
type ClientConfig struct {
	TimeoutSeconds int  `mapstructure:"timeout_seconds" env:"MESSAGING_HTTP_TIMEOUT_SECONDS"`
	LoggerEnabled  bool `mapstructure:"logger_enabled" env:"MESSAGING_HTTP_LOGGER_ENABLED"`
}

func SetDefault() {
	viper.SetDefault("http.port", 8080)
	viper.SetDefault("http.timeout", 30)
	viper.SetDefault("http.cors.allow_origins", []string{"*"})
	viper.SetDefault("http_client.timeout_seconds", 20)
	viper.SetDefault("http_client.logger_enabled", false)
}
