package database

import "github.com/spf13/viper"

// DatabaseConfig selects the durable store's SQL dialect and connection
// parameters. Driver is one of "sqlite", "postgres", "mysql" — sqlite is
// the default single-file engine with WAL/busy-timeout discipline;
// postgres/mysql exist for row-level-locking multi-process deployments
// against a shared store.
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver" env:"STORE_DRIVER"`
	DSN      string `mapstructure:"dsn" env:"STORE_DSN"`
	Host     string `mapstructure:"host" env:"STORE_HOST"`
	Port     int    `mapstructure:"port" env:"STORE_PORT"`
	User     string `mapstructure:"user" env:"STORE_USER"`
	Password string `mapstructure:"password" env:"STORE_PASSWORD"`
	Name     string `mapstructure:"name" env:"STORE_NAME"`

	MaxIdleConns    int `mapstructure:"max_idle_conns" env:"STORE_MAX_IDLE_CONNS"`
	MaxOpenConns    int `mapstructure:"max_open_conns" env:"STORE_MAX_OPEN_CONNS"`
	MaxConnLifeTime int `mapstructure:"max_conn_life_time" env:"STORE_MAX_CONN_LIFETIME_SECONDS"`

	// BusyTimeoutSeconds and the WAL settings below only apply to the
	// sqlite driver.
	BusyTimeoutSeconds int    `mapstructure:"busy_timeout_seconds" env:"STORE_BUSY_TIMEOUT_SECONDS"`
	Synchronous        string `mapstructure:"synchronous" env:"STORE_SYNCHRONOUS"`
	LockedRetryAttempts int   `mapstructure:"locked_retry_attempts" env:"STORE_LOCKED_RETRY_ATTEMPTS"`

	Debug bool `mapstructure:"debug" env:"STORE_DEBUG"`
}

func SetDefault() {
	viper.SetDefault("database.driver", "sqlite")
	viper.SetDefault("database.dsn", "file:publicist.db")
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.max_open_conns", 1) // sqlite: single writer connection avoids SQLITE_BUSY churn
	viper.SetDefault("database.max_conn_life_time", 3600)
	viper.SetDefault("database.busy_timeout_seconds", 30)
	viper.SetDefault("database.synchronous", "NORMAL")
	viper.SetDefault("database.locked_retry_attempts", 5)
	viper.SetDefault("database.debug", false)
}
