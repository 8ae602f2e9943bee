package worker

import "github.com/spf13/viper"

// WorkerConfig holds the tunables for the Publication Queue & Worker's
// claim/process/retry loop.
type WorkerConfig struct {
	MaxAttempts           int  `mapstructure:"max_attempts" env:"MAX_ATTEMPTS"`
	DefaultRetryMinutes   int  `mapstructure:"default_retry_minutes" env:"DEFAULT_RETRY_MINUTES"`
	WorkerIntervalSeconds int  `mapstructure:"worker_interval_seconds" env:"WORKER_INTERVAL_SECONDS"`
	ProcessingTTLSeconds  int  `mapstructure:"processing_ttl_seconds" env:"PROCESSING_TTL_SECONDS"`
	BatchSize             int  `mapstructure:"batch_size" env:"WORKER_BATCH_SIZE"`
	DisableScheduler      bool `mapstructure:"disable_scheduler" env:"DISABLE_SCHEDULER"`
}

func SetDefault() {
	viper.SetDefault("worker.max_attempts", 5)
	viper.SetDefault("worker.default_retry_minutes", 30)
	viper.SetDefault("worker.worker_interval_seconds", 20)
	viper.SetDefault("worker.processing_ttl_seconds", 900)
	viper.SetDefault("worker.batch_size", 20)
	viper.SetDefault("worker.disable_scheduler", false)
}
