package redis

import "time"

// Config describes the Redis connection. Tags are relative, nest it with
// `envPrefix:"REDIS_"` to read REDIS_URL and friends.
type Config struct {
	ConnectionURL  string        `env:"URL" envDefault:"redis://localhost:6379/0"` // redis://:password@localhost:6379/0
	RetryAttempts  int           `env:"RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval  time.Duration `env:"RETRY_INTERVAL" envDefault:"5s"`
	ConnectTimeout time.Duration `env:"CONNECT_TIMEOUT" envDefault:"30s"`
	KeyPrefix      string        `env:"KEY_PREFIX" envDefault:"fdfs:"`
	ScanBatchSize  int64         `env:"SCAN_BATCH_SIZE" envDefault:"1000"`
}
