package config

import (
	"time"

	"github.com/caarlos0/env/v9"
)

type Config struct {
	Port string `env:"PORT" envDefault:"8080"`

	// DBDriver selects the gorm driver: mysql, postgres or sqlite.
	DBDriver   string `env:"DB_DRIVER" envDefault:"mysql"`
	DBUser     string `env:"DB_USER"`
	DBPassword string `env:"DB_PASSWORD"`
	DBHost     string `env:"DB_HOST"` // e.g. tcp(host:3306) or unix(/cloudsql/instance)
	DBName     string `env:"DB_NAME"`
	DBPort     string `env:"DB_PORT" envDefault:"3306"`
	// InstanceConnectionName switches the MySQL DSN to a Cloud SQL unix socket.
	InstanceConnectionName string `env:"INSTANCE_CONNECTION_NAME"`
	// SQLitePath is used when DBDriver is sqlite.
	SQLitePath string `env:"SQLITE_PATH" envDefault:"murmur.db"`

	// CORSOriginSuffix admits browser origins whose host matches this suffix,
	// in addition to localhost.
	CORSOriginSuffix string `env:"CORS_ORIGIN_SUFFIX" envDefault:"murmur.example"`

	JWTSecret string        `env:"JWT_SECRET,required"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"24h"`

	// MaxMessageLength bounds message bodies, counted in runes.
	MaxMessageLength int `env:"MAX_MESSAGE_LENGTH" envDefault:"1000"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
