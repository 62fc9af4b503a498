package config

import "fmt"

// DBConfig holds the Postgres connection settings for the profile store.
// Fields are read with the DB_ prefix (see AppConfig).
type DBConfig struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     int    `env:"PORT" envDefault:"5432"`
	User     string `env:"USER" envDefault:"portal"`
	Password string `env:"PASSWORD" envDefault:""`
	Name     string `env:"NAME" envDefault:"portal"`
	SSLMode  string `env:"SSLMODE" envDefault:"disable"`

	// MaxConns bounds the pgx pool size.
	MaxConns int32 `env:"MAX_CONNS" envDefault:"4"`
}

// DSN renders the connection string for pgxpool.
func (c DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
	)
}

// RedisConfig holds the Redis connection settings for the token record
// store. Fields are read with the REDIS_ prefix (see AppConfig).
type RedisConfig struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     int    `env:"PORT" envDefault:"6379"`
	Password string `env:"PASSWORD" envDefault:""`
	DB       int    `env:"DB" envDefault:"0"`
}

// Addr renders the host:port pair for the go-redis client.
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
