package config

import (
	"strings"
	"time"
)

type DatabaseConfig struct {
	URI            string        `yaml:"uri"`
	Database       string        `yaml:"database"`
	MaxPoolSize    int           `yaml:"max_pool_size"`
	MinPoolSize    int           `yaml:"min_pool_size"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	SocketTimeout  time.Duration `yaml:"socket_timeout"`
}

func loadDatabaseConfig() *DatabaseConfig {
	uri := getEnv("DATABASE", "mongodb://localhost:27017/tourbook")
	uri = strings.Replace(uri, "<PASSWORD>", getEnv("DATABASE_PASSWORD", ""), 1)

	return &DatabaseConfig{
		URI:            uri,
		Database:       getEnv("DATABASE_NAME", ""),
		MaxPoolSize:    getEnvAsInt("DATABASE_MAX_POOL_SIZE", 100),
		MinPoolSize:    getEnvAsInt("DATABASE_MIN_POOL_SIZE", 5),
		ConnectTimeout: getEnvAsDuration("DATABASE_CONNECT_TIMEOUT", 10*time.Second),
		SocketTimeout:  getEnvAsDuration("DATABASE_SOCKET_TIMEOUT", 30*time.Second),
	}
}
