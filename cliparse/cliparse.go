package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	DefaultPort   = 3318
	DefaultHubURL = "https://hub.snapshot.org/graphql"

	// HubOff disables the upstream hub; proposals come from the local cache only.
	HubOff = "off"

	CursorBackendSQL   = "sql"
	CursorBackendRedis = "redis"
)

type Config struct {
	Port          int
	DatabaseURL   string
	DatabaseType  string
	HubURL        string
	RedisURL      string
	CursorBackend string
	Account       string
}

// ParseFlags validates flags and sets port number
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var envFile string

	fs := flag.NewFlagSet("govfeed", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.HubURL, "hub", "", "Hub GraphQL endpoint, or \"off\" for cache only")
	fs.StringVar(&cfg.RedisURL, "redis", "", "Redis URL for the read cursor")
	fs.StringVar(&cfg.CursorBackend, "cursor", "", "Read cursor backend (sql or redis)")
	fs.StringVar(&cfg.Account, "account", "", "Account address whose feed is served")
	fs.StringVar(&envFile, "env", ".env", "Optional env file")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Values already in the environment win over the file
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = DefaultPort
		}
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("invalid database type %q (use sqlite or postgres)", cfg.DatabaseType)
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		if cfg.DatabaseType != "sqlite" {
			return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
		}
		cfg.DatabaseURL = "file:govfeed.db"
	}

	if cfg.HubURL == "" {
		cfg.HubURL = os.Getenv("HUB_URL")
		if cfg.HubURL == "" {
			cfg.HubURL = DefaultHubURL
		}
	}

	if cfg.RedisURL == "" {
		cfg.RedisURL = os.Getenv("REDIS_URL")
	}

	if cfg.CursorBackend == "" {
		cfg.CursorBackend = os.Getenv("CURSOR_BACKEND")
		if cfg.CursorBackend == "" {
			cfg.CursorBackend = CursorBackendSQL
		}
	}
	switch cfg.CursorBackend {
	case CursorBackendSQL:
	case CursorBackendRedis:
		if cfg.RedisURL == "" {
			return Config{}, errors.New("REDIS_URL required for redis cursor backend")
		}
	default:
		return Config{}, fmt.Errorf("invalid cursor backend %q (use sql or redis)", cfg.CursorBackend)
	}

	// Account - MUST be provided
	if cfg.Account == "" {
		cfg.Account = os.Getenv("ACCOUNT")
	}
	if cfg.Account == "" {
		return Config{}, errors.New("ACCOUNT required")
	}

	return cfg, nil
}

// HubEnabled reports whether proposals are fetched from the hub.
func (c Config) HubEnabled() bool {
	return c.HubURL != HubOff
}
