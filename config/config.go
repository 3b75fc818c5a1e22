package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the server needs at startup
type Config struct {
	Port          string
	DBDriver      string
	DBDSN         string
	MigrationsDir string

	CacheType     string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	SessionCookie string
	SessionTTL    time.Duration
	CookieSecure  bool

	BcryptCost int
}

var (
	supportedDrivers = map[string]bool{"sqlite3": true, "mysql": true}
	supportedCaches  = map[string]bool{"memory": true, "redis": true}
)

// Load reads .env (if present), then environment variables, then flags
// registered on fs and parsed from args. Flags win over env, env wins over defaults.
func Load(fs *flag.FlagSet, args []string) (Config, error) {
	_ = godotenv.Load() // ok if missing

	cfg := Config{
		Port:          getenv("PORT", "8080"),
		DBDriver:      getenv("DB_DRIVER", "sqlite3"),
		DBDSN:         getenv("DB_DSN", "./notes_app.db"),
		MigrationsDir: os.Getenv("MIGRATIONS_DIR"),
		CacheType:     getenv("CACHE_TYPE", "memory"),
		RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		SessionCookie: getenv("SESSION_COOKIE", "session_id"),
		CookieSecure:  os.Getenv("COOKIE_SECURE") == "true",
	}

	var err error
	if cfg.RedisDB, err = atoiEnv("REDIS_DB", 0); err != nil {
		return Config{}, err
	}
	if cfg.BcryptCost, err = atoiEnv("BCRYPT_COST", 12); err != nil {
		return Config{}, err
	}
	ttl := getenv("SESSION_TTL", "24h")
	if cfg.SessionTTL, err = time.ParseDuration(ttl); err != nil {
		return Config{}, fmt.Errorf("invalid SESSION_TTL %q: %w", ttl, err)
	}

	fs.StringVar(&cfg.Port, "port", cfg.Port, "HTTP port")
	fs.StringVar(&cfg.DBDriver, "db-driver", cfg.DBDriver, "Database driver (sqlite3 or mysql)")
	fs.StringVar(&cfg.DBDSN, "db", cfg.DBDSN, "Database DSN")
	fs.StringVar(&cfg.MigrationsDir, "migrations", cfg.MigrationsDir, "Migrations directory")
	fs.StringVar(&cfg.CacheType, "cache", cfg.CacheType, "Session cache (memory or redis)")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return Config{}, fmt.Errorf("invalid port %q", cfg.Port)
	}
	if !supportedDrivers[cfg.DBDriver] {
		return Config{}, fmt.Errorf("unsupported db driver %q", cfg.DBDriver)
	}
	if !supportedCaches[cfg.CacheType] {
		return Config{}, fmt.Errorf("unsupported cache type %q", cfg.CacheType)
	}
	if cfg.DBDSN == "" {
		return Config{}, errors.New("database DSN required (use -db or DB_DSN env)")
	}
	if cfg.SessionTTL <= 0 {
		return Config{}, errors.New("SESSION_TTL must be positive")
	}
	if cfg.MigrationsDir == "" {
		cfg.MigrationsDir = filepath.Join(".", "database", "migrations", cfg.DBDriver)
	}

	return cfg, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func atoiEnv(k string, def int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable", k)
	}
	return n, nil
}
