// internal/config/config.go
//
// Process configuration read from the environment. In development main
// loads a `.env` file first (godotenv), so every key below may live there.
//
//   PORT              HTTP port (default 5175)
//   DB_PATH           SQLite file (default ./data/mastermind.db)
//   LOG_LEVEL         zerolog level (default info)
//   LOG_FILE          log destination for the terminal client (default: none)
//   DEBUG             enables secret reveal (default false)
//   SCORING           simple | classic (default simple)
//   DAILY_SALT        HMAC salt for daily puzzles
//   JWT_SECRET        HS256 key for account tokens
//   JWT_EXPIRES_DAYS  token lifetime (default 14)
//   COOKIE_NAME       auth cookie name (default mastermind_token)
//   CLIENT_ORIGIN     CORS origin (default http://localhost:5173)
//   APP_ENV           "production" switches cookies to Secure/SameSite=None
//   SESSION_TTL       idle time before a live session is evicted (default 2h)

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robalobadob/mastermind/internal/game"
)

type Config struct {
	Port           string
	DBPath         string
	LogLevel       string
	LogFile        string
	Debug          bool
	Scoring        game.Scoring
	DailySalt      string
	JWTSecret      string
	JWTExpiresDays int
	CookieName     string
	ClientOrigin   string
	Production     bool
	SessionTTL     time.Duration
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	sc, err := game.ParseScoring(os.Getenv("SCORING"))
	if err != nil {
		return Config{}, fmt.Errorf("SCORING: %w", err)
	}
	debug, err := envBool("DEBUG", false)
	if err != nil {
		return Config{}, err
	}
	days, err := envInt("JWT_EXPIRES_DAYS", 14)
	if err != nil {
		return Config{}, err
	}
	ttl, err := envDuration("SESSION_TTL", 2*time.Hour)
	if err != nil {
		return Config{}, err
	}
	return Config{
		Port:           getEnv("PORT", "5175"),
		DBPath:         getEnv("DB_PATH", "./data/mastermind.db"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFile:        os.Getenv("LOG_FILE"),
		Debug:          debug,
		Scoring:        sc,
		DailySalt:      getEnv("DAILY_SALT", "local_dev_salt"),
		JWTSecret:      getEnv("JWT_SECRET", "dev_secret_change_me"),
		JWTExpiresDays: days,
		CookieName:     getEnv("COOKIE_NAME", "mastermind_token"),
		ClientOrigin:   getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		Production:     strings.EqualFold(os.Getenv("APP_ENV"), "production"),
		SessionTTL:     ttl,
	}, nil
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	return n, nil
}

func envBool(k string, def bool) (bool, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", k, err)
	}
	return b, nil
}

func envDuration(k string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s: must be positive", k)
	}
	return d, nil
}
