// Package config loads process configuration from the environment.
// A .env file in the working directory is honoured when present.
package config

import (
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type Config struct {
	Env  string
	Addr string

	JWTSecret string
	TokenTTL  time.Duration

	DBDriver       string
	DatabaseURL    string
	DBHost         string
	DBPort         string
	DBName         string
	DBUser         string
	DBPassword     string
	DBCharset      string
	DBCollation    string
	DBTimeout      string
	DBReadTimeout  string
	DBWriteTimeout string

	MongoURI      string
	MongoDB       string
	ImageBucket   string
	PublicBaseURL string

	RedisAddr       string
	RedisPassword   string
	LoginRateLimit  int
	LoginRateWindow time.Duration
	TrustedProxies  []string

	StaticDir        string
	AdminDefaultUser string
	AdminDefaultPass string

	LogLevel  string
	LogFormat string

	JanitorInterval time.Duration
	JanitorGrace    time.Duration
	LockName        string
	LockWait        time.Duration
}

var defaults = map[string]any{
	"APP_ENV":           "development",
	"ADDR":              ":8080",
	"TOKEN_TTL":         7 * 24 * time.Hour,
	"DB_DRIVER":         "mysql",
	"DB_HOST":           "db",
	"DB_PORT":           "3306",
	"DB_NAME":           "formations",
	"DB_USER":           "appuser",
	"DB_PASSWORD":       "apppass",
	"DB_CHARSET":        "utf8mb4",
	"DB_COLLATION":      "utf8mb4_unicode_ci",
	"DB_TIMEOUT":        "5s",
	"DB_READ_TIMEOUT":   "5s",
	"DB_WRITE_TIMEOUT":  "5s",
	"MONGO_DB_NAME":     "formations",
	"IMAGE_BUCKET":      "images",
	"PUBLIC_BASE_URL":   "http://localhost:8080",
	"LOGIN_RATE_LIMIT":  10,
	"LOGIN_RATE_WINDOW": time.Minute,
	"STATIC_DIR":        "./web/dist",
	"LOG_LEVEL":         "info",
	"LOG_FORMAT":        "text",
	"JANITOR_INTERVAL":  time.Hour,
	"JANITOR_GRACE":     24 * time.Hour,
	"JANITOR_LOCK_NAME": "image-janitor",
	"JANITOR_LOCK_WAIT": time.Duration(0),
}

// Load reads the environment for the API server. JWT_SECRET has no
// default: startup must fail without it rather than sign tokens with a
// well-known key.
func Load() (Config, error) {
	cfg, err := load()
	if err != nil {
		return Config{}, err
	}
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}
	// The in-memory image store loses uploads on restart; only dev may use it.
	if cfg.Production() && cfg.MongoURI == "" {
		return Config{}, errors.New("MONGO_URI is required when APP_ENV=production")
	}
	return cfg, nil
}

// LoadTool is Load for processes that never sign tokens (janitor, seeder).
func LoadTool() (Config, error) {
	return load()
}

func load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	for k, def := range defaults {
		v.SetDefault(k, def)
	}
	v.AutomaticEnv()

	cfg := Config{
		Env:  v.GetString("APP_ENV"),
		Addr: v.GetString("ADDR"),

		JWTSecret: v.GetString("JWT_SECRET"),
		TokenTTL:  v.GetDuration("TOKEN_TTL"),

		DBDriver:       strings.ToLower(v.GetString("DB_DRIVER")),
		DatabaseURL:    v.GetString("DATABASE_URL"),
		DBHost:         v.GetString("DB_HOST"),
		DBPort:         v.GetString("DB_PORT"),
		DBName:         v.GetString("DB_NAME"),
		DBUser:         v.GetString("DB_USER"),
		DBPassword:     v.GetString("DB_PASSWORD"),
		DBCharset:      v.GetString("DB_CHARSET"),
		DBCollation:    v.GetString("DB_COLLATION"),
		DBTimeout:      v.GetString("DB_TIMEOUT"),
		DBReadTimeout:  v.GetString("DB_READ_TIMEOUT"),
		DBWriteTimeout: v.GetString("DB_WRITE_TIMEOUT"),

		MongoURI:      v.GetString("MONGO_URI"),
		MongoDB:       v.GetString("MONGO_DB_NAME"),
		ImageBucket:   v.GetString("IMAGE_BUCKET"),
		PublicBaseURL: strings.TrimRight(v.GetString("PUBLIC_BASE_URL"), "/"),

		RedisAddr:       v.GetString("REDIS_ADDR"),
		RedisPassword:   v.GetString("REDIS_PASSWORD"),
		LoginRateLimit:  v.GetInt("LOGIN_RATE_LIMIT"),
		LoginRateWindow: v.GetDuration("LOGIN_RATE_WINDOW"),
		TrustedProxies:  splitList(v.GetString("TRUSTED_PROXIES")),

		StaticDir:        v.GetString("STATIC_DIR"),
		AdminDefaultUser: v.GetString("ADMIN_DEFAULT_EMAIL"),
		AdminDefaultPass: v.GetString("ADMIN_DEFAULT_PASSWORD"),

		LogLevel:  strings.ToLower(v.GetString("LOG_LEVEL")),
		LogFormat: strings.ToLower(v.GetString("LOG_FORMAT")),

		JanitorInterval: v.GetDuration("JANITOR_INTERVAL"),
		JanitorGrace:    v.GetDuration("JANITOR_GRACE"),
		LockName:        v.GetString("JANITOR_LOCK_NAME"),
		LockWait:        v.GetDuration("JANITOR_LOCK_WAIT"),
	}

	if cfg.TokenTTL <= 0 {
		return Config{}, errors.Errorf("TOKEN_TTL must be positive, got %s", cfg.TokenTTL)
	}
	if cfg.LoginRateLimit <= 0 {
		return Config{}, errors.Errorf("LOGIN_RATE_LIMIT must be positive, got %d", cfg.LoginRateLimit)
	}
	if cfg.LoginRateWindow <= 0 {
		return Config{}, errors.Errorf("LOGIN_RATE_WINDOW must be positive, got %s", cfg.LoginRateWindow)
	}
	switch cfg.DBDriver {
	case "mysql", "sqlite3":
	default:
		return Config{}, errors.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	return cfg, nil
}

// splitList parses a comma-separated env value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Production reports whether cookies must carry the Secure flag.
func (c Config) Production() bool {
	return strings.EqualFold(c.Env, "production")
}

// DSN returns DATABASE_URL verbatim when set, otherwise a MySQL DSN built
// from the DB_* parts.
func (c Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	cfg := mysql.NewConfig()
	cfg.User = c.DBUser
	cfg.Passwd = c.DBPassword
	cfg.Net = "tcp"
	cfg.Addr = c.DBHost + ":" + c.DBPort
	cfg.DBName = c.DBName
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	if cfg.Params == nil {
		cfg.Params = map[string]string{}
	}
	cfg.Params["charset"] = c.DBCharset
	cfg.Params["collation"] = c.DBCollation
	cfg.Params["timeout"] = c.DBTimeout
	cfg.Params["readTimeout"] = c.DBReadTimeout
	cfg.Params["writeTimeout"] = c.DBWriteTimeout
	return cfg.FormatDSN()
}
