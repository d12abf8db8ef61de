package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var ErrMissingEnvironmentVariables = errors.New("missing required environment variables")

// Bank source types.
const (
	SourceGitHub = "github"
	SourceMinio  = "minio"
	SourceFile   = "file"
)

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env      string   `mapstructure:"env"`      // current application environment (local, dev, production)
	HTTP     HTTP     `mapstructure:"http"`     // HTTP server section
	Quiz     Quiz     `mapstructure:"quiz"`     // quiz composition and timing
	Bank     Bank     `mapstructure:"bank"`     // where the question bank and users file live
	DB       DB       `mapstructure:"database"` // database configuration section
	Auth     Auth     `mapstructure:"auth"`     // session cookie and login throttling
	Telegram Telegram `mapstructure:"telegram"` // optional Telegram front-end
	Log      Log      `mapstructure:"log"`      // log file rotation
}

// HTTP contains listener settings.
type HTTP struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Quiz contains composition and timing parameters.
type Quiz struct {
	Database       string          `mapstructure:"database"`        // bank name passed to the source
	QuestionCount  int             `mapstructure:"question_count"`  // questions per whole-bank quiz
	SectionCount   int             `mapstructure:"section_count"`   // questions per single-section quiz
	Duration       time.Duration   `mapstructure:"duration"`        // time limit per attempt
	Grace          time.Duration   `mapstructure:"grace"`           // late submissions accepted within this window
	SessionTTL     time.Duration   `mapstructure:"session_ttl"`     // attempts older than this are evicted
	EvictSchedule  string          `mapstructure:"evict_schedule"`  // cron spec for eviction
	PassPercentage float64         `mapstructure:"pass_percentage"` // section completion threshold
	Weights        []SectionWeight `mapstructure:"weights"`         // shares of a whole-bank quiz
}

// SectionWeight is one section's share of a whole-bank quiz. A list is used
// instead of a map because map keys lose their case when loaded.
type SectionWeight struct {
	Section string  `mapstructure:"section"`
	Weight  float64 `mapstructure:"weight"`
}

// WeightMap returns the weights keyed by section name, or nil when none are configured.
func (q Quiz) WeightMap() map[string]float64 {
	if len(q.Weights) == 0 {
		return nil
	}
	m := make(map[string]float64, len(q.Weights))
	for _, w := range q.Weights {
		m[w.Section] += w.Weight
	}
	return m
}

// Bank describes the question-bank source.
type Bank struct {
	Source        string        `mapstructure:"source"`        // github, minio or file
	UsersFile     string        `mapstructure:"users_file"`    // credentials file name
	FetchTimeout  time.Duration `mapstructure:"fetch_timeout"` // per-fetch timeout
	GitHubRepo    string        `mapstructure:"github_repo"`   // owner/name
	GitHubToken   string        `mapstructure:"-"`             // loaded from environment
	GitHubAPIURL  string        `mapstructure:"github_api_url"`
	MinioEndpoint string        `mapstructure:"minio_endpoint"`
	MinioAccessID string        `mapstructure:"-"`
	MinioSecret   string        `mapstructure:"-"`
	MinioBucket   string        `mapstructure:"minio_bucket"`
	MinioUseSSL   bool          `mapstructure:"minio_use_ssl"`
	Dir           string        `mapstructure:"dir"` // directory for the file source
}

// DB contains database-related configuration parameters.
type DB struct {
	URL             string        `mapstructure:"-"`                 // database connection string loaded from environment
	MaxConnections  int           `mapstructure:"max_connections"`   // maximum number of open connections in the pool
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"` // maximum lifetime of a single connection
}

// Auth contains session cookie settings.
type Auth struct {
	JWTSecret  string        `mapstructure:"-"`
	CookieName string        `mapstructure:"cookie_name"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
	LoginRate  float64       `mapstructure:"login_rate"`  // login attempts per second per client
	LoginBurst int           `mapstructure:"login_burst"` // burst size for login attempts
}

// Telegram contains bot settings; the bot is disabled when Token is empty.
type Telegram struct {
	Token string `mapstructure:"-"`
	Debug bool   `mapstructure:"debug"`
}

// Log contains file logging settings; file logging is disabled when File is empty.
type Log struct {
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// DSN returns the database connection string if it is configured.
func (db DB) DSN() (string, error) {
	if db.URL == "" {
		return "", ErrMissingEnvironmentVariables
	}
	return db.URL, nil
}

// Load reads configuration from config files and environment variables.
func Load() (*Config, error) {
	// Pick up a local .env file if there is one.
	_ = godotenv.Load()

	// Initialize Viper instance and base config options.
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")

	setDefaults(v)

	// Configure environment variable handling and key mapping.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // map nested keys to ENV style names
	v.AutomaticEnv()

	// Bind explicit environment variables to configuration keys.
	_ = v.BindEnv("env", "APP_ENV")
	_ = v.BindEnv("database_url", "DATABASE_URL")
	_ = v.BindEnv("jwt_secret", "SECRET_KEY")
	_ = v.BindEnv("github_token", "GITHUB_TOKEN")
	_ = v.BindEnv("bank.github_repo", "PRIVATE_REPO")
	_ = v.BindEnv("minio_access_key", "MINIO_ACCESS_KEY")
	_ = v.BindEnv("minio_secret_key", "MINIO_SECRET_KEY")
	_ = v.BindEnv("telegram_api_token", "TELEGRAM_API_TOKEN")
	_ = v.BindEnv("http.addr", "HTTP_ADDR")

	// Try to read configuration file if present.
	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	// Unmarshal configuration into strongly typed struct.
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// Load sensitive values from environment variables.
	cfg.DB.URL = v.GetString("database_url")
	cfg.Auth.JWTSecret = v.GetString("jwt_secret")
	cfg.Bank.GitHubToken = v.GetString("github_token")
	cfg.Bank.MinioAccessID = v.GetString("minio_access_key")
	cfg.Bank.MinioSecret = v.GetString("minio_secret_key")
	cfg.Telegram.Token = v.GetString("telegram_api_token")

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "local")

	v.SetDefault("http.addr", ":5000")
	v.SetDefault("http.read_timeout", "15s")
	v.SetDefault("http.write_timeout", "30s")

	v.SetDefault("quiz.database", "m_script_database.txt")
	v.SetDefault("quiz.question_count", 30)
	v.SetDefault("quiz.section_count", 10)
	v.SetDefault("quiz.duration", "30m")
	v.SetDefault("quiz.grace", "1m")
	v.SetDefault("quiz.session_ttl", "2h")
	v.SetDefault("quiz.evict_schedule", "@every 5m")
	v.SetDefault("quiz.pass_percentage", 70.0)

	v.SetDefault("bank.source", SourceGitHub)
	v.SetDefault("bank.users_file", "users.json")
	v.SetDefault("bank.fetch_timeout", "10s")
	v.SetDefault("bank.github_api_url", "https://api.github.com")
	v.SetDefault("bank.dir", "./data")

	v.SetDefault("database.max_connections", 20)
	v.SetDefault("database.max_conn_lifetime", "30s")

	v.SetDefault("auth.cookie_name", "quiz_session")
	v.SetDefault("auth.token_ttl", "12h")
	v.SetDefault("auth.login_rate", 1.0)
	v.SetDefault("auth.login_burst", 5)

	v.SetDefault("log.max_size_mb", 50)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 28)
}

// validate checks that every secret the selected components need is present.
func (c *Config) validate() error {
	if c.DB.URL == "" || c.Auth.JWTSecret == "" {
		return ErrMissingEnvironmentVariables
	}

	switch c.Bank.Source {
	case SourceGitHub:
		if c.Bank.GitHubToken == "" || c.Bank.GitHubRepo == "" {
			return ErrMissingEnvironmentVariables
		}
	case SourceMinio:
		if c.Bank.MinioEndpoint == "" || c.Bank.MinioBucket == "" {
			return ErrMissingEnvironmentVariables
		}
	case SourceFile:
	default:
		return fmt.Errorf("unknown bank source %q", c.Bank.Source)
	}

	return nil
}
