package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the whole runtime configuration, resolved from the environment.
type Config struct {
	Environment   string
	Server        ServerConfig
	Database      DatabaseConfig
	Session       SessionConfig
	Hashing       HashingConfig
	Upload        UploadConfig
	Seed          SeedConfig
	Redis         RedisConfig
	Kafka         KafkaConfig
	Elasticsearch ElasticsearchConfig
	Logging       LoggingConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	StaticDir    string
	CORSOrigins  []string

	EnableTLS   bool
	CertFile    string
	KeyFile     string
	AutoCert    bool
	Domain      string
	AutoCertDir string
	Email       string
}

// DatabaseConfig selects the backing engine. Postgres reads URL, MySQL reads
// the discrete Host/Port/User/Password/Name fields, SQLite reads Path.
type DatabaseConfig struct {
	Type            string
	URL             string
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type SessionConfig struct {
	Backend string
	TTL     time.Duration
}

type HashingConfig struct {
	BcryptCost int
}

type UploadConfig struct {
	Dir          string
	MaxFileBytes int64
}

// SeedConfig is the admin account created on first boot.
type SeedConfig struct {
	Username string
	Password string
	FullName string
	Email    string
}

type RedisConfig struct {
	URL      string
	Password string
	DB       int
	PoolSize int
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type ElasticsearchConfig struct {
	URL      string
	Username string
	Password string
	Index    string
}

type LoggingConfig struct {
	Level  string
	Format string
}

const (
	DBTypePostgres = "postgres"
	DBTypeMySQL    = "mysql"
	DBTypeSQLite   = "sqlite"

	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

// LoadConfig reads an optional .env file and then the process environment.
func LoadConfig() *Config {
	_ = godotenv.Load()

	env := GetEnv("APP_ENV", "development")
	cfg := &Config{
		Environment: env,
		Server: ServerConfig{
			Port:         GetEnvInt("PORT", 5000),
			ReadTimeout:  GetEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: GetEnvDuration("SERVER_WRITE_TIMEOUT", 60*time.Second),
			IdleTimeout:  GetEnvDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			StaticDir:    GetEnv("STATIC_DIR", "public"),
			CORSOrigins:  GetEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
			CertFile:     GetEnv("TLS_CERT_FILE", ""),
			KeyFile:      GetEnv("TLS_KEY_FILE", ""),
			Domain:       GetEnv("TLS_AUTOCERT_DOMAIN", ""),
			AutoCertDir:  GetEnv("TLS_AUTOCERT_DIR", "certs"),
			Email:        GetEnv("TLS_AUTOCERT_EMAIL", ""),
		},
		Database: DatabaseConfig{
			Type:            strings.ToLower(GetEnv("DB_TYPE", DBTypePostgres)),
			URL:             GetEnv("DATABASE_URL", ""),
			Host:            GetEnv("DB_HOST", ""),
			Port:            GetEnvInt("DB_PORT", 3306),
			User:            GetEnv("DB_USER", ""),
			Password:        GetEnv("DB_PASSWORD", ""),
			Name:            GetEnv("DB_NAME", ""),
			Path:            GetEnv("SQLITE_PATH", "bragawork.db"),
			MaxOpenConns:    GetEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    GetEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: GetEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: GetEnvDuration("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
		},
		Session: SessionConfig{
			Backend: strings.ToLower(GetEnv("SESSION_BACKEND", SessionBackendMemory)),
			TTL:     GetEnvDuration("SESSION_TTL", 24*time.Hour),
		},
		Hashing: HashingConfig{
			BcryptCost: GetEnvInt("BCRYPT_COST", 10),
		},
		Upload: UploadConfig{
			Dir:          GetEnv("UPLOAD_DIR", "public/uploads"),
			MaxFileBytes: int64(GetEnvInt("UPLOAD_MAX_BYTES", 5*1024*1024)),
		},
		Seed: SeedConfig{
			Username: GetEnv("ADMIN_SEED_USERNAME", "admin"),
			Password: GetEnv("ADMIN_SEED_PASSWORD", "admin123"),
			FullName: GetEnv("ADMIN_SEED_FULL_NAME", "Administrador BragaWork"),
			Email:    GetEnv("ADMIN_SEED_EMAIL", "admin@bragawork.com"),
		},
		Redis: RedisConfig{
			URL:      GetEnv("REDIS_URL", ""),
			Password: GetEnv("REDIS_PASSWORD", ""),
			DB:       GetEnvInt("REDIS_DB", 0),
			PoolSize: GetEnvInt("REDIS_POOL_SIZE", 10),
		},
		Kafka: KafkaConfig{
			Brokers: GetEnvList("KAFKA_BROKERS", nil),
			Topic:   GetEnv("KAFKA_TOPIC", "bragawork.events"),
		},
		Elasticsearch: ElasticsearchConfig{
			URL:      GetEnv("ELASTICSEARCH_URL", ""),
			Username: GetEnv("ELASTICSEARCH_USERNAME", ""),
			Password: GetEnv("ELASTICSEARCH_PASSWORD", ""),
			Index:    GetEnv("ELASTICSEARCH_INDEX", "bragawork-audit"),
		},
		Logging: LoggingConfig{
			Level:  GetEnv("LOG_LEVEL", "info"),
			Format: GetEnv("LOG_FORMAT", defaultLogFormat(env)),
		},
	}

	cfg.Server.AutoCert = cfg.Server.Domain != ""
	cfg.Server.EnableTLS = cfg.Server.AutoCert || (cfg.Server.CertFile != "" && cfg.Server.KeyFile != "")

	return cfg
}

// Validate checks that the selected database engine has what it needs to connect.
func (c *Config) Validate() error {
	switch c.Database.Type {
	case DBTypePostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required when DB_TYPE=%s", DBTypePostgres)
		}
	case DBTypeMySQL:
		if c.Database.Host == "" || c.Database.User == "" || c.Database.Password == "" || c.Database.Name == "" {
			return fmt.Errorf("DB_HOST, DB_USER, DB_PASSWORD and DB_NAME are required when DB_TYPE=%s", DBTypeMySQL)
		}
	case DBTypeSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("SQLITE_PATH is required when DB_TYPE=%s", DBTypeSQLite)
		}
	default:
		return fmt.Errorf("unsupported DB_TYPE %q", c.Database.Type)
	}

	switch c.Session.Backend {
	case SessionBackendMemory:
	case SessionBackendRedis:
		if c.Redis.URL == "" {
			return fmt.Errorf("REDIS_URL is required when SESSION_BACKEND=%s", SessionBackendRedis)
		}
	default:
		return fmt.Errorf("unsupported SESSION_BACKEND %q", c.Session.Backend)
	}

	if c.Session.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) GetServerAddress() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

func defaultLogFormat(env string) string {
	if env == "production" {
		return "json"
	}
	return "console"
}

// GetEnv returns the variable or def when it is unset or empty.
func GetEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func GetEnvInt(key string, def int) int {
	v := GetEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func GetEnvDuration(key string, def time.Duration) time.Duration {
	v := GetEnv(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

// GetEnvList splits a comma separated variable, dropping blanks.
func GetEnvList(key string, def []string) []string {
	v := GetEnv(key, "")
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
