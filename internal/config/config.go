package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Env      Env
	Upload   FileUploadConfig
	Settings SettingsDefaults
	Auth     AuthConfig
	NATS     NATSConfig
	Redis    RedisConfig
	Database DatabaseConfig
	Server   ServerConfig
}

type Env struct {
	Env string `envconfig:"ENV" default:"DEV"`
}

type ServerConfig struct {
	Host           string        `envconfig:"SERVER_HOST" default:"localhost"`
	Port           string        `envconfig:"SERVER_PORT" default:"8080"`
	BaseURL        string        `envconfig:"SERVER_BASE_URL" default:"http://localhost:8080"`
	RequestTimeout time.Duration `envconfig:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

type FileUploadConfig struct {
	StorageDir    string        `envconfig:"UPLOAD_STORAGE_DIR" default:"./storage"`
	BasePath      string        `envconfig:"UPLOAD_BASE_PATH" default:"/api/upload"`
	DirectMaxSize int64         `envconfig:"UPLOAD_DIRECT_MAX_SIZE" default:"104857600"`
	SessionTTL    time.Duration `envconfig:"UPLOAD_SESSION_TTL" default:"24h"`
	CleanupEvery  time.Duration `envconfig:"UPLOAD_CLEANUP_EVERY" default:"15m"`
	LockWait      time.Duration `envconfig:"UPLOAD_LOCK_WAIT" default:"5s"`
}

// SettingsDefaults seed app_settings rows that do not exist yet
type SettingsDefaults struct {
	BlacklistedExtensions     string        `envconfig:"SETTINGS_BLACKLISTED_EXTENSIONS" default:""`
	UploadMaxSize             int64         `envconfig:"SETTINGS_UPLOAD_FILE_MAX_SIZE" default:"5368709120"`
	ChunkSize                 int64         `envconfig:"SETTINGS_UPLOAD_FILE_CHUNK_SIZE" default:"26214400"`
	DefaultUserQuota          int64         `envconfig:"SETTINGS_DEFAULT_USER_QUOTA" default:"1073741824"`
	DefaultUserFileCountQuota int64         `envconfig:"SETTINGS_DEFAULT_USER_FILE_COUNT_QUOTA" default:"1000"`
	CDNURL                    string        `envconfig:"SETTINGS_CDN_URL" default:""`
	CacheTTL                  time.Duration `envconfig:"SETTINGS_CACHE_TTL" default:"5m"`
}

type AuthConfig struct {
	JWTSecret  string `envconfig:"AUTH_JWT_SECRET" required:"true"`
	CookieName string `envconfig:"AUTH_COOKIE_NAME" default:"session"`
}

// NATSConfig is optional, an empty URL disables events
type NATSConfig struct {
	URL             string `envconfig:"NATS_URL"`
	StreamName      string `envconfig:"NATS_STREAM_NAME" default:"FILEDROP"`
	ConsumerName    string `envconfig:"NATS_CONSUMER_NAME" default:"filedrop-api"`
	UploadSubject   string `envconfig:"NATS_UPLOAD_SUBJECT" default:"filedrop.upload.finished"`
	SettingsSubject string `envconfig:"NATS_SETTINGS_SUBJECT" default:"filedrop.settings.updated"`
	DeliverGroup    string `envconfig:"NATS_DELIVER_GROUP" default:""`
}

// RedisConfig is optional, an empty Addr keeps session locks in process
type RedisConfig struct {
	Addr     string        `envconfig:"REDIS_ADDR"`
	Password string        `envconfig:"REDIS_PASSWORD"`
	DB       int           `envconfig:"REDIS_DB" default:"0"`
	LockTTL  time.Duration `envconfig:"REDIS_LOCK_TTL" default:"2m"`
}

type DatabaseConfig struct {
	Host           string        `envconfig:"DB_HOST" required:"true"`
	Port           int           `envconfig:"DB_PORT" default:"5432"`
	User           string        `envconfig:"DB_USER" required:"true"`
	Password       string        `envconfig:"DB_PASSWORD" required:"true"`
	Name           string        `envconfig:"DB_NAME" required:"true"`
	SSLMode        string        `envconfig:"DB_SSLMODE" default:"disable"`
	MaxOpenCons    int           `envconfig:"DB_MAX_OPEN_CONS" default:"25"`
	MaxIdleCons    int           `envconfig:"DB_MAX_IDLE_CONS" default:"5"`
	ConMaxLifeTime time.Duration `envconfig:"DB_CONMAX_LIFE_TIME" default:"5m"`
}

// DSN builds a lib/pq connection string
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host,
		c.Port,
		c.User,
		c.Password,
		c.Name,
		c.SSLMode,
	)
}

// AdminConfig is the subset of Config used by operator commands
type AdminConfig struct {
	NATS     NATSConfig
	Database DatabaseConfig
}

func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func LoadAdmin() (*AdminConfig, error) {
	var cfg AdminConfig

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
