package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	RateLimit RateLimitConfig
	Import    ImportConfig
	Upload    UploadConfig
	Files     FilesConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// EndpointClass groups request paths under one rate limit. The table is
// ordered; classification picks the longest matching prefix.
type EndpointClass struct {
	Prefix string
	Limit  int
	Window time.Duration
}

// RateLimitConfig holds the fixed contract of the rate governor: the
// endpoint-class table plus the global default applied to unmatched paths.
type RateLimitConfig struct {
	Enabled       bool
	DefaultLimit  int
	DefaultWindow time.Duration
	Endpoints     []EndpointClass
}

// ImportConfig bounds the bulk principal importer.
type ImportConfig struct {
	MaxFileSizeBytes int64
	BatchSize        int
}

// UploadConfig controls lecture-file upload validation.
type UploadConfig struct {
	MaxFileSizeBytes  int64
	AllowedExtensions []string
	AllowedMIMEs      []string
}

// FilesConfig controls lecture-file storage and signed download URLs.
type FilesConfig struct {
	StorageDir      string
	SignedURLSecret string
	SignedURLTTL    time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	endpoints, err := parseEndpointClasses(v.GetString("RATE_LIMIT_ENDPOINTS"))
	if err != nil {
		return nil, err
	}
	cfg.RateLimit = RateLimitConfig{
		Enabled:       v.GetBool("RATE_LIMIT_ENABLED"),
		DefaultLimit:  v.GetInt("RATE_LIMIT_DEFAULT_REQUESTS"),
		DefaultWindow: parseDuration(v.GetString("RATE_LIMIT_DEFAULT_WINDOW"), time.Minute),
		Endpoints:     endpoints,
	}

	maxImportSize := v.GetInt64("IMPORT_MAX_FILE_SIZE")
	cfg.Import = ImportConfig{
		MaxFileSizeBytes: maxImportSize,
		BatchSize:        v.GetInt("IMPORT_BATCH_SIZE"),
	}

	cfg.Upload = UploadConfig{
		MaxFileSizeBytes:  v.GetInt64("UPLOAD_MAX_FILE_SIZE"),
		AllowedExtensions: splitAndTrim(v.GetString("UPLOAD_ALLOWED_EXTENSIONS")),
		AllowedMIMEs:      splitAndTrim(v.GetString("UPLOAD_ALLOWED_MIME_TYPES")),
	}

	cfg.Files = FilesConfig{
		StorageDir:      v.GetString("FILES_STORAGE_DIR"),
		SignedURLSecret: v.GetString("FILES_SIGNED_URL_SECRET"),
		SignedURLTTL:    parseDuration(v.GetString("FILES_SIGNED_URL_TTL"), 30*time.Minute),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects invalid configuration at startup rather than per request.
func (c *Config) Validate() error {
	if c.RateLimit.DefaultLimit <= 0 {
		return fmt.Errorf("config: RATE_LIMIT_DEFAULT_REQUESTS must be positive, got %d", c.RateLimit.DefaultLimit)
	}
	if c.RateLimit.DefaultWindow <= 0 {
		return fmt.Errorf("config: RATE_LIMIT_DEFAULT_WINDOW must be positive, got %s", c.RateLimit.DefaultWindow)
	}
	for _, ep := range c.RateLimit.Endpoints {
		if ep.Prefix == "" || !strings.HasPrefix(ep.Prefix, "/") {
			return fmt.Errorf("config: rate limit prefix %q must start with /", ep.Prefix)
		}
		if ep.Limit <= 0 || ep.Window <= 0 {
			return fmt.Errorf("config: rate limit class %q has non-positive limit or window", ep.Prefix)
		}
	}
	if c.Import.MaxFileSizeBytes <= 0 {
		return fmt.Errorf("config: IMPORT_MAX_FILE_SIZE must be positive, got %d", c.Import.MaxFileSizeBytes)
	}
	if c.Import.BatchSize <= 0 {
		return fmt.Errorf("config: IMPORT_BATCH_SIZE must be positive, got %d", c.Import.BatchSize)
	}
	if c.Upload.MaxFileSizeBytes <= 0 {
		return fmt.Errorf("config: UPLOAD_MAX_FILE_SIZE must be positive, got %d", c.Upload.MaxFileSizeBytes)
	}
	return nil
}

// parseEndpointClasses parses "prefix:limit:window" entries separated by
// commas, e.g. "/api/v1/auth/login:5:60s,/api/v1/admin/users/import:2:60s".
func parseEndpointClasses(raw string) ([]EndpointClass, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	classes := make([]EndpointClass, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fields := strings.Split(part, ":")
		if len(fields) != 3 {
			return nil, fmt.Errorf("config: malformed rate limit entry %q, want prefix:limit:window", part)
		}
		limit, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("config: rate limit entry %q: %w", part, err)
		}
		window, err := time.ParseDuration(fields[2])
		if err != nil {
			return nil, fmt.Errorf("config: rate limit entry %q: %w", part, err)
		}
		classes = append(classes, EndpointClass{Prefix: fields[0], Limit: limit, Window: window})
	}
	return classes, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "sacm_portal")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("JWT_ISSUER", "sacm-api")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("RATE_LIMIT_ENABLED", true)
	v.SetDefault("RATE_LIMIT_DEFAULT_REQUESTS", 100)
	v.SetDefault("RATE_LIMIT_DEFAULT_WINDOW", "60s")
	v.SetDefault("RATE_LIMIT_ENDPOINTS",
		"/api/v1/auth/login:5:60s,/api/v1/auth/activate:10:60s,/api/v1/admin/principals/import:2:60s")

	v.SetDefault("IMPORT_MAX_FILE_SIZE", 10*1024*1024)
	v.SetDefault("IMPORT_BATCH_SIZE", 100)

	v.SetDefault("UPLOAD_MAX_FILE_SIZE", 50*1024*1024)
	v.SetDefault("UPLOAD_ALLOWED_EXTENSIONS", ".pdf,.doc,.docx,.ppt,.pptx,.xls,.xlsx,.txt,.md,.csv,.jpg,.jpeg,.png,.gif,.webp,.mp4,.webm,.mp3,.wav,.zip,.rar,.7z")
	v.SetDefault("UPLOAD_ALLOWED_MIME_TYPES", "application/pdf,application/msword,application/vnd.openxmlformats-officedocument.wordprocessingml.document,application/vnd.ms-powerpoint,application/vnd.openxmlformats-officedocument.presentationml.presentation,application/vnd.ms-excel,application/vnd.openxmlformats-officedocument.spreadsheetml.sheet,text/plain,text/markdown,text/csv,image/jpeg,image/png,image/gif,image/webp,video/mp4,video/webm,audio/mpeg,audio/wav,application/zip,application/x-rar-compressed,application/x-7z-compressed")

	v.SetDefault("FILES_STORAGE_DIR", "./uploads")
	v.SetDefault("FILES_SIGNED_URL_SECRET", "dev_files_secret")
	v.SetDefault("FILES_SIGNED_URL_TTL", "30m")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
