package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/FreakyLetsFail/uni-swipe/internal/secrets"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config holds all application configuration
type Config struct {
	App            AppConfig
	Database       DatabaseConfig
	Identity       IdentityConfig
	ApiKey         ApiKeyConfig
	Storage        StorageConfig
	Secrets        SecretsConfig
	Logging        LoggingConfig
	Server         ServerConfig
	CORS           CORSConfig
	Security       SecurityConfig
	RateLimit      RateLimitConfig
	Catalog        CatalogConfig
	Recommendation RecommendationConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Port        int
	// PublicURL is the externally reachable base URL, used for redirects after email confirmation
	PublicURL string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
	// ConnectAttempts is how many times the initial connection is tried before giving up
	ConnectAttempts int
}

// IdentityConfig holds configuration for the hosted identity provider (GoTrue-compatible)
type IdentityConfig struct {
	// URL is the project base URL, e.g. https://xyz.supabase.co
	URL string
	// AnonKey is the public API key sent as the apikey header
	AnonKey string
	// JWTSecret is the HS256 secret used to verify access tokens locally
	JWTSecret string
	// JWTAudience is the expected aud claim of user access tokens
	JWTAudience string
	// Timeout is the HTTP timeout for identity calls (seconds)
	Timeout int
	// BreakerFailures is the number of consecutive failures before the circuit opens
	BreakerFailures uint32
	// BreakerTimeout is how long the circuit stays open (seconds)
	BreakerTimeout int
}

type ApiKeyConfig struct {
	SecretName string
	Value      string // Loaded from secrets or environment
}

type StorageConfig struct {
	Mode                  string
	LocalBasePath         string
	PublicBaseURL         string
	CloudConnectionString string
	CloudContainer        string
	MaxUploadSizeMB       int64
}

type SecretsConfig struct {
	// Source determines where secrets are loaded from: "environment", "vault", or "auto"
	// "auto" uses environment in development, vault in staging/production
	Source       string
	KeyVaultName string
	CacheEnabled bool
	CacheTTL     int // seconds
}

type LoggingConfig struct {
	Level  string
	Format string
}

type ServerConfig struct {
	ReadTimeout    int
	WriteTimeout   int
	RequestTimeout int
	EnableSwagger  bool
	// StaticDir serves a built frontend from / behind the route guard when set
	StaticDir string
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	// AllowedOrigins is a list of allowed origins for CORS requests
	// Use "*" to allow all origins (not recommended for production)
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	// MaxAge is the max age (in seconds) for preflight cache
	MaxAge int
}

// SecurityConfig holds security header configuration
type SecurityConfig struct {
	EnableHSTS            bool
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool
	HSTSPreload           bool
	ContentSecurityPolicy string
	// FrameOptions sets the X-Frame-Options header (DENY, SAMEORIGIN, or empty to disable)
	FrameOptions       string
	ContentTypeNosniff bool
	XSSProtection      string
	ReferrerPolicy     string
	PermissionsPolicy  string
	// SecureCookies marks the session cookie Secure
	SecureCookies bool
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled bool
	// RequestsPerMinute is the default rate limit for unauthenticated requests (per IP)
	RequestsPerMinute int
	// RequestsPerMinuteAuth is the rate limit for authenticated requests (per user)
	RequestsPerMinuteAuth int
	WhitelistIPs          []string
	WhitelistPaths        []string
}

// CatalogConfig controls the in-process snapshot of subjects and universities
type CatalogConfig struct {
	RefreshEnabled bool
	// RefreshCron is a robfig/cron expression, seconds field optional
	RefreshCron string
	// LoadAttempts and LoadDelay apply to the subject list loaded during registration
	LoadAttempts int
	LoadDelay    int // seconds
}

// RecommendationConfig tunes the image backfill of recommendation results
type RecommendationConfig struct {
	PlaceholderImages    []string
	PlaceholderSentinels []string
	FaviconURLTemplate   string
}

// ConnectionString builds PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// ConnMaxLifetimeDuration returns connection max lifetime as duration
func (d *DatabaseConfig) ConnMaxLifetimeDuration() time.Duration {
	return time.Duration(d.ConnMaxLifetime) * time.Second
}

// ReadTimeoutDuration returns read timeout as duration
func (s *ServerConfig) ReadTimeoutDuration() time.Duration {
	return time.Duration(s.ReadTimeout) * time.Second
}

// WriteTimeoutDuration returns write timeout as duration
func (s *ServerConfig) WriteTimeoutDuration() time.Duration {
	return time.Duration(s.WriteTimeout) * time.Second
}

// RequestTimeoutDuration returns request timeout as duration
func (s *ServerConfig) RequestTimeoutDuration() time.Duration {
	return time.Duration(s.RequestTimeout) * time.Second
}

// TimeoutDuration returns the identity HTTP timeout as duration
func (i *IdentityConfig) TimeoutDuration() time.Duration {
	return time.Duration(i.Timeout) * time.Second
}

// BreakerTimeoutDuration returns how long the identity circuit stays open
func (i *IdentityConfig) BreakerTimeoutDuration() time.Duration {
	return time.Duration(i.BreakerTimeout) * time.Second
}

// LoadDelayDuration returns the delay between catalog load attempts
func (c *CatalogConfig) LoadDelayDuration() time.Duration {
	return time.Duration(c.LoadDelay) * time.Second
}

// Load loads configuration from file and environment variables
// This is a basic load that doesn't fetch secrets from vault
// Use LoadWithSecrets for full secret resolution
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables override config file
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.ApiKey.Value == "" {
		cfg.ApiKey.Value = v.GetString("ADMIN_API_KEY")
	}

	// The frontend was configured with these names, accept them as aliases
	if cfg.Identity.URL == "" {
		cfg.Identity.URL = v.GetString("SUPABASE_URL")
	}
	if cfg.Identity.AnonKey == "" {
		cfg.Identity.AnonKey = v.GetString("SUPABASE_ANON_KEY")
	}
	if cfg.Identity.JWTSecret == "" {
		cfg.Identity.JWTSecret = v.GetString("SUPABASE_JWT_SECRET")
	}

	if cfg.Secrets.KeyVaultName == "" {
		cfg.Secrets.KeyVaultName = v.GetString("AZURE_KEY_VAULT_NAME")
	}

	return &cfg, nil
}

// LoadWithSecrets loads configuration and resolves secrets from the configured source
//
// Key Vault is used when BOTH conditions are met:
// 1. USE_AZURE_KEY_VAULT environment variable is set to "true"
// 2. Environment is "staging" or "production"
func LoadWithSecrets(ctx context.Context, logger *zap.Logger) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	useKeyVault := strings.ToLower(os.Getenv("USE_AZURE_KEY_VAULT")) == "true"
	isValidEnv := cfg.App.Environment == "staging" || cfg.App.Environment == "production"

	if !useKeyVault {
		logger.Info("USE_AZURE_KEY_VAULT not enabled, using environment variables for secrets",
			zap.String("environment", cfg.App.Environment),
		)
		return cfg, nil
	}

	if !isValidEnv {
		logger.Warn("USE_AZURE_KEY_VAULT is enabled but environment is not staging or production, using environment variables for secrets",
			zap.String("environment", cfg.App.Environment),
		)
		return cfg, nil
	}

	if cfg.Secrets.KeyVaultName == "" {
		return nil, fmt.Errorf("AZURE_KEY_VAULT_NAME is required when USE_AZURE_KEY_VAULT=true")
	}

	provider, err := secrets.NewProvider(&secrets.ProviderConfig{
		Source:       secrets.SourceVault,
		VaultName:    cfg.Secrets.KeyVaultName,
		Environment:  cfg.App.Environment,
		CacheEnabled: cfg.Secrets.CacheEnabled,
		CacheTTL:     time.Duration(cfg.Secrets.CacheTTL) * time.Second,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize secrets provider (USE_AZURE_KEY_VAULT=true requires valid vault): %w", err)
	}

	if err := applySecrets(ctx, cfg, provider); err != nil {
		return nil, err
	}

	logger.Info("Secrets loaded from vault successfully",
		zap.String("key_vault_name", cfg.Secrets.KeyVaultName),
	)
	return cfg, nil
}

// secretSource is the part of secrets.Provider used to resolve configuration
type secretSource interface {
	GetSecretOrEnv(ctx context.Context, secretName, envName string) (string, error)
}

// secretBinding maps a vault secret (with env fallback) to a config field
type secretBinding struct {
	secret string
	env    string
	target *string
}

func applySecrets(ctx context.Context, cfg *Config, src secretSource) error {
	bindings := []secretBinding{
		{"POSTGRES-MAIN-HOST", "DATABASE_HOST", &cfg.Database.Host},
		{"POSTGRES-MAIN-USER", "DATABASE_USER", &cfg.Database.User},
		{"POSTGRES-MAIN-PASSWORD", "DATABASE_PASSWORD", &cfg.Database.Password},
		{"identity-anon-key", "SUPABASE_ANON_KEY", &cfg.Identity.AnonKey},
		{"identity-jwt-secret", "SUPABASE_JWT_SECRET", &cfg.Identity.JWTSecret},
		{"admin-api-key", "ADMIN_API_KEY", &cfg.ApiKey.Value},
		{"storage-connection-string", "STORAGE_CLOUDCONNECTIONSTRING", &cfg.Storage.CloudConnectionString},
	}

	for _, b := range bindings {
		value, err := src.GetSecretOrEnv(ctx, b.secret, b.env)
		if err != nil {
			continue
		}
		if value != "" {
			*b.target = value
		}
	}

	if cfg.Identity.JWTSecret == "" {
		return fmt.Errorf("identity JWT secret not found in vault or environment")
	}

	// Database name varies per environment and never lives in the vault
	if defaultDB := os.Getenv("DEFAULT_DATABASE"); defaultDB != "" {
		cfg.Database.Name = defaultDB
	}
	if sslMode := os.Getenv("DATABASE_SSLMODE"); sslMode != "" {
		cfg.Database.SSLMode = sslMode
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "Uni Swipe API")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.publicURL", "http://localhost:3000")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "postgres")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.connMaxLifetime", 300)
	v.SetDefault("database.connectAttempts", 5)

	v.SetDefault("identity.url", "http://localhost:54321")
	v.SetDefault("identity.jwtAudience", "authenticated")
	v.SetDefault("identity.timeout", 10)
	v.SetDefault("identity.breakerFailures", 5)
	v.SetDefault("identity.breakerTimeout", 30)

	v.SetDefault("secrets.source", "auto")
	v.SetDefault("secrets.cacheEnabled", true)
	v.SetDefault("secrets.cacheTTL", 300)

	v.SetDefault("storage.mode", "local")
	v.SetDefault("storage.localBasePath", "./storage")
	v.SetDefault("storage.publicBaseURL", "/images")
	v.SetDefault("storage.cloudContainer", "university-images")
	v.SetDefault("storage.maxUploadSizeMB", 5)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("server.readTimeout", 30)
	v.SetDefault("server.writeTimeout", 30)
	v.SetDefault("server.requestTimeout", 60)
	v.SetDefault("server.enableSwagger", true)
	v.SetDefault("server.staticDir", "")

	v.SetDefault("cors.allowedOrigins", []string{})
	v.SetDefault("cors.allowedMethods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowedHeaders", []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Request-ID"})
	v.SetDefault("cors.exposedHeaders", []string{"Location", "X-Request-ID"})
	v.SetDefault("cors.allowCredentials", true)
	v.SetDefault("cors.maxAge", 300)

	v.SetDefault("security.enableHSTS", false)
	v.SetDefault("security.hstsMaxAge", 31536000)
	v.SetDefault("security.hstsIncludeSubdomains", true)
	v.SetDefault("security.hstsPreload", false)
	v.SetDefault("security.contentSecurityPolicy", "default-src 'self'; img-src 'self' https: data:")
	v.SetDefault("security.frameOptions", "DENY")
	v.SetDefault("security.contentTypeNosniff", true)
	v.SetDefault("security.xssProtection", "1; mode=block")
	v.SetDefault("security.referrerPolicy", "strict-origin-when-cross-origin")
	v.SetDefault("security.permissionsPolicy", "geolocation=(), microphone=(), camera=()")
	v.SetDefault("security.secureCookies", false)

	v.SetDefault("rateLimit.enabled", true)
	v.SetDefault("rateLimit.requestsPerMinute", 60)
	v.SetDefault("rateLimit.requestsPerMinuteAuth", 120)
	v.SetDefault("rateLimit.whitelistIPs", []string{"127.0.0.1", "::1"})
	v.SetDefault("rateLimit.whitelistPaths", []string{"/health", "/health/db", "/health/ready", "/metrics"})

	v.SetDefault("catalog.refreshEnabled", true)
	v.SetDefault("catalog.refreshCron", "@every 15m")
	v.SetDefault("catalog.loadAttempts", 3)
	v.SetDefault("catalog.loadDelay", 1)

	v.SetDefault("recommendation.placeholderImages", []string{
		"/placeholder-uni-1.jpg",
		"/placeholder-uni-2.jpg",
		"/placeholder-uni-3.jpg",
	})
	v.SetDefault("recommendation.placeholderSentinels", []string{"example.com"})
	v.SetDefault("recommendation.faviconURLTemplate", "https://www.google.com/s2/favicons?domain=%s&sz=128")
}
