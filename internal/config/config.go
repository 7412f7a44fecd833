package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/geocon-eng/pipeline-api/internal/secrets"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	ERP       ERPConfig
	Auth      AuthConfig
	ApiKey    ApiKeyConfig
	Storage   StorageConfig
	Secrets   SecretsConfig
	Logging   LoggingConfig
	Server    ServerConfig
	CORS      CORSConfig
	Security  SecurityConfig
	RateLimit RateLimitConfig
	Notify    NotifyConfig
	Directory DirectoryConfig
	Jobs      JobsConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Port        int
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
}

// ERPConfig holds configuration for the corporate accounting system
// (MS SQL Server). This connection is optional and read-only.
type ERPConfig struct {
	// Enabled controls whether the ERP connection is attempted
	Enabled bool
	// URL is the connection URL in format host:port/database (from ERP-URL secret)
	URL string
	// User is the database username (from ERP-USERNAME secret)
	User string
	// Password is the database password (from ERP-PASSWORD secret)
	Password string
	// MaxOpenConns is the maximum number of open connections to the database
	MaxOpenConns int
	// MaxIdleConns is the maximum number of connections in the idle connection pool
	MaxIdleConns int
	// ConnMaxLifetime is the maximum amount of time a connection may be reused (seconds)
	ConnMaxLifetime int
	// QueryTimeout is the default timeout for queries (seconds)
	QueryTimeout int
}

// AuthConfig holds JWT authentication configuration
type AuthConfig struct {
	// JWTSecret signs and validates bearer tokens
	JWTSecret string
	// Issuer expected in the token "iss" claim
	Issuer string
	// TokenTTL is the token lifetime in seconds
	TokenTTL int
	// AllowedEmailDomain restricts logins to a corporate domain
	AllowedEmailDomain string
}

type ApiKeyConfig struct {
	SecretName string
	Value      string // Loaded from secrets or environment
}

type StorageConfig struct {
	Mode                  string
	LocalBasePath         string
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
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// SecurityConfig holds security header configuration
type SecurityConfig struct {
	EnableHSTS            bool
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool
	HSTSPreload           bool
	ContentSecurityPolicy string
	FrameOptions          string
	ContentTypeNosniff    bool
	XSSProtection         string
	ReferrerPolicy        string
	PermissionsPolicy     string
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled               bool
	RequestsPerMinute     int
	RequestsPerMinuteAuth int
	BurstSize             int
	WhitelistIPs          []string
	WhitelistPaths        []string
}

// NotifyConfig holds notification routing configuration
type NotifyConfig struct {
	// LegalDeptEmail receives new legal review requests
	LegalDeptEmail string
	// LegalTeamEmails receive legal queue updates
	LegalTeamEmails []string
	// EmailDomain is the corporate mail domain used to derive PM addresses
	// (lowercase display name, spaces replaced with dots)
	EmailDomain string
	// EmailLogCap bounds the email log table; older rows are trimmed
	EmailLogCap int
	// ActivityLogCap bounds the activity log table
	ActivityLogCap int
}

// DirectoryConfig holds the office and staff directory that used to live
// in an admin-editable settings file
type DirectoryConfig struct {
	// TeamAssignments maps project directors to two-digit team numbers
	TeamAssignments map[string]string
	// ProjectManagers is the PM picklist
	ProjectManagers []string
	// AnalyticsUsers may view the analytics report in addition to admins
	AnalyticsUsers []string
}

// JobsConfig holds background job configuration
type JobsConfig struct {
	// FollowUpEnabled turns on the proposal follow-up reminder job
	FollowUpEnabled bool
	// FollowUpCron is the cron expression for the reminder job
	FollowUpCron string
	// FollowUpAfterDays is how long a sent proposal can sit pending
	// before its PM gets a reminder
	FollowUpAfterDays int
}

// ConnectionString builds PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
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

// ConnMaxLifetimeDuration returns connection max lifetime as duration
func (d *DatabaseConfig) ConnMaxLifetimeDuration() time.Duration {
	return time.Duration(d.ConnMaxLifetime) * time.Second
}

// ConnMaxLifetimeDuration returns connection max lifetime as duration
func (e *ERPConfig) ConnMaxLifetimeDuration() time.Duration {
	return time.Duration(e.ConnMaxLifetime) * time.Second
}

// QueryTimeoutDuration returns query timeout as duration
func (e *ERPConfig) QueryTimeoutDuration() time.Duration {
	return time.Duration(e.QueryTimeout) * time.Second
}

// TokenTTLDuration returns the token lifetime as duration
func (a *AuthConfig) TokenTTLDuration() time.Duration {
	return time.Duration(a.TokenTTL) * time.Second
}

// TeamNumberFor resolves the team number for a project director.
// Unassigned directors fall back to team "00".
func (d *DirectoryConfig) TeamNumberFor(director string) string {
	if num, ok := d.TeamAssignments[director]; ok && num != "" {
		return num
	}
	return "00"
}

// PMEmail derives a project manager's corporate address from their
// display name (lowercase, spaces become dots).
func (n *NotifyConfig) PMEmail(displayName string) string {
	local := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(displayName)), " ", ".")
	return local + "@" + n.EmailDomain
}

// Load loads configuration from file and environment variables
// This is a basic load that doesn't fetch secrets from vault
// Use LoadWithSecrets for full secret resolution
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read from config file
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

	// Load API key from environment if not in config
	if cfg.ApiKey.Value == "" {
		cfg.ApiKey.Value = v.GetString("ADMIN_API_KEY")
	}

	// Load JWT secret from environment if not in config
	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = v.GetString("JWT_SECRET")
	}

	// Load Azure Key Vault name from environment if not in config
	if cfg.Secrets.KeyVaultName == "" {
		cfg.Secrets.KeyVaultName = v.GetString("AZURE_KEY_VAULT_NAME")
	}

	// Check for ERP_ENABLED env var override
	if v.GetBool("ERP_ENABLED") {
		cfg.ERP.Enabled = true
	}

	// NOTE: ERP credentials are ONLY loaded from Azure Key Vault.
	// See LoadWithSecrets() for credential loading.

	return &cfg, nil
}

// LoadWithSecrets loads configuration and resolves secrets from the configured source.
// In development (or when secrets.source = "environment"), secrets come from env vars.
// In staging/production (or when secrets.source = "vault"), secrets come from Azure Key Vault.
//
// Key Vault is used when BOTH conditions are met:
// 1. USE_AZURE_KEY_VAULT environment variable is set to "true"
// 2. Environment is "staging" or "production"
//
// EXCEPTION: ERP credentials are ALWAYS loaded from Key Vault when
// ERP_ENABLED=true and AZURE_KEY_VAULT_NAME is configured, so ERP
// connectivity works in any environment without credentials in env vars.
func LoadWithSecrets(ctx context.Context, logger *zap.Logger) (*Config, error) {
	// First load basic config
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	useKeyVault := strings.ToLower(os.Getenv("USE_AZURE_KEY_VAULT")) == "true"
	isValidEnv := cfg.App.Environment == "staging" || cfg.App.Environment == "production"

	if cfg.ERP.Enabled && cfg.Secrets.KeyVaultName != "" {
		if err := loadERPSecrets(ctx, cfg, logger); err != nil {
			logger.Warn("Failed to load ERP secrets from Key Vault",
				zap.Error(err),
				zap.String("environment", cfg.App.Environment),
			)
			// Don't fail startup - the ERP connection is optional
		}
	}

	if !useKeyVault {
		logger.Info("USE_AZURE_KEY_VAULT not enabled, using environment variables for main secrets",
			zap.String("environment", cfg.App.Environment),
		)
		return cfg, nil
	}

	if !isValidEnv {
		logger.Warn("USE_AZURE_KEY_VAULT is enabled but environment is not staging or production, using environment variables for main secrets",
			zap.String("environment", cfg.App.Environment),
			zap.Bool("use_key_vault", useKeyVault),
		)
		return cfg, nil
	}

	if cfg.Secrets.KeyVaultName == "" {
		return nil, fmt.Errorf("AZURE_KEY_VAULT_NAME is required when USE_AZURE_KEY_VAULT=true")
	}

	logger.Info("Azure Key Vault enabled for secrets",
		zap.String("environment", cfg.App.Environment),
		zap.String("key_vault_name", cfg.Secrets.KeyVaultName),
	)

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

	if !provider.IsVaultEnabled() {
		return nil, fmt.Errorf("vault provider not enabled despite USE_AZURE_KEY_VAULT=true")
	}

	logger.Info("Loading secrets from Azure Key Vault")

	// Database secrets from Key Vault
	// Host, User, Password come from vault; Port and Database name are environment-specific
	if host, err := provider.GetSecretOrEnv(ctx, "POSTGRES-MAIN-HOST", "DATABASE_HOST"); err == nil && host != "" {
		cfg.Database.Host = host
	}
	if defaultDB := os.Getenv("DEFAULT_DATABASE"); defaultDB != "" {
		cfg.Database.Name = defaultDB
		logger.Info("Using DEFAULT_DATABASE environment variable for database name",
			zap.String("database", defaultDB),
		)
	}
	if user, err := provider.GetSecretOrEnv(ctx, "POSTGRES-MAIN-USER", "DATABASE_USER"); err == nil && user != "" {
		cfg.Database.User = user
	}
	if password, err := provider.GetSecretOrEnv(ctx, "POSTGRES-MAIN-PASSWORD", "DATABASE_PASSWORD"); err == nil && password != "" {
		cfg.Database.Password = password
	}
	// SSL mode from env var (Azure PostgreSQL requires "require")
	if sslMode := os.Getenv("DATABASE_SSLMODE"); sslMode != "" {
		cfg.Database.SSLMode = sslMode
	}

	// JWT signing secret
	if jwtSecret, err := provider.GetSecretOrEnv(ctx, "jwt-signing-secret", "JWT_SECRET"); err == nil && jwtSecret != "" {
		cfg.Auth.JWTSecret = jwtSecret
	}

	// API Key
	if apiKey, err := provider.GetSecretOrEnv(ctx, "admin-api-key", "ADMIN_API_KEY"); err == nil && apiKey != "" {
		cfg.ApiKey.Value = apiKey
	}

	// Storage connection string (for cloud storage)
	if connStr, err := provider.GetSecretOrEnv(ctx, "storage-connection-string", "STORAGE_CLOUDCONNECTIONSTRING"); err == nil && connStr != "" {
		cfg.Storage.CloudConnectionString = connStr
	}

	logger.Info("Secrets loaded from vault successfully")
	return cfg, nil
}

// loadERPSecrets loads ERP credentials from Azure Key Vault.
// Called regardless of environment when ERP_ENABLED=true; ERP
// credentials only ever come from Key Vault.
func loadERPSecrets(ctx context.Context, cfg *Config, logger *zap.Logger) error {
	logger.Info("Loading ERP secrets from Key Vault",
		zap.String("key_vault_name", cfg.Secrets.KeyVaultName),
		zap.String("environment", cfg.App.Environment),
	)

	provider, err := secrets.NewProvider(&secrets.ProviderConfig{
		Source:       secrets.SourceVault,
		VaultName:    cfg.Secrets.KeyVaultName,
		Environment:  cfg.App.Environment,
		CacheEnabled: cfg.Secrets.CacheEnabled,
		CacheTTL:     time.Duration(cfg.Secrets.CacheTTL) * time.Second,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize vault client for ERP: %w", err)
	}

	url, err := provider.GetSecret(ctx, "ERP-URL")
	if err != nil {
		return fmt.Errorf("failed to get ERP-URL from Key Vault: %w", err)
	}
	cfg.ERP.URL = url

	user, err := provider.GetSecret(ctx, "ERP-USERNAME")
	if err != nil {
		return fmt.Errorf("failed to get ERP-USERNAME from Key Vault: %w", err)
	}
	cfg.ERP.User = user

	password, err := provider.GetSecret(ctx, "ERP-PASSWORD")
	if err != nil {
		return fmt.Errorf("failed to get ERP-PASSWORD from Key Vault: %w", err)
	}
	cfg.ERP.Password = password

	logger.Info("ERP credentials loaded from Key Vault successfully")
	return nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "Geocon Pipeline API")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.port", 8080)

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "pipeline")
	v.SetDefault("database.user", "pipeline_user")
	v.SetDefault("database.password", "pipeline_password")
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.connMaxLifetime", 300)

	// ERP defaults (MS SQL Server - optional, read-only)
	v.SetDefault("erp.enabled", false)
	v.SetDefault("erp.maxOpenConns", 10)
	v.SetDefault("erp.maxIdleConns", 2)
	v.SetDefault("erp.connMaxLifetime", 300)
	v.SetDefault("erp.queryTimeout", 30)

	// Auth defaults
	v.SetDefault("auth.issuer", "geocon-pipeline-api")
	v.SetDefault("auth.tokenTTL", 43200) // 12 hours
	v.SetDefault("auth.allowedEmailDomain", "geoconinc.com")

	// Secrets defaults
	v.SetDefault("secrets.source", "auto")
	v.SetDefault("secrets.cacheEnabled", true)
	v.SetDefault("secrets.cacheTTL", 300) // 5 minutes

	// Storage defaults
	v.SetDefault("storage.mode", "local")
	v.SetDefault("storage.localBasePath", "./storage")
	v.SetDefault("storage.maxUploadSizeMB", 50)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	// Server defaults
	v.SetDefault("server.readTimeout", 30)
	v.SetDefault("server.writeTimeout", 30)
	v.SetDefault("server.requestTimeout", 60)
	v.SetDefault("server.enableSwagger", true)

	// CORS defaults - restrictive by default
	v.SetDefault("cors.allowedOrigins", []string{})
	v.SetDefault("cors.allowedMethods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowedHeaders", []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Request-ID"})
	v.SetDefault("cors.exposedHeaders", []string{"Location", "X-Request-ID"})
	v.SetDefault("cors.allowCredentials", true)
	v.SetDefault("cors.maxAge", 300) // 5 minutes

	// Security header defaults - secure by default
	v.SetDefault("security.enableHSTS", false)
	v.SetDefault("security.hstsMaxAge", 31536000) // 1 year
	v.SetDefault("security.hstsIncludeSubdomains", true)
	v.SetDefault("security.hstsPreload", false)
	v.SetDefault("security.contentSecurityPolicy", "default-src 'self'")
	v.SetDefault("security.frameOptions", "DENY")
	v.SetDefault("security.contentTypeNosniff", true)
	v.SetDefault("security.xssProtection", "1; mode=block")
	v.SetDefault("security.referrerPolicy", "strict-origin-when-cross-origin")
	v.SetDefault("security.permissionsPolicy", "geolocation=(), microphone=(), camera=()")

	// Rate limiting defaults
	v.SetDefault("rateLimit.enabled", true)
	v.SetDefault("rateLimit.requestsPerMinute", 60)
	v.SetDefault("rateLimit.requestsPerMinuteAuth", 120)
	v.SetDefault("rateLimit.burstSize", 10)
	v.SetDefault("rateLimit.whitelistIPs", []string{"127.0.0.1", "::1"})
	v.SetDefault("rateLimit.whitelistPaths", []string{"/health", "/health/db", "/health/ready"})

	// Notification routing defaults
	v.SetDefault("notify.legalDeptEmail", "legal@geoconinc.com")
	v.SetDefault("notify.legalTeamEmails", []string{
		"legal1@geoconinc.com",
		"legal2@geoconinc.com",
		"legal3@geoconinc.com",
	})
	v.SetDefault("notify.emailDomain", "geoconinc.com")
	v.SetDefault("notify.emailLogCap", 1000)
	v.SetDefault("notify.activityLogCap", 10000)

	// Directory defaults (overridable per deployment)
	v.SetDefault("directory.teamAssignments", map[string]string{
		"Kim Goodrich":     "01",
		"Theresa Bautista": "02",
		"Mike Johnson":     "03",
		"Sarah Wilson":     "04",
		"Robert Brown":     "05",
	})
	v.SetDefault("directory.projectManagers", []string{
		"Shawn Weedon",
		"Rebecca Silva",
		"Kathlyn Ortega",
		"Richard Church",
		"Jason Muir",
	})
	v.SetDefault("directory.analyticsUsers", []string{})

	// Background job defaults
	v.SetDefault("jobs.followUpEnabled", true)
	v.SetDefault("jobs.followUpCron", "0 7 * * MON-FRI")
	v.SetDefault("jobs.followUpAfterDays", 14)
}
