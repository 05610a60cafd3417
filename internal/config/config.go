package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/progress-sync/internal/constants"
	"github.com/oshokin/progress-sync/internal/logger"
)

// Config holds all configuration settings.
type Config struct {
	// APIKey is the web API key of the backend project.
	APIKey string `mapstructure:"api_key"`
	// ProjectID is the backend project identifier used in document paths.
	ProjectID string `mapstructure:"project_id"`
	// DatabaseID is the document database inside the project.
	DatabaseID string `mapstructure:"database_id"`
	// UsersCollection is the collection holding one progress document per user.
	UsersCollection string `mapstructure:"users_collection"`
	// RefreshToken is the persisted credential of the last signed-in session.
	RefreshToken string `mapstructure:"refresh_token"`
	// IdentityBaseURL is the base URL of the identity provider API.
	IdentityBaseURL string `mapstructure:"identity_base_url"`
	// SecureTokenBaseURL is the base URL of the token exchange API.
	SecureTokenBaseURL string `mapstructure:"secure_token_base_url"`
	// FirestoreBaseURL is the base URL of the document store API.
	FirestoreBaseURL string `mapstructure:"firestore_base_url"`
	// LocalStoragePath is the file backing the local key-value storage.
	LocalStoragePath string `mapstructure:"local_storage_path"`
	// LocalStorageKey is the key the progress document is cached under.
	LocalStorageKey string `mapstructure:"local_storage_key"`
	// LogLevel specifies the logging verbosity level.
	LogLevel string `mapstructure:"log_level"`
	// RequestTimeout bounds every HTTP request (e.g., "30s").
	RequestTimeout string `mapstructure:"request_timeout"`
	// RequestsPerSecond limits outgoing provider requests. Zero disables limiting.
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	// RequestBurst is the burst size of the request limiter.
	RequestBurst int `mapstructure:"request_burst"`
	// MaxLogLength caps logged request/response dumps (e.g., "64KB").
	MaxLogLength string `mapstructure:"max_log_length"`
	// SyncQueueSize is the number of pending sync tasks accepted by the queue.
	SyncQueueSize int `mapstructure:"sync_queue_size"`
	// SyncTimeout bounds a single synchronization run.
	SyncTimeout string `mapstructure:"sync_timeout"`
	// TokenCacheSize is the number of refreshed sessions kept in memory.
	TokenCacheSize int `mapstructure:"token_cache_size"`
	// MetricsFile receives sync metrics in the Prometheus text format. Empty disables it.
	MetricsFile string `mapstructure:"metrics_file"`
	// ParsedLogLevel is the parsed zap log level.
	ParsedLogLevel zapcore.Level
	// ParsedRequestTimeout is the parsed request timeout.
	ParsedRequestTimeout time.Duration
	// ParsedSyncTimeout is the parsed sync timeout.
	ParsedSyncTimeout time.Duration
	// ParsedMaxLogLength is the parsed log dump limit in bytes.
	ParsedMaxLogLength uint64
}

const (
	// DefaultConfigFilename is the default name of the configuration file.
	DefaultConfigFilename = ".progress-sync.yaml"

	// DefaultIdentityBaseURL is the identity provider REST endpoint.
	DefaultIdentityBaseURL = "https://identitytoolkit.googleapis.com"
	// DefaultSecureTokenBaseURL is the token exchange REST endpoint.
	DefaultSecureTokenBaseURL = "https://securetoken.googleapis.com"
	// DefaultFirestoreBaseURL is the document store REST endpoint.
	DefaultFirestoreBaseURL = "https://firestore.googleapis.com"
	// DefaultDatabaseID is the default document database name.
	DefaultDatabaseID = "(default)"
	// DefaultUsersCollection is the collection holding progress documents.
	DefaultUsersCollection = "users"

	// DefaultLocalStoragePath is the default local key-value storage file.
	DefaultLocalStoragePath = ".progress-sync-storage.json"
	// DefaultLocalStorageKey is the key of the cached progress document.
	DefaultLocalStorageKey = "educationalGamesData"

	// DefaultRequestTimeout is the default HTTP request timeout.
	DefaultRequestTimeout = "60s"
	// DefaultSyncTimeout is the default timeout of one synchronization run.
	DefaultSyncTimeout = "2m"
	// DefaultMaxLogLength is the default limit of logged HTTP dumps.
	DefaultMaxLogLength = "1MB"
	// DefaultSyncQueueSize is the default sync queue capacity.
	DefaultSyncQueueSize = 16
	// DefaultTokenCacheSize is the default number of cached sessions.
	DefaultTokenCacheSize = 32

	// envPrefix prefixes environment overrides, e.g. PROGRESS_SYNC_API_KEY.
	envPrefix = "PROGRESS_SYNC"

	// refreshTokenKey is the YAML key of the persisted session credential.
	refreshTokenKey = "refresh_token"
)

// Static error definitions for better error handling.
var (
	// ErrEmptyAPIKey indicates that the API key is missing.
	ErrEmptyAPIKey = errors.New("api key cannot be empty")
	// ErrEmptyProjectID indicates that the project id is missing.
	ErrEmptyProjectID = errors.New("project id cannot be empty")
	// ErrUnknownLogLevel indicates that the log level is not recognized.
	ErrUnknownLogLevel = errors.New("unknown log level")
	// ErrInvalidRequestTimeout indicates that the request timeout is not positive.
	ErrInvalidRequestTimeout = errors.New("request_timeout must be positive")
	// ErrInvalidSyncTimeout indicates that the sync timeout is not positive.
	ErrInvalidSyncTimeout = errors.New("sync_timeout must be positive")
	// ErrInvalidRequestsPerSecond indicates a negative request rate.
	ErrInvalidRequestsPerSecond = errors.New("requests_per_second cannot be negative")
	// ErrInvalidSyncQueueSize indicates that the queue size is not positive.
	ErrInvalidSyncQueueSize = errors.New("sync_queue_size must be a positive integer")
	// ErrInvalidTokenCacheSize indicates that the token cache size is not positive.
	ErrInvalidTokenCacheSize = errors.New("token_cache_size must be a positive integer")
	// ErrEmptyLocalStorageKey indicates that the local storage key is empty.
	ErrEmptyLocalStorageKey = errors.New("local_storage_key cannot be empty")
)

// LoadConfig loads configuration settings from a YAML file.
// Environment variables prefixed with PROGRESS_SYNC_ override file values.
func LoadConfig(configFilename string) (*Config, error) {
	if configFilename == "" {
		configFilename = DefaultConfigFilename
	}

	viper.SetConfigFile(configFilename)
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config from file: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("database_id", DefaultDatabaseID)
	viper.SetDefault("users_collection", DefaultUsersCollection)
	viper.SetDefault("identity_base_url", DefaultIdentityBaseURL)
	viper.SetDefault("secure_token_base_url", DefaultSecureTokenBaseURL)
	viper.SetDefault("firestore_base_url", DefaultFirestoreBaseURL)
	viper.SetDefault("local_storage_path", DefaultLocalStoragePath)
	viper.SetDefault("local_storage_key", DefaultLocalStorageKey)
	viper.SetDefault("log_level", "info")
	viper.SetDefault("request_timeout", DefaultRequestTimeout)
	viper.SetDefault("sync_timeout", DefaultSyncTimeout)
	viper.SetDefault("max_log_length", DefaultMaxLogLength)
	viper.SetDefault("sync_queue_size", DefaultSyncQueueSize)
	viper.SetDefault("token_cache_size", DefaultTokenCacheSize)
}

// ValidateConfig checks the configuration for validity and sets derived fields.
//
//nolint:cyclop // Validation functions naturally have high complexity due to sequential checks.
func ValidateConfig(cfg *Config) error {
	var err error

	if strings.TrimSpace(cfg.APIKey) == "" {
		return ErrEmptyAPIKey
	}

	if strings.TrimSpace(cfg.ProjectID) == "" {
		return ErrEmptyProjectID
	}

	if strings.TrimSpace(cfg.LocalStorageKey) == "" {
		return ErrEmptyLocalStorageKey
	}

	parsedLogLevel, isLogLevelCorrect := logger.ParseLogLevel(cfg.LogLevel)
	if !isLogLevelCorrect {
		return fmt.Errorf("%w: '%s'", ErrUnknownLogLevel, cfg.LogLevel)
	}

	cfg.ParsedLogLevel = parsedLogLevel

	cfg.ParsedRequestTimeout, err = time.ParseDuration(cfg.RequestTimeout)
	if err != nil {
		return fmt.Errorf("failed to parse request timeout: %w", err)
	}

	if cfg.ParsedRequestTimeout <= 0 {
		return ErrInvalidRequestTimeout
	}

	cfg.ParsedSyncTimeout, err = time.ParseDuration(cfg.SyncTimeout)
	if err != nil {
		return fmt.Errorf("failed to parse sync timeout: %w", err)
	}

	if cfg.ParsedSyncTimeout <= 0 {
		return ErrInvalidSyncTimeout
	}

	if maxLogLength := strings.TrimSpace(cfg.MaxLogLength); maxLogLength != "" && maxLogLength != "0" {
		cfg.ParsedMaxLogLength, err = humanize.ParseBytes(maxLogLength)
		if err != nil {
			return fmt.Errorf("failed to parse max log length: %w", err)
		}
	}

	if cfg.RequestsPerSecond < 0 {
		return ErrInvalidRequestsPerSecond
	}

	if cfg.SyncQueueSize <= 0 {
		return ErrInvalidSyncQueueSize
	}

	if cfg.TokenCacheSize <= 0 {
		return ErrInvalidTokenCacheSize
	}

	return nil
}

// SaveRefreshToken persists the session credential to the configuration file
// while preserving the original format and order.
// An empty token clears the persisted session.
func SaveRefreshToken(cfg *Config, refreshToken string) error {
	cfg.RefreshToken = refreshToken

	return SaveConfig(cfg)
}

// SaveConfig saves the configuration to the file while preserving the original format and order.
func SaveConfig(cfg *Config) error {
	configFile := getConfigFilePath()

	// Read the original file content.
	originalContent, err := os.ReadFile(configFile)
	if err != nil {
		return handleMissingConfigFile(configFile, cfg.RefreshToken, err)
	}

	// Parse YAML while preserving order using yaml.Node.
	var node yaml.Node
	if err = yaml.Unmarshal(originalContent, &node); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	updateKeyInNode(&node, refreshTokenKey, cfg.RefreshToken)

	// Marshal back to YAML (preserves order).
	newContent, err := yaml.Marshal(&node)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	// The file holds credentials, so keep it private to the owner.
	if err = os.WriteFile(configFile, newContent, constants.PrivateFilePermissions); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	viper.Set(refreshTokenKey, cfg.RefreshToken)

	return nil
}

// getConfigFilePath returns the config file path from viper or the default.
func getConfigFilePath() string {
	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		return DefaultConfigFilename
	}

	return configFile
}

// handleMissingConfigFile creates a new config file if it doesn't exist.
func handleMissingConfigFile(configFile, refreshToken string, err error) error {
	if !os.IsNotExist(err) {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	viper.Set(refreshTokenKey, refreshToken)

	if err = viper.SafeWriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	return nil
}

// updateKeyInNode sets a top-level scalar value in the YAML node tree,
// appending the key when the document does not have it yet.
func updateKeyInNode(node *yaml.Node, key, value string) {
	// The root node is a document node, content[0] is the actual map.
	if len(node.Content) == 0 || node.Content[0].Kind != yaml.MappingNode {
		return
	}

	mapNode := node.Content[0]

	// Iterate through key-value pairs (stored as alternating nodes).
	for i := 0; i+1 < len(mapNode.Content); i += 2 {
		keyNode := mapNode.Content[i]
		valueNode := mapNode.Content[i+1]

		if keyNode.Value != key {
			continue
		}

		// Update the value while preserving style.
		valueNode.Value = value
		valueNode.Tag = "!!str"

		if valueNode.Style == 0 {
			valueNode.Style = yaml.DoubleQuotedStyle
		}

		return
	}

	mapNode.Content = append(mapNode.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value, Style: yaml.DoubleQuotedStyle},
	)
}
