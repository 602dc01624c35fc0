package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/RishiKendai/pairwise/internal/alignment"
	"github.com/RishiKendai/pairwise/internal/configs/env"
	"github.com/RishiKendai/pairwise/internal/tokenizer"
	"github.com/dustin/go-humanize"
)

// Config holds all configuration for the application
type Config struct {
	// MongoDB
	MongoURI    string
	MongoDBName string

	// Redis
	RedisHost               string
	RedisPassword           string
	RedisStreamKey          string
	RedisConsumerGroup      string
	RedisDeadLetterKey      string
	StreamRetentionDuration time.Duration

	// Result cache
	ResultCacheSize int
	ResultCacheTTL  time.Duration

	// JWT
	JWTSecret string
	JWTIssuer string
	JWTTTL    time.Duration

	// Rate Limiting
	RateLimitRPS float64

	// Concurrency
	MaxConcurrentCompute int
	WorkerPoolSize       int

	// Computation
	ComputationTimeout time.Duration

	// Alignment
	MatchBonus          int64
	SubstitutionPenalty int64
	GapPenalty          int64
	MaxCells            int64

	// Tokenizer
	IdentifierMode string
	LiteralMode    string

	// Uploads
	UploadDir            string
	MaxUploadSize        int64
	UploadRetentionCount int
	AllowedExtensions    []string

	// Risk thresholds
	RiskSuspicious       float64
	RiskHighlySuspicious float64
	RiskNearCopy         float64

	// Logging
	LogLevel  string
	LogPretty bool

	// Server
	ServerPort  string
	MetricsPort string
}

func Load() (*Config, error) {
	cfg := &Config{}

	// MongoDB
	cfg.MongoURI = env.GetEnv("MONGO_URI", "")
	cfg.MongoDBName = env.GetEnv("MONGO_DB_NAME", "")

	// Redis
	cfg.RedisHost = env.GetEnv("REDIS_HOST", "localhost:6379")
	cfg.RedisPassword = env.GetEnv("REDIS_PASSWORD", "")
	cfg.RedisStreamKey = env.GetEnv("REDIS_STREAM_KEY", "alignment:stream")
	cfg.RedisConsumerGroup = env.GetEnv("REDIS_CONSUMER_GROUP", "alignment:group")
	cfg.RedisDeadLetterKey = env.GetEnv("REDIS_DEAD_LETTER_KEY", "alignment:dlq")
	retentionHours := env.GetEnvInt("STREAM_RETENTION_DURATION", 24)
	cfg.StreamRetentionDuration = time.Duration(retentionHours) * time.Hour

	// Result cache
	cfg.ResultCacheSize = env.GetEnvInt("RESULT_CACHE_SIZE", 256)
	cacheMinutes := env.GetEnvInt("RESULT_CACHE_TTL_MINUTES", 60)
	cfg.ResultCacheTTL = time.Duration(cacheMinutes) * time.Minute

	// JWT
	cfg.JWTSecret = env.GetEnv("JWT_SECRET", "")
	cfg.JWTIssuer = env.GetEnv("JWT_ISSUER", "pairwise")
	cfg.JWTTTL = time.Duration(env.GetEnvInt("JWT_TTL_HOURS", 24)) * time.Hour

	// Rate Limiting
	cfg.RateLimitRPS = env.GetEnvFloat("RATE_LIMIT_RPS", 10.0)

	// Concurrency
	cfg.MaxConcurrentCompute = env.GetEnvInt("MAX_CONCURRENT_COMPUTE", 5)
	cfg.WorkerPoolSize = env.GetEnvInt("WORKER_POOL_SIZE", 0)

	// Computation
	timeoutSeconds := env.GetEnvInt("COMPUTATION_TIMEOUT_SECONDS", 60)
	cfg.ComputationTimeout = time.Duration(timeoutSeconds) * time.Second

	// Alignment
	defaults := alignment.DefaultConfig()
	cfg.MatchBonus = env.GetEnvInt64("ALIGN_MATCH_BONUS", defaults.MatchBonus)
	cfg.SubstitutionPenalty = env.GetEnvInt64("ALIGN_SUBSTITUTION_PENALTY", defaults.SubstitutionPenalty)
	cfg.GapPenalty = env.GetEnvInt64("ALIGN_GAP_PENALTY", defaults.GapPenalty)
	cfg.MaxCells = env.GetEnvInt64("ALIGN_MAX_CELLS", defaults.MaxCells)

	// Tokenizer
	cfg.IdentifierMode = env.GetEnv("TOKEN_IDENTIFIERS", tokenizer.IdentifiersVerbatim.String())
	cfg.LiteralMode = env.GetEnv("TOKEN_LITERALS", tokenizer.LiteralsVerbatim.String())

	// Uploads
	cfg.UploadDir = env.GetEnv("UPLOAD_DIR", "uploads")
	maxUpload := env.GetEnv("MAX_UPLOAD_SIZE", "1MB")
	size, err := humanize.ParseBytes(maxUpload)
	if err != nil {
		return nil, fmt.Errorf("failed to parse MAX_UPLOAD_SIZE %q: %w", maxUpload, err)
	}
	cfg.MaxUploadSize = int64(size)
	cfg.UploadRetentionCount = env.GetEnvInt("UPLOAD_RETENTION_COUNT", 5)
	cfg.AllowedExtensions = normalizeExtensions(env.GetEnvList("ALLOWED_EXTENSIONS", []string{".py"}))

	// Risk thresholds
	cfg.RiskSuspicious = env.GetEnvFloat("RISK_SUSPICIOUS", 0.3)
	cfg.RiskHighlySuspicious = env.GetEnvFloat("RISK_HIGHLY_SUSPICIOUS", 0.6)
	cfg.RiskNearCopy = env.GetEnvFloat("RISK_NEAR_COPY", 0.85)

	// Logging
	cfg.LogLevel = env.GetEnv("LOG_LEVEL", "info")
	cfg.LogPretty = env.GetEnvBool("LOG_PRETTY", false)

	// Server
	cfg.ServerPort = env.GetEnv("SERVER_PORT", "8080")
	cfg.MetricsPort = env.GetEnv("METRICS_PORT", "2112")

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.MongoURI == "" {
		return fmt.Errorf("MONGO_URI is required")
	}
	if c.MongoDBName == "" {
		return fmt.Errorf("MONGO_DB_NAME is required")
	}
	if c.RedisHost == "" {
		return fmt.Errorf("REDIS_HOST is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL_HOURS must be greater than 0")
	}
	if c.MaxConcurrentCompute <= 0 {
		return fmt.Errorf("MAX_CONCURRENT_COMPUTE must be greater than 0")
	}
	if c.WorkerPoolSize < 0 {
		return fmt.Errorf("WORKER_POOL_SIZE must not be negative")
	}
	if c.ComputationTimeout <= 0 {
		return fmt.Errorf("COMPUTATION_TIMEOUT_SECONDS must be greater than 0")
	}
	if c.StreamRetentionDuration <= 0 {
		return fmt.Errorf("STREAM_RETENTION_DURATION must be greater than 0")
	}
	if c.ResultCacheSize <= 0 {
		return fmt.Errorf("RESULT_CACHE_SIZE must be greater than 0")
	}
	if c.MaxUploadSize <= 0 {
		return fmt.Errorf("MAX_UPLOAD_SIZE must be greater than 0")
	}
	if c.UploadRetentionCount <= 0 {
		return fmt.Errorf("UPLOAD_RETENTION_COUNT must be greater than 0")
	}
	if !(0 <= c.RiskSuspicious && c.RiskSuspicious <= c.RiskHighlySuspicious &&
		c.RiskHighlySuspicious <= c.RiskNearCopy && c.RiskNearCopy <= 1) {
		return fmt.Errorf("risk thresholds must be ordered within [0, 1]")
	}
	if err := c.AlignmentConfig().Validate(); err != nil {
		return fmt.Errorf("invalid alignment config: %w", err)
	}
	if _, err := c.TokenPolicy(); err != nil {
		return fmt.Errorf("invalid token policy: %w", err)
	}
	return nil
}

// AlignmentConfig returns the scoring configuration for the aligner
func (c *Config) AlignmentConfig() alignment.Config {
	return alignment.Config{
		MatchBonus:          c.MatchBonus,
		SubstitutionPenalty: c.SubstitutionPenalty,
		GapPenalty:          c.GapPenalty,
		MaxCells:            c.MaxCells,
	}
}

// TokenPolicy parses the configured identifier and literal modes
func (c *Config) TokenPolicy() (tokenizer.Policy, error) {
	ids, err := tokenizer.ParseIdentifierMode(c.IdentifierMode)
	if err != nil {
		return tokenizer.Policy{}, err
	}
	lits, err := tokenizer.ParseLiteralMode(c.LiteralMode)
	if err != nil {
		return tokenizer.Policy{}, err
	}
	return tokenizer.Policy{Identifiers: ids, Literals: lits}, nil
}

func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		out = append(out, ext)
	}
	return out
}
