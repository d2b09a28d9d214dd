package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Generator GeneratorConfig
	Extract   ExtractConfig
	Batch     BatchConfig
	S3        S3Config
	Redis     RedisConfig
	Telemetry TelemetryConfig
	Archive   ArchiveConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
	CORSOrigins  []string      `mapstructure:"cors_origins"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level        string `mapstructure:"level"`
	Format       string `mapstructure:"format"`
	File         string `mapstructure:"file"`
	MaxSizeMB    int    `mapstructure:"max_size_mb"`
	MaxBackups   int    `mapstructure:"max_backups"`
	MaxAgeDays   int    `mapstructure:"max_age_days"`
	Compress     bool   `mapstructure:"compress"`
	AxiomToken   string `mapstructure:"axiom_token"`
	AxiomOrgID   string `mapstructure:"axiom_org_id"`
	AxiomDataset string `mapstructure:"axiom_dataset"`
}

// GeneratorProviderConfig holds settings for a single generative backend.
type GeneratorProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
	Endpoint     string `mapstructure:"endpoint"`
}

// GeneratorConfig holds paid-tier backend settings with failover support.
type GeneratorConfig struct {
	Primary   GeneratorProviderConfig `mapstructure:"primary"`
	Secondary GeneratorProviderConfig `mapstructure:"secondary"`
	Tertiary  GeneratorProviderConfig `mapstructure:"tertiary"`

	// CircuitStore selects where rate-limit circuits live: "memory" or "redis".
	CircuitStore string `mapstructure:"circuit_store"`
}

// Providers returns the configured providers in failover order. With nothing
// configured it returns the static placeholder backend.
func (g *GeneratorConfig) Providers() []*GeneratorProviderConfig {
	var out []*GeneratorProviderConfig
	for _, p := range []*GeneratorProviderConfig{&g.Primary, &g.Secondary, &g.Tertiary} {
		if p.Provider != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		out = append(out, &GeneratorProviderConfig{Provider: "static"})
	}
	return out
}

// ExtractConfig holds tiering settings.
type ExtractConfig struct {
	MaxPromptChars     int     `mapstructure:"max_prompt_chars"`
	MaxFileSizeMB      int64   `mapstructure:"max_file_size_mb"`
	RequiredFieldsFile string  `mapstructure:"required_fields_file"`
	FallbackConfidence float64 `mapstructure:"fallback_confidence"`
}

// BatchConfig holds batch parsing settings.
type BatchConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// S3Config holds AWS S3 settings.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// RedisConfig holds the connection used for shared circuit state.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// TelemetryConfig holds OpenTelemetry tracing settings. The exporter endpoint is
// read from the standard OTEL_EXPORTER_OTLP_* variables.
type TelemetryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name"`
}

// ArchiveConfig controls uploading parse results to object storage.
type ArchiveConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Bucket  string `mapstructure:"bucket"`
	Prefix  string `mapstructure:"prefix"`
}

// Load reads configuration from environment variables with the ROOFIO_ prefix.
// A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("ROOFIO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "180s")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.cors_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.compress", true)
	v.SetDefault("log.axiom_token", "")
	v.SetDefault("log.axiom_org_id", "")
	v.SetDefault("log.axiom_dataset", "roofio")

	// Generator defaults
	for _, tier := range []string{"primary", "secondary", "tertiary"} {
		v.SetDefault("generator."+tier+".provider", "")
		v.SetDefault("generator."+tier+".api_key", "")
		v.SetDefault("generator."+tier+".default_model", "")
		v.SetDefault("generator."+tier+".timeout_secs", 120)
		v.SetDefault("generator."+tier+".endpoint", "")
	}
	v.SetDefault("generator.circuit_store", "memory")

	// Extract defaults
	v.SetDefault("extract.max_prompt_chars", 4000)
	v.SetDefault("extract.max_file_size_mb", 50)
	v.SetDefault("extract.required_fields_file", "")
	v.SetDefault("extract.fallback_confidence", 0.80)

	v.SetDefault("batch.concurrency", 4)

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "roofio-documents")
	v.SetDefault("s3.endpoint", "")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "roofio")

	v.SetDefault("archive.enabled", false)
	v.SetDefault("archive.bucket", "")
	v.SetDefault("archive.prefix", "results")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                  "ROOFIO_SERVER_PORT",
		"server.read_timeout":          "ROOFIO_SERVER_READ_TIMEOUT",
		"server.write_timeout":         "ROOFIO_SERVER_WRITE_TIMEOUT",
		"server.environment":           "ROOFIO_SERVER_ENVIRONMENT",
		"server.cors_origins":          "ROOFIO_SERVER_CORS_ORIGINS",
		"log.level":                    "ROOFIO_LOG_LEVEL",
		"log.format":                   "ROOFIO_LOG_FORMAT",
		"log.file":                     "ROOFIO_LOG_FILE",
		"log.max_size_mb":              "ROOFIO_LOG_MAX_SIZE_MB",
		"log.max_backups":              "ROOFIO_LOG_MAX_BACKUPS",
		"log.max_age_days":             "ROOFIO_LOG_MAX_AGE_DAYS",
		"log.compress":                 "ROOFIO_LOG_COMPRESS",
		"log.axiom_token":              "ROOFIO_LOG_AXIOM_TOKEN",
		"log.axiom_org_id":             "ROOFIO_LOG_AXIOM_ORG_ID",
		"log.axiom_dataset":            "ROOFIO_LOG_AXIOM_DATASET",
		"generator.circuit_store":      "ROOFIO_GENERATOR_CIRCUIT_STORE",
		"extract.max_prompt_chars":     "ROOFIO_EXTRACT_MAX_PROMPT_CHARS",
		"extract.max_file_size_mb":     "ROOFIO_EXTRACT_MAX_FILE_SIZE_MB",
		"extract.required_fields_file": "ROOFIO_EXTRACT_REQUIRED_FIELDS_FILE",
		"extract.fallback_confidence":  "ROOFIO_EXTRACT_FALLBACK_CONFIDENCE",
		"batch.concurrency":            "ROOFIO_BATCH_CONCURRENCY",
		"s3.region":                    "ROOFIO_S3_REGION",
		"s3.bucket":                    "ROOFIO_S3_BUCKET",
		"s3.endpoint":                  "ROOFIO_S3_ENDPOINT",
		"s3.access_key":                "ROOFIO_S3_ACCESS_KEY",
		"s3.secret_key":                "ROOFIO_S3_SECRET_KEY",
		"redis.addr":                   "ROOFIO_REDIS_ADDR",
		"redis.password":               "ROOFIO_REDIS_PASSWORD",
		"redis.db":                     "ROOFIO_REDIS_DB",
		"telemetry.enabled":            "ROOFIO_TELEMETRY_ENABLED",
		"telemetry.service_name":       "ROOFIO_TELEMETRY_SERVICE_NAME",
		"archive.enabled":              "ROOFIO_ARCHIVE_ENABLED",
		"archive.bucket":               "ROOFIO_ARCHIVE_BUCKET",
		"archive.prefix":               "ROOFIO_ARCHIVE_PREFIX",
	}
	for _, tier := range []string{"primary", "secondary", "tertiary"} {
		for _, key := range []string{"provider", "api_key", "default_model", "timeout_secs", "endpoint"} {
			envBindings["generator."+tier+"."+key] = "ROOFIO_GENERATOR_" + strings.ToUpper(tier+"_"+key)
		}
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if ROOFIO_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("ROOFIO_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
		CORSOrigins:  splitList(v.GetString("server.cors_origins")),
	}
	cfg.Log = LogConfig{
		Level:        v.GetString("log.level"),
		Format:       v.GetString("log.format"),
		File:         v.GetString("log.file"),
		MaxSizeMB:    v.GetInt("log.max_size_mb"),
		MaxBackups:   v.GetInt("log.max_backups"),
		MaxAgeDays:   v.GetInt("log.max_age_days"),
		Compress:     v.GetBool("log.compress"),
		AxiomToken:   v.GetString("log.axiom_token"),
		AxiomOrgID:   v.GetString("log.axiom_org_id"),
		AxiomDataset: v.GetString("log.axiom_dataset"),
	}
	cfg.Generator = GeneratorConfig{
		Primary:      providerConfig(v, "primary"),
		Secondary:    providerConfig(v, "secondary"),
		Tertiary:     providerConfig(v, "tertiary"),
		CircuitStore: v.GetString("generator.circuit_store"),
	}
	cfg.Extract = ExtractConfig{
		MaxPromptChars:     v.GetInt("extract.max_prompt_chars"),
		MaxFileSizeMB:      v.GetInt64("extract.max_file_size_mb"),
		RequiredFieldsFile: v.GetString("extract.required_fields_file"),
		FallbackConfidence: v.GetFloat64("extract.fallback_confidence"),
	}
	cfg.Batch = BatchConfig{
		Concurrency: v.GetInt("batch.concurrency"),
	}
	cfg.S3 = S3Config{
		Region:    v.GetString("s3.region"),
		Bucket:    v.GetString("s3.bucket"),
		Endpoint:  v.GetString("s3.endpoint"),
		AccessKey: v.GetString("s3.access_key"),
		SecretKey: v.GetString("s3.secret_key"),
	}
	cfg.Redis = RedisConfig{
		Addr:     v.GetString("redis.addr"),
		Password: v.GetString("redis.password"),
		DB:       v.GetInt("redis.db"),
	}
	cfg.Telemetry = TelemetryConfig{
		Enabled:     v.GetBool("telemetry.enabled"),
		ServiceName: v.GetString("telemetry.service_name"),
	}
	cfg.Archive = ArchiveConfig{
		Enabled: v.GetBool("archive.enabled"),
		Bucket:  v.GetString("archive.bucket"),
		Prefix:  v.GetString("archive.prefix"),
	}

	return cfg, nil
}

func providerConfig(v *viper.Viper, tier string) GeneratorProviderConfig {
	prefix := "generator." + tier + "."
	return GeneratorProviderConfig{
		Provider:     v.GetString(prefix + "provider"),
		APIKey:       v.GetString(prefix + "api_key"),
		DefaultModel: v.GetString(prefix + "default_model"),
		TimeoutSecs:  v.GetInt(prefix + "timeout_secs"),
		Endpoint:     v.GetString(prefix + "endpoint"),
	}
}

// splitList parses a comma-separated env value, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
