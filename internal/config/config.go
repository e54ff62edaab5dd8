package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/godilite/caseops/internal/service"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	SourceCSV      = "csv"
	SourceEmbedded = "embedded"
	SourceSQL      = "sql"
)

// Config holds all configuration for the application.
type Config struct {
	AppEnv                string
	DataSource            string
	CasesPath             string
	CasesFallbackEncoding string
	DBPath                string
	DBDriver              string
	// RedisAddr enables the shared dataset cache when set.
	RedisAddr             string
	DatasetCacheTTL       time.Duration
	GRPCPort              int
	// GRPCReflectionEnabled lists services for tools like grpcurl. The case
	// dashboard messages travel on the JSON codec and carry no protobuf
	// descriptors, so only the health service can be described; off by default.
	GRPCReflectionEnabled bool
	ThresholdsPath        string
	Thresholds            service.Thresholds
}

// thresholdsFile is the on-disk shape of the classification thresholds.
type thresholdsFile struct {
	MaxLatenessDays     *float64 `yaml:"max_lateness_days"`
	ProactivePctOptimal *float64 `yaml:"proactive_pct_optimal"`
	ExcludeLate         *bool    `yaml:"exclude_late"`
}

// LoadFromEnv loads configuration from environment variables and the
// optional thresholds file.
func LoadFromEnv() (*Config, error) {
	portStr := getEnv("GRPC_PORT", "50051")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		port = 50051
	}

	reflectionStr := getEnv("GRPC_REFLECTION_ENABLED", "false")
	reflection, err := strconv.ParseBool(reflectionStr)
	if err != nil {
		reflection = false
	}

	ttl, err := time.ParseDuration(getEnv("DATASET_CACHE_TTL", "30m"))
	if err != nil {
		ttl = 30 * time.Minute
	}

	cfg := &Config{
		AppEnv:                getEnv("APP_ENV", "development"),
		DataSource:            strings.ToLower(getEnv("DATA_SOURCE", SourceCSV)),
		CasesPath:             getEnv("CASES_PATH", "./data/cases.csv"),
		CasesFallbackEncoding: getEnv("CASES_FALLBACK_ENCODING", "latin1"),
		DBPath:                getEnv("DB_PATH", "./data/cases.db"),
		DBDriver:              getEnv("DB_DRIVER", "sqlite3"),
		RedisAddr:             os.Getenv("REDIS_ADDR"),
		DatasetCacheTTL:       ttl,
		GRPCPort:              port,
		GRPCReflectionEnabled: reflection,
		ThresholdsPath:        getEnv("THRESHOLDS_PATH", "./thresholds.yaml"),
	}

	switch cfg.DataSource {
	case SourceCSV, SourceEmbedded, SourceSQL:
	default:
		return nil, fmt.Errorf("unknown DATA_SOURCE %q: want csv, embedded or sql", cfg.DataSource)
	}

	cfg.Thresholds, err = LoadThresholds(cfg.ThresholdsPath)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadThresholds reads the thresholds file, falling back to the defaults for
// absent keys or an absent file. MAX_LATENESS_DAYS, PROACTIVE_PCT_OPTIMAL
// and EXCLUDE_LATE override the file.
func LoadThresholds(path string) (service.Thresholds, error) {
	t := service.DefaultThresholds()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return t, fmt.Errorf("read thresholds %s: %w", path, err)
		default:
			var f thresholdsFile
			if err := yaml.Unmarshal(data, &f); err != nil {
				return t, fmt.Errorf("parse thresholds %s: %w", path, err)
			}
			if f.MaxLatenessDays != nil {
				t.MaxLatenessDays = *f.MaxLatenessDays
			}
			if f.ProactivePctOptimal != nil {
				t.ProactivePctOptimal = *f.ProactivePctOptimal
			}
			if f.ExcludeLate != nil {
				t.ExcludeLate = *f.ExcludeLate
			}
		}
	}

	if err := envOverrideFloat(&t.MaxLatenessDays, "MAX_LATENESS_DAYS"); err != nil {
		return t, err
	}
	if err := envOverrideFloat(&t.ProactivePctOptimal, "PROACTIVE_PCT_OPTIMAL"); err != nil {
		return t, err
	}
	if v := os.Getenv("EXCLUDE_LATE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return t, fmt.Errorf("EXCLUDE_LATE: %w", err)
		}
		t.ExcludeLate = b
	}

	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("thresholds: %w", err)
	}
	return t, nil
}

// NewLogger creates a new Zap logger based on the config.
func NewLogger(cfg *Config) (*zap.Logger, error) {
	if cfg.AppEnv == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func envOverrideFloat(dst *float64, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = f
	return nil
}
