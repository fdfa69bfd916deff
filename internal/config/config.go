package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config aggregates application settings that may be sourced from files or environment variables.
type Config struct {
	API      APIConfig      `mapstructure:"api"`
	App      AppConfig      `mapstructure:"app"`
	Log      LogConfig      `mapstructure:"log"`
	Database DatabaseConfig `mapstructure:"database"`
	Gateway  GatewayConfig  `mapstructure:"gateway"`
	Seed     SeedConfig     `mapstructure:"seed"`
	Admin    AdminConfig    `mapstructure:"admin"`
	Snapshot SnapshotConfig `mapstructure:"snapshot"`
	Redis    RedisConfig    `mapstructure:"redis"`
	MinIO    MinIOConfig    `mapstructure:"minio"`
}

// APIConfig contains HTTP server settings.
type APIConfig struct {
	Port int `mapstructure:"port"`
}

// AppConfig 描述运行环境。
type AppConfig struct {
	Env string `mapstructure:"env"`
}

// IsProduction reports whether gin should run in release mode.
func (a AppConfig) IsProduction() bool {
	return strings.EqualFold(a.Env, "production")
}

// LogConfig 控制 slog 的级别与输出格式（text / json）。
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DatabaseConfig contains connection options for sqlite (default) or PostgreSQL.
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Path     string `mapstructure:"dsn"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`
}

// IsPostgres reports whether the postgres driver is selected.
func (d DatabaseConfig) IsPostgres() bool {
	return strings.EqualFold(d.Driver, "postgres")
}

// DSN builds the driver connection string: the sqlite path, or a lib/pq compatible string.
func (d DatabaseConfig) DSN() string {
	if !d.IsPostgres() {
		return d.Path
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host,
		d.Port,
		d.User,
		d.Password,
		d.Name,
		d.SSLMode,
	)
}

// GatewayConfig 控制模拟网关的延迟、失败率和分页。
type GatewayConfig struct {
	BasePath        string  `mapstructure:"base_path"`
	LatencyMinMS    int     `mapstructure:"latency_min_ms"`
	LatencyMaxMS    int     `mapstructure:"latency_max_ms"`
	ErrorRate       float64 `mapstructure:"error_rate"`
	DefaultPageSize int     `mapstructure:"default_page_size"`
	MaxPageSize     int     `mapstructure:"max_page_size"`
}

// LatencyMin returns the lower latency bound as a duration.
func (g GatewayConfig) LatencyMin() time.Duration {
	return time.Duration(g.LatencyMinMS) * time.Millisecond
}

// LatencyMax returns the upper latency bound as a duration.
func (g GatewayConfig) LatencyMax() time.Duration {
	return time.Duration(g.LatencyMaxMS) * time.Millisecond
}

// SeedConfig 控制首次启动时生成的数据量；RandomSeed 为 0 时按时间取种子。
type SeedConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	RandomSeed  uint64 `mapstructure:"random_seed"`
	Jobs        int    `mapstructure:"jobs"`
	Candidates  int    `mapstructure:"candidates"`
	Assessments int    `mapstructure:"assessments"`
}

// AdminConfig 保护 /admin 运维接口；Secret 为空时不校验。
type AdminConfig struct {
	Secret string `mapstructure:"secret"`
}

// SnapshotConfig toggles the asynq based snapshot export.
type SnapshotConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// RedisConfig 包含 Redis 连接配置。
type RedisConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Addr returns host:port.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// MinIOConfig contains connection options for MinIO/S3-compatible storage.
type MinIOConfig struct {
	Endpoint         string `mapstructure:"endpoint"`
	AccessKeyID      string `mapstructure:"access_key_id"`
	SecretAccessKey  string `mapstructure:"secret_access_key"`
	UseSSL           bool   `mapstructure:"use_ssl"`
	Bucket           string `mapstructure:"bucket"`
	AutoCreateBucket bool   `mapstructure:"auto_create_bucket"`
}

// Load reads configuration solely from environment variables (with optional defaults).
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if err := bindEnv(v); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// MustLoad wraps Load and panics on failure.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.port", 8080)
	v.SetDefault("app.env", "development")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "data/talentflow.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "talentflow")
	v.SetDefault("database.user", "talentflow")
	v.SetDefault("database.password", "talentflow")
	v.SetDefault("database.sslmode", "disable")

	v.SetDefault("gateway.base_path", "")
	v.SetDefault("gateway.latency_min_ms", 200)
	v.SetDefault("gateway.latency_max_ms", 1200)
	v.SetDefault("gateway.error_rate", 0.10)
	v.SetDefault("gateway.default_page_size", 10)
	v.SetDefault("gateway.max_page_size", 100)

	v.SetDefault("seed.enabled", true)
	v.SetDefault("seed.random_seed", 0)
	v.SetDefault("seed.jobs", 25)
	v.SetDefault("seed.candidates", 1000)
	v.SetDefault("seed.assessments", 3)

	v.SetDefault("admin.secret", "")
	v.SetDefault("snapshot.enabled", false)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("minio.endpoint", "localhost:9000")
	v.SetDefault("minio.use_ssl", false)
	v.SetDefault("minio.bucket", "talentflow")
	v.SetDefault("minio.auto_create_bucket", true)
}

func bindEnv(v *viper.Viper) error {
	mappings := map[string]string{
		"api.port":                  "API_PORT",
		"app.env":                   "APP_ENV",
		"log.level":                 "LOG_LEVEL",
		"log.format":                "LOG_FORMAT",
		"database.driver":           "DATABASE_DRIVER",
		"database.dsn":              "DATABASE_DSN",
		"database.host":             "DATABASE_HOST",
		"database.port":             "DATABASE_PORT",
		"database.name":             "POSTGRES_DB",
		"database.user":             "POSTGRES_USER",
		"database.password":         "POSTGRES_PASSWORD",
		"database.sslmode":          "DATABASE_SSLMODE",
		"gateway.base_path":         "GATEWAY_BASE_PATH",
		"gateway.latency_min_ms":    "GATEWAY_LATENCY_MIN_MS",
		"gateway.latency_max_ms":    "GATEWAY_LATENCY_MAX_MS",
		"gateway.error_rate":        "GATEWAY_ERROR_RATE",
		"gateway.default_page_size": "GATEWAY_DEFAULT_PAGE_SIZE",
		"gateway.max_page_size":     "GATEWAY_MAX_PAGE_SIZE",
		"seed.enabled":              "SEED_ENABLED",
		"seed.random_seed":          "SEED_RANDOM_SEED",
		"seed.jobs":                 "SEED_JOBS",
		"seed.candidates":           "SEED_CANDIDATES",
		"seed.assessments":          "SEED_ASSESSMENTS",
		"admin.secret":              "ADMIN_SECRET",
		"snapshot.enabled":          "SNAPSHOT_ENABLED",
		"redis.host":                "REDIS_HOST",
		"redis.port":                "REDIS_PORT",
		"minio.endpoint":            "MINIO_ENDPOINT",
		"minio.access_key_id":       "MINIO_ACCESS_KEY_ID",
		"minio.secret_access_key":   "MINIO_SECRET_ACCESS_KEY",
		"minio.use_ssl":             "MINIO_USE_SSL",
		"minio.bucket":              "MINIO_BUCKET",
		"minio.auto_create_bucket":  "MINIO_AUTO_CREATE_BUCKET",
	}

	for key, env := range mappings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind %s to %s: %w", key, env, err)
		}
	}

	return nil
}

func validate(cfg Config) error {
	if cfg.API.Port <= 0 {
		return errors.New("api port must be positive")
	}
	switch strings.ToLower(cfg.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("unsupported log format %q", cfg.Log.Format)
	}

	switch strings.ToLower(cfg.Database.Driver) {
	case "sqlite", "sqlite3":
		if cfg.Database.Path == "" {
			return errors.New("database dsn is required for sqlite")
		}
	case "postgres":
		if cfg.Database.Host == "" {
			return errors.New("database host is required")
		}
		if cfg.Database.Port <= 0 {
			return errors.New("database port must be positive")
		}
		if cfg.Database.Name == "" {
			return errors.New("database name is required")
		}
		if cfg.Database.User == "" {
			return errors.New("database user is required")
		}
		if cfg.Database.SSLMode == "" {
			return errors.New("database sslmode is required")
		}
	default:
		return fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}

	g := cfg.Gateway
	if g.LatencyMinMS < 0 || g.LatencyMaxMS < g.LatencyMinMS {
		return errors.New("gateway latency must satisfy 0 <= min <= max")
	}
	if g.ErrorRate < 0 || g.ErrorRate > 1 {
		return errors.New("gateway error rate must be within [0, 1]")
	}
	if g.DefaultPageSize <= 0 || g.MaxPageSize <= 0 {
		return errors.New("gateway page sizes must be positive")
	}
	if g.DefaultPageSize > g.MaxPageSize {
		return errors.New("gateway default page size exceeds max page size")
	}
	if g.BasePath != "" && !strings.HasPrefix(g.BasePath, "/") {
		return errors.New("gateway base path must start with /")
	}

	if cfg.Seed.Jobs < 0 || cfg.Seed.Candidates < 0 || cfg.Seed.Assessments < 0 {
		return errors.New("seed counts must not be negative")
	}
	if cfg.Seed.Candidates > 0 && cfg.Seed.Jobs == 0 {
		return errors.New("seed candidates require at least one job")
	}

	if !cfg.Snapshot.Enabled {
		return nil
	}
	if cfg.Redis.Host == "" {
		return errors.New("redis host is required")
	}
	if cfg.Redis.Port <= 0 {
		return errors.New("redis port must be positive")
	}
	if cfg.MinIO.Endpoint == "" {
		return errors.New("minio endpoint is required")
	}
	if cfg.MinIO.AccessKeyID == "" {
		return errors.New("minio access key id is required")
	}
	if cfg.MinIO.SecretAccessKey == "" {
		return errors.New("minio secret access key is required")
	}
	if cfg.MinIO.Bucket == "" {
		return errors.New("minio bucket is required")
	}
	return nil
}
