package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Storage backends accepted by NOTAS_STORE.
const (
	NotasStoreMemory   = "memory"
	NotasStoreRedis    = "redis"
	NotasStorePostgres = "postgres"
	NotasStoreNone     = "none"
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
	Upstream  UpstreamConfig
	Dashboard DashboardConfig
	Notas     NotasConfig
	Metrics   MetricsConfig
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

// JWTConfig holds the secret shared with the platform API that issues access tokens.
type JWTConfig struct {
	Secret string
	Issuer string
}

type CORSConfig struct {
	AllowedOrigins []string
	MaxAge         time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

// UpstreamConfig points the aggregator at the platform API.
type UpstreamConfig struct {
	BaseURL  string
	Timeout  time.Duration
	PageSize int
	Paths    UpstreamPaths
}

// UpstreamPaths lists the endpoints consumed by the dashboard aggregator.
type UpstreamPaths struct {
	CursosOverview    string
	Alunos            string
	Instrutores       string
	Usuarios          string
	EmpresasDashboard string
	Vagas             string
}

// DashboardConfig governs dashboard exposure and cache tuning.
type DashboardConfig struct {
	Enabled  bool
	CacheTTL time.Duration
}

// NotasConfig selects the key-value backend of the grades ledger.
type NotasConfig struct {
	Store       string
	SeedEnabled bool
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool
}

// IsDevelopment reports whether the service runs outside production.
func (c *Config) IsDevelopment() bool {
	return c != nil && c.Env != EnvProduction
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
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	return FromViper(v), nil
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) *Config {
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
		Secret: v.GetString("JWT_SECRET"),
		Issuer: v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{
		AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS")),
		MaxAge:         parseDuration(v.GetString("CORS_MAX_AGE"), 10*time.Minute),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	pageSize := v.GetInt("UPSTREAM_PAGE_SIZE")
	if pageSize <= 0 {
		pageSize = 100
	}
	cfg.Upstream = UpstreamConfig{
		BaseURL:  strings.TrimRight(v.GetString("UPSTREAM_BASE_URL"), "/"),
		Timeout:  parseDuration(v.GetString("UPSTREAM_TIMEOUT"), 10*time.Second),
		PageSize: pageSize,
		Paths: UpstreamPaths{
			CursosOverview:    v.GetString("UPSTREAM_PATH_CURSOS_OVERVIEW"),
			Alunos:            v.GetString("UPSTREAM_PATH_ALUNOS"),
			Instrutores:       v.GetString("UPSTREAM_PATH_INSTRUTORES"),
			Usuarios:          v.GetString("UPSTREAM_PATH_USUARIOS"),
			EmpresasDashboard: v.GetString("UPSTREAM_PATH_EMPRESAS_DASHBOARD"),
			Vagas:             v.GetString("UPSTREAM_PATH_VAGAS"),
		},
	}

	cfg.Dashboard = DashboardConfig{
		Enabled:  v.GetBool("ENABLE_DASHBOARD"),
		CacheTTL: parseDuration(v.GetString("DASHBOARD_CACHE_TTL"), 2*time.Minute),
	}

	cfg.Notas = NotasConfig{
		Store:       strings.ToLower(strings.TrimSpace(v.GetString("NOTAS_STORE"))),
		SeedEnabled: v.GetBool("NOTAS_SEED_ENABLED"),
	}

	cfg.Metrics = MetricsConfig{
		Enabled: v.GetBool("ENABLE_METRICS"),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "painel_admin")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("CORS_MAX_AGE", "10m")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("UPSTREAM_BASE_URL", "http://localhost:3000/api/v1")
	v.SetDefault("UPSTREAM_TIMEOUT", "10s")
	v.SetDefault("UPSTREAM_PAGE_SIZE", 100)
	v.SetDefault("UPSTREAM_PATH_CURSOS_OVERVIEW", "/cursos/visao-geral")
	v.SetDefault("UPSTREAM_PATH_ALUNOS", "/alunos")
	v.SetDefault("UPSTREAM_PATH_INSTRUTORES", "/instrutores")
	v.SetDefault("UPSTREAM_PATH_USUARIOS", "/usuarios")
	v.SetDefault("UPSTREAM_PATH_EMPRESAS_DASHBOARD", "/empresas/dashboard")
	v.SetDefault("UPSTREAM_PATH_VAGAS", "/vagas")

	v.SetDefault("ENABLE_DASHBOARD", true)
	v.SetDefault("DASHBOARD_CACHE_TTL", "2m")

	v.SetDefault("NOTAS_STORE", NotasStoreMemory)
	v.SetDefault("NOTAS_SEED_ENABLED", true)

	v.SetDefault("ENABLE_METRICS", true)
}

func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
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
