// config/config.go
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/tidwall/jsonc"
)

// Version is stamped at build time with -ldflags "-X".
var Version = "0.1.0"

// Configuration stores all the configurations
type Configuration struct {
	ProjectName   string `validate:"required"`
	Debug         bool
	Server        ServerConfiguration
	Auth          AuthConfiguration
	Bulk          BulkConfiguration
	Engine        EngineConfiguration
	Fetchers      map[string]map[string]any
	Redis         RedisConfiguration
	RateLimit     RateLimitConfiguration
	Elasticsearch ElasticsearchConfiguration
	Tracing       TracingConfiguration
	Log           LogConfiguration
}

type ServerConfiguration struct {
	Port string `validate:"required,numeric"`
}

type AuthConfiguration struct {
	AdminAPIKey         string
	AdminAuthnRequired  bool
	PublicAuthnRequired bool
}

type BulkConfiguration struct {
	MaxRequests int `validate:"gt=0"`
	BatchSize   int `validate:"gt=0"`
}

type EngineConfiguration struct {
	CombiningAlgorithm string `validate:"oneof=explicit-precedence deny-overrides"`
	SQLDatabase        bool
	SQLDatabaseURL     string `validate:"required_if=SQLDatabase true"`
}

// RedisConfiguration is unused when Addr is empty.
type RedisConfiguration struct {
	Addr     string
	Password string
	DB       int `validate:"gte=0"`
}

// RateLimitConfiguration disables limiting when Requests is 0.
type RateLimitConfiguration struct {
	Requests int           `validate:"gte=0"`
	Window   time.Duration `validate:"gt=0"`
}

type ElasticsearchConfiguration struct {
	URL   string `validate:"omitempty,url"`
	Index string `validate:"required"`
}

type TracingConfiguration struct {
	Enabled  bool
	Endpoint string `validate:"required_if=Enabled true"`
}

type LogConfiguration struct {
	Level string `validate:"oneof=debug info warn error"`
	Dir   string
}

const defaultFetchers = `{"registry": {"sql_database_url": "sqlite://./.db/themis.sqlite"}}`

var defaults = map[string]any{
	"project_name":            "Themis",
	"debug":                   false,
	"server_port":             "8080",
	"admin_api_key":           "",
	"admin_authn_required":    false,
	"public_authn_required":   false,
	"bulk_check_max_requests": 100,
	"bulk_check_batch_size":   10,
	"combining_algorithm":     "explicit-precedence",
	"engine_sql_database":     false,
	"engine_sql_database_url": "sqlite://./.db/themis.sqlite",
	"fetchers":                defaultFetchers,
	"redis_addr":              "",
	"redis_password":          "",
	"redis_db":                0,
	"rate_limit_requests":     0,
	"rate_limit_window":       "1m",
	"elasticsearch_url":       "",
	"elasticsearch_index":     "themis-decisions",
	"trace_enabled":           false,
	"trace_endpoint":          "localhost:4318",
	"log_level":               "info",
	"log_dir":                 "",
}

var config *Configuration

// InitConfig loads the configuration from the working directory and keeps
// it for GetConfig.
func InitConfig() error {
	cfg, err := Load(".")
	if err != nil {
		return err
	}
	config = cfg
	return nil
}

// GetConfig returns the loaded configuration
func GetConfig() *Configuration {
	return config
}

// Load reads settings with this precedence: process environment, then
// <dir>/.env, then <dir>/config/config.yaml, then defaults.
func Load(dir string) (*Configuration, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.AddConfigPath(filepath.Join(dir, "config"))
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	dotenv, err := godotenv.Read(filepath.Join(dir, ".env"))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read .env: %w", err)
	}
	for key, value := range dotenv {
		if _, set := os.LookupEnv(key); !set {
			v.Set(strings.ToLower(key), value)
		}
	}

	v.AutomaticEnv()

	fetchers, err := decodeFetchers(v.Get("fetchers"))
	if err != nil {
		return nil, err
	}

	cfg := &Configuration{
		ProjectName: v.GetString("project_name"),
		Debug:       v.GetBool("debug"),
		Server:      ServerConfiguration{Port: v.GetString("server_port")},
		Auth: AuthConfiguration{
			AdminAPIKey:         v.GetString("admin_api_key"),
			AdminAuthnRequired:  v.GetBool("admin_authn_required"),
			PublicAuthnRequired: v.GetBool("public_authn_required"),
		},
		Bulk: BulkConfiguration{
			MaxRequests: v.GetInt("bulk_check_max_requests"),
			BatchSize:   v.GetInt("bulk_check_batch_size"),
		},
		Engine: EngineConfiguration{
			CombiningAlgorithm: v.GetString("combining_algorithm"),
			SQLDatabase:        v.GetBool("engine_sql_database"),
			SQLDatabaseURL:     v.GetString("engine_sql_database_url"),
		},
		Fetchers: fetchers,
		Redis: RedisConfiguration{
			Addr:     v.GetString("redis_addr"),
			Password: v.GetString("redis_password"),
			DB:       v.GetInt("redis_db"),
		},
		RateLimit: RateLimitConfiguration{
			Requests: v.GetInt("rate_limit_requests"),
			Window:   v.GetDuration("rate_limit_window"),
		},
		Elasticsearch: ElasticsearchConfiguration{
			URL:   v.GetString("elasticsearch_url"),
			Index: v.GetString("elasticsearch_index"),
		},
		Tracing: TracingConfiguration{
			Enabled:  v.GetBool("trace_enabled"),
			Endpoint: v.GetString("trace_endpoint"),
		},
		Log: LogConfiguration{
			Level: strings.ToLower(v.GetString("log_level")),
			Dir:   v.GetString("log_dir"),
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var configValidator = validator.New(validator.WithRequiredStructEnabled())

func (c *Configuration) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Auth.AdminAuthnRequired && c.Auth.AdminAPIKey == "" {
		return errors.New("invalid configuration: ADMIN_AUTHN_REQUIRED is set but ADMIN_API_KEY is empty")
	}
	if c.Auth.PublicAuthnRequired && c.Auth.AdminAPIKey == "" {
		return errors.New("invalid configuration: PUBLIC_AUTHN_REQUIRED is set but ADMIN_API_KEY is empty")
	}
	return nil
}

// decodeFetchers accepts FETCHERS as a JSON (or JSONC) string or as a map
// read from the yaml file.
func decodeFetchers(raw any) (map[string]map[string]any, error) {
	switch t := raw.(type) {
	case nil:
		return map[string]map[string]any{}, nil
	case string:
		if strings.TrimSpace(t) == "" {
			return map[string]map[string]any{}, nil
		}
		var out map[string]map[string]any
		if err := json.Unmarshal(jsonc.ToJSON([]byte(t)), &out); err != nil {
			return nil, fmt.Errorf("invalid FETCHERS: %w", err)
		}
		return nonNil(out), nil
	case map[string]any:
		out := make(map[string]map[string]any, len(t))
		for id, entry := range t {
			switch cfg := entry.(type) {
			case map[string]any:
				out[id] = cfg
			case nil:
				out[id] = map[string]any{}
			default:
				return nil, fmt.Errorf("invalid FETCHERS: %s must be an object, got %T", id, entry)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("invalid FETCHERS: unsupported type %T", raw)
	}
}

func nonNil(m map[string]map[string]any) map[string]map[string]any {
	if m == nil {
		return map[string]map[string]any{}
	}
	for id, cfg := range m {
		if cfg == nil {
			m[id] = map[string]any{}
		}
	}
	return m
}
