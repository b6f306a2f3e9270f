package common

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/Proteobench/Proteobench/constants"
)

// EnvPrefix scopes the environment variables read by LoadConfig.
const EnvPrefix = "PROTEOBENCH_"

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig `koanf:"database"`
	Server   ServerConfig   `koanf:"server"`
	Ingest   IngestConfig   `koanf:"ingest"`
	Params   ParamsConfig   `koanf:"params"`
	Publish  PublishConfig  `koanf:"publish"`
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN              string        `koanf:"dsn"`
	MaxConns         int32         `koanf:"max_conns"`
	MinConns         int32         `koanf:"min_conns"`
	MaxConnLifetime  time.Duration `koanf:"max_conn_lifetime"`
	MaxConnIdleTime  time.Duration `koanf:"max_conn_idle_time"`
	DialTimeout      time.Duration `koanf:"dial_timeout"`
	StatementTimeout time.Duration `koanf:"statement_timeout"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr    string `koanf:"grpc_addr"`
	MetricsAddr string `koanf:"metrics_addr"`
}

// IngestConfig controls directory ingest and the watcher.
type IngestConfig struct {
	WatchDirs      []string      `koanf:"watch_dirs"`
	Pattern        string        `koanf:"pattern"`
	SkipHidden     bool          `koanf:"skip_hidden"`
	Workers        int           `koanf:"workers"`
	QueueSize      int           `koanf:"queue_size"`
	Debounce       time.Duration `koanf:"debounce"`
	ProcessTimeout time.Duration `koanf:"process_timeout"`
}

// ParamsConfig points at the field-definition document used for defaults.
type ParamsConfig struct {
	FieldsPath string `koanf:"fields_path"`
}

// PublishConfig configures the results-repository sync.
type PublishConfig struct {
	Token        string `koanf:"token"`
	Username     string `koanf:"username"`
	UpstreamRepo string `koanf:"upstream_repo"`
	ForkRepo     string `koanf:"fork_repo"`
	CloneDir     string `koanf:"clone_dir"`    // upstream checkout
	CloneDirPR   string `koanf:"clone_dir_pr"` // fork checkout used for submissions
	BaseBranch   string `koanf:"base_branch"`
}

// LoadConfig reads an optional YAML file, then overrides with PROTEOBENCH_* env vars.
//
//	PROTEOBENCH_DATABASE_DSN        -> database.dsn
//	PROTEOBENCH_INGEST_WATCH_DIRS   -> ingest.watch_dirs (comma separated)
//	PROTEOBENCH_PUBLISH_TOKEN       -> publish.token
func LoadConfig(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envKeyValue), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// listKeys are config keys whose environment value is a comma separated list.
var listKeys = map[string]struct{}{
	"ingest.watch_dirs": {},
}

// envKeyValue maps PROTEOBENCH_SECTION_FIELD_NAME to section.field_name, splitting
// on the first underscore after the prefix, and splits list values on commas.
func envKeyValue(name, value string) (string, interface{}) {
	lower := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
	key := lower
	if parts := strings.SplitN(lower, "_", 2); len(parts) == 2 {
		key = parts[0] + "." + parts[1]
	}
	if _, ok := listKeys[key]; !ok {
		return key, value
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return key, items
}

func applyDefaults(c *Config) {
	if c.Database.DSN == "" {
		c.Database.DSN = "file:proteobench.db?_pragma=busy_timeout(5000)"
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = 20
	}
	if c.Database.MinConns == 0 {
		c.Database.MinConns = 2
	}
	if c.Database.MaxConnLifetime == 0 {
		c.Database.MaxConnLifetime = 30 * time.Minute
	}
	if c.Database.MaxConnIdleTime == 0 {
		c.Database.MaxConnIdleTime = 5 * time.Minute
	}
	if c.Database.DialTimeout == 0 {
		c.Database.DialTimeout = 3 * time.Second
	}
	if c.Server.GRPCAddr == "" {
		c.Server.GRPCAddr = ":8080"
	}
	if c.Server.MetricsAddr == "" {
		c.Server.MetricsAddr = ":9090"
	}
	if c.Ingest.Pattern == "" {
		c.Ingest.Pattern = constants.DefaultIncludePattern
	}
	if c.Ingest.Workers <= 0 {
		c.Ingest.Workers = 4
	}
	if c.Ingest.QueueSize <= 0 {
		c.Ingest.QueueSize = 256
	}
	if c.Ingest.Debounce == 0 {
		c.Ingest.Debounce = 500 * time.Millisecond
	}
	if c.Ingest.ProcessTimeout == 0 {
		c.Ingest.ProcessTimeout = time.Minute
	}
	if c.Publish.Username == "" {
		c.Publish.Username = "Proteobot"
	}
	if c.Publish.UpstreamRepo == "" {
		c.Publish.UpstreamRepo = "Proteobench/Results_quant_ion_DDA"
	}
	if c.Publish.ForkRepo == "" {
		c.Publish.ForkRepo = "Proteobot/Results_quant_ion_DDA"
	}
	if c.Publish.BaseBranch == "" {
		c.Publish.BaseBranch = "master"
	}
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "database.dsn is required", ErrInvalidInput)
	}
	if c.Server.GRPCAddr == "" {
		return NewAppError("CONFIG_ERROR", "server.grpc_addr is required", ErrInvalidInput)
	}
	if c.Database.MinConns > c.Database.MaxConns {
		return NewAppError("CONFIG_ERROR", "database.min_conns exceeds database.max_conns", ErrInvalidInput)
	}
	return nil
}
