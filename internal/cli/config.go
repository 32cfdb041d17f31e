package cli

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/eleven-am/spycat/internal/auth"
	"github.com/eleven-am/spycat/internal/breeds"
	"github.com/eleven-am/spycat/internal/logger"
	"github.com/eleven-am/spycat/internal/migrator"
	"gopkg.in/yaml.v3"
)

const configEnv = "AGENCY_CONFIG"

var configLocations = []string{"agency.yaml", "agency.yml", ".agency.yaml", ".agency.yml"}

// Config represents the agency.yaml configuration structure
type Config struct {
	Server struct {
		Host            string        `yaml:"host"`
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Database struct {
		URL              string        `yaml:"url"`
		MaxOpenConns     int           `yaml:"max_open_conns"`
		MaxIdleConns     int           `yaml:"max_idle_conns"`
		ConnMaxLifetime  time.Duration `yaml:"conn_max_lifetime"`
		StatementTimeout time.Duration `yaml:"statement_timeout"`
		AutoMigrate      bool          `yaml:"auto_migrate"`
	} `yaml:"database"`

	Auth struct {
		SecretKey  string        `yaml:"secret_key"`
		Algorithm  string        `yaml:"algorithm"`
		AccessTTL  time.Duration `yaml:"access_ttl"`
		RefreshTTL time.Duration `yaml:"refresh_ttl"`
		ResetTTL   time.Duration `yaml:"reset_ttl"`
	} `yaml:"auth"`

	Breeds struct {
		Enabled *bool         `yaml:"enabled"`
		BaseURL string        `yaml:"base_url"`
		APIKey  string        `yaml:"api_key"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"breeds"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		File   string `yaml:"file"`
	} `yaml:"log"`
}

// LoadConfig reads path, or the first default location found, then applies
// environment overrides and defaults. A missing file is not an error when no
// path was given: the environment alone can configure the agency.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = GetConfigPath()
	}

	config := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := config.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	config.applyDefaults()

	return config, nil
}

func GetConfigPath() string {
	if path := os.Getenv(configEnv); path != "" {
		return path
	}

	for _, loc := range configLocations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("DATABASE_URL"); ok && v != "" {
		c.Database.URL = v
	}
	if v, ok := lookup("SECRET_KEY"); ok && v != "" {
		c.Auth.SecretKey = v
	}
	if v, ok := lookup("ALGORITHM"); ok && v != "" {
		c.Auth.Algorithm = v
	}
	if v, ok := lookup("CAT_API_KEY"); ok && v != "" {
		c.Breeds.APIKey = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := lookup("PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}

	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 10
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = 10 * time.Minute
	}
	if c.Database.StatementTimeout == 0 {
		c.Database.StatementTimeout = 30 * time.Second
	}

	if c.Auth.Algorithm == "" {
		c.Auth.Algorithm = "HS256"
	}
	c.Auth.Algorithm = strings.ToUpper(c.Auth.Algorithm)
	if c.Auth.AccessTTL == 0 {
		c.Auth.AccessTTL = auth.DefaultAccessTTL
	}
	if c.Auth.RefreshTTL == 0 {
		c.Auth.RefreshTTL = auth.DefaultRefreshTTL
	}
	if c.Auth.ResetTTL == 0 {
		c.Auth.ResetTTL = auth.DefaultResetTTL
	}

	if c.Breeds.Enabled == nil {
		enabled := true
		c.Breeds.Enabled = &enabled
	}
	if c.Breeds.BaseURL == "" {
		c.Breeds.BaseURL = breeds.DefaultBaseURL
	}
	if c.Breeds.Timeout == 0 {
		c.Breeds.Timeout = breeds.DefaultTimeout
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate checks what serving requires.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("database url is required: set database.url, DATABASE_URL or --url")
	}
	if c.Auth.SecretKey == "" {
		return fmt.Errorf("auth secret key is required: set auth.secret_key or SECRET_KEY")
	}
	switch c.Auth.Algorithm {
	case "HS256", "HS512":
	default:
		return fmt.Errorf("unsupported auth algorithm %q: use HS256 or HS512", c.Auth.Algorithm)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	return nil
}

func (c *Config) Address() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

func (c *Config) BreedsEnabled() bool {
	return c.Breeds.Enabled == nil || *c.Breeds.Enabled
}

func (c *Config) DBConfig() *migrator.DBConfig {
	db := migrator.NewDBConfig(c.Database.URL)
	db.MaxOpenConns = c.Database.MaxOpenConns
	db.MaxIdleConns = c.Database.MaxIdleConns
	db.ConnMaxLifetime = c.Database.ConnMaxLifetime
	db.StatementTimeout = c.Database.StatementTimeout
	return db
}

func (c *Config) AuthConfig() auth.Config {
	return auth.Config{
		SecretKey:  c.Auth.SecretKey,
		Algorithm:  c.Auth.Algorithm,
		AccessTTL:  c.Auth.AccessTTL,
		RefreshTTL: c.Auth.RefreshTTL,
		ResetTTL:   c.Auth.ResetTTL,
	}
}

func (c *Config) BreedsConfig() breeds.Config {
	return breeds.Config{
		BaseURL: c.Breeds.BaseURL,
		APIKey:  c.Breeds.APIKey,
		Timeout: c.Breeds.Timeout,
	}
}

func (c *Config) LoggerConfig(debug bool) logger.Config {
	return logger.Config{
		Level:  c.Log.Level,
		Format: c.Log.Format,
		File:   c.Log.File,
		Debug:  debug,
	}
}

// SaveConfig writes config as YAML, creating parent directories.
func SaveConfig(config *Config, path string) error {
	if path == "" {
		path = configLocations[0]
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// The file may carry the signing secret.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
