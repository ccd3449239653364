package main

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// envPrefix namespaces environment overrides, e.g. DBPRESENCE_OUTPUT_DIR.
const envPrefix = "DBPRESENCE"

// Config holds all configuration for a comparison run.
type Config struct {
	// Sources are the databases to compare, in report column order.
	Sources []SourceConfig `mapstructure:"sources"`
	// Output controls where and how reports are written.
	Output OutputConfig `mapstructure:"output"`
	// Log holds configuration for the logger.
	Log LogConfig `mapstructure:"log"`
	// QueryTimeout bounds every catalog query and the initial ping.
	QueryTimeout time.Duration `mapstructure:"query_timeout" default:"30s"`
	// IgnoreCase matches table and column names case-insensitively.
	IgnoreCase bool `mapstructure:"ignore_case" default:"false"`
	// Parallel queries sources concurrently.
	Parallel bool `mapstructure:"parallel" default:"false"`
	// FailOnDrift makes the run fail when any name is missing from any source.
	FailOnDrift bool `mapstructure:"fail_on_drift" default:"false"`
}

// OutputConfig holds report output settings.
type OutputConfig struct {
	Dir     string `mapstructure:"dir" default:"."`
	Format  string `mapstructure:"format" default:"csv"`
	Preview int    `mapstructure:"preview" default:"5"`
}

// SourceConfig describes one database. Either URL or the discrete fields are used;
// for sqlite, Database is the file path.
type SourceConfig struct {
	Key      string `mapstructure:"key"`
	Name     string `mapstructure:"name"`
	Driver   string `mapstructure:"driver"`
	URL      string `mapstructure:"url"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	Schema   string `mapstructure:"schema"`
	// SSLMode applies to postgres only, e.g. disable for a local server.
	SSLMode string `mapstructure:"sslmode"`
}

// LoadConfig reads the YAML file at path into v, layered over defaults and
// DBPRESENCE_* environment variables. A .env file next to the config is loaded first
// so ${VAR} references in source URLs and passwords can be resolved.
func LoadConfig(v *viper.Viper, path string) (*Config, error) {
	envPath := ".env"
	if path != "" {
		envPath = filepath.Join(filepath.Dir(path), ".env")
	}
	// Ignore error if file doesn't exist
	_ = godotenv.Load(envPath)

	bindValues(v, Config{}, "")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	for i := range cfg.Sources {
		cfg.Sources[i].expandEnv()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (s *SourceConfig) expandEnv() {
	s.URL = os.ExpandEnv(s.URL)
	s.Host = os.ExpandEnv(s.Host)
	s.User = os.ExpandEnv(s.User)
	s.Password = os.ExpandEnv(s.Password)
	s.Database = os.ExpandEnv(s.Database)
}

func (c *Config) Validate() error {
	if len(c.Sources) == 0 {
		return ErrNoSources
	}

	keys := make(map[string]bool, len(c.Sources))
	names := make(map[string]bool, len(c.Sources))
	for i, src := range c.Sources {
		if src.Key == "" {
			return fmt.Errorf("sources[%d]: key is required", i)
		}
		if keys[src.Key] {
			return fmt.Errorf("%w: key %q", ErrDuplicateSource, src.Key)
		}
		keys[src.Key] = true

		name := src.displayName()
		if name == tableNameHeader || name == columnNameHeader {
			return fmt.Errorf("sources[%d] (%s): name %q is reserved", i, src.Key, name)
		}
		if names[name] {
			return fmt.Errorf("%w: name %q", ErrDuplicateSource, name)
		}
		names[name] = true

		adapter, err := GetAdapter(src.Driver)
		if err != nil {
			return fmt.Errorf("sources[%d] (%s): %w", i, src.Key, err)
		}
		if src.URL == "" && src.Host == "" && src.Database == "" {
			return fmt.Errorf("sources[%d] (%s): url, host or database is required", i, src.Key)
		}
		if _, ok := adapter.(*MySQLAdapter); ok && src.URL == "" && src.Database == "" && src.Schema == "" {
			return fmt.Errorf("sources[%d] (%s): database or schema is required for mysql", i, src.Key)
		}
	}

	if _, err := NewSink(c.Output.Format); err != nil {
		return err
	}
	if c.Output.Preview < 0 {
		return fmt.Errorf("output.preview must not be negative")
	}
	return nil
}

func (s SourceConfig) displayName() string {
	if s.Name == "" {
		return s.Key
	}
	return s.Name
}

// SourceList resolves the configured sources, in order.
func (c *Config) SourceList() []Source {
	sources := make([]Source, len(c.Sources))
	for i, s := range c.Sources {
		sources[i] = Source{
			Key:      s.Key,
			Name:     s.displayName(),
			Driver:   s.Driver,
			URL:      s.URL,
			Host:     s.Host,
			Port:     s.Port,
			User:     s.User,
			Password: s.Password,
			Database: s.Database,
			Schema:   s.Schema,
			SSLMode:  s.SSLMode,
		}
	}
	return sources
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	// If it's a pointer, get the element
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		switch field.Type.Kind() {
		case reflect.Struct:
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		case reflect.Slice, reflect.Map:
			// lists come from the config file only
			continue
		}

		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, field.Tag.Get("default"))
	}
}
