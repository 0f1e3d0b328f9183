package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	SourcePath string `mapstructure:"source_path" yaml:"source_path" validate:"required"`
	StartDate  string `mapstructure:"start_date" yaml:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate    string `mapstructure:"end_date" yaml:"end_date" validate:"omitempty,datetime=2006-01-02"`
	OutputDir  string `mapstructure:"output_dir" yaml:"output_dir"`

	// Source decoding
	Sheet              string `mapstructure:"sheet" yaml:"sheet"`
	Delimiter          string `mapstructure:"delimiter" yaml:"delimiter" validate:"omitempty,len=1"`
	DecimalSeparator   string `mapstructure:"decimal_separator" yaml:"decimal_separator" validate:"omitempty,len=1"`
	ThousandsSeparator string `mapstructure:"thousands_separator" yaml:"thousands_separator" validate:"omitempty,len=1"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level" validate:"omitempty,oneof=trace debug info warn error"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format" validate:"omitempty,oneof=console json"`

	// API server
	ServerHost string `mapstructure:"server_host" yaml:"server_host"`
	ServerPort int    `mapstructure:"server_port" yaml:"server_port" validate:"min=1,max=65535"`
}

// Keys lists every configuration key accepted by `config set`.
var Keys = []string{
	"source_path", "start_date", "end_date", "output_dir",
	"sheet", "delimiter", "decimal_separator", "thousands_separator",
	"log_level", "log_format", "server_host", "server_port",
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field formats and cross-field constraints.
func (c *Global) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.DecimalSeparator != "" && c.DecimalSeparator != "." && c.DecimalSeparator != "," {
		return fmt.Errorf("invalid config: decimal_separator must be '.' or ','")
	}
	// ISO dates compare lexically.
	if c.StartDate != "" && c.EndDate != "" && c.StartDate > c.EndDate {
		return fmt.Errorf("invalid config: start_date %s is after end_date %s", c.StartDate, c.EndDate)
	}
	return nil
}

// Rune returns the first rune of s, or 0 when s is empty.
func Rune(s string) rune {
	r, _ := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return 0
	}
	return r
}

// Addr returns the host:port the API server listens on.
func (c *Global) Addr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// Dir returns the default configuration directory, ~/.cafesales.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".cafesales"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.cafesales/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		path = filepath.Join(dir, "config.yaml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. Flags are applied by the caller.
func Load(cfgFile string) (*Global, error) {
	return load(cfgFile, true)
}

// LoadFile loads configuration from file and defaults only. It is the base
// that `config set` edits, so CAFESALES_* overrides are never persisted.
func LoadFile(cfgFile string) (*Global, error) {
	return load(cfgFile, false)
}

func load(cfgFile string, withEnv bool) (*Global, error) {
	v := viper.New()
	if withEnv {
		v.SetEnvPrefix("CAFESALES")
		v.AutomaticEnv()
	}

	v.SetDefault("source_path", "data/cafe_sales.csv")
	v.SetDefault("start_date", "")
	v.SetDefault("end_date", "")
	v.SetDefault("output_dir", "output")
	v.SetDefault("sheet", "")
	v.SetDefault("delimiter", "")
	v.SetDefault("decimal_separator", ".")
	v.SetDefault("thousands_separator", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("server_host", "127.0.0.1")
	v.SetDefault("server_port", 8050)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// optional read
		_ = v.ReadInConfig()
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// Set assigns a single key from its string form, as used by `config set`.
func (c *Global) Set(key, value string) error {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "source_path":
		c.SourcePath = value
	case "start_date":
		c.StartDate = value
	case "end_date":
		c.EndDate = value
	case "output_dir":
		c.OutputDir = value
	case "sheet":
		c.Sheet = value
	case "delimiter":
		c.Delimiter = value
	case "decimal_separator":
		c.DecimalSeparator = value
	case "thousands_separator":
		c.ThousandsSeparator = value
	case "log_level":
		c.LogLevel = strings.ToLower(value)
	case "log_format":
		c.LogFormat = strings.ToLower(value)
	case "server_host":
		c.ServerHost = value
	case "server_port":
		var p int
		if _, err := fmt.Sscanf(value, "%d", &p); err != nil {
			return fmt.Errorf("server_port must be an integer: %w", err)
		}
		c.ServerPort = p
	default:
		return fmt.Errorf("unknown config key %q (valid: %s)", key, strings.Join(Keys, ", "))
	}
	return nil
}
