package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App     AppConfig     `yaml:"app"`
	Learn   LearnConfig   `yaml:"learn"`
	Storage StorageConfig `yaml:"storage"`
	Logging LoggingConfig `yaml:"logging"`
}

// AppConfig controls the extraction run itself. Batch sizes of zero or
// less disable the corresponding rotation or throttle check.
type AppConfig struct {
	DataDelimiter         string        `yaml:"data_delimiter"`
	CourseIDContains      string        `yaml:"course_id_contains"`
	MaxCourses            int           `yaml:"max_courses"`
	WSClientBatchSize     int           `yaml:"ws_client_batch_size"`
	WSClientBatchDelay    time.Duration `yaml:"ws_client_batch_delay"`
	BatchWaitSize         int           `yaml:"batch_wait_size"`
	BatchWaitDelay        time.Duration `yaml:"batch_wait_delay"`
	FilterOnExternalGrade bool          `yaml:"filter_on_external_grade"`
	OutputFile            string        `yaml:"output_file"`
	OutputFormat          string        `yaml:"output_format"`
}

// LearnConfig points the gateway at the remote learning-management
// service. Credentials may be overridden via LEARN_USERNAME and
// LEARN_PASSWORD at startup.
type LearnConfig struct {
	BaseURL        string        `yaml:"base_url"`
	AuthEndpoint   string        `yaml:"auth_endpoint"`
	LogoutEndpoint string        `yaml:"logout_endpoint"`
	Username       string        `yaml:"username"`
	Password       string        `yaml:"password"`
	Timeout        time.Duration `yaml:"timeout"`
}

type StorageConfig struct {
	S3 S3Config `yaml:"s3"`
}

type S3Config struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	UseSSL    bool   `yaml:"use_ssl"`
	KeyPrefix string `yaml:"key_prefix"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

const (
	FormatDelimited = "delimited"
	FormatXLSX      = "xlsx"

	// StdoutTarget as the output file (case-insensitive) writes the
	// report to standard output with no staging or rename step.
	StdoutTarget = "STDOUT"
)

// Load reads the configuration file at path. Keys absent from the file
// keep their defaults; a max_courses of -1 means unlimited.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := defaults()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.App.DataDelimiter = strings.TrimSpace(config.App.DataDelimiter)
	config.App.CourseIDContains = strings.TrimSpace(config.App.CourseIDContains)

	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func defaults() *Config {
	return &Config{
		App: AppConfig{
			DataDelimiter: "|",
			MaxCourses:    -1,
			OutputFile:    StdoutTarget,
			OutputFormat:  FormatDelimited,
		},
		Learn: LearnConfig{
			AuthEndpoint:   "/learn/api/auth/login",
			LogoutEndpoint: "/learn/api/auth/logout",
			Timeout:        60 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

func (c *Config) validate() error {
	if c.App.DataDelimiter == "" {
		return fmt.Errorf("app.data_delimiter must not be empty")
	}
	switch c.App.OutputFormat {
	case FormatDelimited, FormatXLSX:
	default:
		return fmt.Errorf("app.output_format %q is not supported", c.App.OutputFormat)
	}
	if c.App.OutputFile == "" {
		return fmt.Errorf("app.output_file must not be empty")
	}
	return nil
}

// IsStdout reports whether the report goes to standard output.
func (c *Config) IsStdout() bool {
	return strings.EqualFold(strings.TrimSpace(c.App.OutputFile), StdoutTarget)
}
