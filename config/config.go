package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/foomo/blocks/paste"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid config")

type Database struct {
	// Driver is sqlite or postgres
	Driver string
	DSN    string
}

type Media struct {
	// Driver is local or minio
	Driver string
	// Dir of the local driver
	Dir string
	// BaseURL media urls start with, minio falls back to its endpoint
	BaseURL   string
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type Paste struct {
	Sanitize bool
	Minify   bool
	Markdown bool
}

type Config struct {
	Addr        string
	MetricsAddr string
	LogLevel    string
	Database    Database
	Media       Media
	Paste       Paste
}

func Default() *Config {
	return &Config{
		Addr:        ":8080",
		MetricsAddr: ":9200",
		LogLevel:    "info",
		Database: Database{
			Driver: "sqlite",
			DSN:    "blocks.db",
		},
		Media: Media{
			Driver:  "local",
			Dir:     "media",
			BaseURL: "/media",
		},
		Paste: Paste{
			Sanitize: true,
			Minify:   true,
			Markdown: true,
		},
	}
}

func Get(filename string) (conf *Config, err error) {
	yamlBytes, errRead := os.ReadFile(filename)
	if errRead != nil {
		return nil, errRead
	}
	return Load(yamlBytes)
}

func Load(yamlBytes []byte) (conf *Config, err error) {
	conf = Default()
	errUnmarshal := yaml.Unmarshal(yamlBytes, conf)
	if errUnmarshal != nil {
		return nil, errUnmarshal
	}
	if errValidate := conf.Validate(); errValidate != nil {
		return nil, errValidate
	}
	return conf, nil
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("%w: unknown database driver %q", ErrInvalidConfig, c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("%w: database dsn must not be empty", ErrInvalidConfig)
	}
	switch c.Media.Driver {
	case "local":
		if c.Media.Dir == "" {
			return fmt.Errorf("%w: media dir must not be empty", ErrInvalidConfig)
		}
	case "minio":
		if c.Media.Endpoint == "" || c.Media.Bucket == "" {
			return fmt.Errorf("%w: minio needs an endpoint and a bucket", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown media driver %q", ErrInvalidConfig, c.Media.Driver)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return level, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return level, nil
}

func (p Paste) Options() paste.Options {
	return paste.Options{
		Sanitize: p.Sanitize,
		Minify:   p.Minify,
		Markdown: p.Markdown,
	}
}
