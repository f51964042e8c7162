package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sir_venger/cactus/pkg/dropproto"
)

type Config struct {
	Port           int           `yaml:"port" json:"port"`
	UploadDir      string        `yaml:"upload_dir" json:"upload_dir"`
	StagingDir     string        `yaml:"staging_dir" json:"staging_dir"`
	StagingTTL     time.Duration `yaml:"staging_ttl" json:"staging_ttl"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes" json:"max_upload_bytes"`
	Instance       string        `yaml:"instance" json:"instance"`
	Discovery      bool          `yaml:"discovery" json:"discovery"`
	ShowQR         bool          `yaml:"show_qr" json:"show_qr"`
	Log            LogConfig     `yaml:"log" json:"log"`
}

type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// Default возвращает конфигурацию, с которой сервер стартует без файла и переменных окружения.
func Default() *Config {
	return &Config{
		Port:       dropproto.DefaultPort,
		UploadDir:  "./",
		StagingDir: filepath.Join(os.TempDir(), "cactus-staging"),
		StagingTTL: 24 * time.Hour,
		Instance:   dropproto.Identifier,
		Discovery:  true,
		ShowQR:     true,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load читает YAML-конфигурацию поверх дефолтов, применяет ENV-переопределения и возвращает актуальную структуру.
// Отсутствующий файл не считается ошибкой: cactus должен работать без настройки.
func Load() (*Config, error) {
	c := Default()

	path := getenv("CONFIG_PATH", "./cactus.yaml")
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, err
	}

	if err := c.applyEnv(); err != nil {
		return nil, err
	}

	return c, nil
}

// ENV override
func (c *Config) applyEnv() error {
	if v := os.Getenv("CACTUS_PORT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CACTUS_PORT: %w", err)
		}
		c.Port = n
	}
	if v := os.Getenv("CACTUS_UPLOAD_DIR"); v != "" {
		c.UploadDir = v
	}
	if v := os.Getenv("CACTUS_STAGING_DIR"); v != "" {
		c.StagingDir = v
	}
	if v := os.Getenv("CACTUS_STAGING_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("CACTUS_STAGING_TTL: %w", err)
		}
		c.StagingTTL = d
	}
	if v := os.Getenv("CACTUS_MAX_UPLOAD_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("CACTUS_MAX_UPLOAD_BYTES: %w", err)
		}
		c.MaxUploadBytes = n
	}
	if v := os.Getenv("CACTUS_INSTANCE"); v != "" {
		c.Instance = v
	}
	if v := os.Getenv("CACTUS_DISCOVERY"); v != "" {
		c.Discovery = parseBool(v, c.Discovery)
	}
	if v := os.Getenv("CACTUS_SHOW_QR"); v != "" {
		c.ShowQR = parseBool(v, c.ShowQR)
	}
	if v := os.Getenv("CACTUS_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("CACTUS_LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}

	return nil
}

// Validate проверяет значения, без которых сервер не может стартовать.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if strings.TrimSpace(c.UploadDir) == "" {
		return fmt.Errorf("upload_dir is not configured")
	}
	if strings.TrimSpace(c.Instance) == "" {
		return fmt.Errorf("instance is not configured")
	}
	if c.MaxUploadBytes < 0 {
		return fmt.Errorf("max_upload_bytes must be >= 0")
	}

	return nil
}

func parseBool(s string, def bool) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return b
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}

	return def
}
