// Package config loads service configuration using koanf.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// FileEnv names the optional YAML config file.
const FileEnv = "APP_CONFIG_FILE"

const envPrefix = "APP_"

// Config is the root configuration structure.
type Config struct {
	HTTP      HTTPConfig      `koanf:"http"`
	DB        DBConfig        `koanf:"db"`
	Auth      AuthConfig      `koanf:"auth"`
	CORS      CORSConfig      `koanf:"cors"`
	RateLimit RateLimitConfig `koanf:"ratelimit"`
	Log       LogConfig       `koanf:"log"`
}

type HTTPConfig struct {
	Addr    string        `koanf:"addr"    validate:"required"`
	MaxBody int64         `koanf:"maxbody" validate:"min=1"`
	HSTS    bool          `koanf:"hsts"`
	Drain   time.Duration `koanf:"drain"   validate:"min=0"`
}

type DBConfig struct {
	DSN     string        `koanf:"dsn"     validate:"required"`
	Timeout time.Duration `koanf:"timeout" validate:"min=100ms"`
}

type AuthConfig struct {
	Secret    string        `koanf:"secret"    validate:"required"`
	AccessTTL time.Duration `koanf:"accessttl" validate:"min=1m"`
}

type CORSConfig struct {
	// Origins is a comma separated allow list.
	Origins string `koanf:"origins"`
}

// OriginList splits Origins into trimmed, non-empty entries.
func (c CORSConfig) OriginList() []string {
	var out []string
	for _, o := range strings.Split(c.Origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

type RateLimitConfig struct {
	RPS   float64 `koanf:"rps"   validate:"gt=0"`
	Burst int     `koanf:"burst" validate:"min=1"`
}

type LogConfig struct {
	Level  string `koanf:"level"  validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=console json"`
	// File enables a rotating log file in addition to stdout.
	File string `koanf:"file"`
}

func defaults() map[string]any {
	return map[string]any{
		"http.addr":       ":8080",
		"http.maxbody":    int64(1 << 20),
		"http.hsts":       false,
		"http.drain":      "10s",
		"db.timeout":      "3s",
		"auth.accessttl":  "15m",
		"cors.origins":    "http://localhost:3000",
		"ratelimit.rps":   10.0,
		"ratelimit.burst": 20,
		"log.level":       "info",
		"log.format":      "console",
		"log.file":        "",
	}
}

// LoadEnvFiles loads .env and .env.local without overriding variables
// already present in the environment.
func LoadEnvFiles() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")
}

// Load builds the configuration from defaults, an optional YAML file and the
// APP_ prefixed environment, in increasing order of precedence.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path := os.Getenv(FileEnv); path != "" {
		if err := loadFileIfExists(k, path); err != nil {
			return nil, fmt.Errorf("loading config file %q: %w", path, err)
		}
	}

	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func loadFileIfExists(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return k.Load(file.Provider(path), yaml.Parser())
}
