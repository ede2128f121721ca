package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Server     Server     `yaml:"server"`
	Logger     Logger     `yaml:"logger"`
	Store      Store      `yaml:"store"`
	PostgresDB PostgresDB `yaml:"db"`
	RedisStore RedisStore `yaml:"rdb"`
	Sync       Sync       `yaml:"sync"`
	TextGen    TextGen    `yaml:"textgen"`
}

type Server struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	IdleTimeout  time.Duration `yaml:"idleTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
}

type Logger struct {
	Level     string   `yaml:"level"`
	Output    []string `yaml:"output"`
	ErrOutput []string `yaml:"errOutput"`
}

// Store selects the snapshot backend: "postgres" or "redis".
type Store struct {
	Backend string `env-default:"postgres" yaml:"backend"`
}

type PostgresDB struct {
	Addr     string `yaml:"addr"`
	Username string `env:"POSTGRES_USER"     env-required:"true" yaml:"username"`
	Password string `env:"POSTGRES_PASSWORD" yaml:"password"`
	DB       string `env:"POSTGRES_DB"       env-required:"true" yaml:"db"`
	SSLmode  string `yaml:"sslmode"`
	MaxConns string `yaml:"maxConns"`
	Reload   bool   `yaml:"reload"`
	Version  int    `yaml:"version"`
}

type RedisStore struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// Sync holds the fallback sheet endpoint. The operator-configured URL stored
// in the record store wins over this value when present.
type Sync struct {
	SheetURL string        `yaml:"sheetUrl"`
	Timeout  time.Duration `yaml:"timeout"`
}

type TextGen struct {
	URL     string        `env:"TEXTGEN_URL"     yaml:"url"`
	APIKey  string        `env:"TEXTGEN_API_KEY" yaml:"apiKey"`
	Timeout time.Duration `yaml:"timeout"`
}

func New(configPath string) (Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return Config{}, fmt.Errorf("read config error: %w", err)
	}

	return cfg, nil
}
