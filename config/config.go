package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Storage   StorageConfig   `yaml:"storage"`
	JWT       JWTConfig       `yaml:"jwt"`
	Thumbnail ThumbnailConfig `yaml:"thumbnail"`
	Vault     VaultConfig     `yaml:"vault"`
	Memories  MemoriesConfig  `yaml:"memories"`
	LogLevel  string          `yaml:"log_level"`
}

type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

type DatabaseConfig struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
	Database     string `yaml:"database"`
	Charset      string `yaml:"charset"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}

type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type StorageConfig struct {
	BasePath          string   `yaml:"base_path"`
	MaxFileSize       int64    `yaml:"max_file_size"`
	AllowedExtensions []string `yaml:"allowed_extensions"`
}

type JWTConfig struct {
	Secret      string `yaml:"secret"`
	ExpireHours int    `yaml:"expire_hours"`
}

type ThumbnailConfig struct {
	Width   int `yaml:"width"`
	Height  int `yaml:"height"`
	Quality int `yaml:"quality"`
}

type VaultConfig struct {
	KDFIterations     int `yaml:"kdf_iterations"`
	MaxUnlockFailures int `yaml:"max_unlock_failures"`
	FailureWindowSecs int `yaml:"failure_window_secs"`
}

type MemoriesConfig struct {
	Enabled       bool `yaml:"enabled"`
	IntervalHours int  `yaml:"interval_hours"`
}

var AppConfig *Config

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	AppConfig = &cfg
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Storage.MaxFileSize == 0 {
		cfg.Storage.MaxFileSize = 100 * 1024 * 1024
	}
	if len(cfg.Storage.AllowedExtensions) == 0 {
		cfg.Storage.AllowedExtensions = []string{"jpg", "jpeg", "png", "webp"}
	}
	if cfg.Thumbnail.Width == 0 {
		cfg.Thumbnail.Width = 250
	}
	if cfg.Thumbnail.Height == 0 {
		cfg.Thumbnail.Height = 250
	}
	if cfg.Thumbnail.Quality == 0 {
		cfg.Thumbnail.Quality = 85
	}
	// PBKDF2 iteration floor, lowering it via config is not allowed.
	if cfg.Vault.KDFIterations < 100000 {
		cfg.Vault.KDFIterations = 100000
	}
	if cfg.Vault.MaxUnlockFailures == 0 {
		cfg.Vault.MaxUnlockFailures = 5
	}
	if cfg.Vault.FailureWindowSecs == 0 {
		cfg.Vault.FailureWindowSecs = 300
	}
	if cfg.JWT.ExpireHours == 0 {
		cfg.JWT.ExpireHours = 24
	}
	if cfg.Memories.IntervalHours == 0 {
		cfg.Memories.IntervalHours = 24
	}
}
