// Package config loads and validates the naming server's and storage
// server's runtime configuration: viper for file/env layering,
// mapstructure decode hooks, and struct-tag validation.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/distfs/distfs/internal/logger"
)

// decodeHooks is a composed mapstructure hook chain so config files can
// use human-friendly scalar forms (e.g. durations, comma-separated lists)
// if a future field needs them, without changing how Load's callers
// unmarshal.
func decodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
}

// LoggingConfig holds the fields the logger consumes.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`
}

func (l LoggingConfig) toLoggerConfig() logger.Config {
	return logger.Config{Level: strings.ToUpper(l.Level), Format: l.Format, Output: "stdout"}
}

// AdminConfig controls the naming server's HTTP admin API.
type AdminConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	Port    int  `mapstructure:"port" validate:"required_if=Enabled true,omitempty,gt=0,lt=65536" yaml:"port"`
}

// NamingServerConfig is the naming server's full runtime configuration.
type NamingServerConfig struct {
	ListenPort         int           `mapstructure:"listen_port" validate:"required,gt=0,lt=65536" yaml:"listen_port"`
	AccessFilePath     string        `mapstructure:"access_file" validate:"required" yaml:"access_file"`
	DangerousAllowExec bool          `mapstructure:"dangerous_allow_exec" yaml:"dangerous_allow_exec"`
	Admin              AdminConfig   `mapstructure:"admin" yaml:"admin"`
	Logging            LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// StorageServerConfig is one storage server process's runtime configuration.
type StorageServerConfig struct {
	NMAddr      string        `mapstructure:"nm_addr" validate:"required" yaml:"nm_addr"`
	NMPort      int           `mapstructure:"nm_port" validate:"required,gt=0,lt=65536" yaml:"nm_port"`
	ClientPort  int           `mapstructure:"client_port" validate:"required,gt=0,lt=65536" yaml:"client_port"`
	AdvertiseIP string        `mapstructure:"advertise_ip" validate:"required,ip" yaml:"advertise_ip"`
	StorageDir  string        `mapstructure:"storage_dir" validate:"required" yaml:"storage_dir"`
	Logging     LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

func defaultNamingServerConfig() NamingServerConfig {
	return NamingServerConfig{
		ListenPort:     8000,
		AccessFilePath: "distfs-nm-access.db",
		Admin:          AdminConfig{Enabled: false, Port: 9000},
		Logging:        LoggingConfig{Level: "INFO", Format: "text"},
	}
}

func defaultStorageServerConfig() StorageServerConfig {
	return StorageServerConfig{
		NMAddr:      "127.0.0.1:8000",
		NMPort:      9001,
		ClientPort:  9002,
		AdvertiseIP: "127.0.0.1",
		StorageDir:  "distfs-ss-data",
		Logging:     LoggingConfig{Level: "INFO", Format: "text"},
	}
}

// LoadNamingServer reads the naming server config from file (if present) and
// DISTFS_NM_-prefixed environment overrides, applying defaults and then
// validating. Environment overrides are applied only when a config file was
// read, and only to keys that file sets; with no file, the defaults are used
// as they are.
func LoadNamingServer(configPath string) (*NamingServerConfig, error) {
	cfg := defaultNamingServerConfig()
	v := newViper("DISTFS_NM", configPath)

	found, err := readIfPresent(v, configPath)
	if err != nil {
		return nil, err
	}
	if found {
		if err := v.Unmarshal(&cfg, viper.DecodeHook(decodeHooks())); err != nil {
			return nil, fmt.Errorf("config: unmarshal naming server config: %w", err)
		}
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config: invalid naming server config: %w", err)
	}
	return &cfg, nil
}

// LoadStorageServer is LoadNamingServer's storage-server counterpart
// (DISTFS_SS_-prefixed environment overrides, with the same limits).
func LoadStorageServer(configPath string) (*StorageServerConfig, error) {
	cfg := defaultStorageServerConfig()
	v := newViper("DISTFS_SS", configPath)

	found, err := readIfPresent(v, configPath)
	if err != nil {
		return nil, err
	}
	if found {
		if err := v.Unmarshal(&cfg, viper.DecodeHook(decodeHooks())); err != nil {
			return nil, fmt.Errorf("config: unmarshal storage server config: %w", err)
		}
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config: invalid storage server config: %w", err)
	}
	return &cfg, nil
}

var validate = validator.New()

func newViper(envPrefix, configPath string) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if configPath != "" {
		v.SetConfigFile(configPath)
	}
	return v
}

func readIfPresent(v *viper.Viper, configPath string) (bool, error) {
	if configPath == "" {
		return false, nil
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		return false, fmt.Errorf("config: read %s: %w", configPath, err)
	}
	return true, nil
}

// InitLogging wires a LoggingConfig into the process-wide logger.
func InitLogging(l LoggingConfig) error {
	return logger.Init(l.toLoggerConfig())
}
