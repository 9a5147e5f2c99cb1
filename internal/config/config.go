package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	envPrefix      = "WATERRES"
	configFileName = "waterctl"
)

type Config interface {
	EnvConfig
	APIConfig
	StorageConfig
	SecurityConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
}

type APIConfig interface {
	GetBaseURL() string
	GetRequestTimeout() time.Duration
	GetExpiryThreshold() time.Duration
	GetDictionaryCacheTTL() time.Duration
}

type mainConfig struct {
	EnvVars
	API
	Storage
	Security
}

// New reads configuration from the optional YAML file and WATERRES_* environment
// variables. An empty configFile searches the working directory and
// $HOME/.waterctl for waterctl.yaml.
func New(configFile string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(configFileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.waterctl")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || configFile != "" {
			return nil, errors.Wrap(err, "config.New ReadInConfig")
		}
	}

	return FromViper(v), nil
}

// FromViper wraps an already populated viper instance. Missing keys fall back
// to the package defaults.
func FromViper(v *viper.Viper) Config {
	setDefaults(v)
	return mainConfig{
		EnvVars:  EnvVars{v: v},
		API:      API{v: v},
		Storage:  Storage{v: v},
		Security: Security{v: v},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_name", "Water Resources")
	v.SetDefault("env", "DEV")
	v.SetDefault("log_level", "info")

	v.SetDefault("api.base_url", "http://localhost:8080/api")
	v.SetDefault("api.request_timeout", 10*time.Second)
	v.SetDefault("api.expiry_threshold", 300*time.Second)
	v.SetDefault("dictionary.cache_ttl", 5*time.Minute)

	v.SetDefault("storage.driver", "file")
	v.SetDefault("storage.path", defaultStoragePath())
	v.SetDefault("storage.redis_addr", "localhost:6379")
	v.SetDefault("storage.redis_db", 0)
}
