package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

type StorageConfig interface {
	GetStorageDriver() string
	GetStoragePath() string
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
}

type Storage struct {
	v *viper.Viper
}

var _ StorageConfig = Storage{}

// GetStorageDriver is one of memory, file, redis or sqlite.
func (s Storage) GetStorageDriver() string {
	return s.v.GetString("storage.driver")
}

func (s Storage) GetStoragePath() string {
	return s.v.GetString("storage.path")
}

func (s Storage) GetRedisAddr() string {
	return s.v.GetString("storage.redis_addr")
}

func (s Storage) GetRedisPassword() string {
	return s.v.GetString("storage.redis_password")
}

func (s Storage) GetRedisDB() int {
	return s.v.GetInt("storage.redis_db")
}

func defaultStoragePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./waterctl-state.yaml"
	}
	return filepath.Join(home, ".waterctl", "state.yaml")
}
