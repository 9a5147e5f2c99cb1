package config

import "github.com/spf13/viper"

type EnvVars struct {
	v *viper.Viper
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetAppName() string {
	return e.v.GetString("app_name")
}

func (e EnvVars) GetEnv() string {
	env := e.v.GetString("env")
	if env == "" {
		return "DEV"
	}
	return env
}

func (e EnvVars) GetLogLevel() string {
	return e.v.GetString("log_level")
}
