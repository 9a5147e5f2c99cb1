package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type API struct {
	v *viper.Viper
}

var _ APIConfig = API{}

// GetBaseURL returns the API root every resource path is appended to,
// without a trailing slash (e.g. "http://localhost:8080/api").
func (a API) GetBaseURL() string {
	return strings.TrimRight(a.v.GetString("api.base_url"), "/")
}

func (a API) GetRequestTimeout() time.Duration {
	if d := a.v.GetDuration("api.request_timeout"); d > 0 {
		return d
	}
	return 10 * time.Second
}

// GetExpiryThreshold is how close to expiry an access token may get before a
// proactive refresh is attempted.
func (a API) GetExpiryThreshold() time.Duration {
	if d := a.v.GetDuration("api.expiry_threshold"); d > 0 {
		return d
	}
	return 300 * time.Second
}

func (a API) GetDictionaryCacheTTL() time.Duration {
	return a.v.GetDuration("dictionary.cache_ttl")
}
