package config

import "github.com/spf13/viper"

type SecurityConfig interface {
	GetCredentialsPassphrase() string
}

type Security struct {
	v *viper.Viper
}

var _ SecurityConfig = Security{}

// GetCredentialsPassphrase seals remembered login credentials. Empty disables
// remembering credentials.
func (s Security) GetCredentialsPassphrase() string {
	return s.v.GetString("security.credentials_passphrase")
}
