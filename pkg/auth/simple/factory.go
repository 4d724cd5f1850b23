package simple

import (
	"github.com/anthonyraymond/stompauth/pkg/auth"
	"github.com/anthonyraymond/stompauth/pkg/validationutils"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

const authFileSetting = "authFile"

type Config struct {
	AuthFile string `yaml:"authFile" validate:"required"`
}

// Return a new Config with the default values filled in
func (c Config) Default() *Config {
	return &Config{
		AuthFile: "",
	}
}

// NewFromConfig builds a SimpleAuthenticator from the auth file named in conf.
// A nil conf or an empty AuthFile is reported as a missing configuration.
func NewFromConfig(conf *Config) (*SimpleAuthenticator, error) {
	if conf == nil {
		return nil, auth.NewMissingConfigurationError(authFileSetting)
	}
	if err := validationutils.New().Struct(conf); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return nil, auth.NewMissingConfigurationError(authFileSetting)
		}
		return nil, errors.Wrap(err, "failed to validate auth config")
	}

	a := New(nil)
	if err := a.LoadFile(conf.AuthFile); err != nil {
		return nil, err
	}
	return a, nil
}
