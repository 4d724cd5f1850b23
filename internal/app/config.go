package app

import (
	"os"
	"path/filepath"

	"github.com/anthonyraymond/stompauth/internal/broker"
	"github.com/anthonyraymond/stompauth/internal/configloader"
	"github.com/anthonyraymond/stompauth/internal/utils/fileutils"
	"github.com/anthonyraymond/stompauth/pkg/auth/simple"
	"github.com/anthonyraymond/stompauth/pkg/logs"
	"github.com/pkg/errors"
)

type AppConfig struct {
	Log    *logs.LogConfig `yaml:"log" validate:"required"`
	Auth   *simple.Config  `yaml:"auth" validate:"-"`
	Broker *broker.Config  `yaml:"broker" validate:"required"`
}

// Return a new AppConfig with the default values filled in
func (ac AppConfig) Default() *AppConfig {
	return &AppConfig{
		Log:    logs.LogConfig{}.Default(),
		Auth:   simple.Config{}.Default(),
		Broker: broker.Config{}.Default(),
	}
}

// ParseConfigOverDefault reads the yaml config file over the default config. The auth
// section is not validated here: a missing auth file is reported by the authenticator
// bootstrap so that it surfaces as a missing configuration error.
func ParseConfigOverDefault(configFile string) (*AppConfig, error) {
	conf := AppConfig{}.Default()
	if err := configloader.ParseIntoDefault(configFile, conf); err != nil {
		return nil, err
	}
	return conf, nil
}

// WriteDefaultConfig creates configFile with the default config, pointing the auth
// file to authFile. An existing file is never overwritten.
func WriteDefaultConfig(configFile string, authFile string) error {
	if exists, err := fileutils.FileExists(configFile); err != nil {
		return err
	} else if exists {
		return errors.Errorf("config file '%s' already exists", configFile)
	}
	dir := filepath.Dir(configFile)
	if exists, err := fileutils.DirExists(dir); err != nil {
		return err
	} else if !exists {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, "failed to create folder '%s'", dir)
		}
	}

	conf := AppConfig{}.Default()
	conf.Auth.AuthFile = authFile
	return configloader.SaveToFile(configFile, conf)
}
