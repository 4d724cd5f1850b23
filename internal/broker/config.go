package broker

import (
	"math"
	"time"
)

type Config struct {
	Stomp     *StompConfig     `yaml:"stomp" validate:"required"`
	Http      *HttpConfig      `yaml:"http" validate:"required"`
	WebSocket *WebSocketConfig `yaml:"webSocket" validate:"required"`
}

// Return a new Config with the default values filled in
func (c Config) Default() *Config {
	return &Config{
		Stomp:     StompConfig{}.Default(),
		Http:      HttpConfig{}.Default(),
		WebSocket: WebSocketConfig{}.Default(),
	}
}

type StompConfig struct {
	Addr      string        `yaml:"addr" validate:"required"`
	HeartBeat time.Duration `yaml:"heartBeat" validate:"min=0"`
}

// Return a new StompConfig with the default values filled in
func (c StompConfig) Default() *StompConfig {
	return &StompConfig{
		Addr:      ":61613",
		HeartBeat: 30 * time.Second,
	}
}

type HttpConfig struct {
	Enabled                  bool          `yaml:"enabled"`
	Addr                     string        `yaml:"addr" validate:"required_if=Enabled true"`
	ReadTimeout              time.Duration `yaml:"readTimeout"`
	ReadHeaderTimeout        time.Duration `yaml:"readHeaderTimeout"`
	WriteTimeout             time.Duration `yaml:"writeTimeout"`
	IdleTimeout              time.Duration `yaml:"idleTimeout"`
	MaxHeaderBytes           int           `yaml:"maxHeaderBytes"`
	HttpApiUrl               string        `yaml:"httpApiUrl" validate:"startswith=/"`
	WsNegotiationEndpointUrl string        `yaml:"wsNegotiationEndpointUrl" validate:"startswith=/"`
	AllowedOrigins           []string      `yaml:"allowedOrigins,omitempty"`
}

// Return a new HttpConfig with the default values filled in
func (c HttpConfig) Default() *HttpConfig {
	return &HttpConfig{
		Enabled:                  false,
		Addr:                     ":15674",
		ReadTimeout:              15 * time.Second,
		ReadHeaderTimeout:        15 * time.Second,
		WriteTimeout:             15 * time.Second,
		IdleTimeout:              60 * time.Second,
		MaxHeaderBytes:           0,
		HttpApiUrl:               "/api",
		WsNegotiationEndpointUrl: "/ws",
		AllowedOrigins:           nil,
	}
}

type WebSocketConfig struct {
	AcceptedSubProtocols []string `yaml:"acceptedSubProtocols"`
	InsecureSkipVerify   bool     `yaml:"insecureSkipVerify"`
	OriginPatterns       []string `yaml:"originPatterns,omitempty"`
	MaxReadLimit         int32    `yaml:"maxReadLimit" validate:"min=0"`
}

// Return a new WebSocketConfig with the default values filled in
func (c WebSocketConfig) Default() *WebSocketConfig {
	return &WebSocketConfig{
		AcceptedSubProtocols: []string{"v12.stomp", "v11.stomp", "v10.stomp"},
		InsecureSkipVerify:   false,
		OriginPatterns:       nil,
		MaxReadLimit:         math.MaxInt32,
	}
}
