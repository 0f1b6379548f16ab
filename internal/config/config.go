package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type AppConfig struct {
	Port    int    `yaml:"port"`
	GinMode string `yaml:"gin_mode"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type StoreConfig struct {
	Driver string      `yaml:"driver"`
	DSN    string      `yaml:"dsn"`
	Redis  RedisConfig `yaml:"redis"`
}

type BackendConfig struct {
	Mode    string `yaml:"mode"`
	BaseURL string `yaml:"base_url"`
}

type TokenConfig struct {
	Secret string `yaml:"secret"`
	Issuer string `yaml:"issuer"`
	TTL    string `yaml:"ttl"`
}

type OTPConfig struct {
	AcceptedCode string `yaml:"accepted_code"`
	SendLatency  string `yaml:"send_latency"`
	ResendWindow string `yaml:"resend_window"`
}

type TwilioConfig struct {
	AccountSID string `yaml:"account_sid"`
	AuthToken  string `yaml:"auth_token"`
	FromNumber string `yaml:"from_number"`
}

type ConfigFile struct {
	App     AppConfig     `yaml:"app"`
	Store   StoreConfig   `yaml:"store"`
	Backend BackendConfig `yaml:"backend"`
	Token   TokenConfig   `yaml:"token"`
	OTP     OTPConfig     `yaml:"otp"`
	Twilio  TwilioConfig  `yaml:"twilio"`
}

type Config struct {
	Port    string
	GinMode string

	StoreDriver   string
	DSN           string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	BackendMode    string
	BackendBaseURL string

	TokenSecret string
	TokenIssuer string
	TokenTTL    time.Duration

	OTPAcceptedCode string
	OTPSendLatency  time.Duration
	OTPResendWindow time.Duration

	TwilioSID   string
	TwilioToken string
	TwilioFrom  string
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func Load() (*Config, error) {
	configFile, err := loadConfigFile(env("CONFIG_PATH", "config/config.yml"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	tokenTTL, err := time.ParseDuration(configFile.Token.TTL)
	if err != nil {
		return nil, fmt.Errorf("invalid token TTL: %w", err)
	}

	sendLatency, err := time.ParseDuration(configFile.OTP.SendLatency)
	if err != nil {
		return nil, fmt.Errorf("invalid OTP send latency: %w", err)
	}

	resendWindow, err := time.ParseDuration(configFile.OTP.ResendWindow)
	if err != nil {
		return nil, fmt.Errorf("invalid OTP resend window: %w", err)
	}

	return &Config{
		Port:            fmt.Sprintf("%d", configFile.App.Port),
		GinMode:         configFile.App.GinMode,
		StoreDriver:     configFile.Store.Driver,
		DSN:             configFile.Store.DSN,
		RedisAddr:       configFile.Store.Redis.Addr,
		RedisPassword:   configFile.Store.Redis.Password,
		RedisDB:         configFile.Store.Redis.DB,
		BackendMode:     configFile.Backend.Mode,
		BackendBaseURL:  configFile.Backend.BaseURL,
		TokenSecret:     env("TOKEN_SECRET", configFile.Token.Secret),
		TokenIssuer:     configFile.Token.Issuer,
		TokenTTL:        tokenTTL,
		OTPAcceptedCode: configFile.OTP.AcceptedCode,
		OTPSendLatency:  sendLatency,
		OTPResendWindow: resendWindow,
		TwilioSID:       env("TWILIO_ACCOUNT_SID", configFile.Twilio.AccountSID),
		TwilioToken:     env("TWILIO_AUTH_TOKEN", configFile.Twilio.AuthToken),
		TwilioFrom:      env("TWILIO_FROM_NUMBER", configFile.Twilio.FromNumber),
	}, nil
}

func loadConfigFile(path string) (*ConfigFile, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config file at %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(bytes, &config); err != nil {
		return nil, fmt.Errorf("could not parse config yaml: %w", err)
	}

	return &config, nil
}
