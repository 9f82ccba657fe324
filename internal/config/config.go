package config

import (
	"log"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	JWTSecret       string
	JWTUser         string
	JWTPassword     string
	ProviderTimeout time.Duration
	ScanConcurrency int
	ProgressEvery   int
	TLSCertFile     string
	TLSKeyFile      string
	FareAPIHost     string
	FareAPIToken    string
}

func Load() *Config {
	v := viper.New()

	v.SetDefault("auth_user", "demo")
	v.SetDefault("auth_pass", "demo123")
	v.SetDefault("provider_timeout", "30s")
	// 1 reproduces the strictly sequential scan; raise to overlap provider calls
	v.SetDefault("scan_concurrency", 1)
	v.SetDefault("progress_every", 10)

	v.SetDefault("fareapi_host", "https://api.fareapi.dev")

	if path := os.Getenv("FLIGHTSCAN_CONFIG"); path != "" {
		v.SetConfigFile(path)
	} else {
		// Fallback to conventional locations for local dev
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/flightscan")
	}

	if err := v.ReadInConfig(); err != nil {
		log.Printf("no config file found, using defaults + env vars: %v", err)
	}

	v.AutomaticEnv()

	to, err := time.ParseDuration(v.GetString("provider_timeout"))
	if err != nil {
		log.Fatalf("bad provider_timeout: %v", err)
	}

	cfg := &Config{
		JWTSecret:       v.GetString("jwt_secret"),
		JWTUser:         v.GetString("auth_user"),
		JWTPassword:     v.GetString("auth_pass"),
		ProviderTimeout: to,
		ScanConcurrency: v.GetInt("scan_concurrency"),
		ProgressEvery:   v.GetInt("progress_every"),
		TLSCertFile:     os.Getenv("TLS_CERT_FILE"),
		TLSKeyFile:      os.Getenv("TLS_KEY_FILE"),
		FareAPIHost:     v.GetString("fareapi_host"),
		FareAPIToken:    v.GetString("fareapi_token"),
	}

	if cfg.ScanConcurrency < 1 {
		cfg.ScanConcurrency = 1
	}
	if cfg.ProgressEvery < 1 {
		cfg.ProgressEvery = 10
	}

	return cfg
}
