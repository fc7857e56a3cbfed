package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the notification service.
type Config struct {
	AppName         string
	AppEnv          string
	AppPort         string
	DatabaseURL     string
	RedisURL        string
	NATSURL         string
	JWTSecret       string
	SweepInterval   time.Duration
	SendTimeout     time.Duration
	DispatchWorkers int
	SSEKeepAlive    time.Duration
	SMTPHost        string
	SMTPPort        int
	SMTPUsername    string
	SMTPPassword    string
	SMTPFrom        string
	SMSGatewayURL   string
	SMSGatewayKey   string
	SMSFrom         string
	PushSubject     string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// EmailConfigured reports whether an SMTP relay has been provided.
func (c Config) EmailConfigured() bool {
	return c.SMTPHost != "" && c.SMTPFrom != ""
}

// SMSConfigured reports whether an SMS gateway has been provided.
func (c Config) SMSConfigured() bool {
	return c.SMSGatewayURL != ""
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("NOTIFY")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "GEMA Notify")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("sweep.interval", "1m")
	v.SetDefault("send.timeout", "10s")
	v.SetDefault("dispatch.workers", 8)
	v.SetDefault("sse.keepalive", "30s")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("sms.from", "GEMA")
	v.SetDefault("push.subject", "gema.notify.push")

	sweepInterval, err := time.ParseDuration(v.GetString("sweep.interval"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid sweep interval: %w", err)
	}

	sendTimeout, err := time.ParseDuration(v.GetString("send.timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid send timeout: %w", err)
	}

	keepAlive, err := time.ParseDuration(v.GetString("sse.keepalive"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid sse keepalive: %w", err)
	}

	cfg := Config{
		AppName:         v.GetString("app.name"),
		AppEnv:          v.GetString("app.env"),
		AppPort:         v.GetString("app.port"),
		DatabaseURL:     v.GetString("database.url"),
		RedisURL:        v.GetString("redis.url"),
		NATSURL:         v.GetString("nats.url"),
		JWTSecret:       v.GetString("jwt.secret"),
		SweepInterval:   sweepInterval,
		SendTimeout:     sendTimeout,
		DispatchWorkers: v.GetInt("dispatch.workers"),
		SSEKeepAlive:    keepAlive,
		SMTPHost:        v.GetString("smtp.host"),
		SMTPPort:        v.GetInt("smtp.port"),
		SMTPUsername:    v.GetString("smtp.username"),
		SMTPPassword:    v.GetString("smtp.password"),
		SMTPFrom:        v.GetString("smtp.from"),
		SMSGatewayURL:   v.GetString("sms.gateway_url"),
		SMSGatewayKey:   v.GetString("sms.gateway_key"),
		SMSFrom:         v.GetString("sms.from"),
		PushSubject:     v.GetString("push.subject"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}

	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 10 * time.Second
	}

	if cfg.DispatchWorkers <= 0 {
		cfg.DispatchWorkers = 8
	}

	return cfg, nil
}
