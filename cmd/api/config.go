package main

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type config struct {
	Addr           string        `envconfig:"ADDR" default:":8080"`
	Env            string        `envconfig:"ENV" default:"development"`
	APIURL         string        `envconfig:"EXTERNAL_URL" default:"localhost:8080"`
	LogLevel       string        `envconfig:"LOG_LEVEL" default:"info"`
	Timezone       string        `envconfig:"TIMEZONE" default:"UTC"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"15s"`
	HashidsSalt    string        `envconfig:"HASHIDS_SALT" default:"turfbook"`

	DB          dbConfig          `envconfig:"DB"`
	Auth        authConfig        `envconfig:"AUTH"`
	RateLimiter rateLimiterConfig `envconfig:"RATE_LIMITER"`
	Redis       redisConfig       `envconfig:"REDIS"`
	AMQP        amqpConfig        `envconfig:"AMQP"`
	Mail        mailConfig        `envconfig:"SMTP"`

	CloudinaryURL   string `envconfig:"CLOUDINARY_URL"`
	ExpoAccessToken string `envconfig:"EXPO_ACCESS_TOKEN"`
}

type dbConfig struct {
	Addr        string `envconfig:"ADDR" required:"true"`
	MaxConns    int32  `envconfig:"MAX_CONNS" default:"30"`
	MaxIdleTime string `envconfig:"MAX_IDLE_TIME" default:"15m"`
}

type authConfig struct {
	Basic basicConfig `envconfig:"BASIC"`
	Token tokenConfig `envconfig:"TOKEN"`
}

type basicConfig struct {
	User string `envconfig:"USER" default:"admin"`
	Pass string `envconfig:"PASS"`
}

type tokenConfig struct {
	Secret        string        `envconfig:"SECRET" required:"true"`
	RefreshSecret string        `envconfig:"REFRESH_SECRET" required:"true"`
	AccessExp     time.Duration `envconfig:"ACCESS_EXP" default:"72h"`
	RefreshExp    time.Duration `envconfig:"REFRESH_EXP" default:"216h"`
	Iss           string        `envconfig:"ISS" default:"turfbook"`
}

type rateLimiterConfig struct {
	Enabled              bool          `envconfig:"ENABLED" default:"false"`
	RequestsPerTimeFrame int           `envconfig:"REQUESTS_COUNT" default:"200"`
	TimeFrame            time.Duration `envconfig:"TIME_FRAME" default:"5s"`
}

type redisConfig struct {
	Addr     string `envconfig:"ADDR"`
	Password string `envconfig:"PASSWORD"`
	DB       int    `envconfig:"DB" default:"0"`
}

type amqpConfig struct {
	URL      string `envconfig:"URL"`
	Exchange string `envconfig:"EXCHANGE" default:"turfbook.events"`
}

type mailConfig struct {
	Host      string `envconfig:"HOST"`
	Port      int    `envconfig:"PORT" default:"587"`
	Username  string `envconfig:"USERNAME"`
	Password  string `envconfig:"PASSWORD"`
	FromEmail string `envconfig:"FROM"`
}

// loadConfig reads the process environment. Values from .env are already in
// the environment by the time this runs.
func loadConfig() (config, error) {
	var cfg config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return cfg, fmt.Errorf("load config: invalid TIMEZONE %q: %w", cfg.Timezone, err)
	}
	return cfg, nil
}
