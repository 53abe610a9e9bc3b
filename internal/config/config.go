package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const DefaultFile = "./.env"

var ErrConfig = errors.New("invalid configuration")

type Server struct {
	Host        string `envconfig:"SERVER_HOST" default:"127.0.0.1"`
	Port        string `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout int    `envconfig:"SERVER_TIMEOUT" default:"10"`
}

type Breaker struct {
	TimeInterval int    `envconfig:"BREAKER_INTERVAL" default:"30"`
	TimeTimeOut  int    `envconfig:"BREAKER_TIMEOUT" default:"10"`
	RepeatNumber uint32 `envconfig:"BREAKER_REPEAT_NUM" default:"5"`
}

// Redis is optional; an empty host disables the geocoding cache.
type Redis struct {
	Host     string `envconfig:"REDIS_HOST"`
	Port     string `envconfig:"REDIS_PORT" default:"6379"`
	DbType   int    `envconfig:"REDIS_DB_TYPE" default:"0"`
	LiveTime int    `envconfig:"REDIS_LIVE_TIME" default:"24"`
}

type Geocoder struct {
	URL       string  `envconfig:"NOMINATIM_URL" default:"https://nominatim.openstreetmap.org"`
	UserAgent string  `envconfig:"NOMINATIM_USER_AGENT" default:"weather-viewer/1.0"`
	Language  string  `envconfig:"NOMINATIM_LANGUAGE" default:"en"`
	RPS       float64 `envconfig:"NOMINATIM_RPS" default:"1"`
}

type Config struct {
	OpenWeatherMapAPIKey string `envconfig:"OPEN_WEATHER_MAP_API_KEY" required:"true"`
	OpenWeatherMapURL    string `envconfig:"OPEN_WEATHER_MAP_URL" default:"https://api.openweathermap.org/data/2.5"`

	// RequestTimeout bounds each upstream call, in seconds.
	RequestTimeout int `envconfig:"REQUEST_TIMEOUT" default:"10"`

	// RefreshSpec is a cron spec for re-running the last search; empty disables it.
	RefreshSpec string `envconfig:"REFRESH_SPEC"`

	Server   Server
	Breaker  Breaker
	Redis    Redis
	Geocoder Geocoder

	LogsPath     string `envconfig:"LOGS_PATH" default:"./log/weather-viewer.log"`
	HTTPLogsPath string `envconfig:"HTTP_LOGS_PATH" default:"./log/weather-viewer-http.log"`
}

// Load reads the key-value file once, exports its entries into the process
// environment and decodes the result. A missing file or API key is an ErrConfig.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultFile
	}

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: config file %s: %w", ErrConfig, path, err)
	}

	if err := godotenv.Load(path); err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrConfig, path, err)
	}

	return NewConfig()
}

func NewConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	if strings.TrimSpace(cfg.OpenWeatherMapAPIKey) == "" {
		return nil, fmt.Errorf("%w: OPEN_WEATHER_MAP_API_KEY must not be blank", ErrConfig)
	}
	if cfg.RequestTimeout <= 0 {
		return nil, fmt.Errorf("%w: REQUEST_TIMEOUT must be positive", ErrConfig)
	}
	return &cfg, nil
}

func (c *Config) ServerAddress() string {
	return c.Server.Host + ":" + c.Server.Port
}

func (c *Config) Timeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

func (r Redis) Enabled() bool {
	return r.Host != ""
}

func (r Redis) Address() string {
	return r.Host + ":" + r.Port
}
