package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type (
	Config struct {
		HTTP      HTTP      `envPrefix:"HTTP_"`
		Logger    Logger    `envPrefix:"LOGGER_"`
		Telemetry Telemetry `envPrefix:"TELEMETRY_"`
		Metrics   Metrics   `envPrefix:"METRICS_"`
		Engine    Engine    `envPrefix:"ENGINE_"`
		Disk      Disk      `envPrefix:"DISK_"`
		Redis     Redis     `envPrefix:"REDIS_"`
		Providers Providers `envPrefix:"PROVIDERS_"`
	}

	HTTP struct {
		Server Server `envPrefix:"SERVER_"`
	}

	Server struct {
		Port            string        `env:"PORT" envDefault:"8080" validate:"required"`
		ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`
		WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"15s"`
		IdleTimeout     time.Duration `env:"IDLE_TIMEOUT" envDefault:"60s"`
		ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	}

	Logger struct {
		Level  string `env:"LEVEL" envDefault:"info"`
		Format string `env:"FORMAT" envDefault:"console" validate:"oneof=console json"`
	}

	Telemetry struct {
		Enabled        bool   `env:"ENABLED" envDefault:"false"`
		ServiceName    string `env:"SERVICE_NAME" envDefault:"tileengine"`
		ServiceVersion string `env:"SERVICE_VERSION" envDefault:"1.0.0"`
		Environment    string `env:"ENVIRONMENT" envDefault:"production"`
		OTLPEndpoint   string `env:"OTLP_ENDPOINT" envDefault:"otel-collector.observability.svc.cluster.local:4317"`
	}

	Metrics struct {
		Enabled bool `env:"ENABLED" envDefault:"true"`
	}

	Engine struct {
		MemoryCapacity   int           `env:"MEMORY_CAPACITY" envDefault:"50" validate:"min=1"`
		QueueCapacity    int           `env:"QUEUE_CAPACITY" envDefault:"30" validate:"min=1"`
		TilePixelWidth   int           `env:"TILE_PIXEL_WIDTH" envDefault:"300" validate:"gt=50"`
		FetchTimeout     time.Duration `env:"FETCH_TIMEOUT" envDefault:"30s"`
		DiscoveryTimeout time.Duration `env:"DISCOVERY_TIMEOUT" envDefault:"5s"`
		UserAgent        string        `env:"USER_AGENT" envDefault:"tileengine/1.0 (+https://github.com/jaennil/guide_helper)"`
		PassthroughURL   string        `env:"PASSTHROUGH_URL" validate:"omitempty,url"`
	}

	Disk struct {
		Enabled    bool   `env:"ENABLED" envDefault:"true"`
		Backend    string `env:"BACKEND" envDefault:"file" validate:"oneof=file sqlite redis memory"`
		Dir        string `env:"DIR" envDefault:"tilecache"`
		SQLitePath string `env:"SQLITE_PATH" envDefault:"tilecache.db"`
	}

	Redis struct {
		Addr     string        `env:"ADDR" envDefault:"localhost:6379"`
		Password string        `env:"PASSWORD" envDefault:""`
		DB       int           `env:"DB" envDefault:"0"`
		TTL      time.Duration `env:"TTL" envDefault:"0s"`
	}

	Providers struct {
		BingAPIKey       string `env:"BING_API_KEY"`
		BingCulture      string `env:"BING_CULTURE" envDefault:"en-GB"`
		CloudMadeAPIKey  string `env:"CLOUDMADE_API_KEY"`
		CloudMadeStyleID int    `env:"CLOUDMADE_STYLE_ID" envDefault:"1" validate:"min=1"`
	}
)

func New() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Printf("NOTICE: .env file not found or cannot be loaded: %v\n", err)
	}

	return Parse()
}

// Parse reads the configuration from the environment only.
func Parse() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, err
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}
