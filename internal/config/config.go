package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Env             string        `mapstructure:"ENV"`
	Port            string        `mapstructure:"PORT"`
	LogLevel        string        `mapstructure:"LOG_LEVEL"`
	CORSAllowed     string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	RequestTimeout  time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	MaxUploadSizeMB int64         `mapstructure:"MAX_UPLOAD_MB"`

	LocationBackend string `mapstructure:"LOCATION_BACKEND"`
	LocationsAPIURL string `mapstructure:"LOCATIONS_API_URL"`
	DatabaseURL     string `mapstructure:"DATABASE_URL"`

	NominatimURL         string        `mapstructure:"NOMINATIM_URL"`
	NominatimUserAgent   string        `mapstructure:"NOMINATIM_USER_AGENT"`
	NominatimMinInterval time.Duration `mapstructure:"NOMINATIM_MIN_INTERVAL"`

	NearbyRadiusMeters float64       `mapstructure:"NEARBY_RADIUS_METERS"`
	SessionTTL         time.Duration `mapstructure:"SESSION_TTL"`

	KafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	KafkaTopic   string `mapstructure:"KAFKA_TOPIC"`

	MinioEndpoint  string `mapstructure:"MINIO_ENDPOINT"`
	MinioAccessKey string `mapstructure:"MINIO_ACCESS_KEY"`
	MinioSecretKey string `mapstructure:"MINIO_SECRET_KEY"`
	MinioUseSSL    bool   `mapstructure:"MINIO_USE_SSL"`
	MinioBucket    string `mapstructure:"MINIO_BUCKET"`
	MinioRegion    string `mapstructure:"MINIO_REGION"`
	MinioPublicURL string `mapstructure:"MINIO_PUBLIC_URL"`

	MapTileURL     string  `mapstructure:"MAP_TILE_URL"`
	MapAttribution string  `mapstructure:"MAP_ATTRIBUTION"`
	MapCenterLat   float64 `mapstructure:"MAP_CENTER_LAT"`
	MapCenterLon   float64 `mapstructure:"MAP_CENTER_LON"`
	MapZoom        int     `mapstructure:"MAP_ZOOM"`
}

var defaults = map[string]any{
	"ENV":                    "dev",
	"PORT":                   "8080",
	"LOG_LEVEL":              "info",
	"CORS_ALLOWED_ORIGINS":   "*",
	"REQUEST_TIMEOUT":        "30s",
	"MAX_UPLOAD_MB":          10,
	"LOCATION_BACKEND":       "api",
	"LOCATIONS_API_URL":      "",
	"DATABASE_URL":           "",
	"NOMINATIM_URL":          "https://nominatim.openstreetmap.org",
	"NOMINATIM_USER_AGENT":   "spotfinder-backend/1.0",
	"NOMINATIM_MIN_INTERVAL": "1s",
	"NEARBY_RADIUS_METERS":   500.0,
	"SESSION_TTL":            "30m",
	"KAFKA_BROKERS":          "",
	"KAFKA_TOPIC":            "locations.created",
	"MINIO_ENDPOINT":         "",
	"MINIO_ACCESS_KEY":       "",
	"MINIO_SECRET_KEY":       "",
	"MINIO_USE_SSL":          false,
	"MINIO_BUCKET":           "location-photos",
	"MINIO_REGION":           "us-east-1",
	"MINIO_PUBLIC_URL":       "",
	"MAP_TILE_URL":           "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png",
	"MAP_ATTRIBUTION":        "&copy; OpenStreetMap contributors",
	"MAP_CENTER_LAT":         -14.235,
	"MAP_CENTER_LON":         -51.925,
	"MAP_ZOOM":               4,
}

// Load reads .env files (missing ones are skipped) and then the environment.
// Values already present in the environment win over .env entries.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
	}

	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
		if err := v.BindEnv(key); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	cfg.LocationBackend = strings.ToLower(strings.TrimSpace(cfg.LocationBackend))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.LocationBackend {
	case "api":
		if c.LocationsAPIURL == "" {
			return errors.New("LOCATIONS_API_URL is required for LOCATION_BACKEND=api")
		}
	case "postgres":
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for LOCATION_BACKEND=postgres")
		}
	case "memory":
	default:
		return errors.New("LOCATION_BACKEND must be one of api, postgres, memory")
	}
	if c.NearbyRadiusMeters <= 0 {
		return errors.New("NEARBY_RADIUS_METERS must be positive")
	}
	return nil
}

func (c Config) KafkaBrokerList() []string {
	var out []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

func (c Config) PhotosEnabled() bool {
	return c.MinioEndpoint != "" && c.MinioAccessKey != "" && c.MinioSecretKey != ""
}
