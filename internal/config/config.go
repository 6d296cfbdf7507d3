package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	BucketResources = "resources"
	BucketAvatars   = "avatars"
	BucketBadges    = "badges"
	BucketCourses   = "courses"
)

type Config struct {
	Env        string     `yaml:"env" env-default:"local"`
	HTTPServer HTTPServer `yaml:"http_server"`
	Postgres   Postgres   `yaml:"postgres"`
	JWT        JWT        `yaml:"jwt"`
	ES         ES         `yaml:"elasticsearch"`
	Minio      Minio      `yaml:"minio"`
	Redis      Redis      `yaml:"redis"`
	Progress   Progress   `yaml:"progress"`
}

type Minio struct {
	Endpoint  string                  `yaml:"endpoint" env:"MINIO_ENDPOINT" env-default:"minio:9000"`
	AccessKey string                  `yaml:"access_key" env:"MINIO_ACCESS_KEY"`
	SecretKey string                  `yaml:"secret_key" env:"MINIO_SECRET_KEY"`
	UseSSL    bool                    `yaml:"use_ssl" env:"MINIO_USE_SSL"`
	Buckets   map[string]BucketConfig `yaml:"buckets"`
}

type BucketConfig struct {
	Name       string        `yaml:"name"`
	PresignTTL time.Duration `yaml:"presign_ttl"`
}

// Bucket returns the configured bucket for key, falling back to a bucket
// named after the key with a one hour presign TTL.
func (m Minio) Bucket(key string) BucketConfig {
	b, ok := m.Buckets[key]
	if !ok || b.Name == "" {
		b.Name = "civiclearn-" + key
	}
	if b.PresignTTL <= 0 {
		b.PresignTTL = time.Hour
	}
	return b
}

type ES struct {
	Enabled  bool     `yaml:"enabled" env:"ES_ENABLED"`
	Hosts    []string `yaml:"hosts" env:"ES_HOSTS" env-separator:","`
	Index    string   `yaml:"index" env-default:"civiclearn-courses"`
	Username string   `yaml:"username" env:"ES_USERNAME"`
	Password string   `yaml:"password" env:"ES_PASSWORD"`
}

type Redis struct {
	Enabled  bool          `yaml:"enabled" env:"REDIS_ENABLED"`
	Addr     string        `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int           `yaml:"db" env:"REDIS_DB"`
	TTL      time.Duration `yaml:"ttl" env-default:"10m"`
}

type JWT struct {
	SecretKey  string        `yaml:"secret_key" env:"JWT_SECRET" env-required:"true"`
	Issuer     string        `yaml:"issuer" env-default:"civiclearn"`
	AccessTTL  time.Duration `yaml:"access_token_ttl" env-default:"15m"`
	RefreshTTL time.Duration `yaml:"refresh_token_ttl" env-default:"720h"`
}

type Postgres struct {
	Host     string `yaml:"host" env:"POSTGRES_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"POSTGRES_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"POSTGRES_USER"`
	Password string `yaml:"password" env:"POSTGRES_PASSWORD"`
	DBName   string `yaml:"dbname" env:"POSTGRES_DB"`
	Migrate  bool   `yaml:"migrate" env:"POSTGRES_MIGRATE" env-default:"true"`
}

type HTTPServer struct {
	Address        string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:8081"`
	Timeout        time.Duration `yaml:"timeout" env-default:"5s"`
	IdleTimeout    time.Duration `yaml:"idle_timeout" env-default:"60s"`
	AllowedOrigins []string      `yaml:"allowed_origins" env:"HTTP_ALLOWED_ORIGINS" env-separator:"," env-default:"http://localhost:5173"`
	SecureCookies  bool          `yaml:"secure_cookies" env:"HTTP_SECURE_COOKIES"`
}

type Progress struct {
	MaxAttempts    int           `yaml:"max_attempts" env-default:"3"`
	Cooldown       time.Duration `yaml:"cooldown" env-default:"12h"`
	PassPercentage float64       `yaml:"pass_percentage" env-default:"75"`
}

func MustLoad() *Config {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("Config file not exist: %s", configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("Can not read config file %s", err)
	}

	return &cfg
}
