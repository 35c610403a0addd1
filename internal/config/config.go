// Package config предоставляет структуры и функцию для парсинга и загрузки конфига.
package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек.
type Config struct {
	Env                     string `yaml:"env" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string"`
	MigrationsPath          string `yaml:"migrations_path" env-default:"./migrations"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	Media                   `yaml:"media"`
	SMTP                    `yaml:"smtp"`
	RabbitMQ                `yaml:"rabbitmq"`
	Subscription            `yaml:"subscription"`
}

// HTTPServer структура для настройки сервера.
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:"0.0.0.0:8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"5s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
	// SecureCookies выключают только в локальной разработке без TLS.
	SecureCookies bool `yaml:"secure_cookies" env-default:"true"`
}

// RedisConnection структура для настройки подключения к redis.
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis"`
	Password     string        `yaml:"password"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env-default:"3s"`
}

// JWTToken структура для работы с парой jwt-токенов сессии.
// Секреты приходят только из окружения и в файл конфига не пишутся.
type JWTToken struct {
	AccessSecretKey  string        `yaml:"access_secret_key" env:"ACCESS_TOKEN_SECRET"`
	RefreshSecretKey string        `yaml:"refresh_secret_key" env:"REFRESH_TOKEN_SECRET"`
	AccessTokenTTL   time.Duration `yaml:"access_token_ttl" env-default:"1h"`
	RefreshTokenTTL  time.Duration `yaml:"refresh_token_ttl" env-default:"240h"`
}

// Media структура для настройки внешнего S3-совместимого медиахранилища.
type Media struct {
	S3Endpoint      string `yaml:"s3_endpoint"`
	S3Region        string `yaml:"s3_region" env-default:"us-east-1"`
	S3Bucket        string `yaml:"s3_bucket"`
	S3AccessKey     string `yaml:"s3_access_key" env:"S3_ACCESS_KEY"`
	S3SecretKey     string `yaml:"s3_secret_key" env:"S3_SECRET_KEY"`
	PublicBaseURL   string `yaml:"public_base_url"`
	MaxUploadSizeMB int64  `yaml:"max_upload_size_mb" env-default:"16"`
}

// SMTP структура для настройки почтового транспорта воркера уведомлений.
type SMTP struct {
	SMTPHost string `yaml:"smtp_host"`
	SMTPPort string `yaml:"smtp_port" env-default:"587"`
	SMTPUser string `yaml:"smtp_user"`
	SMTPPass string `yaml:"smtp_pass" env:"SMTP_PASSWORD"`
}

// RabbitMQ структура для настройки подключения к брокеру уведомлений.
type RabbitMQ struct {
	RabbitURL     string        `yaml:"rabbit_url"`
	RabbitRetries int           `yaml:"rabbit_retries" env-default:"5"`
	RabbitDelay   time.Duration `yaml:"rabbit_delay" env-default:"2s"`
}

// Subscription структура с флагами поведения графа подписок.
type Subscription struct {
	// AllowSelfSubscribe разрешает подписку пользователя на собственный канал.
	// Исторически источник этого не запрещал, поэтому поведение настраиваемое.
	AllowSelfSubscribe bool `yaml:"allow_self_subscribe" env-default:"false"`
}

// MustLoad функция для загрузки конфига, путь берется из переменной CONFIG_PATH.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}
