package config

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/viper"
)

// Config хранит все настройки приложения
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Email    EmailConfig
	Collab   CollabConfig
	CORS     CORSConfig
}

// ServerConfig содержит настройки HTTP сервера
type ServerConfig struct {
	Port         string
	ReadTimeout  int
	WriteTimeout int
}

// DatabaseConfig содержит настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig содержит настройки подключения к Redis
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// JWTConfig содержит настройки подписанных токенов.
// Один секрет подписывает три вида токенов, различаемых claim'ом usage:
// access (вход пользователя), share (анонимная ссылка на форму),
// response (самообслуживание респондента).
type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	// ExpirationHrs - время жизни access-токена пользователя
	ExpirationHrs int `mapstructure:"expirationHrs"`
	// LinkExpirationHrs - время жизни share- и response-токенов
	LinkExpirationHrs int `mapstructure:"linkExpirationHrs"`
}

// EmailConfig содержит настройки исходящей почты
type EmailConfig struct {
	// APIKey - ключ Resend; пустой ключ включает noop-отправитель
	APIKey string `mapstructure:"api_key"`
	From   string `mapstructure:"from"`
	// AppBaseURL используется для ссылок в письмах
	AppBaseURL string `mapstructure:"app_base_url"`
}

// CollabConfig содержит настройки подсистемы совместного редактирования
type CollabConfig struct {
	// MaxMessageSize - лимит размера входящего WS-сообщения в байтах
	MaxMessageSize int64 `mapstructure:"max_message_size"`
	// WriteWaitSec / PongWaitSec - дедлайны записи и pong
	WriteWaitSec int `mapstructure:"write_wait_sec"`
	PongWaitSec  int `mapstructure:"pong_wait_sec"`
}

// CORSConfig содержит разрешенные origins фронтенда
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// PostgresConnectionString формирует строку подключения к PostgreSQL
func (d *DatabaseConfig) PostgresConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// Load загружает конфигурацию из файла и переменных окружения
func Load(configPath string) (*Config, error) {
	vip := viper.New() // Новый экземпляр Viper, чтобы избежать глобального состояния

	// Привязываем переменные окружения явно
	vip.BindEnv("database.host", "DATABASE_HOST")
	vip.BindEnv("database.port", "DATABASE_PORT")
	vip.BindEnv("database.user", "DATABASE_USER")
	vip.BindEnv("database.password", "DATABASE_PASSWORD")
	vip.BindEnv("database.dbname", "DATABASE_DBNAME")
	vip.BindEnv("database.sslmode", "DATABASE_SSLMODE")

	vip.BindEnv("redis.addr", "REDIS_ADDR")
	vip.BindEnv("redis.password", "REDIS_PASSWORD")
	vip.BindEnv("redis.db", "REDIS_DB")

	vip.BindEnv("jwt.secret", "JWT_SECRET")
	vip.BindEnv("jwt.expirationHrs", "JWT_EXPIRATIONHRS")
	vip.BindEnv("jwt.linkExpirationHrs", "JWT_LINKEXPIRATIONHRS")

	vip.BindEnv("email.api_key", "RESEND_API_KEY")
	vip.BindEnv("email.from", "EMAIL_FROM")
	vip.BindEnv("email.app_base_url", "APP_BASE_URL")

	vip.BindEnv("server.port", "SERVER_PORT")

	// Путь к файлу конфигурации (не страшно, если его нет - есть BindEnv)
	if configPath != "" {
		vip.SetConfigFile(configPath)
		if err := vip.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); ok {
				log.Printf("Файл конфигурации '%s' не найден, используются переменные окружения/умолчания.", configPath)
			} else {
				log.Printf("Предупреждение: не удалось прочитать файл конфигурации '%s': %v", configPath, err)
			}
		}
	}

	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Значения по умолчанию
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Server.ReadTimeout <= 0 {
		cfg.Server.ReadTimeout = 15
	}
	if cfg.Server.WriteTimeout <= 0 {
		cfg.Server.WriteTimeout = 15
	}
	if cfg.JWT.ExpirationHrs <= 0 {
		cfg.JWT.ExpirationHrs = 24
	}
	if cfg.JWT.LinkExpirationHrs <= 0 {
		cfg.JWT.LinkExpirationHrs = 24
	}
	if cfg.Collab.MaxMessageSize <= 0 {
		cfg.Collab.MaxMessageSize = 64 * 1024
	}
	if cfg.Collab.WriteWaitSec <= 0 {
		cfg.Collab.WriteWaitSec = 10
	}
	if cfg.Collab.PongWaitSec <= 0 {
		cfg.Collab.PongWaitSec = 60
	}
	if len(cfg.CORS.AllowOrigins) == 0 {
		cfg.CORS.AllowOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	if cfg.Email.AppBaseURL == "" {
		cfg.Email.AppBaseURL = "http://localhost:" + cfg.Server.Port
	}

	// Логирование конфигурации (только в debug режиме)
	if os.Getenv("GIN_MODE") != "release" {
		log.Printf("--- Загруженные значения конфигурации ---")
		log.Printf("Database Host: %s", cfg.Database.Host)
		log.Printf("Database Name: %s", cfg.Database.DBName)
		log.Printf("Redis Addr: %s", cfg.Redis.Addr)
		log.Printf("JWT Secret Set: %t", cfg.JWT.Secret != "")
		log.Printf("Email API Key Set: %t", cfg.Email.APIKey != "")
		log.Printf("Server Port: %s", cfg.Server.Port)
		log.Printf("-----------------------------------------")
	}

	// Проверка обязательных параметров
	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT secret is required in config (check JWT_SECRET env var)")
	}
	if cfg.Database.Host == "" || cfg.Database.DBName == "" || cfg.Database.User == "" {
		return nil, fmt.Errorf("database configuration (host, dbname, user) is incomplete in config (check DATABASE_HOST, DATABASE_DBNAME, DATABASE_USER env vars)")
	}

	return &cfg, nil
}
