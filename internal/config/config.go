package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Окружения приложения
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// MinSessionSecretLength - минимальная длина секрета подписи сессий в байтах
const MinSessionSecretLength = 32

// Config хранит все настройки приложения
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Auth      AuthConfig      `mapstructure:"auth"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Email     EmailConfig     `mapstructure:"email"`
}

// AppConfig содержит общие настройки приложения
type AppConfig struct {
	// Env: "development" или "production"
	Env string `mapstructure:"env"`
}

// IsProduction сообщает, запущено ли приложение в production-окружении
func (a AppConfig) IsProduction() bool {
	return strings.EqualFold(a.Env, EnvProduction)
}

// ServerConfig содержит настройки HTTP сервера
type ServerConfig struct {
	Port         string `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // секунды
	WriteTimeout int    `mapstructure:"write_timeout"` // секунды
	// CORSOrigins: разрешённые источники для /api
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// DatabaseConfig содержит настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	// MigrationsPath: источник миграций для golang-migrate
	MigrationsPath string `mapstructure:"migrations_path"`
	// Debug включает логирование SQL-запросов GORM
	Debug bool `mapstructure:"debug"`
}

// RedisConfig содержит унифицированные настройки подключения к Redis
// Поддерживает режимы: single, sentinel, cluster.
// Если ни Addr, ни Addrs не заданы, приложение использует кеш в памяти процесса.
type RedisConfig struct {
	// Mode: Режим работы Redis ("single", "sentinel", "cluster"). По умолчанию "single".
	Mode string `mapstructure:"mode"`

	// Addrs: Список адресов Redis (хост:порт)
	Addrs []string `mapstructure:"addrs"`

	// Addr: Адрес для режима 'single', используется, если Addrs пустой
	Addr string `mapstructure:"addr"`

	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// MasterName: Имя мастер-сервера Redis (только для режима "sentinel")
	MasterName string `mapstructure:"master_name"`

	// MaxRetries: Максимальное количество попыток переподключения (-1 - бесконечно). По умолчанию 0 (без ретраев).
	MaxRetries int `mapstructure:"max_retries"`

	// MinRetryBackoff: Минимальный интервал между попытками (в миллисекундах)
	MinRetryBackoff int `mapstructure:"min_retry_backoff"`

	// MaxRetryBackoff: Максимальный интервал между попытками (в миллисекундах)
	MaxRetryBackoff int `mapstructure:"max_retry_backoff"`
}

// Enabled сообщает, настроен ли Redis
func (r RedisConfig) Enabled() bool {
	return r.Addr != "" || len(r.Addrs) > 0
}

// AuthConfig содержит настройки сессий и паролей
type AuthConfig struct {
	// SessionSecret: ключ HMAC для подписи токена сессии, не короче MinSessionSecretLength
	SessionSecret string `mapstructure:"session_secret"`
	// SessionLifetimeHrs: время жизни сессии в часах
	SessionLifetimeHrs int `mapstructure:"session_lifetime_hrs"`
	// CookieSecure выставляет флаг Secure для cookie сессии и CSRF
	CookieSecure bool `mapstructure:"cookie_secure"`
	// BCryptCost: стоимость bcrypt; 0 - bcrypt.DefaultCost
	BCryptCost int `mapstructure:"bcrypt_cost"`
}

// RateLimitConfig содержит настройки строгого лимита для форм входа и регистрации
type RateLimitConfig struct {
	Requests  int `mapstructure:"requests"`
	WindowSec int `mapstructure:"window_sec"`
}

// EmailConfig содержит настройки отправки писем через Resend.
// Пустой ResendAPIKey отключает отправку.
type EmailConfig struct {
	ResendAPIKey string `mapstructure:"resend_api_key"`
	From         string `mapstructure:"from"`
}

// PostgresConnectionString формирует строку подключения к PostgreSQL
func (d *DatabaseConfig) PostgresConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

func setDefaults(vip *viper.Viper) {
	vip.SetDefault("app.env", EnvDevelopment)
	vip.SetDefault("server.port", "8080")
	vip.SetDefault("server.read_timeout", 10)
	vip.SetDefault("server.write_timeout", 10)
	vip.SetDefault("database.port", "5432")
	vip.SetDefault("database.sslmode", "disable")
	vip.SetDefault("database.migrations_path", "file://migrations")
	vip.SetDefault("redis.mode", "single")
	vip.SetDefault("auth.session_lifetime_hrs", 24*14)
	vip.SetDefault("rate_limit.requests", 10)
	vip.SetDefault("rate_limit.window_sec", 60)
	vip.SetDefault("email.from", "MindQuest <noreply@mindquest.local>")
}

// Load загружает конфигурацию из .env, файла и переменных окружения
// и проверяет все параметры, нужные веб-серверу
func Load(configPath string) (*Config, error) {
	cfg, err := load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadForOperator загружает конфигурацию для команд manage.
// Проверяются только параметры базы данных: секрет сессий командам не нужен.
func LoadForOperator(configPath string) (*Config, error) {
	cfg, err := load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.ValidateDatabase(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func load(configPath string) (*Config, error) {
	// .env необязателен: в контейнере переменные приходят из окружения
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("[Config] Предупреждение: не удалось прочитать .env: %v", err)
	}

	vip := viper.New() // Используем новый экземпляр Viper, чтобы избежать глобального состояния
	setDefaults(vip)

	// Привязываем переменные окружения ЯВНО
	vip.BindEnv("app.env", "APP_ENV")

	vip.BindEnv("server.port", "SERVER_PORT")

	vip.BindEnv("database.host", "DATABASE_HOST")
	vip.BindEnv("database.port", "DATABASE_PORT")
	vip.BindEnv("database.user", "DATABASE_USER")
	vip.BindEnv("database.password", "DATABASE_PASSWORD")
	vip.BindEnv("database.dbname", "DATABASE_DBNAME")
	vip.BindEnv("database.sslmode", "DATABASE_SSLMODE")
	vip.BindEnv("database.migrations_path", "DATABASE_MIGRATIONS_PATH")

	vip.BindEnv("redis.mode", "REDIS_MODE")
	vip.BindEnv("redis.addrs", "REDIS_ADDRS")
	vip.BindEnv("redis.addr", "REDIS_ADDR")
	vip.BindEnv("redis.password", "REDIS_PASSWORD")
	vip.BindEnv("redis.db", "REDIS_DB")
	vip.BindEnv("redis.master_name", "REDIS_MASTER_NAME")

	vip.BindEnv("auth.session_secret", "AUTH_SESSION_SECRET")
	vip.BindEnv("auth.session_lifetime_hrs", "AUTH_SESSION_LIFETIME_HRS")
	vip.BindEnv("auth.cookie_secure", "AUTH_COOKIE_SECURE")
	vip.BindEnv("auth.bcrypt_cost", "AUTH_BCRYPT_COST")

	vip.BindEnv("email.resend_api_key", "RESEND_API_KEY")
	vip.BindEnv("email.from", "EMAIL_FROM")

	if configPath != "" {
		vip.SetConfigFile(configPath)
		// Файл необязателен, т.к. есть BindEnv
		if err := vip.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
				log.Printf("[Config] Файл конфигурации '%s' не найден, используются переменные окружения/умолчания.", configPath)
			} else {
				log.Printf("[Config] Предупреждение: не удалось прочитать файл конфигурации '%s': %v", configPath, err)
			}
		}
	}

	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if os.Getenv("GIN_MODE") != "release" {
		log.Printf("--- Загруженные значения конфигурации ---")
		log.Printf("App Env: %s", cfg.App.Env)
		log.Printf("Database Host: %s", cfg.Database.Host)
		log.Printf("Database Name: %s", cfg.Database.DBName)
		log.Printf("Redis Enabled: %t", cfg.Redis.Enabled())
		log.Printf("Session Secret Set: %t", cfg.Auth.SessionSecret != "")
		log.Printf("Resend Enabled: %t", cfg.Email.ResendAPIKey != "")
		log.Printf("Server Port: %s", cfg.Server.Port)
		log.Printf("-----------------------------------------")
	}

	return &cfg, nil
}

// Validate проверяет обязательные параметры
func (c *Config) Validate() error {
	if len(c.Auth.SessionSecret) < MinSessionSecretLength {
		return fmt.Errorf("auth session secret must be at least %d bytes (check AUTH_SESSION_SECRET env var)", MinSessionSecretLength)
	}
	if err := c.ValidateDatabase(); err != nil {
		return err
	}
	if c.Auth.SessionLifetimeHrs <= 0 {
		return fmt.Errorf("auth session lifetime must be positive")
	}
	if c.App.IsProduction() {
		if !c.Redis.Enabled() {
			return fmt.Errorf("redis is required in production mode (check REDIS_ADDR env var)")
		}
		if !c.Auth.CookieSecure {
			log.Println("[Config] Warning: auth.cookie_secure is disabled in production.")
		}
	}
	return nil
}

// ValidateDatabase проверяет параметры подключения к PostgreSQL
func (c *Config) ValidateDatabase() error {
	if c.Database.Host == "" || c.Database.DBName == "" || c.Database.User == "" {
		return fmt.Errorf("database configuration (host, dbname, user) is incomplete in config (check DATABASE_HOST, DATABASE_DBNAME, DATABASE_USER env vars)")
	}
	if c.App.IsProduction() && c.Database.Password == "" {
		return fmt.Errorf("database password is required in production mode (check DATABASE_PASSWORD env var)")
	}
	return nil
}
