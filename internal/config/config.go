package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DefaultPath = "config.yml"
	EnvPrefix   = "TODO"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Client      ClientConfig      `mapstructure:"client"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Repository  RepositoryConfig  `mapstructure:"repository"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Credentials CredentialsConfig `mapstructure:"credentials"`
	Refresh     RefreshConfig     `mapstructure:"refresh"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Host            string        `mapstructure:"host"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	RateLimit       int           `mapstructure:"rate_limit"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// ClientConfig описывает удалённый API, с которым работает клиент
type ClientConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	TasksPath string        `mapstructure:"tasks_path"`
	AuthPath  string        `mapstructure:"auth_path"`
	Timeout   time.Duration `mapstructure:"timeout"`
	// AuthScheme: "Token", "Bearer" или "none" для токена без префикса
	AuthScheme   string `mapstructure:"auth_scheme"`
	ListEnvelope string `mapstructure:"list_envelope"`
}

type DatabaseConfig struct {
	URL            string        `mapstructure:"url"`
	MaxConnections int           `mapstructure:"max_connections"`
	MinConnections int           `mapstructure:"min_connections"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	Migrate        bool          `mapstructure:"migrate"`
}

type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

type RepositoryConfig struct {
	Type string `mapstructure:"type"` // "postgres" или "inmemory"
}

type User struct {
	Username     string `mapstructure:"username"`
	PasswordHash string `mapstructure:"password_hash"`
}

type AuthConfig struct {
	Secret   string        `mapstructure:"secret"`
	TokenTTL time.Duration `mapstructure:"token_ttl"`
	Users    []User        `mapstructure:"users"`
}

type CredentialsConfig struct {
	Path string `mapstructure:"path"`
}

type RefreshConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.request_timeout", 30*time.Second)
	v.SetDefault("server.rate_limit", 100)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("client.base_url", "http://localhost:8080/")
	v.SetDefault("client.tasks_path", "api/todos/")
	v.SetDefault("client.auth_path", "api/auth/get-token")
	v.SetDefault("client.timeout", 15*time.Second)
	v.SetDefault("client.auth_scheme", "Token")
	v.SetDefault("client.list_envelope", "")

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.min_connections", 1)
	v.SetDefault("database.idle_timeout", 5*time.Minute)
	v.SetDefault("database.migrate", true)

	v.SetDefault("logging.development", false)
	v.SetDefault("repository.type", "inmemory")

	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.token_ttl", 24*time.Hour)

	v.SetDefault("credentials.path", defaultCredentialsPath())
	v.SetDefault("refresh.interval", 30*time.Second)
}

// Load читает .env, затем YAML файл и переменные окружения TODO_*.
// Отсутствие файла по умолчанию не ошибка, явно указанного - ошибка.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("ошибка чтения .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		if explicit || !isNotExist(err) {
			return nil, fmt.Errorf("не могу прочитать %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка парсинга %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

// AuthSchemeValue переводит настройку в формат клиента: nil - схема по умолчанию
func (c ClientConfig) AuthSchemeValue() *string {
	scheme := strings.TrimSpace(c.AuthScheme)
	switch strings.ToLower(scheme) {
	case "":
		return nil
	case "none", "raw":
		empty := ""
		return &empty
	default:
		return &scheme
	}
}

func isNotExist(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
}

func defaultCredentialsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".todo", "credentials.yml")
	}
	return filepath.Join(dir, "todo", "credentials.yml")
}
