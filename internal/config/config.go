package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/dropDatabas3/splice/internal/email"
	"github.com/dropDatabas3/splice/internal/security/password"
)

type Config struct {
	App struct {
		// dev | prod
		Env     string `yaml:"env" env:"ENV"`
		Name    string `yaml:"name" env:"NAME"`
		BaseURL string `yaml:"base_url" env:"BASE_URL"` // origen público de los links de email
		Version string `yaml:"-"`
	} `yaml:"app" envPrefix:"APP_"`

	Log struct {
		Level string `yaml:"level" env:"LEVEL"`
	} `yaml:"log" envPrefix:"LOG_"`

	Server struct {
		Addr            string        `yaml:"addr" env:"ADDR"`
		ReadTimeout     time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
		WriteTimeout    time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
		IdleTimeout     time.Duration `yaml:"idle_timeout" env:"IDLE_TIMEOUT"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
	} `yaml:"server" envPrefix:"SERVER_"`

	Storage struct {
		// memory | postgres
		Driver         string        `yaml:"driver" env:"DRIVER"`
		DSN            string        `yaml:"dsn" env:"DSN"`
		MaxConns       int32         `yaml:"max_conns" env:"MAX_CONNS"`
		MinConns       int32         `yaml:"min_conns" env:"MIN_CONNS"`
		ConnectTimeout time.Duration `yaml:"connect_timeout" env:"CONNECT_TIMEOUT"`
		TxTimeout      time.Duration `yaml:"tx_timeout" env:"TX_TIMEOUT"`
		QueryTimeout   time.Duration `yaml:"query_timeout" env:"QUERY_TIMEOUT"` // lecturas fuera del Coordinator
		AutoMigrate    bool          `yaml:"auto_migrate" env:"AUTO_MIGRATE"`
	} `yaml:"storage" envPrefix:"STORAGE_"`

	// Postgres arma el DSN por partes cuando storage.dsn está vacío.
	Postgres struct {
		Host     string `yaml:"host" env:"HOST"`
		Port     int    `yaml:"port" env:"PORT"`
		User     string `yaml:"user" env:"USER"`
		Password string `yaml:"password" env:"PASSWORD"`
		DB       string `yaml:"db" env:"DB"`
		SSLMode  string `yaml:"sslmode" env:"SSLMODE"`
	} `yaml:"postgres" envPrefix:"POSTGRES_"`

	JWT struct {
		Issuer string        `yaml:"issuer" env:"ISSUER"`
		Secret string        `yaml:"secret" env:"SECRET"`
		TTL    time.Duration `yaml:"ttl" env:"TTL"`
	} `yaml:"jwt" envPrefix:"JWT_"`

	Email struct {
		// smtp | log
		Driver    string           `yaml:"driver" env:"DRIVER"`
		VerifyTTL time.Duration    `yaml:"verify_ttl" env:"VERIFY_TTL"`
		SMTP      email.SMTPConfig `yaml:"smtp" envPrefix:"SMTP_"`
	} `yaml:"email" envPrefix:"EMAIL_"`

	Projector struct {
		Enabled       bool          `yaml:"enabled" env:"ENABLED"`
		Interval      time.Duration `yaml:"interval" env:"INTERVAL"`
		BatchSize     int           `yaml:"batch_size" env:"BATCH_SIZE"`
		HandleTimeout time.Duration `yaml:"handle_timeout" env:"HANDLE_TIMEOUT"`
	} `yaml:"projector" envPrefix:"PROJECTOR_"`

	Rate struct {
		Enabled bool          `yaml:"enabled" env:"ENABLED"`
		Backend string        `yaml:"backend" env:"BACKEND"` // memory | redis
		Max     int           `yaml:"max" env:"MAX"`
		Window  time.Duration `yaml:"window" env:"WINDOW"`
		Redis   struct {
			Addr     string `yaml:"addr" env:"ADDR"`
			Password string `yaml:"password" env:"PASSWORD"`
			DB       int    `yaml:"db" env:"DB"`
			Prefix   string `yaml:"prefix" env:"PREFIX"`
		} `yaml:"redis" envPrefix:"REDIS_"`
	} `yaml:"rate" envPrefix:"RATE_"`

	Security struct {
		PasswordPolicy    password.Policy `yaml:"password_policy" envPrefix:"PASSWORD_"`
		PasswordBlacklist string          `yaml:"password_blacklist_path" env:"PASSWORD_BLACKLIST_PATH"`
	} `yaml:"security" envPrefix:"SECURITY_"`
}

// Default devuelve la configuración con valores por defecto.
func Default() *Config {
	var c Config
	c.applyDefaults()
	return &c
}

// Load lee el YAML en path (vacío = sin archivo), expande placeholders
// ${VAR:default}, completa defaults y aplica overrides de entorno.
func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal([]byte(ExpandPlaceholders(string(b))), &c); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	c.applyDefaults()
	if err := env.Parse(&c); err != nil {
		return nil, fmt.Errorf("config: parse env: %w", err)
	}
	if c.Storage.DSN == "" {
		c.Storage.DSN = c.postgresDSN()
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	// sane defaults
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.App.Name == "" {
		c.App.Name = "Splice API"
	}
	if c.App.BaseURL == "" {
		c.App.BaseURL = "http://localhost:8080"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 15 * time.Second
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 15 * time.Second
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "postgres"
	}
	if c.Storage.MaxConns == 0 {
		c.Storage.MaxConns = 10
	}
	if c.Storage.MinConns == 0 {
		c.Storage.MinConns = 2
	}
	if c.Storage.ConnectTimeout == 0 {
		c.Storage.ConnectTimeout = 5 * time.Second
	}
	if c.Storage.TxTimeout == 0 {
		c.Storage.TxTimeout = 10 * time.Second
	}
	if c.Storage.QueryTimeout == 0 {
		c.Storage.QueryTimeout = 5 * time.Second
	}
	if c.Postgres.Port == 0 {
		c.Postgres.Port = 5432
	}
	if c.Postgres.SSLMode == "" {
		c.Postgres.SSLMode = "disable"
	}
	if c.JWT.Issuer == "" {
		c.JWT.Issuer = "splice"
	}
	if c.JWT.TTL == 0 {
		c.JWT.TTL = 24 * time.Hour
	}
	if c.Email.Driver == "" {
		c.Email.Driver = "log"
	}
	if c.Email.VerifyTTL == 0 {
		c.Email.VerifyTTL = 48 * time.Hour
	}
	if c.Email.SMTP.Port == 0 {
		c.Email.SMTP.Port = 587
	}
	if c.Email.SMTP.TLSMode == "" {
		c.Email.SMTP.TLSMode = "auto"
	}
	if c.Email.SMTP.Timeout == 0 {
		c.Email.SMTP.Timeout = 10 * time.Second
	}
	if c.Projector.Interval == 0 {
		c.Projector.Interval = 5 * time.Second
	}
	if c.Projector.BatchSize == 0 {
		c.Projector.BatchSize = 100
	}
	if c.Projector.HandleTimeout == 0 {
		c.Projector.HandleTimeout = 30 * time.Second
	}
	if c.Rate.Backend == "" {
		c.Rate.Backend = "memory"
	}
	if c.Rate.Max == 0 {
		c.Rate.Max = 10
	}
	if c.Rate.Window == 0 {
		c.Rate.Window = time.Minute
	}
	if c.Rate.Redis.Prefix == "" {
		c.Rate.Redis.Prefix = "splice:rl:"
	}
	if c.Security.PasswordPolicy.MinLength == 0 {
		c.Security.PasswordPolicy.MinLength = 8
	}
}

// Validate revisa combinaciones inválidas.
func (c *Config) Validate() error {
	var errs []error
	switch c.Storage.Driver {
	case "postgres":
		if c.Storage.DSN == "" {
			errs = append(errs, errors.New("storage.dsn (or postgres.host) is required for driver postgres"))
		}
	case "memory":
	default:
		errs = append(errs, fmt.Errorf("storage.driver: unknown %q", c.Storage.Driver))
	}
	if len(c.JWT.Secret) < 32 {
		errs = append(errs, errors.New("jwt.secret must be at least 32 bytes"))
	}
	switch c.Email.Driver {
	case "log":
	case "smtp":
		if c.Email.SMTP.Host == "" || c.Email.SMTP.From == "" {
			errs = append(errs, errors.New("email.smtp.host and email.smtp.from are required for driver smtp"))
		}
	default:
		errs = append(errs, fmt.Errorf("email.driver: unknown %q", c.Email.Driver))
	}
	if c.Rate.Enabled && c.Rate.Backend == "redis" && c.Rate.Redis.Addr == "" {
		errs = append(errs, errors.New("rate.redis.addr is required for backend redis"))
	}
	if _, err := url.Parse(c.App.BaseURL); err != nil {
		errs = append(errs, fmt.Errorf("app.base_url: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

func (c *Config) postgresDSN() string {
	p := c.Postgres
	if p.Host == "" {
		return ""
	}
	u := url.URL{
		Scheme:   "postgres",
		Host:     net.JoinHostPort(p.Host, strconv.Itoa(p.Port)),
		Path:     "/" + p.DB,
		RawQuery: "sslmode=" + url.QueryEscape(p.SSLMode),
	}
	if p.User != "" {
		u.User = url.UserPassword(p.User, p.Password)
	}
	return u.String()
}

var placeholderRe = regexp.MustCompile(`\$\{(\w+):([^}]*)\}`)

// ExpandPlaceholders reemplaza ${VAR:default} por el valor de VAR o, si no
// está definida o está vacía, por default.
func ExpandPlaceholders(s string) string {
	return placeholderRe.ReplaceAllStringFunc(s, func(m string) string {
		sub := placeholderRe.FindStringSubmatch(m)
		if v := os.Getenv(sub[1]); v != "" {
			return v
		}
		return strings.TrimSpace(sub[2])
	})
}
