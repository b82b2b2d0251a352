// Package config loads the server configuration from the environment, with
// an optional .env file underneath it.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

// Backend and policy selectors.
const (
	BackendFake       = "fake"
	BackendJWT        = "jwt"
	BackendImage      = "image"
	BackendMembership = "membership"

	PolicyBroadcast    = "broadcast"
	PolicyConversation = "conversation"
)

// Config holds every setting of the chat server.
type Config struct {
	Host        string `env:"HOST,default=127.0.0.1" validate:"required"`
	Port        int    `env:"PORT,default=8080" validate:"min=1,max=65535"`
	TLSCertFile string `env:"TLS_CERT_FILE" validate:"required_with=TLSKeyFile"`
	TLSKeyFile  string `env:"TLS_KEY_FILE" validate:"required_with=TLSCertFile"`

	// AllowedOrigins is a comma separated list; "*" allows every origin.
	AllowedOrigins string `env:"ALLOWED_ORIGINS,default=http://localhost:8080"`
	LogLevel       string `env:"LOG_LEVEL,default=info" validate:"oneof=debug info warn error"`

	AuthBackend    string `env:"AUTH_BACKEND,default=fake" validate:"oneof=fake jwt"`
	CaptchaBackend string `env:"CAPTCHA_BACKEND,default=fake" validate:"oneof=fake image"`
	UserBackend    string `env:"USER_BACKEND,default=fake" validate:"oneof=fake membership"`
	ChatPolicy     string `env:"CHAT_POLICY,default=broadcast" validate:"oneof=broadcast conversation"`

	JWTSecret       string        `env:"JWT_SECRET" validate:"required_if=AuthBackend jwt"`
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL,default=1h" validate:"gt=0"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL,default=168h" validate:"gtfield=AccessTokenTTL"`
	CaptchaTTL      time.Duration `env:"CAPTCHA_TTL,default=5m" validate:"gt=0"`

	// BadgerPath is the database directory; empty keeps everything in memory.
	BadgerPath string `env:"BADGER_PATH"`

	MaxMessageSize          int64         `env:"MAX_MESSAGE_SIZE,default=4096" validate:"gt=0"`
	MailboxSize             int           `env:"MAILBOX_SIZE,default=256" validate:"gt=0"`
	InboundBufferSize       int           `env:"INBOUND_BUFFER_SIZE,default=1024" validate:"gt=0"`
	RateLimitBurst          int           `env:"RATE_LIMIT_BURST,default=0" validate:"gte=0"`
	RateLimitRefillInterval time.Duration `env:"RATE_LIMIT_REFILL_INTERVAL,default=1s" validate:"gt=0"`
	ShutdownTimeout         time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s" validate:"gt=0"`
}

var validate = validator.New()

// Load reads envFile into the process environment when it exists, then
// builds and validates a Config from the environment. Variables already set
// in the environment win over the file.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return Config{}, fmt.Errorf("config error: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field and range constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Addr is the host:port the server listens on.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// TLSEnabled reports whether a certificate and key are configured.
func (c Config) TLSEnabled() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}

// Origins splits AllowedOrigins into trimmed, non-empty entries.
func (c Config) Origins() []string {
	parts := strings.Split(c.AllowedOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

// Logger builds the process logger at the configured level.
func (c Config) Logger() *slog.Logger {
	return logs.GetLoggerFromString(strings.ToUpper(c.LogLevel))
}
