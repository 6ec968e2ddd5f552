package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// Server captures process-wide configuration. It is built once in main and
// handed to constructors; request handlers never read the environment.
type Server struct {
	Addr         string
	Environment  string
	LogLevel     string
	WebhookAsync bool
	TLS          TLSConfig
	Provider     ProviderConfig
	Sessions     SessionConfig
	Redis        RedisConfig
	Kafka        KafkaConfig
	Contract     ContractConfig
}

// TLSConfig enables an additional HTTPS listener when both files are set.
type TLSConfig struct {
	Addr     string
	CertFile string
	KeyFile  string
}

// Enabled reports whether the HTTPS listener should start.
func (c TLSConfig) Enabled() bool {
	return c.CertFile != "" && c.KeyFile != ""
}

// ProviderConfig holds credentials and fixed session parameters for the
// identity-verification provider.
type ProviderConfig struct {
	BaseURL     string
	APIKey      string
	AdminToken  string
	FlowID      string
	APIVersion  string
	Language    string
	CountryCode string
	// Timeout of zero leaves outbound calls unbounded.
	Timeout time.Duration
}

// SessionBackend selects the session store implementation.
type SessionBackend string

const (
	SessionBackendFile   SessionBackend = "file"
	SessionBackendRedis  SessionBackend = "redis"
	SessionBackendMemory SessionBackend = "memory"
)

// SessionConfig configures local session persistence.
type SessionConfig struct {
	Backend SessionBackend
	Dir     string
	TTL     time.Duration
}

// RedisConfig configures the shared Redis client.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the verification outcome producer.
// Outcomes are only logged when Brokers is empty.
type KafkaConfig struct {
	Brokers         string
	Acks            string
	Retries         int
	DeliveryTimeout time.Duration
	OutcomeTopic    string
}

// ContractConfig locates the contract to sign and where the signature goes.
type ContractConfig struct {
	Path      string
	Placement SignaturePlacement
}

// SignaturePlacement is a single signature region on the contract.
type SignaturePlacement struct {
	X           int
	Y           int
	Height      int
	PageNumber  int
	Orientation string
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	return Server{
		Addr:         getEnv("IDFLOW_ADDR", ":3000"),
		Environment:  getEnv("IDFLOW_ENV", "development"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		WebhookAsync: getEnvBool("WEBHOOK_ASYNC", true),
		TLS: TLSConfig{
			Addr:     getEnv("IDFLOW_TLS_ADDR", ":443"),
			CertFile: os.Getenv("TLS_CERT_FILE"),
			KeyFile:  os.Getenv("TLS_KEY_FILE"),
		},
		Provider: ProviderConfig{
			BaseURL:     os.Getenv("API_URL"),
			APIKey:      os.Getenv("API_KEY"),
			AdminToken:  os.Getenv("ADMIN_TOKEN"),
			FlowID:      os.Getenv("FLOW_ID"),
			APIVersion:  getEnv("API_VERSION", "1.0"),
			Language:    getEnv("PROVIDER_LANGUAGE", "en-US"),
			CountryCode: getEnv("PROVIDER_COUNTRY_CODE", "ALL"),
			Timeout:     getEnvDuration("PROVIDER_TIMEOUT", 0),
		},
		Sessions: SessionConfig{
			Backend: SessionBackend(getEnv("SESSION_BACKEND", string(SessionBackendFile))),
			Dir:     getEnv("SESSION_DIR", "sessions"),
			TTL:     getEnvDuration("SESSION_TTL", 24*time.Hour),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getEnvInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getEnvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getEnvDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getEnvDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:         os.Getenv("KAFKA_BROKERS"),
			Acks:            getEnv("KAFKA_ACKS", "all"),
			Retries:         getEnvInt("KAFKA_RETRIES", 3),
			DeliveryTimeout: getEnvDuration("KAFKA_DELIVERY_TIMEOUT", 30*time.Second),
			OutcomeTopic:    getEnv("KAFKA_OUTCOME_TOPIC", "verification.outcomes"),
		},
		Contract: ContractConfig{
			Path: getEnv("CONTRACT_PATH", "contract.pdf"),
			Placement: SignaturePlacement{
				X:           100,
				Y:           100,
				Height:      200,
				PageNumber:  1,
				Orientation: "ORIENTATION_NORMAL",
			},
		},
	}
}

// Validate reports configuration that would make every provider call fail.
func (s Server) Validate() error {
	var errs []error
	if s.Provider.BaseURL == "" {
		errs = append(errs, errors.New("API_URL is required"))
	}
	if s.Provider.APIKey == "" {
		errs = append(errs, errors.New("API_KEY is required"))
	}
	switch s.Sessions.Backend {
	case SessionBackendFile, SessionBackendMemory:
	case SessionBackendRedis:
		if s.Redis.URL == "" {
			errs = append(errs, errors.New("REDIS_URL is required for the redis session backend"))
		}
	default:
		errs = append(errs, errors.New("SESSION_BACKEND must be file, redis or memory"))
	}
	return errors.Join(errs...)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return def
}
