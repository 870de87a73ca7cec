package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Document backends
const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StoreDynamoDB = "dynamodb"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// Document lock modes
const (
	LockNone  = "none"
	LockLocal = "local"
	LockRedis = "redis"
)

// Audit sinks
const (
	SinkNone     = "none"
	SinkRabbitMQ = "rabbitmq"
	SinkKafka    = "kafka"
)

// Config represents the application configuration
type Config struct {
	Environment string `mapstructure:"ENVIRONMENT"`

	// Document persistence
	DocumentStore string `mapstructure:"DOCUMENT_STORE"`
	DocumentName  string `mapstructure:"DOCUMENT_NAME"`
	DataPath      string `mapstructure:"DATA_PATH"`

	// AWS-specific configuration
	AWSRegion         string `mapstructure:"AWS_REGION"`
	DynamoDBTableName string `mapstructure:"DYNAMODB_TABLE_NAME"`
	DynamoDBEndpoint  string `mapstructure:"DYNAMODB_ENDPOINT"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	DatabaseURL string `mapstructure:"DATABASE_URL"`

	DocumentLock string `mapstructure:"DOCUMENT_LOCK"`
	LockTTLSecs  int    `mapstructure:"DOCUMENT_LOCK_TTL"`

	// Audit event stream
	AuditSink    string `mapstructure:"AUDIT_SINK"`
	RabbitMQURL  string `mapstructure:"RABBITMQ_URL"`
	KafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	AuditTopic   string `mapstructure:"AUDIT_TOPIC"`

	// Demo behaviour
	OtpRevealCode     bool `mapstructure:"OTP_REVEAL_CODE"`
	LedgerStrictTypes bool `mapstructure:"LEDGER_STRICT_TYPES"`

	isLambda bool
}

var keys = []string{
	"ENVIRONMENT", "DOCUMENT_STORE", "DOCUMENT_NAME", "DATA_PATH",
	"AWS_REGION", "DYNAMODB_TABLE_NAME", "DYNAMODB_ENDPOINT",
	"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "DATABASE_URL",
	"DOCUMENT_LOCK", "DOCUMENT_LOCK_TTL",
	"AUDIT_SINK", "RABBITMQ_URL", "KAFKA_BROKERS", "AUDIT_TOPIC",
	"OTP_REVEAL_CODE", "LEDGER_STRICT_TYPES",
}

// LoadFromEnv loads the configuration from environment variables
func LoadFromEnv() (*Config, error) {
	v := viper.New()
	v.SetDefault("ENVIRONMENT", "dev")
	v.SetDefault("DOCUMENT_STORE", StoreFile)
	v.SetDefault("DOCUMENT_NAME", "backoffice")
	v.SetDefault("DATA_PATH", "./data/db.json")
	v.SetDefault("AWS_REGION", "ap-northeast-1")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("DOCUMENT_LOCK", LockNone)
	v.SetDefault("DOCUMENT_LOCK_TTL", 30)
	v.SetDefault("AUDIT_SINK", SinkNone)
	v.SetDefault("OTP_REVEAL_CODE", false)
	v.SetDefault("LEDGER_STRICT_TYPES", false)
	v.AutomaticEnv()

	// AutomaticEnv alone does not make keys visible to Unmarshal
	for _, key := range keys {
		_ = v.BindEnv(key)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}
	cfg.isLambda = os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DocumentStore {
	case StoreMemory, StoreFile:
	case StoreDynamoDB:
		if c.DynamoDBTableName == "" {
			return fmt.Errorf("DYNAMODB_TABLE_NAME environment variable is required for DOCUMENT_STORE=%s", c.DocumentStore)
		}
	case StoreRedis:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL environment variable is required for DOCUMENT_STORE=%s", c.DocumentStore)
		}
	default:
		return fmt.Errorf("unknown DOCUMENT_STORE %q", c.DocumentStore)
	}

	switch c.DocumentLock {
	case LockNone, LockLocal, LockRedis:
	default:
		return fmt.Errorf("unknown DOCUMENT_LOCK %q", c.DocumentLock)
	}
	if c.LockTTLSecs <= 0 {
		return fmt.Errorf("DOCUMENT_LOCK_TTL must be positive")
	}

	switch c.AuditSink {
	case SinkNone:
	case SinkRabbitMQ:
		if c.RabbitMQURL == "" {
			return fmt.Errorf("RABBITMQ_URL environment variable is required for AUDIT_SINK=%s", c.AuditSink)
		}
	case SinkKafka:
		if len(c.Brokers()) == 0 {
			return fmt.Errorf("KAFKA_BROKERS environment variable is required for AUDIT_SINK=%s", c.AuditSink)
		}
	default:
		return fmt.Errorf("unknown AUDIT_SINK %q", c.AuditSink)
	}
	return nil
}

// Brokers splits KAFKA_BROKERS on commas
func (c *Config) Brokers() []string {
	var out []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

func (c *Config) IsProd() bool {
	return c.Environment == "prod"
}

// IsLambda returns true if the application is running in AWS Lambda
func (c *Config) IsLambda() bool {
	return c.isLambda
}
