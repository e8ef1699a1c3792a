package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Storage drivers understood by the platform factory
const (
	StorageDynamoDB = "dynamodb"
	StorageSQLite   = "sqlite"
	StorageMemory   = "memory"
)

// Config represents the application configuration
// This struct contains all configuration parameters for the application
type Config struct {
	// AWS-specific configuration
	AWSRegion         string
	DynamoDBTableName string

	// Overrides the DynamoDB endpoint, e.g. DynamoDB Local
	DynamoDBEndpoint string

	// Environment and region info
	Environment string
	Region      string

	// Storage backend: dynamodb, sqlite or memory
	StorageDriver string

	// SQLite database file, used when StorageDriver is sqlite
	SQLitePath string

	// Owner used by local tools when no owner is resolved from a request
	DefaultOwnerID string

	// Honour the X-Owner-Id header. Off in prod and, unless ALLOW_OWNER_HEADER
	// opts in, on Lambda where an authorizer is expected.
	AllowOwnerHeader bool

	// Lambda detection flag (cached)
	isLambda bool
}

// LoadFromEnv loads the configuration from environment variables.
// A .env file in the working directory is read first when present; variables
// already set in the environment win over the file.
func LoadFromEnv(envFiles ...string) (*Config, error) {
	if len(envFiles) > 0 {
		if err := godotenv.Load(envFiles...); err != nil {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
	} else {
		_ = godotenv.Load()
	}

	cfg := &Config{}

	// Environment and region info
	cfg.Environment = os.Getenv("ENVIRONMENT")
	if cfg.Environment == "" {
		cfg.Environment = "dev" // Default to dev environment
	}

	cfg.Region = os.Getenv("REGION")
	if cfg.Region == "" {
		cfg.Region = "jp"
	}

	// AWS Region
	cfg.AWSRegion = os.Getenv("AWS_REGION")
	if cfg.AWSRegion == "" {
		// Default AWS regions based on our region code
		switch cfg.Region {
		case "us":
			cfg.AWSRegion = "us-west-2"
		case "eu":
			cfg.AWSRegion = "eu-west-1"
		case "br":
			cfg.AWSRegion = "sa-east-1"
		default:
			cfg.AWSRegion = "ap-northeast-1" // Default fallback
		}
	}

	// Check if running in Lambda
	cfg.isLambda = os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""

	cfg.StorageDriver = os.Getenv("STORAGE_DRIVER")
	if cfg.StorageDriver == "" {
		if cfg.isLambda {
			cfg.StorageDriver = StorageDynamoDB
		} else {
			cfg.StorageDriver = StorageSQLite
		}
	}

	switch cfg.StorageDriver {
	case StorageDynamoDB:
		cfg.DynamoDBTableName = os.Getenv("DYNAMODB_TABLE_NAME")
		if cfg.DynamoDBTableName == "" {
			return nil, errors.New("DYNAMODB_TABLE_NAME environment variable is required")
		}
		cfg.DynamoDBEndpoint = os.Getenv("DYNAMODB_ENDPOINT")
	case StorageSQLite:
		cfg.SQLitePath = os.Getenv("SQLITE_PATH")
		if cfg.SQLitePath == "" {
			cfg.SQLitePath = "./data/sqlite/ledger.db" // Local development path
		}
	case StorageMemory:
	default:
		return nil, fmt.Errorf("unsupported STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	cfg.DefaultOwnerID = os.Getenv("DEFAULT_OWNER_ID")

	cfg.AllowOwnerHeader = !cfg.isLambda
	if v := os.Getenv("ALLOW_OWNER_HEADER"); v != "" {
		allow, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid ALLOW_OWNER_HEADER %q: %w", v, err)
		}
		cfg.AllowOwnerHeader = allow
	}
	if cfg.IsProd() {
		cfg.AllowOwnerHeader = false
	}

	return cfg, nil
}

func (c *Config) IsProd() bool {
	return c.Environment == "prod"
}

// IsLambda returns true if the application is running in AWS Lambda
func (c *Config) IsLambda() bool {
	return c.isLambda
}
