package configs

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type RESTConfig struct {
	Port string
}

type DatabaseConfig struct {
	URL string
}

type RabbitMQConfig struct {
	URL string
}

// ContentStoreConfig holds the remote CMS connection settings.
type ContentStoreConfig struct {
	BaseURL    string
	APIToken   string // optional - uploads may be publicly writable
	Collection string
}

// MediaConfig controls how asset references are resolved.
type MediaConfig struct {
	PublicBaseURL string
	LocalRoot     string
}

// SyncConfig controls the bulk orchestrator pacing.
type SyncConfig struct {
	ItemDelay       time.Duration
	DefaultPageSize int
}

// PropertySourceConfig selects the local system-of-record adapter.
type PropertySourceConfig struct {
	Kind   string // "postgres" or "api"
	APIURL string
}

type MediaBackupConfig struct {
	Enabled     bool
	ArchiveRoot string
}

type StdoutLogConfig struct {
	Level string
}

type FluentBitConfig struct {
	Host    string
	Port    int
	Enabled bool
	Level   string
}

// AppConfig is the whole application configuration, constructed once at
// process start and passed by reference into the adapters.
type AppConfig struct {
	AppName        string
	Rest           RESTConfig
	Database       DatabaseConfig
	RabbitMQ       RabbitMQConfig
	ContentStore   ContentStoreConfig
	Media          MediaConfig
	Sync           SyncConfig
	PropertySource PropertySourceConfig
	MediaBackup    MediaBackupConfig
	StdoutLogger   StdoutLogConfig
	FluentBit      FluentBitConfig
}

// LoadConfig loads the configuration from environment variables, optionally
// seeded from a .env file.
func LoadConfig(envPath ...string) (*AppConfig, error) {
	var err error
	if len(envPath) > 0 {
		err = godotenv.Load(envPath[0])
	} else {
		err = godotenv.Load()
	}
	if err != nil {
		// A missing .env file is fine in containerized deployments; the
		// variables come from the environment directly.
		log.Printf("Info: Could not load .env file (path: %v): %v.\n", envPath, err)
	}

	cfg := &AppConfig{}

	cfg.AppName = getEnvAsString("APP_NAME", "cms-sync-service")
	cfg.Rest.Port = getEnvAsString("PORT", "8090")

	cfg.ContentStore.BaseURL = os.Getenv("CMS_BASE_URL")
	if cfg.ContentStore.BaseURL == "" {
		return nil, fmt.Errorf("CMS_BASE_URL environment variable is required")
	}
	cfg.ContentStore.APIToken = os.Getenv("CMS_API_TOKEN")
	cfg.ContentStore.Collection = getEnvAsString("CMS_COLLECTION", "imoveis")

	cfg.PropertySource.Kind = getEnvAsString("PROPERTY_SOURCE", "postgres")
	switch cfg.PropertySource.Kind {
	case "postgres":
		cfg.Database.URL = os.Getenv("DATABASE_URL")
		if cfg.Database.URL == "" {
			return nil, fmt.Errorf("DATABASE_URL environment variable is required when PROPERTY_SOURCE=postgres")
		}
	case "api":
		cfg.PropertySource.APIURL = os.Getenv("IMOVEIS_API_URL")
		if cfg.PropertySource.APIURL == "" {
			return nil, fmt.Errorf("IMOVEIS_API_URL environment variable is required when PROPERTY_SOURCE=api")
		}
	default:
		return nil, fmt.Errorf("PROPERTY_SOURCE must be 'postgres' or 'api', got %q", cfg.PropertySource.Kind)
	}

	cfg.Media.PublicBaseURL = getEnvAsString("PUBLIC_BASE_URL", "")
	cfg.Media.LocalRoot = getEnvAsString("LOCAL_MEDIA_ROOT", "")

	delayMs := getEnvAsInt("SYNC_ITEM_DELAY_MS", 500)
	cfg.Sync.ItemDelay = time.Duration(delayMs) * time.Millisecond
	cfg.Sync.DefaultPageSize = getEnvAsInt("SYNC_PAGE_SIZE", 50)

	cfg.MediaBackup.Enabled = getEnvAsBool("MEDIA_BACKUP_ENABLED", false)
	if cfg.MediaBackup.Enabled {
		cfg.RabbitMQ.URL = os.Getenv("RABBITMQ_URL")
		if cfg.RabbitMQ.URL == "" {
			log.Println("WARNING: MEDIA_BACKUP_ENABLED is true, but RABBITMQ_URL is not set. Disabling media backup.")
			cfg.MediaBackup.Enabled = false
		}
		cfg.MediaBackup.ArchiveRoot = getEnvAsString("MEDIA_ARCHIVE_ROOT", "/var/lib/corretores/media-archive")
		if cfg.PropertySource.Kind != "postgres" && os.Getenv("DATABASE_URL") != "" {
			// Backup metadata always lands in Postgres, even when the
			// property source is the legacy API.
			cfg.Database.URL = os.Getenv("DATABASE_URL")
		}
	}

	cfg.FluentBit.Enabled = getEnvAsBool("FLUENTBIT_ENABLED", false)
	if cfg.FluentBit.Enabled {
		cfg.FluentBit.Host = os.Getenv("FLUENTBIT_HOST")
		if cfg.FluentBit.Host == "" {
			log.Println("WARNING: FLUENTBIT_ENABLED is true, but FLUENTBIT_HOST is not set. Disabling Fluent Bit.")
			cfg.FluentBit.Enabled = false
		}
		cfg.FluentBit.Port = getEnvAsInt("FLUENTBIT_PORT", 24224)
		cfg.FluentBit.Level = getEnvAsString("FLUENTBIT_LOG_LEVEL", "info")
	}

	cfg.StdoutLogger.Level = getEnvAsString("STDOUT_LOG_LEVEL", "debug")

	return cfg, nil
}

func getEnvAsString(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt reads an environment variable as int or returns the default.
func getEnvAsInt(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}

	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as int: %v. Using default value: %d\n", key, valueStr, err, defaultValue)
		return defaultValue
	}
	return valueInt
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valBool, err := strconv.ParseBool(valStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as bool: %v. Using default value: %t\n", key, valStr, err, defaultValue)
		return defaultValue
	}
	return valBool
}
