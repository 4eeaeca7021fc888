package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

var DefaultEnvConfig *envConfig

type envConfig struct {
	// app config
	APP_NAME string
	APP_PORT string
	// warehouse config
	WAREHOUSE_DIR       string
	SAVE_MODE           string
	WORKERS             int
	PARQUET_COMPRESSION string
	CSV_DELIMITER       string
	REPORT_PATH         string
	// catalog database config
	CATALOG_DRIVER            string
	CATALOG_DSN               string
	CATALOG_CONN_MAX_LIFETIME time.Duration
	CATALOG_MAX_IDLE_CONNS    int
	CATALOG_MAX_OPEN_CONNS    int
	// logger config
	LOG_FILE_PATH string
	LOG_LEVEL     string
}

// LoadEnvConfig reads .env files (a missing file is fine) and the process
// environment into DefaultEnvConfig.
func LoadEnvConfig(filenames ...string) error {
	if err := godotenv.Load(filenames...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	DefaultEnvConfig = &envConfig{
		APP_NAME:                  getEnvString("APP_NAME", "Employee Analysis DataFrame"),
		APP_PORT:                  getEnvString("APP_PORT", "8080"),
		WAREHOUSE_DIR:             getEnvString("WAREHOUSE_DIR", "spark-warehouse"),
		SAVE_MODE:                 getEnvString("SAVE_MODE", "overwrite"),
		WORKERS:                   getEnvInt("WORKERS", 4),
		PARQUET_COMPRESSION:       getEnvString("PARQUET_COMPRESSION", "snappy"),
		CSV_DELIMITER:             getEnvString("CSV_DELIMITER", ","),
		REPORT_PATH:               getEnvString("REPORT_PATH", ""),
		CATALOG_DRIVER:            getEnvString("CATALOG_DRIVER", "sqlite"),
		CATALOG_DSN:               getEnvString("CATALOG_DSN", ""),
		CATALOG_CONN_MAX_LIFETIME: getEnvDuration("CATALOG_CONN_MAX_LIFETIME", 20*time.Minute),
		CATALOG_MAX_IDLE_CONNS:    getEnvInt("CATALOG_MAX_IDLE_CONNS", 2),
		CATALOG_MAX_OPEN_CONNS:    getEnvInt("CATALOG_MAX_OPEN_CONNS", 10),
		LOG_FILE_PATH:             getEnvString("LOG_FILE_PATH", ""),
		LOG_LEVEL:                 getEnvString("LOG_LEVEL", "info"),
	}
	return nil
}

func getEnvString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
		if i, err := strconv.Atoi(val); err == nil {
			return time.Duration(i) * time.Second
		}
	}
	return fallback
}
