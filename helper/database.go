package helper

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// DatabaseConfiguration holds the connection parameters for Postgres.
type DatabaseConfiguration struct {
	Host     string
	Port     string
	Database string
	Username string
	Password string
	Schema   string
	SSLMode  string
}

// NewDatabaseConfiguration creates a configuration from environment variables.
// A .env file in the working directory is loaded if present.
// Required: DB_HOST, DB_PORT, DB_DATABASE, DB_USERNAME, DB_PASSWORD.
// Optional: DB_SCHEMA (default "public"), DB_SSLMODE (default "disable").
func NewDatabaseConfiguration() (*DatabaseConfiguration, error) {
	_ = godotenv.Load()

	config := &DatabaseConfiguration{
		Host:     os.Getenv("DB_HOST"),
		Port:     os.Getenv("DB_PORT"),
		Database: os.Getenv("DB_DATABASE"),
		Username: os.Getenv("DB_USERNAME"),
		Password: os.Getenv("DB_PASSWORD"),
		Schema:   os.Getenv("DB_SCHEMA"),
		SSLMode:  os.Getenv("DB_SSLMODE"),
	}

	if config.Host == "" || config.Port == "" || config.Database == "" || config.Username == "" || config.Password == "" {
		return nil, NewError("read database configuration", fmt.Errorf("missing one of DB_HOST, DB_PORT, DB_DATABASE, DB_USERNAME, DB_PASSWORD"))
	}
	if config.Schema == "" {
		config.Schema = "public"
	}
	if config.SSLMode == "" {
		config.SSLMode = "disable"
	}

	return config, nil
}

// Database wraps a named sql.DB instance with its logger.
type Database struct {
	Name     string
	Instance *sql.DB
	Logger   *slog.Logger
}

// NewDatabase opens a connection to Postgres and verifies it with a ping.
// It panics if the database is not reachable, since nothing in the
// application can work without storage.
func NewDatabase(name string, config *DatabaseConfiguration, logger *slog.Logger) *Database {
	connStr := fmt.Sprintf(
		"postgresql://%v:%v@%v:%v/%v?sslmode=%v&search_path=%v",
		config.Username,
		config.Password,
		config.Host,
		config.Port,
		config.Database,
		config.SSLMode,
		config.Schema,
	)

	instance, err := sql.Open("postgres", connStr)
	if err != nil {
		log.Panicf("error opening database %v: %v", name, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err = instance.PingContext(ctx)
	if err != nil {
		log.Panicf("error pinging database %v: %v", name, err)
	}

	logger.Info("Connected to database", slog.String("name", name), slog.String("host", config.Host))

	return &Database{
		Name:     name,
		Instance: instance,
		Logger:   logger,
	}
}

// NewTestDatabase opens a database connection with a discarding logger for tests.
func NewTestDatabase(config *DatabaseConfiguration) *Database {
	logger := slog.New(slog.DiscardHandler)
	return NewDatabase("test", config, logger)
}
