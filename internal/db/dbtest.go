package db

import (
	"errors"
	"os"
)

// InitTestDB connects to TEST_DATABASE_URL and applies the migrations found
// under migrationsPath.
func InitTestDB(migrationsPath string) (Store, error) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		return nil, errors.New("TEST_DATABASE_URL environment variable is not set")
	}

	conn, err := Init(dbURL)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(conn, migrationsPath); err != nil {
		return nil, err
	}

	return NewStore(conn), nil
}
