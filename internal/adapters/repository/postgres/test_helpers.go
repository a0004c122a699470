package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// getProjectRoot finds the project root by searching upwards for the go.mod file.
func getProjectRoot() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(wd, "go.mod")); err == nil {
			return wd, nil
		}
		if wd == filepath.Dir(wd) {
			return "", errors.New("go.mod not found in any parent directory")
		}
		wd = filepath.Dir(wd)
	}
}

// MigrationsSourceURL returns the file:// url of db/migrations
func MigrationsSourceURL() (string, error) {
	projectRoot, err := getProjectRoot()
	if err != nil {
		return "", err
	}
	u := &url.URL{
		Scheme: "file",
		Path:   filepath.ToSlash(filepath.Join(projectRoot, "db", "migrations")),
	}
	return u.String(), nil
}

// NewTestDB starts a migrated postgres container. It returns the connection,
// a cleanup func terminating the container and a func truncating every table.
func NewTestDB(t *testing.T) (*sql.DB, func(), func()) {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "filedrop",
			"POSTGRES_PASSWORD": "filedrop",
			"POSTGRES_DB":       "filedrop_test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("could not start postgres container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("could not read container host: %v", err)
	}
	p, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("could not read container port: %v", err)
	}
	dbURL := fmt.Sprintf("postgres://filedrop:filedrop@%s:%s/filedrop_test?sslmode=disable", host, p.Port())

	source, err := MigrationsSourceURL()
	if err != nil {
		t.Fatalf("could not locate migrations: %v", err)
	}

	m, err := migrate.New(source, dbURL)
	if err != nil {
		t.Fatalf("failed to init migrate with URL %s: %v", source, err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		t.Fatalf("failed to run up migrations: %v", err)
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		t.Fatalf("failed to connect to postgres: %v", err)
	}

	cleanup := func() {
		db.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Fatalf("failed to terminate postgres container: %v", err)
		}
	}

	truncateAll := func() {
		query := `
           DO $$
           DECLARE
               r RECORD;
           BEGIN
               FOR r IN (SELECT tablename FROM pg_tables WHERE schemaname = 'public' AND tablename <> 'schema_migrations')
               LOOP
                   EXECUTE 'TRUNCATE TABLE ' || quote_ident(r.tablename) || ' CASCADE';
               END LOOP;
           END $$;
       `
		if _, err := db.Exec(query); err != nil {
			t.Fatalf("failed to truncate tables: %v", err)
		}
	}
	return db, cleanup, truncateAll
}

// SeedUser inserts a user row so foreign keys on files and user_quota hold
func SeedUser(t *testing.T, db *sql.DB, id string, apiKey *string) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO users (id, email, api_key) VALUES ($1, $2, $3)`, id, id+"@example.com", apiKey)
	if err != nil {
		t.Fatalf("failed to seed user %s: %v", id, err)
	}
}

// SeedFolder inserts a folder owned by userID
func SeedFolder(t *testing.T, db *sql.DB, id, userID string) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO folders (id, user_id, name) VALUES ($1, $2, $3)`, id, userID, "folder "+id)
	if err != nil {
		t.Fatalf("failed to seed folder %s: %v", id, err)
	}
}
