package repository

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"testing"

	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/sirupsen/logrus"
)

var (
	host     = "localhost"
	user     = "user"
	password = "password"
	dbname   = "test_db"
	port     = "5435"
	dsn      = "host=%s port=%s user=%s password=%s dbname=%s sslmode=disable"
)

var resource *dockertest.Resource
var pool *dockertest.Pool
var testDB *sql.DB
var testRepo *SqlRepo

func cleanup() {
	log.Println("cleaning up")
	if resource != nil {
		log.Println("Purging resource")
		if err := pool.Purge(resource); err != nil {
			log.Printf("Could not purge resource: %s", err)
		}
	}
	if testDB != nil {
		log.Println("Closing testDB")
		if err := testDB.Close(); err != nil {
			log.Printf("Could not close testDB: %s", err)
		}
	}
}

func handleRecover(name string) {
	if r := recover(); r != nil {
		log.Printf("Test: %s recovered from panic: %v", name, r)
	}
}

// requireDB skips integration tests when no Postgres container could be
// started.
func requireDB(tb testing.TB) {
	tb.Helper()
	if testRepo == nil {
		tb.Skip("docker unavailable; skipping postgres integration test")
	}
}

func TestMain(m *testing.M) {
	var code int
	defer func() {
		handleRecover("TestMain")
		cleanup()
		log.Println("Exiting TestMain")
		os.Exit(code)
	}()

	if err := startPostgres(); err != nil {
		log.Printf("Integration tests disabled: %s", err)
		cleanup()
		resource, testDB, testRepo = nil, nil, nil
	}

	log.Println("Running tests")
	code = m.Run()
}

func startPostgres() error {
	var err error
	pool, err = dockertest.NewPool("")
	if err != nil {
		return fmt.Errorf("could not connect to docker: %w", err)
	}
	if err := pool.Client.Ping(); err != nil {
		return fmt.Errorf("could not reach docker: %w", err)
	}

	opts := dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "15",
		Env: []string{
			"POSTGRES_USER=" + user,
			"POSTGRES_PASSWORD=" + password,
			"POSTGRES_DB=" + dbname,
		},
		ExposedPorts: []string{"5432"},
		PortBindings: map[docker.Port][]docker.PortBinding{
			"5432": {
				{HostIP: "", HostPort: port},
			},
		},
	}

	if resource, err = pool.RunWithOptions(&opts, func(conf *docker.HostConfig) {
		conf.AutoRemove = true
	}); err != nil {
		return fmt.Errorf("could not start resource: %w", err)
	}

	if err := pool.Retry(func() error {
		var err error
		testDB, err = sql.Open("pgx", fmt.Sprintf(dsn, host, port, user, password, dbname))
		if err != nil {
			log.Println("Error:", err)
			return err
		}
		return testDB.Ping()
	}); err != nil {
		return fmt.Errorf("could not connect to postgres: %w", err)
	}

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	testRepo = &SqlRepo{DB: testDB, Log: logger}
	return testRepo.RunMigrations(dbname)
}
