package repository

import (
	"context"
	"database/sql"
	"edirne-events/data/models"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/pgx"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/sirupsen/logrus"
)

type DBRepo interface {
	Connection() *sql.DB
	RunMigrations(dbName string) error

	Create(ctx context.Context, m models.Model) (id int64, err error)
	Update(ctx context.Context, m models.Model) error
	Delete(ctx context.Context, m models.Model) error
	DeleteByID(ctx context.Context, m models.Model, id int64) error
	SetActive(ctx context.Context, m models.Model, id int64, active bool) error
	GetModelByID(ctx context.Context, m models.Model, id int64) (models.Model, error)
	Query(ctx context.Context, m models.Model, queryParams map[string]string) (interface{}, error)

	GetEvent(ctx context.Context, id int64) (models.Event, error)
	ListEvents(ctx context.Context, f EventFilter) ([]models.Event, error)
	QueryEvents(ctx context.Context, queryParams map[string]string) ([]models.Event, error)
	CreateEvent(ctx context.Context, e models.Event, set models.CategorySet) (int64, error)
	UpdateEvent(ctx context.Context, e models.Event, set models.CategorySet) error
	DeleteEvent(ctx context.Context, id int64) error
	EventCategories(ctx context.Context, eventID int64) ([]models.EventCategory, error)
	CountActiveCategories(ctx context.Context, set models.CategorySet) (int, error)
	DeactivateExpiredEvents(ctx context.Context, today models.Date) (int64, error)

	GetVenue(ctx context.Context, id int64) (models.Venue, error)
	ListVenues(ctx context.Context, f VenueFilter) ([]models.Venue, error)
	QueryVenues(ctx context.Context, queryParams map[string]string) ([]models.Venue, error)
	CreateVenue(ctx context.Context, v models.Venue) (int64, error)
	DeleteVenue(ctx context.Context, id int64) error

	ListCategories(ctx context.Context, includeInactive bool) ([]models.Category, error)
	ListVenueCategories(ctx context.Context, includeInactive bool) ([]models.VenueCategory, error)
	Reorder(ctx context.Context, m models.Model, orders []models.SortOrder) error

	ListPendingEvents(ctx context.Context) ([]models.PendingEvent, error)
	GetPendingEvent(ctx context.Context, id int64) (models.PendingEvent, error)
	CreatePendingEvent(ctx context.Context, p models.PendingEvent, set models.CategorySet) (int64, error)
	UpdatePendingEvent(ctx context.Context, p models.PendingEvent, set models.CategorySet) error
	DeletePendingEvent(ctx context.Context, id int64) error
	ListPendingVenues(ctx context.Context) ([]models.PendingVenue, error)
	GetPendingVenue(ctx context.Context, id int64) (models.PendingVenue, error)
	CreatePendingVenue(ctx context.Context, p models.PendingVenue) (int64, error)
	UpdatePendingVenue(ctx context.Context, p models.PendingVenue) error
	DeletePendingVenue(ctx context.Context, id int64) error
	CountPending(ctx context.Context) (events, venues int, err error)

	ListAnnouncements(ctx context.Context, includeHidden bool, now time.Time) ([]models.Announcement, error)
	MarkFeedbackRead(ctx context.Context, id int64, read bool) error
}

// querier is satisfied by both *sql.DB and *sql.Tx so statements can run
// inside or outside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type SqlRepo struct {
	DB  *sql.DB
	Log logrus.FieldLogger
}

func (sr *SqlRepo) Connection() *sql.DB {
	return sr.DB
}

func (sr *SqlRepo) logger() logrus.FieldLogger {
	if sr.Log == nil {
		return logrus.StandardLogger()
	}
	return sr.Log
}

func (sr *SqlRepo) RunMigrations(dbName string) error {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return fmt.Errorf("failed to get current file path")
	}

	dir := filepath.Dir(filename)
	migrationsDir := filepath.Join(dir, "../migrations")
	// Convert backslashes to forward slashes for Windows compatibility
	migrationsDir = strings.ReplaceAll(migrationsDir, "\\", "/")

	sr.logger().WithField("dir", migrationsDir).Info("resolved migrations directory")

	driver, err := pgx.WithInstance(sr.DB, &pgx.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+migrationsDir, dbName, driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	sr.logger().Info("migrations complete")
	return nil
}

// withTx runs fn inside a transaction, committing if it returns nil.
func (sr *SqlRepo) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := sr.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			sr.logger().WithError(rbErr).Warn("rollback failed")
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}
	return nil
}

// Create inserts a model into the corresponding db table and returns id of the
// newly created record.
func (sr *SqlRepo) Create(ctx context.Context, m models.Model) (id int64, err error) {
	return insertModel(ctx, sr.DB, m)
}

func insertModel(ctx context.Context, q querier, m models.Model) (id int64, err error) {
	vals := models.GetValsFromModel(m)

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		m.TableName(),
		strings.Join(models.GetColumnNames(m, true), ", "),
		placeholders(1, len(vals)))

	if err := q.QueryRowContext(ctx, query, vals...).Scan(&id); err != nil {
		return 0, classify("error inserting into "+m.TableName(), err)
	}

	return id, nil
}

func (sr *SqlRepo) Update(ctx context.Context, m models.Model) error {
	return updateModel(ctx, sr.DB, m)
}

func updateModel(ctx context.Context, q querier, m models.Model) error {
	columns := models.GetColumnNames(m, true)

	setClause := make([]string, len(columns))
	for i, c := range columns {
		setClause[i] = fmt.Sprintf("%s = $%d", c, i+1)
	}

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d",
		m.TableName(),
		strings.Join(setClause, ", "),
		len(columns)+1)

	vals := models.GetValsFromModel(m)
	vals = append(vals, m.GetID())
	res, err := q.ExecContext(ctx, query, vals...)
	if err != nil {
		return classify("error updating "+m.TableName(), err)
	}
	return expectRows(res)
}

func (sr *SqlRepo) Delete(ctx context.Context, m models.Model) error {
	return sr.DeleteByID(ctx, m, m.GetID())
}

func (sr *SqlRepo) DeleteByID(ctx context.Context, m models.Model, id int64) error {
	return deleteByID(ctx, sr.DB, m.TableName(), id)
}

func deleteByID(ctx context.Context, q querier, table string, id int64) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1", table)
	res, err := q.ExecContext(ctx, query, id)
	if err != nil {
		return classify("error deleting from "+table, err)
	}
	return expectRows(res)
}

// SetActive flips the is_active flag of a single row.
func (sr *SqlRepo) SetActive(ctx context.Context, m models.Model, id int64, active bool) error {
	query := fmt.Sprintf("UPDATE %s SET is_active = $1 WHERE id = $2", m.TableName())
	res, err := sr.DB.ExecContext(ctx, query, active, id)
	if err != nil {
		return classify("error updating "+m.TableName(), err)
	}
	return expectRows(res)
}

// GetModelByID retrieves a model from the db by its ID and returns it. The
// model must be passed as a pointer to the desired model type.
func (sr *SqlRepo) GetModelByID(ctx context.Context, m models.Model, id int64) (models.Model, error) {
	query := fmt.Sprintf("SELECT * FROM %s WHERE id = $1", m.TableName())
	r := sr.DB.QueryRowContext(ctx, query, id)

	if err := models.ScanRowToModel(m, r); err != nil {
		return nil, classify("error reading "+m.TableName(), err)
	}
	return m, nil
}

// Query returns a pointer to a slice of models matching the filter, sort and
// pagination grammar understood by buildQueryClauses.
func (sr *SqlRepo) Query(ctx context.Context, m models.Model, queryParams map[string]string) (interface{}, error) {
	clauses, values, err := buildQueryClauses(queryParams, m)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}

	query := fmt.Sprintf("SELECT * FROM %s %s", m.TableName(), clauses)
	rows, err := sr.DB.QueryContext(ctx, query, values...)
	if err != nil {
		return nil, classify("error querying "+m.TableName(), err)
	}
	defer rows.Close()

	limit := values[len(values)-2].(int)
	return models.ScanRowsToSliceOfModels(m, rows, limit)
}

func expectRows(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// placeholders returns n comma separated positional parameters starting at
// $start.
func placeholders(start, n int) string {
	ph := make([]string, n)
	for i := 0; i < n; i++ {
		ph[i] = fmt.Sprintf("$%d", start+i)
	}
	return strings.Join(ph, ", ")
}

func int64Args(ids []int64) []interface{} {
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
