package repository

import (
	"context"
	"database/sql"
	"edirne-events/data/models"
	"fmt"
	"strings"
)

// EventFilter narrows the public event listing.
type EventFilter struct {
	CategoryID      int64
	Featured        bool
	IncludeInactive bool
	// Upcoming drops events that ended before Today.
	Upcoming bool
	Today    models.Date
	Search   string
}

// columnList returns the model's column names, optionally qualified with a
// table alias, in scan order.
func columnList(m models.Model, alias string) string {
	cols := models.GetColumnNames(m, false)
	if alias != "" {
		for i, c := range cols {
			cols[i] = alias + "." + c
		}
	}
	return strings.Join(cols, ", ")
}

func (sr *SqlRepo) GetEvent(ctx context.Context, id int64) (models.Event, error) {
	var e models.Event
	query := fmt.Sprintf("SELECT %s FROM events WHERE id = $1", columnList(e, ""))
	if err := models.ScanRowToModel(&e, sr.DB.QueryRowContext(ctx, query, id)); err != nil {
		return e, classify("error reading event", err)
	}

	events := []models.Event{e}
	if err := sr.attachCategories(ctx, events); err != nil {
		return e, err
	}
	return events[0], nil
}

// ListEvents returns events joined with their categories, featured first and
// then by start date.
func (sr *SqlRepo) ListEvents(ctx context.Context, f EventFilter) ([]models.Event, error) {
	conds := []string{}
	args := []interface{}{}
	next := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if !f.IncludeInactive {
		conds = append(conds, "e.is_active = TRUE")
	}
	if f.Featured {
		conds = append(conds, "e.is_featured = TRUE")
	}
	if f.CategoryID > 0 {
		conds = append(conds, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM event_categories ec WHERE ec.event_id = e.id AND ec.category_id = %s)", next(f.CategoryID)))
	}
	if f.Upcoming && !f.Today.IsZero() {
		conds = append(conds, fmt.Sprintf("COALESCE(e.end_date, e.start_date) >= %s", next(f.Today)))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		ph := next("%" + s + "%")
		conds = append(conds, fmt.Sprintf("(e.title ILIKE %[1]s OR e.description ILIKE %[1]s OR e.location ILIKE %[1]s)", ph))
	}

	query := fmt.Sprintf("SELECT %s FROM events e", columnList(models.Event{}, "e"))
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY e.is_featured DESC, e.start_date ASC, e.id ASC"

	return sr.scanEvents(ctx, query, args, defaultLimit)
}

// QueryEvents lists events through the query-string filter grammar.
func (sr *SqlRepo) QueryEvents(ctx context.Context, queryParams map[string]string) ([]models.Event, error) {
	clauses, values, err := buildQueryClauses(queryParams, models.Event{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}

	query := fmt.Sprintf("SELECT %s FROM events %s", columnList(models.Event{}, ""), clauses)
	return sr.scanEvents(ctx, query, values, values[len(values)-2].(int))
}

func (sr *SqlRepo) scanEvents(ctx context.Context, query string, args []interface{}, expected int) ([]models.Event, error) {
	rows, err := sr.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify("error querying events", err)
	}
	defer rows.Close()

	out, err := models.ScanRowsToSliceOfModels(models.Event{}, rows, expected)
	if err != nil {
		return nil, fmt.Errorf("error scanning events: %w", err)
	}
	events := *out.(*[]models.Event)

	if err := sr.attachCategories(ctx, events); err != nil {
		return nil, err
	}
	return events, nil
}

// attachCategories loads the joined category rows for all events in one
// round trip. CategoryIDs keep the order the set was stored in, primary first.
func (sr *SqlRepo) attachCategories(ctx context.Context, events []models.Event) error {
	if len(events) == 0 {
		return nil
	}

	ids := make([]int64, len(events))
	index := make(map[int64]int, len(events))
	for i, e := range events {
		ids[i] = e.ID
		index[e.ID] = i
	}

	cats, err := sr.eventCategories(ctx, ids)
	if err != nil {
		return err
	}
	for _, c := range cats {
		i := index[c.EventID]
		events[i].Categories = append(events[i].Categories, c)
		events[i].CategoryIDs = append(events[i].CategoryIDs, c.CategoryID)
	}
	return nil
}

func (sr *SqlRepo) eventCategories(ctx context.Context, eventIDs []int64) ([]models.EventCategory, error) {
	query := fmt.Sprintf(`SELECT ec.event_id, c.id, c.name, c.display_name, c.color, c.icon
		FROM event_categories ec
		JOIN categories c ON c.id = ec.category_id
		WHERE ec.event_id IN (%s)
		ORDER BY ec.event_id, ec.position, c.sort_order, c.id`, placeholders(1, len(eventIDs)))

	rows, err := sr.DB.QueryContext(ctx, query, int64Args(eventIDs)...)
	if err != nil {
		return nil, classify("error reading event categories", err)
	}
	defer rows.Close()

	cats := []models.EventCategory{}
	for rows.Next() {
		var c models.EventCategory
		if err := rows.Scan(&c.EventID, &c.CategoryID, &c.Name, &c.DisplayName, &c.Color, &c.Icon); err != nil {
			return nil, fmt.Errorf("error scanning event category: %w", err)
		}
		cats = append(cats, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return cats, nil
}

// EventCategories returns the categories of one event. An event without join
// rows yields an empty slice; a missing event yields ErrNotFound.
func (sr *SqlRepo) EventCategories(ctx context.Context, eventID int64) ([]models.EventCategory, error) {
	var exists bool
	if err := sr.DB.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM events WHERE id = $1)", eventID).Scan(&exists); err != nil {
		return nil, classify("error reading event", err)
	}
	if !exists {
		return nil, ErrNotFound
	}
	return sr.eventCategories(ctx, []int64{eventID})
}

// CountActiveCategories returns how many ids of set name an active category.
func (sr *SqlRepo) CountActiveCategories(ctx context.Context, set models.CategorySet) (int, error) {
	if len(set) == 0 {
		return 0, nil
	}
	query := fmt.Sprintf("SELECT COUNT(*) FROM categories WHERE is_active = TRUE AND id IN (%s)", placeholders(1, len(set)))

	var n int
	if err := sr.DB.QueryRowContext(ctx, query, int64Args(set)...).Scan(&n); err != nil {
		return 0, classify("error counting categories", err)
	}
	return n, nil
}

// CreateEvent inserts the event and its category join rows in one
// transaction. The first id of set becomes the event's primary category.
func (sr *SqlRepo) CreateEvent(ctx context.Context, e models.Event, set models.CategorySet) (int64, error) {
	e.CategoryID = set.Primary()

	var id int64
	err := sr.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		if id, err = insertModel(ctx, tx, e); err != nil {
			return err
		}
		return insertEventCategories(ctx, tx, id, set)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// UpdateEvent writes every column of e and replaces its category rows.
func (sr *SqlRepo) UpdateEvent(ctx context.Context, e models.Event, set models.CategorySet) error {
	e.CategoryID = set.Primary()

	return sr.withTx(ctx, func(tx *sql.Tx) error {
		if err := updateModel(ctx, tx, e); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM event_categories WHERE event_id = $1", e.ID); err != nil {
			return classify("error clearing event categories", err)
		}
		return insertEventCategories(ctx, tx, e.ID, set)
	})
}

func insertEventCategories(ctx context.Context, q querier, eventID int64, set models.CategorySet) error {
	if len(set) == 0 {
		return nil
	}

	values := make([]string, len(set))
	args := make([]interface{}, 0, len(set)*3)
	for i, cid := range set {
		values[i] = fmt.Sprintf("($%d, $%d, $%d)", i*3+1, i*3+2, i*3+3)
		args = append(args, eventID, cid, i)
	}

	query := "INSERT INTO event_categories (event_id, category_id, position) VALUES " + strings.Join(values, ", ")
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return classify("error inserting event categories", err)
	}
	return nil
}

func (sr *SqlRepo) DeleteEvent(ctx context.Context, id int64) error {
	return deleteByID(ctx, sr.DB, models.Event{}.TableName(), id)
}

// DeactivateExpiredEvents clears is_active on active events whose last day is
// before today and returns how many were changed.
func (sr *SqlRepo) DeactivateExpiredEvents(ctx context.Context, today models.Date) (int64, error) {
	res, err := sr.DB.ExecContext(ctx,
		"UPDATE events SET is_active = FALSE WHERE is_active = TRUE AND COALESCE(end_date, start_date) < $1", today)
	if err != nil {
		return 0, classify("error deactivating expired events", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("error reading affected rows: %w", err)
	}
	return n, nil
}
