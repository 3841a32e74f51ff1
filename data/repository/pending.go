package repository

import (
	"context"
	"database/sql"
	"edirne-events/data/models"
	"fmt"
	"strings"
)

func (sr *SqlRepo) ListPendingEvents(ctx context.Context) ([]models.PendingEvent, error) {
	query := fmt.Sprintf("SELECT %s FROM pending_events ORDER BY created_at DESC, id DESC", columnList(models.PendingEvent{}, ""))
	rows, err := sr.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, classify("error querying pending events", err)
	}
	defer rows.Close()

	out, err := models.ScanRowsToSliceOfModels(models.PendingEvent{}, rows, 0)
	if err != nil {
		return nil, fmt.Errorf("error scanning pending events: %w", err)
	}
	pending := *out.(*[]models.PendingEvent)
	if len(pending) == 0 {
		return pending, nil
	}

	ids := make([]int64, len(pending))
	index := make(map[int64]int, len(pending))
	for i, p := range pending {
		ids[i] = p.ID
		index[p.ID] = i
	}
	sets, err := pendingCategoryIDs(ctx, sr.DB, ids)
	if err != nil {
		return nil, err
	}
	for id, set := range sets {
		pending[index[id]].CategoryIDs = set
	}
	return pending, nil
}

// GetPendingEvent returns the suggestion with its category ids in the order
// they were filed.
func (sr *SqlRepo) GetPendingEvent(ctx context.Context, id int64) (models.PendingEvent, error) {
	var p models.PendingEvent
	query := fmt.Sprintf("SELECT %s FROM pending_events WHERE id = $1", columnList(p, ""))
	if err := models.ScanRowToModel(&p, sr.DB.QueryRowContext(ctx, query, id)); err != nil {
		return p, classify("error reading pending event", err)
	}

	sets, err := pendingCategoryIDs(ctx, sr.DB, []int64{id})
	if err != nil {
		return p, err
	}
	p.CategoryIDs = sets[id]
	return p, nil
}

func pendingCategoryIDs(ctx context.Context, q querier, ids []int64) (map[int64][]int64, error) {
	query := fmt.Sprintf(`SELECT pending_event_id, category_id FROM pending_event_categories
		WHERE pending_event_id IN (%s) ORDER BY pending_event_id, position`, placeholders(1, len(ids)))

	rows, err := q.QueryContext(ctx, query, int64Args(ids)...)
	if err != nil {
		return nil, classify("error reading pending event categories", err)
	}
	defer rows.Close()

	sets := make(map[int64][]int64)
	for rows.Next() {
		var pid, cid int64
		if err := rows.Scan(&pid, &cid); err != nil {
			return nil, fmt.Errorf("error scanning pending event category: %w", err)
		}
		sets[pid] = append(sets[pid], cid)
	}
	return sets, rows.Err()
}

func (sr *SqlRepo) CreatePendingEvent(ctx context.Context, p models.PendingEvent, set models.CategorySet) (int64, error) {
	p.CategoryID = set.Primary()

	var id int64
	err := sr.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		if id, err = insertModel(ctx, tx, p); err != nil {
			return err
		}
		return insertPendingCategories(ctx, tx, id, set)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (sr *SqlRepo) UpdatePendingEvent(ctx context.Context, p models.PendingEvent, set models.CategorySet) error {
	p.CategoryID = set.Primary()

	return sr.withTx(ctx, func(tx *sql.Tx) error {
		if err := updateModel(ctx, tx, p); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM pending_event_categories WHERE pending_event_id = $1", p.ID); err != nil {
			return classify("error clearing pending event categories", err)
		}
		return insertPendingCategories(ctx, tx, p.ID, set)
	})
}

func insertPendingCategories(ctx context.Context, q querier, pendingID int64, set models.CategorySet) error {
	if len(set) == 0 {
		return nil
	}

	values := make([]string, len(set))
	args := make([]interface{}, 0, len(set)*3)
	for i, cid := range set {
		values[i] = fmt.Sprintf("($%d, $%d, $%d)", i*3+1, i*3+2, i*3+3)
		args = append(args, pendingID, cid, i)
	}

	query := "INSERT INTO pending_event_categories (pending_event_id, category_id, position) VALUES " + strings.Join(values, ", ")
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return classify("error inserting pending event categories", err)
	}
	return nil
}

// DeletePendingEvent removes the suggestion. ErrNotFound means another
// decision already removed it.
func (sr *SqlRepo) DeletePendingEvent(ctx context.Context, id int64) error {
	return deleteByID(ctx, sr.DB, models.PendingEvent{}.TableName(), id)
}

func (sr *SqlRepo) ListPendingVenues(ctx context.Context) ([]models.PendingVenue, error) {
	query := fmt.Sprintf("SELECT %s FROM pending_venues ORDER BY created_at DESC, id DESC", columnList(models.PendingVenue{}, ""))
	rows, err := sr.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, classify("error querying pending venues", err)
	}
	defer rows.Close()

	out, err := models.ScanRowsToSliceOfModels(models.PendingVenue{}, rows, 0)
	if err != nil {
		return nil, fmt.Errorf("error scanning pending venues: %w", err)
	}
	return *out.(*[]models.PendingVenue), nil
}

func (sr *SqlRepo) GetPendingVenue(ctx context.Context, id int64) (models.PendingVenue, error) {
	var p models.PendingVenue
	query := fmt.Sprintf("SELECT %s FROM pending_venues WHERE id = $1", columnList(p, ""))
	if err := models.ScanRowToModel(&p, sr.DB.QueryRowContext(ctx, query, id)); err != nil {
		return p, classify("error reading pending venue", err)
	}
	return p, nil
}

func (sr *SqlRepo) CreatePendingVenue(ctx context.Context, p models.PendingVenue) (int64, error) {
	return insertModel(ctx, sr.DB, p)
}

func (sr *SqlRepo) UpdatePendingVenue(ctx context.Context, p models.PendingVenue) error {
	return updateModel(ctx, sr.DB, p)
}

func (sr *SqlRepo) DeletePendingVenue(ctx context.Context, id int64) error {
	return deleteByID(ctx, sr.DB, models.PendingVenue{}.TableName(), id)
}

// CountPending returns the number of suggestions awaiting review per kind.
func (sr *SqlRepo) CountPending(ctx context.Context) (events, venues int, err error) {
	err = sr.DB.QueryRowContext(ctx,
		"SELECT (SELECT COUNT(*) FROM pending_events), (SELECT COUNT(*) FROM pending_venues)").Scan(&events, &venues)
	if err != nil {
		return 0, 0, classify("error counting pending records", err)
	}
	return events, venues, nil
}
