package repository

import (
	"context"
	"database/sql"
	"edirne-events/data/models"
	"fmt"
)

func (sr *SqlRepo) ListCategories(ctx context.Context, includeInactive bool) ([]models.Category, error) {
	out, err := sr.listByOrder(ctx, models.Category{}, includeInactive)
	if err != nil {
		return nil, err
	}
	return *out.(*[]models.Category), nil
}

func (sr *SqlRepo) ListVenueCategories(ctx context.Context, includeInactive bool) ([]models.VenueCategory, error) {
	out, err := sr.listByOrder(ctx, models.VenueCategory{}, includeInactive)
	if err != nil {
		return nil, err
	}
	return *out.(*[]models.VenueCategory), nil
}

func (sr *SqlRepo) listByOrder(ctx context.Context, m models.Model, includeInactive bool) (interface{}, error) {
	query := fmt.Sprintf("SELECT %s FROM %s", columnList(m, ""), m.TableName())
	if !includeInactive {
		query += " WHERE is_active = TRUE"
	}
	query += " ORDER BY sort_order ASC, id ASC"

	rows, err := sr.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, classify("error querying "+m.TableName(), err)
	}
	defer rows.Close()

	out, err := models.ScanRowsToSliceOfModels(m, rows, 0)
	if err != nil {
		return nil, fmt.Errorf("error scanning %s: %w", m.TableName(), err)
	}
	return out, nil
}

// Reorder applies all sort positions in one transaction. An id that
// doesn't exist aborts the whole batch with ErrNotFound.
func (sr *SqlRepo) Reorder(ctx context.Context, m models.Model, orders []models.SortOrder) error {
	query := fmt.Sprintf("UPDATE %s SET sort_order = $1 WHERE id = $2", m.TableName())

	return sr.withTx(ctx, func(tx *sql.Tx) error {
		for _, o := range orders {
			res, err := tx.ExecContext(ctx, query, o.SortOrder, o.ID)
			if err != nil {
				return classify("error reordering "+m.TableName(), err)
			}
			if err := expectRows(res); err != nil {
				return fmt.Errorf("category %d: %w", o.ID, err)
			}
		}
		return nil
	})
}
