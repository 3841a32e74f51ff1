package repository

import (
	"context"
	"edirne-events/data/models"
	"fmt"
	"strings"
)

type VenueFilter struct {
	CategoryID      int64
	IncludeInactive bool
}

func (sr *SqlRepo) GetVenue(ctx context.Context, id int64) (models.Venue, error) {
	var v models.Venue
	query := fmt.Sprintf("SELECT %s FROM venues WHERE id = $1", columnList(v, ""))
	if err := models.ScanRowToModel(&v, sr.DB.QueryRowContext(ctx, query, id)); err != nil {
		return v, classify("error reading venue", err)
	}
	return v, nil
}

// ListVenues returns venues featured first, then newest first.
func (sr *SqlRepo) ListVenues(ctx context.Context, f VenueFilter) ([]models.Venue, error) {
	conds := []string{}
	args := []interface{}{}
	if !f.IncludeInactive {
		conds = append(conds, "is_active = TRUE")
	}
	if f.CategoryID > 0 {
		args = append(args, f.CategoryID)
		conds = append(conds, fmt.Sprintf("category_id = $%d", len(args)))
	}

	query := fmt.Sprintf("SELECT %s FROM venues", columnList(models.Venue{}, ""))
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY is_featured DESC, created_at DESC, id DESC"

	return sr.scanVenues(ctx, query, args, defaultLimit)
}

func (sr *SqlRepo) QueryVenues(ctx context.Context, queryParams map[string]string) ([]models.Venue, error) {
	clauses, values, err := buildQueryClauses(queryParams, models.Venue{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}

	query := fmt.Sprintf("SELECT %s FROM venues %s", columnList(models.Venue{}, ""), clauses)
	return sr.scanVenues(ctx, query, values, values[len(values)-2].(int))
}

func (sr *SqlRepo) scanVenues(ctx context.Context, query string, args []interface{}, expected int) ([]models.Venue, error) {
	rows, err := sr.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify("error querying venues", err)
	}
	defer rows.Close()

	out, err := models.ScanRowsToSliceOfModels(models.Venue{}, rows, expected)
	if err != nil {
		return nil, fmt.Errorf("error scanning venues: %w", err)
	}
	return *out.(*[]models.Venue), nil
}

func (sr *SqlRepo) CreateVenue(ctx context.Context, v models.Venue) (int64, error) {
	return insertModel(ctx, sr.DB, v)
}

func (sr *SqlRepo) DeleteVenue(ctx context.Context, id int64) error {
	return deleteByID(ctx, sr.DB, models.Venue{}.TableName(), id)
}
