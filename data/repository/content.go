package repository

import (
	"context"
	"edirne-events/data/models"
	"fmt"
	"time"
)

// ListAnnouncements returns announcements newest first. Unless includeHidden
// is set, only active announcements whose window contains now are returned.
func (sr *SqlRepo) ListAnnouncements(ctx context.Context, includeHidden bool, now time.Time) ([]models.Announcement, error) {
	query := fmt.Sprintf("SELECT %s FROM announcements", columnList(models.Announcement{}, ""))
	args := []interface{}{}
	if !includeHidden {
		query += ` WHERE is_active = TRUE
			AND (start_date IS NULL OR start_date <= $1)
			AND (end_date IS NULL OR end_date >= $1)`
		args = append(args, now)
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := sr.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify("error querying announcements", err)
	}
	defer rows.Close()

	out, err := models.ScanRowsToSliceOfModels(models.Announcement{}, rows, 0)
	if err != nil {
		return nil, fmt.Errorf("error scanning announcements: %w", err)
	}
	return *out.(*[]models.Announcement), nil
}

func (sr *SqlRepo) MarkFeedbackRead(ctx context.Context, id int64, read bool) error {
	res, err := sr.DB.ExecContext(ctx, "UPDATE feedback SET is_read = $1 WHERE id = $2", read, id)
	if err != nil {
		return classify("error updating feedback", err)
	}
	return expectRows(res)
}
