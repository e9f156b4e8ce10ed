package sqlite3

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/HCodeKeeper/ai-moderated-blog/analytics"
	sq "github.com/Masterminds/squirrel"
)

type CommentStatsRepository struct {
	db *sql.DB
}

var _ analytics.CommentStatsRepository = (*CommentStatsRepository)(nil)

func NewCommentStatsRepository(db *sql.DB) *CommentStatsRepository {
	return &CommentStatsRepository{db: db}
}

// CountCommentsByDay groups comments created in [from, to) by calendar day
// and blocked state.
func (repo *CommentStatsRepository) CountCommentsByDay(
	ctx context.Context,
	from, to time.Time,
) ([]analytics.DayCount, error) {
	q := sq.Select(
		"date("+commentFieldCreatedAt+") AS day",
		commentFieldIsBlocked,
		"COUNT(*)",
	).
		From(tableComments).
		Where(sq.GtOrEq{commentFieldCreatedAt: from}).
		Where(sq.Lt{commentFieldCreatedAt: to}).
		GroupBy("day", commentFieldIsBlocked).
		OrderBy("day ASC").
		RunWith(repo.db)

	rows, err := q.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			slog.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	counts := make([]analytics.DayCount, 0)

	for rows.Next() {
		var (
			day     string
			blocked bool
			count   int
		)

		err := rows.Scan(&day, &blocked, &count)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		date, err := time.ParseInLocation(time.DateOnly, day, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("failed to parse day %q: %w", day, err)
		}

		counts = append(counts, analytics.DayCount{
			Date:    date,
			Blocked: blocked,
			Count:   count,
		})
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	return counts, nil
}
