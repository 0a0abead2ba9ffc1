package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/playrank/inhouse-ratings/internal/domain/ratinghistory"
	qb "github.com/playrank/inhouse-ratings/internal/platform/querybuilder"
)

// snapshot upsert touches only the rating: created_at keeps its original
// value so snapshot order is stable across replays.
const snapshotUpsertSuffix = `ON CONFLICT (player_id, match_id)
DO UPDATE SET rating = EXCLUDED.rating`

type RatingHistoryRepository struct {
	db *sqlx.DB
}

func NewRatingHistoryRepository(db *sqlx.DB) *RatingHistoryRepository {
	return &RatingHistoryRepository{db: db}
}

func (r *RatingHistoryRepository) UpsertSnapshots(ctx context.Context, items []ratinghistory.Snapshot) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx upsert snapshots: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, item := range items {
		query, args, err := qb.InsertModel("rating_history", snapshotToInsertModel(item), snapshotUpsertSuffix)
		if err != nil {
			return fmt.Errorf("build upsert snapshot query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert snapshot player=%s match=%d: %w", item.PlayerID, item.MatchID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert snapshots tx: %w", err)
	}
	return nil
}

func (r *RatingHistoryRepository) GetLatestExcluding(ctx context.Context, seasonNumber int, playerID string, excludeMatchID int64) (ratinghistory.Snapshot, bool, error) {
	query, args, err := qb.Select("*").From("rating_history").
		Where(
			qb.Eq("season_number", seasonNumber),
			qb.Eq("player_id", playerID),
			qb.Neq("match_id", excludeMatchID),
		).
		OrderBy("created_at DESC", "id DESC").
		Limit(1).
		ToSQL()
	if err != nil {
		return ratinghistory.Snapshot{}, false, fmt.Errorf("build latest snapshot query: %w", err)
	}

	var row ratingSnapshotTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return ratinghistory.Snapshot{}, false, nil
		}
		return ratinghistory.Snapshot{}, false, fmt.Errorf("get latest snapshot player=%s season=%d: %w", playerID, seasonNumber, err)
	}
	return row.toDomain(), true, nil
}
