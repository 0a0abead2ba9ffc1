package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/playrank/inhouse-ratings/internal/domain/seasonstats"
	qb "github.com/playrank/inhouse-ratings/internal/platform/querybuilder"
)

const playerStatsUpsertSuffix = `ON CONFLICT (player_id, season_number)
DO UPDATE SET
    rating = EXCLUDED.rating,
    wins = EXCLUDED.wins,
    losses = EXCLUDED.losses,
    win_streak = EXCLUDED.win_streak,
    lose_streak = EXCLUDED.lose_streak,
    best_win_streak = EXCLUDED.best_win_streak,
    best_lose_streak = EXCLUDED.best_lose_streak,
    updated_at = NOW()`

type SeasonStatsRepository struct {
	db *sqlx.DB
}

func NewSeasonStatsRepository(db *sqlx.DB) *SeasonStatsRepository {
	return &SeasonStatsRepository{db: db}
}

func (r *SeasonStatsRepository) GetByPlayer(ctx context.Context, seasonNumber int, playerID string) (seasonstats.PlayerStats, bool, error) {
	query, args, err := qb.Select("*").From("player_season_stats").
		Where(
			qb.Eq("season_number", seasonNumber),
			qb.Eq("player_id", playerID),
		).
		ToSQL()
	if err != nil {
		return seasonstats.PlayerStats{}, false, fmt.Errorf("build get player stats query: %w", err)
	}

	var row playerStatsTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return seasonstats.PlayerStats{}, false, nil
		}
		return seasonstats.PlayerStats{}, false, fmt.Errorf("get player stats player=%s season=%d: %w", playerID, seasonNumber, err)
	}
	return row.toDomain(), true, nil
}

func (r *SeasonStatsRepository) ListBySeason(ctx context.Context, seasonNumber int) ([]seasonstats.PlayerStats, error) {
	query, args, err := qb.Select("*").From("player_season_stats").
		Where(qb.Eq("season_number", seasonNumber)).
		OrderBy("rating DESC", "player_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list season stats query: %w", err)
	}

	var rows []playerStatsTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list season stats season=%d: %w", seasonNumber, err)
	}

	out := make([]seasonstats.PlayerStats, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *SeasonStatsRepository) UpsertMany(ctx context.Context, items []seasonstats.PlayerStats) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx upsert season stats: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, item := range items {
		if err := upsertPlayerStats(ctx, tx, item); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert season stats tx: %w", err)
	}
	return nil
}

func upsertPlayerStats(ctx context.Context, ex sqlx.ExtContext, item seasonstats.PlayerStats) error {
	query, args, err := qb.InsertModel("player_season_stats", statsToInsertModel(item), playerStatsUpsertSuffix)
	if err != nil {
		return fmt.Errorf("build upsert player stats query: %w", err)
	}
	if _, err := ex.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert player stats player=%s season=%d: %w", item.PlayerID, item.SeasonNumber, err)
	}
	return nil
}
