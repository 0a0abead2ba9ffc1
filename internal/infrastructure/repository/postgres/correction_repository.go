package postgres

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/playrank/inhouse-ratings/internal/domain/correction"
	qb "github.com/playrank/inhouse-ratings/internal/platform/querybuilder"
)

// CorrectionRepository applies the multi-table correction batches. Each
// method runs inside one transaction: either every row changes or none do.
type CorrectionRepository struct {
	db *sqlx.DB
}

func NewCorrectionRepository(db *sqlx.DB) *CorrectionRepository {
	return &CorrectionRepository{db: db}
}

func (r *CorrectionRepository) RevertMatch(ctx context.Context, write correction.RevertWrite) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin tx revert match")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := deleteMatchRows(ctx, tx, write.Match.ID); err != nil {
		return err
	}

	for _, item := range write.RestoredStats {
		if err := upsertPlayerStats(ctx, tx, item); err != nil {
			return err
		}
	}
	for _, playerID := range write.RemovedStatsPlayerIDs {
		query, args, err := qb.DeleteFrom("player_season_stats").
			Where(
				qb.Eq("season_number", write.Match.SeasonNumber),
				qb.Eq("player_id", playerID),
			).
			ToSQL()
		if err != nil {
			return errors.Wrap(err, "build delete player stats query")
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return errors.Wrapf(err, "delete player stats player=%s season=%d", playerID, write.Match.SeasonNumber)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "commit revert match tx")
	}
	return nil
}

func (r *CorrectionRepository) ReplaceMatchOutcome(ctx context.Context, write correction.ReplaceWrite) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin tx replace match outcome")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Delete and re-insert under the same match id so references stay valid.
	if err := deleteMatchRows(ctx, tx, write.Match.ID); err != nil {
		return err
	}

	query, args, err := qb.InsertModel("matches", matchToInsertModel(write.Match), "")
	if err != nil {
		return errors.Wrap(err, "build insert match query")
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrapf(err, "insert match id=%d", write.Match.ID)
	}

	for _, p := range write.Match.Participants {
		query, args, err := qb.InsertModel("match_players", participationToInsertModel(p), "")
		if err != nil {
			return errors.Wrap(err, "build insert match player query")
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return errors.Wrapf(err, "insert match player match=%d player=%s", p.MatchID, p.PlayerID)
		}
	}

	for _, item := range write.Snapshots {
		query, args, err := qb.InsertModel("rating_history", snapshotToInsertModel(item), "")
		if err != nil {
			return errors.Wrap(err, "build insert snapshot query")
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return errors.Wrapf(err, "insert snapshot player=%s match=%d", item.PlayerID, item.MatchID)
		}
	}

	for _, item := range write.UpdatedStats {
		if err := upsertPlayerStats(ctx, tx, item); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "commit replace match outcome tx")
	}
	return nil
}

// deleteMatchRows removes the match and everything keyed by it, children
// first.
func deleteMatchRows(ctx context.Context, tx *sqlx.Tx, matchID int64) error {
	for _, target := range []struct {
		table  string
		column string
	}{
		{table: "rating_history", column: "match_id"},
		{table: "match_players", column: "match_id"},
		{table: "matches", column: "id"},
	} {
		query, args, err := qb.DeleteFrom(target.table).
			Where(qb.Eq(target.column, matchID)).
			ToSQL()
		if err != nil {
			return errors.Wrapf(err, "build delete %s query", target.table)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return errors.Wrapf(err, "delete %s rows match=%d", target.table, matchID)
		}
	}
	return nil
}
