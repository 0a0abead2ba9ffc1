package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/playrank/inhouse-ratings/internal/domain/match"
	qb "github.com/playrank/inhouse-ratings/internal/platform/querybuilder"
)

type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) GetByID(ctx context.Context, matchID int64) (match.Match, bool, error) {
	query, args, err := qb.Select("*").From("matches").
		Where(qb.Eq("id", matchID)).
		ToSQL()
	if err != nil {
		return match.Match{}, false, fmt.Errorf("build get match query: %w", err)
	}

	var row matchTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Match{}, false, nil
		}
		return match.Match{}, false, fmt.Errorf("get match id=%d: %w", matchID, err)
	}

	out := row.toDomain()
	participants, err := r.listParticipants(ctx, qb.Eq("match_id", matchID))
	if err != nil {
		return match.Match{}, false, err
	}
	out.Participants = participants[matchID]
	return out, true, nil
}

func (r *MatchRepository) GetLatestFinished(ctx context.Context, seasonNumber int) (match.Match, bool, error) {
	query, args, err := qb.Select("*").From("matches").
		Where(qb.Eq("season_number", seasonNumber)).
		OrderBy("ended_at DESC", "started_at DESC", "id DESC").
		Limit(1).
		ToSQL()
	if err != nil {
		return match.Match{}, false, fmt.Errorf("build latest match query: %w", err)
	}

	var row matchTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Match{}, false, nil
		}
		return match.Match{}, false, fmt.Errorf("get latest match season=%d: %w", seasonNumber, err)
	}

	out := row.toDomain()
	participants, err := r.listParticipants(ctx, qb.Eq("match_id", row.ID))
	if err != nil {
		return match.Match{}, false, err
	}
	out.Participants = participants[row.ID]
	return out, true, nil
}

func (r *MatchRepository) ListFinishedBySeason(ctx context.Context, seasonNumber int) ([]match.Match, error) {
	query, args, err := qb.Select("*").From("matches").
		Where(qb.Eq("season_number", seasonNumber)).
		OrderBy("ended_at", "started_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list matches query: %w", err)
	}

	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list matches season=%d: %w", seasonNumber, err)
	}

	participants, err := r.listParticipants(ctx, qb.Eq("season_number", seasonNumber))
	if err != nil {
		return nil, err
	}

	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		item := row.toDomain()
		item.Participants = participants[row.ID]
		out = append(out, item)
	}
	return out, nil
}

func (r *MatchRepository) ListPlayerOutcomes(ctx context.Context, seasonNumber int, playerID string) ([]match.PlayerOutcome, error) {
	query, args, err := qb.Select("mp.match_id", "m.ended_at", "mp.side", "m.winner").
		From("match_players mp JOIN matches m ON m.id = mp.match_id").
		Where(
			qb.Eq("mp.season_number", seasonNumber),
			qb.Eq("mp.player_id", playerID),
		).
		OrderBy("m.ended_at", "m.started_at", "m.id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list player outcomes query: %w", err)
	}

	var rows []playerOutcomeRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list outcomes player=%s season=%d: %w", playerID, seasonNumber, err)
	}

	out := make([]match.PlayerOutcome, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *MatchRepository) CountPlayerParticipations(ctx context.Context, seasonNumber int, playerID string) (int, error) {
	query, args, err := qb.Select("COUNT(*)").From("match_players").
		Where(
			qb.Eq("season_number", seasonNumber),
			qb.Eq("player_id", playerID),
		).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build count participations query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count participations player=%s season=%d: %w", playerID, seasonNumber, err)
	}
	return count, nil
}

// listParticipants loads roster rows matching the condition, grouped by
// match. Ordering is (match_id, player_id) so rosters come back stable.
func (r *MatchRepository) listParticipants(ctx context.Context, cond qb.Condition) (map[int64][]match.Participation, error) {
	query, args, err := qb.Select("*").From("match_players").
		Where(cond).
		OrderBy("match_id", "player_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list match players query: %w", err)
	}

	var rows []matchPlayerTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list match players: %w", err)
	}

	out := make(map[int64][]match.Participation, len(rows))
	for _, row := range rows {
		out[row.MatchID] = append(out[row.MatchID], row.toDomain())
	}
	return out, nil
}
