package postgres

import (
	"database/sql"
	"time"

	"github.com/playrank/inhouse-ratings/internal/domain/match"
)

type matchTableModel struct {
	ID           int64          `db:"id"`
	SeasonNumber int            `db:"season_number"`
	StartedAt    time.Time      `db:"started_at"`
	EndedAt      time.Time      `db:"ended_at"`
	Winner       sql.NullString `db:"winner"`
	DoubleRating bool           `db:"double_rating"`
	CreatedAt    time.Time      `db:"created_at"`
}

func (m matchTableModel) toDomain() match.Match {
	out := match.Match{
		ID:           m.ID,
		SeasonNumber: m.SeasonNumber,
		StartedAt:    m.StartedAt,
		EndedAt:      m.EndedAt,
		DoubleRating: m.DoubleRating,
	}
	if m.Winner.Valid {
		out.Winner = match.Side(m.Winner.String)
	}
	return out
}

type matchInsertModel struct {
	ID           int64          `db:"id"`
	SeasonNumber int            `db:"season_number"`
	StartedAt    time.Time      `db:"started_at"`
	EndedAt      time.Time      `db:"ended_at"`
	Winner       sql.NullString `db:"winner"`
	DoubleRating bool           `db:"double_rating"`
}

func matchToInsertModel(m match.Match) matchInsertModel {
	out := matchInsertModel{
		ID:           m.ID,
		SeasonNumber: m.SeasonNumber,
		StartedAt:    m.StartedAt,
		EndedAt:      m.EndedAt,
		DoubleRating: m.DoubleRating,
	}
	if m.HasWinner() {
		out.Winner = sql.NullString{String: string(m.Winner), Valid: true}
	}
	return out
}

type matchPlayerTableModel struct {
	MatchID      int64  `db:"match_id"`
	PlayerID     string `db:"player_id"`
	SeasonNumber int    `db:"season_number"`
	Side         string `db:"side"`
	IsMVP        bool   `db:"is_mvp"`
	IsCaptain    bool   `db:"is_captain"`
}

func (m matchPlayerTableModel) toDomain() match.Participation {
	return match.Participation{
		MatchID:      m.MatchID,
		PlayerID:     m.PlayerID,
		SeasonNumber: m.SeasonNumber,
		Side:         match.Side(m.Side),
		MVP:          m.IsMVP,
		Captain:      m.IsCaptain,
	}
}

func participationToInsertModel(p match.Participation) matchPlayerTableModel {
	return matchPlayerTableModel{
		MatchID:      p.MatchID,
		PlayerID:     p.PlayerID,
		SeasonNumber: p.SeasonNumber,
		Side:         string(p.Side),
		IsMVP:        p.MVP,
		IsCaptain:    p.Captain,
	}
}

type playerOutcomeRow struct {
	MatchID int64          `db:"match_id"`
	EndedAt time.Time      `db:"ended_at"`
	Side    string         `db:"side"`
	Winner  sql.NullString `db:"winner"`
}

func (r playerOutcomeRow) toDomain() match.PlayerOutcome {
	out := match.PlayerOutcome{
		MatchID: r.MatchID,
		EndedAt: r.EndedAt,
		Side:    match.Side(r.Side),
	}
	if r.Winner.Valid {
		out.Winner = match.Side(r.Winner.String)
	}
	return out
}
