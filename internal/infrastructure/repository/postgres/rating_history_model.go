package postgres

import (
	"time"

	"github.com/playrank/inhouse-ratings/internal/domain/ratinghistory"
)

type ratingSnapshotTableModel struct {
	ID           int64     `db:"id"`
	PlayerID     string    `db:"player_id"`
	MatchID      int64     `db:"match_id"`
	SeasonNumber int       `db:"season_number"`
	Rating       int       `db:"rating"`
	CreatedAt    time.Time `db:"created_at"`
}

func (m ratingSnapshotTableModel) toDomain() ratinghistory.Snapshot {
	return ratinghistory.Snapshot{
		PlayerID:     m.PlayerID,
		MatchID:      m.MatchID,
		SeasonNumber: m.SeasonNumber,
		Rating:       m.Rating,
		CreatedAt:    m.CreatedAt,
	}
}

type ratingSnapshotInsertModel struct {
	PlayerID     string `db:"player_id"`
	MatchID      int64  `db:"match_id"`
	SeasonNumber int    `db:"season_number"`
	Rating       int    `db:"rating"`
}

func snapshotToInsertModel(s ratinghistory.Snapshot) ratingSnapshotInsertModel {
	return ratingSnapshotInsertModel{
		PlayerID:     s.PlayerID,
		MatchID:      s.MatchID,
		SeasonNumber: s.SeasonNumber,
		Rating:       s.Rating,
	}
}
