package postgres

import (
	"time"

	"github.com/playrank/inhouse-ratings/internal/domain/seasonstats"
)

type playerStatsTableModel struct {
	PlayerID       string    `db:"player_id"`
	SeasonNumber   int       `db:"season_number"`
	Rating         int       `db:"rating"`
	Wins           int       `db:"wins"`
	Losses         int       `db:"losses"`
	WinStreak      int       `db:"win_streak"`
	LoseStreak     int       `db:"lose_streak"`
	BestWinStreak  int       `db:"best_win_streak"`
	BestLoseStreak int       `db:"best_lose_streak"`
	UpdatedAt      time.Time `db:"updated_at"`
}

func (m playerStatsTableModel) toDomain() seasonstats.PlayerStats {
	return seasonstats.PlayerStats{
		PlayerID:       m.PlayerID,
		SeasonNumber:   m.SeasonNumber,
		Rating:         m.Rating,
		Wins:           m.Wins,
		Losses:         m.Losses,
		WinStreak:      m.WinStreak,
		LoseStreak:     m.LoseStreak,
		BestWinStreak:  m.BestWinStreak,
		BestLoseStreak: m.BestLoseStreak,
	}
}

type playerStatsInsertModel struct {
	PlayerID       string `db:"player_id"`
	SeasonNumber   int    `db:"season_number"`
	Rating         int    `db:"rating"`
	Wins           int    `db:"wins"`
	Losses         int    `db:"losses"`
	WinStreak      int    `db:"win_streak"`
	LoseStreak     int    `db:"lose_streak"`
	BestWinStreak  int    `db:"best_win_streak"`
	BestLoseStreak int    `db:"best_lose_streak"`
}

func statsToInsertModel(s seasonstats.PlayerStats) playerStatsInsertModel {
	return playerStatsInsertModel{
		PlayerID:       s.PlayerID,
		SeasonNumber:   s.SeasonNumber,
		Rating:         s.Rating,
		Wins:           s.Wins,
		Losses:         s.Losses,
		WinStreak:      s.WinStreak,
		LoseStreak:     s.LoseStreak,
		BestWinStreak:  s.BestWinStreak,
		BestLoseStreak: s.BestLoseStreak,
	}
}
