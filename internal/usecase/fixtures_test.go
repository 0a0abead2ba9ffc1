package usecase

import (
	"time"

	"github.com/playrank/inhouse-ratings/internal/domain/match"
	"github.com/playrank/inhouse-ratings/internal/domain/season"
	"github.com/playrank/inhouse-ratings/internal/infrastructure/repository/memory"
)

const testSeason = 3

var testEpoch = time.Date(2026, time.March, 1, 20, 0, 0, 0, time.UTC)

func newSeededStore() *memory.Store {
	store := memory.NewStore()
	store.AddSeason(season.Season{
		Number:    testSeason,
		StartedAt: testEpoch.Add(-24 * time.Hour),
		Active:    true,
	})
	return store
}

// teamMatch builds a finished match ending id hours after the epoch, so
// match ids and canonical order agree.
func teamMatch(id int64, winner match.Side, double bool, home, away []string) match.Match {
	end := testEpoch.Add(time.Duration(id) * time.Hour)
	m := match.Match{
		ID:           id,
		SeasonNumber: testSeason,
		StartedAt:    end.Add(-50 * time.Minute),
		EndedAt:      end,
		Winner:       winner,
		DoubleRating: double,
	}
	for _, playerID := range home {
		m.Participants = append(m.Participants, match.Participation{
			MatchID:      id,
			PlayerID:     playerID,
			SeasonNumber: testSeason,
			Side:         match.SideHome,
		})
	}
	for _, playerID := range away {
		m.Participants = append(m.Participants, match.Participation{
			MatchID:      id,
			PlayerID:     playerID,
			SeasonNumber: testSeason,
			Side:         match.SideAway,
		})
	}
	return m
}
