// Package match models the finished-match log: the append-mostly source of
// truth every derived rating table is rebuilt from.
package match

import "time"

// Side identifies one of the two rosters in a match.
type Side string

const (
	SideHome Side = "home"
	SideAway Side = "away"
)

func (s Side) Valid() bool {
	return s == SideHome || s == SideAway
}

func (s Side) Opponent() Side {
	if s == SideHome {
		return SideAway
	}
	return SideHome
}

// Match is one finished game. Winner is empty when no result was recorded.
type Match struct {
	ID           int64     `json:"id"`
	SeasonNumber int       `json:"season_number"`
	StartedAt    time.Time `json:"started_at"`
	EndedAt      time.Time `json:"ended_at"`
	Winner       Side      `json:"winner,omitempty"`
	DoubleRating bool      `json:"double_rating"`

	Participants []Participation `json:"participants,omitempty"`
}

func (m Match) HasWinner() bool {
	return m.Winner.Valid()
}

// Participation is one player's roster slot in one match. A player appears
// at most once per match.
type Participation struct {
	MatchID      int64  `json:"match_id"`
	PlayerID     string `json:"player_id"`
	SeasonNumber int    `json:"season_number"`
	Side         Side   `json:"side"`
	MVP          bool   `json:"mvp"`
	Captain      bool   `json:"captain"`
}

// PlayerOutcome is one row of a player's season timeline, ordered by the
// owning match's end time.
type PlayerOutcome struct {
	MatchID int64
	EndedAt time.Time
	Side    Side
	Winner  Side
}

func (o PlayerOutcome) Decided() bool {
	return o.Winner.Valid()
}

func (o PlayerOutcome) Won() bool {
	return o.Decided() && o.Winner == o.Side
}
