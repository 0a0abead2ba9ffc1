// Package seasonstats models the per-player-per-season aggregate cache. It
// is derived state: always reconstructable from the match log plus the
// rating history, never a source of truth.
package seasonstats

// PlayerStats is one player's season summary.
type PlayerStats struct {
	PlayerID       string `json:"player_id"`
	SeasonNumber   int    `json:"season_number"`
	Rating         int    `json:"rating"`
	Wins           int    `json:"wins"`
	Losses         int    `json:"losses"`
	WinStreak      int    `json:"win_streak"`
	LoseStreak     int    `json:"lose_streak"`
	BestWinStreak  int    `json:"best_win_streak"`
	BestLoseStreak int    `json:"best_lose_streak"`
}
