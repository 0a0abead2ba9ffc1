// Package ratinghistory models the point-in-time rating snapshots written
// after every processed match.
package ratinghistory

import "time"

// Snapshot records a player's rating immediately after one match. At most
// one snapshot exists per (player, match), and snapshots are created in the
// same relative order as the matches they represent: "latest snapshot
// excluding match X" stands in for "rating just before match X".
type Snapshot struct {
	PlayerID     string    `json:"player_id"`
	MatchID      int64     `json:"match_id"`
	SeasonNumber int       `json:"season_number"`
	Rating       int       `json:"rating"`
	CreatedAt    time.Time `json:"created_at"`
}
