package ratinghistory

import "context"

type Repository interface {
	// UpsertSnapshots writes snapshots keyed by (player, match) in slice
	// order. Existing rows are updated in place and keep their original
	// creation time, so re-running a replay never reorders history.
	UpsertSnapshots(ctx context.Context, items []Snapshot) error
	// GetLatestExcluding returns the most recently created snapshot for the
	// player in the season, ignoring the given match.
	GetLatestExcluding(ctx context.Context, seasonNumber int, playerID string, excludeMatchID int64) (Snapshot, bool, error)
}
