// Package correction defines the atomic write batches used by the two point
// corrections. Each batch is applied inside a single storage transaction so
// partial application is impossible.
package correction

import (
	"context"

	"github.com/playrank/inhouse-ratings/internal/domain/match"
	"github.com/playrank/inhouse-ratings/internal/domain/ratinghistory"
	"github.com/playrank/inhouse-ratings/internal/domain/seasonstats"
)

// RevertWrite removes a match and restores the derived state of its
// participants as if the match never existed.
type RevertWrite struct {
	Match match.Match
	// RestoredStats are upserted for players who still have participations
	// left in the season.
	RestoredStats []seasonstats.PlayerStats
	// RemovedStatsPlayerIDs are players whose stats row is deleted outright
	// because no participation remains.
	RemovedStatsPlayerIDs []string
}

// ReplaceWrite rebuilds a match in place with a corrected outcome. The match
// identifier is preserved across the delete and re-insert so records keyed
// by it stay valid.
type ReplaceWrite struct {
	Match        match.Match
	Snapshots    []ratinghistory.Snapshot
	UpdatedStats []seasonstats.PlayerStats
}

type Repository interface {
	RevertMatch(ctx context.Context, write RevertWrite) error
	ReplaceMatchOutcome(ctx context.Context, write ReplaceWrite) error
}
