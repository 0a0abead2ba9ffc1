package usecase

import (
	"context"
	"fmt"

	"github.com/playrank/inhouse-ratings/internal/domain/match"
	"github.com/playrank/inhouse-ratings/internal/domain/rating"
	"github.com/playrank/inhouse-ratings/internal/domain/ratinghistory"
)

// BaselineReconstructor rebuilds a player's state as it stood before a
// given match, without trusting the aggregate stats table. The rating comes
// from the latest snapshot that ignores the match; the win/loss counters
// are refolded from the player's remaining season timeline.
type BaselineReconstructor struct {
	matchRepo    match.Repository
	snapshotRepo ratinghistory.Repository
	params       rating.Params
}

func NewBaselineReconstructor(
	matchRepo match.Repository,
	snapshotRepo ratinghistory.Repository,
	params rating.Params,
) *BaselineReconstructor {
	return &BaselineReconstructor{
		matchRepo:    matchRepo,
		snapshotRepo: snapshotRepo,
		params:       params,
	}
}

// PreMatchState returns the player's state with excludeMatchID removed from
// their season. Correct only while the excluded match is the season's
// latest: anything after it would be folded in as well.
func (r *BaselineReconstructor) PreMatchState(
	ctx context.Context,
	seasonNumber int,
	playerID string,
	excludeMatchID int64,
) (rating.State, error) {
	if r == nil || r.matchRepo == nil || r.snapshotRepo == nil {
		return rating.State{}, fmt.Errorf("%w: baseline reconstructor is not configured", ErrDependencyUnavailable)
	}

	state := rating.State{Rating: r.params.BaseRating}

	snapshot, ok, err := r.snapshotRepo.GetLatestExcluding(ctx, seasonNumber, playerID, excludeMatchID)
	if err != nil {
		return rating.State{}, fmt.Errorf("get latest snapshot player=%s season=%d: %w", playerID, seasonNumber, err)
	}
	if ok {
		state.Rating = snapshot.Rating
	}

	outcomes, err := r.matchRepo.ListPlayerOutcomes(ctx, seasonNumber, playerID)
	if err != nil {
		return rating.State{}, fmt.Errorf("list outcomes player=%s season=%d: %w", playerID, seasonNumber, err)
	}
	for _, outcome := range outcomes {
		if outcome.MatchID == excludeMatchID || !outcome.Decided() {
			continue
		}
		state = state.FoldOutcome(outcome.Won())
	}

	return state, nil
}
