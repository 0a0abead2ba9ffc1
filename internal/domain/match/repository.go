package match

import "context"

type Repository interface {
	// GetByID returns a match with its participations.
	GetByID(ctx context.Context, matchID int64) (Match, bool, error)
	// GetLatestFinished returns the season's most recent match by the
	// canonical (ended_at, started_at, id) ordering.
	GetLatestFinished(ctx context.Context, seasonNumber int) (Match, bool, error)
	// ListFinishedBySeason returns all of a season's matches with their
	// participations, in canonical order ascending.
	ListFinishedBySeason(ctx context.Context, seasonNumber int) ([]Match, error)
	// ListPlayerOutcomes returns one row per participation of the player in
	// the season, ordered by match end time ascending.
	ListPlayerOutcomes(ctx context.Context, seasonNumber int, playerID string) ([]PlayerOutcome, error)
	CountPlayerParticipations(ctx context.Context, seasonNumber int, playerID string) (int, error)
}
