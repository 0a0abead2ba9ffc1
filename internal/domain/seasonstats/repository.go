package seasonstats

import "context"

type Repository interface {
	GetByPlayer(ctx context.Context, seasonNumber int, playerID string) (PlayerStats, bool, error)
	ListBySeason(ctx context.Context, seasonNumber int) ([]PlayerStats, error)
	// UpsertMany writes rows keyed by (player, season) inside one
	// transaction.
	UpsertMany(ctx context.Context, items []PlayerStats) error
}
