package usecase

import (
	"context"
	"fmt"

	"github.com/playrank/inhouse-ratings/internal/domain/season"
)

// resolveSeason returns the season with the given number, or the active
// season when number is zero.
func resolveSeason(ctx context.Context, repo season.Repository, number int) (season.Season, error) {
	if repo == nil {
		return season.Season{}, fmt.Errorf("%w: season repository is not configured", ErrDependencyUnavailable)
	}
	if number < 0 {
		return season.Season{}, fmt.Errorf("%w: season number must not be negative", ErrInvalidInput)
	}

	if number > 0 {
		item, ok, err := repo.GetByNumber(ctx, number)
		if err != nil {
			return season.Season{}, fmt.Errorf("get season number=%d: %w", number, err)
		}
		if !ok {
			return season.Season{}, fmt.Errorf("%w: season number=%d", ErrNotFound, number)
		}
		return item, nil
	}

	item, ok, err := repo.GetActive(ctx)
	if err != nil {
		return season.Season{}, fmt.Errorf("get active season: %w", err)
	}
	if !ok {
		return season.Season{}, fmt.Errorf("%w: no active season", ErrNotFound)
	}
	return item, nil
}
