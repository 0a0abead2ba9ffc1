package season

import "context"

type Repository interface {
	GetByNumber(ctx context.Context, number int) (Season, bool, error)
	GetActive(ctx context.Context) (Season, bool, error)
}
