package postgres

import (
	"time"

	"github.com/playrank/inhouse-ratings/internal/domain/season"
)

type seasonTableModel struct {
	Number    int        `db:"number"`
	StartedAt time.Time  `db:"started_at"`
	EndedAt   *time.Time `db:"ended_at"`
	IsActive  bool       `db:"is_active"`
}

func (m seasonTableModel) toDomain() season.Season {
	return season.Season{
		Number:    m.Number,
		StartedAt: m.StartedAt,
		EndedAt:   m.EndedAt,
		Active:    m.IsActive,
	}
}
