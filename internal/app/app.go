// Package app wires configuration, storage, and the rating services into
// one runnable unit.
package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	semconv "go.opentelemetry.io/otel/semconv/v1.20.0"

	"github.com/playrank/inhouse-ratings/internal/config"
	"github.com/playrank/inhouse-ratings/internal/domain/rating"
	"github.com/playrank/inhouse-ratings/internal/infrastructure/repository/postgres"
	"github.com/playrank/inhouse-ratings/internal/platform/logging"
	"github.com/playrank/inhouse-ratings/internal/usecase"
)

type App struct {
	Config      config.Config
	Logger      *logging.Logger
	DB          *sqlx.DB
	Replay      *usecase.ReplayService
	Corrections *usecase.CorrectionService
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	dsn := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)
	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL),
		otelsql.WithDBName(dbNameFromURL(dsn)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	seasonRepo := postgres.NewSeasonRepository(db)
	matchRepo := postgres.NewMatchRepository(db)
	snapshotRepo := postgres.NewRatingHistoryRepository(db)
	statsRepo := postgres.NewSeasonStatsRepository(db)
	correctionRepo := postgres.NewCorrectionRepository(db)

	params := rating.DefaultParams()

	return &App{
		Config: cfg,
		Logger: logger,
		DB:     db,
		Replay: usecase.NewReplayService(
			seasonRepo,
			matchRepo,
			snapshotRepo,
			statsRepo,
			params,
			logger,
		),
		Corrections: usecase.NewCorrectionService(
			seasonRepo,
			matchRepo,
			snapshotRepo,
			statsRepo,
			correctionRepo,
			params,
			cfg.BaselineWorkers,
			logger,
		),
	}, nil
}

func (a *App) Close() error {
	if a == nil || a.DB == nil {
		return nil
	}
	return a.DB.Close()
}
