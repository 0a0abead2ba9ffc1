package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/panjf2000/ants/v2"

	"github.com/playrank/inhouse-ratings/internal/domain/correction"
	"github.com/playrank/inhouse-ratings/internal/domain/match"
	"github.com/playrank/inhouse-ratings/internal/domain/rating"
	"github.com/playrank/inhouse-ratings/internal/domain/ratinghistory"
	"github.com/playrank/inhouse-ratings/internal/domain/season"
	"github.com/playrank/inhouse-ratings/internal/domain/seasonstats"
	"github.com/playrank/inhouse-ratings/internal/platform/logging"
)

// CorrectionService handles the two point corrections: reverting the
// season's latest match, and rewriting its winner in place. Both produce a
// plan first and apply it in one storage transaction, ending in the same
// state a full replay of the corrected match log would.
type CorrectionService struct {
	seasonRepo     season.Repository
	matchRepo      match.Repository
	snapshotRepo   ratinghistory.Repository
	statsRepo      seasonstats.Repository
	correctionRepo correction.Repository
	baseline       *BaselineReconstructor
	params         rating.Params
	workers        int
	validate       *validator.Validate
	logger         *logging.Logger
}

func NewCorrectionService(
	seasonRepo season.Repository,
	matchRepo match.Repository,
	snapshotRepo ratinghistory.Repository,
	statsRepo seasonstats.Repository,
	correctionRepo correction.Repository,
	params rating.Params,
	workers int,
	logger *logging.Logger,
) *CorrectionService {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &CorrectionService{
		seasonRepo:     seasonRepo,
		matchRepo:      matchRepo,
		snapshotRepo:   snapshotRepo,
		statsRepo:      statsRepo,
		correctionRepo: correctionRepo,
		baseline:       NewBaselineReconstructor(matchRepo, snapshotRepo, params),
		params:         params,
		workers:        workers,
		validate:       validator.New(),
		logger:         logger,
	}
}

type RevertInput struct {
	// SeasonNumber zero targets the active season.
	SeasonNumber int `validate:"gte=0"`
	// MatchID zero targets the season's latest finished match.
	MatchID int64 `validate:"gte=0"`
}

type FixWinnerInput struct {
	SeasonNumber int    `validate:"gte=0"`
	MatchID      int64  `validate:"gte=0"`
	Winner       string `validate:"required,oneof=home away"`
	Double       bool
}

// MatchSummary identifies the match a correction plan targets.
type MatchSummary struct {
	MatchID      int64     `json:"match_id"`
	SeasonNumber int       `json:"season_number"`
	Winner       string    `json:"winner"`
	DoubleRating bool      `json:"double_rating"`
	EndedAt      time.Time `json:"ended_at"`
}

// RevertPlan describes removing a match and restoring its participants to
// their pre-match state.
type RevertPlan struct {
	Match                 MatchSummary   `json:"match"`
	Players               []PlayerChange `json:"players"`
	RemovedStatsPlayerIDs []string       `json:"removed_stats_player_ids,omitempty"`

	write correction.RevertWrite
}

// FixWinnerPlan describes rewriting a match's outcome in place.
type FixWinnerPlan struct {
	Match           MatchSummary   `json:"match"`
	CorrectedWinner string         `json:"corrected_winner"`
	CorrectedDouble bool           `json:"corrected_double"`
	Players         []PlayerChange `json:"players"`

	write correction.ReplaceWrite
}

// PlanRevert computes the state restore for deleting the target match.
// Only the season's latest finished match can be reverted: later matches
// would have been rated on top of it.
func (s *CorrectionService) PlanRevert(ctx context.Context, input RevertInput) (*RevertPlan, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CorrectionService.PlanRevert")
	defer span.End()

	if err := s.checkConfigured(); err != nil {
		return nil, err
	}
	if err := s.validate.StructCtx(ctx, input); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	target, err := s.locateTargetMatch(ctx, input.SeasonNumber, input.MatchID)
	if err != nil {
		return nil, err
	}

	baselines, err := s.reconstructBaselines(ctx, target)
	if err != nil {
		return nil, err
	}

	plan := &RevertPlan{
		Match: summarizeMatch(target),
		write: correction.RevertWrite{Match: target},
	}

	for _, playerID := range sortedParticipantIDs(target) {
		baseline := baselines[playerID]

		before, ok, err := s.statsRepo.GetByPlayer(ctx, target.SeasonNumber, playerID)
		if err != nil {
			return nil, fmt.Errorf("get season stats player=%s season=%d: %w", playerID, target.SeasonNumber, err)
		}
		beforeState := rating.State{Rating: s.params.BaseRating}
		if ok {
			beforeState = stateFromStats(before)
		}

		remaining, err := s.matchRepo.CountPlayerParticipations(ctx, target.SeasonNumber, playerID)
		if err != nil {
			return nil, fmt.Errorf("count participations player=%s season=%d: %w", playerID, target.SeasonNumber, err)
		}
		if remaining-1 <= 0 {
			plan.RemovedStatsPlayerIDs = append(plan.RemovedStatsPlayerIDs, playerID)
			plan.write.RemovedStatsPlayerIDs = append(plan.write.RemovedStatsPlayerIDs, playerID)
		} else {
			plan.write.RestoredStats = append(plan.write.RestoredStats,
				statsFromState(playerID, target.SeasonNumber, baseline))
		}

		plan.Players = append(plan.Players, PlayerChange{
			PlayerID: playerID,
			Before:   beforeState,
			After:    baseline,
		})
	}

	return plan, nil
}

// ApplyRevert persists a revert plan atomically.
func (s *CorrectionService) ApplyRevert(ctx context.Context, plan *RevertPlan) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.CorrectionService.ApplyRevert")
	defer span.End()

	if plan == nil {
		return fmt.Errorf("%w: revert plan is required", ErrInvalidInput)
	}
	if s.correctionRepo == nil {
		return fmt.Errorf("%w: correction repository is not configured", ErrDependencyUnavailable)
	}

	if err := s.correctionRepo.RevertMatch(ctx, plan.write); err != nil {
		return fmt.Errorf("revert match id=%d: %w", plan.Match.MatchID, err)
	}

	s.logger.InfoContext(ctx, "match reverted",
		"match_id", plan.Match.MatchID,
		"season_number", plan.Match.SeasonNumber,
		"player_count", len(plan.Players),
		"removed_stats", len(plan.RemovedStatsPlayerIDs),
	)
	return nil
}

// PlanFixWinner recomputes the target match under a corrected winner and
// double flag. Per-player roles (MVP, captain) are left as recorded.
func (s *CorrectionService) PlanFixWinner(ctx context.Context, input FixWinnerInput) (*FixWinnerPlan, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CorrectionService.PlanFixWinner")
	defer span.End()

	if err := s.checkConfigured(); err != nil {
		return nil, err
	}
	if err := s.validate.StructCtx(ctx, input); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	winner := match.Side(input.Winner)

	target, err := s.locateTargetMatch(ctx, input.SeasonNumber, input.MatchID)
	if err != nil {
		return nil, err
	}
	if target.Winner == winner && target.DoubleRating == input.Double {
		return nil, fmt.Errorf("%w: match id=%d already has winner=%s double=%t", ErrInvalidInput, target.ID, winner, input.Double)
	}

	baselines, err := s.reconstructBaselines(ctx, target)
	if err != nil {
		return nil, err
	}

	corrected := target
	corrected.Winner = winner
	corrected.DoubleRating = input.Double

	means := baselineSideMeans(corrected.Participants, baselines, s.params.BaseRating)

	plan := &FixWinnerPlan{
		Match:           summarizeMatch(target),
		CorrectedWinner: string(winner),
		CorrectedDouble: input.Double,
		write:           correction.ReplaceWrite{Match: corrected},
	}

	byPlayer := make(map[string]match.Participation, len(corrected.Participants))
	for _, p := range corrected.Participants {
		byPlayer[p.PlayerID] = p
	}

	for _, playerID := range sortedParticipantIDs(corrected) {
		p := byPlayer[playerID]
		baseline := baselines[playerID]

		after, _ := s.params.Apply(baseline, rating.Context{
			Won:          p.Side == winner,
			SideMean:     means[p.Side],
			OpponentMean: means[p.Side.Opponent()],
			Double:       corrected.DoubleRating,
			MVP:          p.MVP,
			Captain:      p.Captain,
		})

		before, ok, err := s.statsRepo.GetByPlayer(ctx, target.SeasonNumber, playerID)
		if err != nil {
			return nil, fmt.Errorf("get season stats player=%s season=%d: %w", playerID, target.SeasonNumber, err)
		}
		beforeState := rating.State{Rating: s.params.BaseRating}
		if ok {
			beforeState = stateFromStats(before)
		}

		plan.Players = append(plan.Players, PlayerChange{
			PlayerID: playerID,
			Before:   beforeState,
			After:    after,
		})
		plan.write.Snapshots = append(plan.write.Snapshots, ratinghistory.Snapshot{
			PlayerID:     playerID,
			MatchID:      target.ID,
			SeasonNumber: target.SeasonNumber,
			Rating:       after.Rating,
		})
		plan.write.UpdatedStats = append(plan.write.UpdatedStats,
			statsFromState(playerID, target.SeasonNumber, after))
	}

	return plan, nil
}

// ApplyFixWinner persists a fix-winner plan atomically.
func (s *CorrectionService) ApplyFixWinner(ctx context.Context, plan *FixWinnerPlan) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.CorrectionService.ApplyFixWinner")
	defer span.End()

	if plan == nil {
		return fmt.Errorf("%w: fix-winner plan is required", ErrInvalidInput)
	}
	if s.correctionRepo == nil {
		return fmt.Errorf("%w: correction repository is not configured", ErrDependencyUnavailable)
	}

	if err := s.correctionRepo.ReplaceMatchOutcome(ctx, plan.write); err != nil {
		return fmt.Errorf("replace match outcome id=%d: %w", plan.Match.MatchID, err)
	}

	s.logger.InfoContext(ctx, "match winner corrected",
		"match_id", plan.Match.MatchID,
		"season_number", plan.Match.SeasonNumber,
		"winner", plan.CorrectedWinner,
		"double_rating", plan.CorrectedDouble,
	)
	return nil
}

func (s *CorrectionService) checkConfigured() error {
	if s.matchRepo == nil || s.snapshotRepo == nil || s.statsRepo == nil || s.baseline == nil {
		return fmt.Errorf("%w: correction service is not fully configured", ErrDependencyUnavailable)
	}
	return nil
}

// locateTargetMatch resolves the season, finds the match, and refuses any
// match that is not the season's latest finished one.
func (s *CorrectionService) locateTargetMatch(ctx context.Context, seasonNumber int, matchID int64) (match.Match, error) {
	target, err := resolveSeason(ctx, s.seasonRepo, seasonNumber)
	if err != nil {
		return match.Match{}, err
	}

	latest, ok, err := s.matchRepo.GetLatestFinished(ctx, target.Number)
	if err != nil {
		return match.Match{}, fmt.Errorf("get latest match season=%d: %w", target.Number, err)
	}
	if !ok {
		return match.Match{}, fmt.Errorf("%w: season %d has no finished matches", ErrNotFound, target.Number)
	}

	if matchID == 0 {
		return latest, nil
	}

	m, ok, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return match.Match{}, fmt.Errorf("get match id=%d: %w", matchID, err)
	}
	if !ok {
		return match.Match{}, fmt.Errorf("%w: match id=%d", ErrNotFound, matchID)
	}
	if m.SeasonNumber != target.Number {
		return match.Match{}, fmt.Errorf("%w: match id=%d belongs to season %d, not %d", ErrInvalidInput, matchID, m.SeasonNumber, target.Number)
	}
	if m.ID != latest.ID {
		return match.Match{}, fmt.Errorf("%w: match id=%d is not the latest in season %d; replay the season instead", ErrInvalidInput, matchID, target.Number)
	}
	return m, nil
}

// reconstructBaselines fans pre-match state reconstruction out over a
// bounded worker pool, one task per participant.
func (s *CorrectionService) reconstructBaselines(ctx context.Context, target match.Match) (map[string]rating.State, error) {
	if len(target.Participants) == 0 {
		return nil, fmt.Errorf("%w: match id=%d has no participants", ErrInvalidInput, target.ID)
	}

	workerCount := s.workers
	if workerCount > len(target.Participants) {
		workerCount = len(target.Participants)
	}
	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	type baselineResult struct {
		playerID string
		state    rating.State
		err      error
	}
	results := make(chan baselineResult, len(target.Participants))

	var workers sync.WaitGroup
	for _, p := range target.Participants {
		p := p
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			state, err := s.baseline.PreMatchState(ctx, target.SeasonNumber, p.PlayerID, target.ID)
			results <- baselineResult{playerID: p.PlayerID, state: state, err: err}
		}); err != nil {
			workers.Done()
			// drain earlier submissions before the pool is released
			workers.Wait()
			return nil, fmt.Errorf("submit baseline task to worker pool: %w", err)
		}
	}
	workers.Wait()
	close(results)

	out := make(map[string]rating.State, len(target.Participants))
	for row := range results {
		if row.err != nil {
			return nil, row.err
		}
		out[row.playerID] = row.state
	}
	return out, nil
}

// baselineSideMeans averages reconstructed pre-match ratings per roster.
func baselineSideMeans(participants []match.Participation, baselines map[string]rating.State, baseRating int) map[match.Side]float64 {
	sums := map[match.Side]float64{}
	counts := map[match.Side]int{}
	for _, p := range participants {
		sums[p.Side] += float64(baselines[p.PlayerID].Rating)
		counts[p.Side]++
	}

	out := make(map[match.Side]float64, 2)
	for _, side := range []match.Side{match.SideHome, match.SideAway} {
		if counts[side] == 0 {
			out[side] = float64(baseRating)
			continue
		}
		out[side] = sums[side] / float64(counts[side])
	}
	return out
}

func summarizeMatch(m match.Match) MatchSummary {
	return MatchSummary{
		MatchID:      m.ID,
		SeasonNumber: m.SeasonNumber,
		Winner:       string(m.Winner),
		DoubleRating: m.DoubleRating,
		EndedAt:      m.EndedAt,
	}
}

func sortedParticipantIDs(m match.Match) []string {
	out := make([]string, 0, len(m.Participants))
	for _, p := range m.Participants {
		out = append(out, p.PlayerID)
	}
	sort.Strings(out)
	return out
}
