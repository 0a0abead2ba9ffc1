package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/playrank/inhouse-ratings/internal/domain/match"
	"github.com/playrank/inhouse-ratings/internal/domain/rating"
	"github.com/playrank/inhouse-ratings/internal/domain/ratinghistory"
	"github.com/playrank/inhouse-ratings/internal/domain/season"
	"github.com/playrank/inhouse-ratings/internal/domain/seasonstats"
	"github.com/playrank/inhouse-ratings/internal/platform/logging"
)

// ReplayService rebuilds a season's derived rating state from its match log.
// Planning is pure reads; nothing is written until ApplyReplay.
type ReplayService struct {
	seasonRepo   season.Repository
	matchRepo    match.Repository
	snapshotRepo ratinghistory.Repository
	statsRepo    seasonstats.Repository
	params       rating.Params
	logger       *logging.Logger
}

func NewReplayService(
	seasonRepo season.Repository,
	matchRepo match.Repository,
	snapshotRepo ratinghistory.Repository,
	statsRepo seasonstats.Repository,
	params rating.Params,
	logger *logging.Logger,
) *ReplayService {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &ReplayService{
		seasonRepo:   seasonRepo,
		matchRepo:    matchRepo,
		snapshotRepo: snapshotRepo,
		statsRepo:    statsRepo,
		params:       params,
		logger:       logger,
	}
}

// PlayerChange is one player's before/after pair in a plan.
type PlayerChange struct {
	PlayerID string       `json:"player_id"`
	Before   rating.State `json:"before"`
	After    rating.State `json:"after"`
}

// ReplayPlan is the computed outcome of a full season replay. The write
// payloads stay unexported: the only way to persist a plan is ApplyReplay.
type ReplayPlan struct {
	SeasonNumber   int            `json:"season_number"`
	MatchCount     int            `json:"match_count"`
	SkippedMatches []int64        `json:"skipped_matches,omitempty"`
	Players        []PlayerChange `json:"players"`

	snapshots []ratinghistory.Snapshot
	stats     []seasonstats.PlayerStats
}

// PlanReplay recomputes every participant's rating timeline for the season
// (the active one when seasonNumber is zero). Matches without a recorded
// winner are skipped with a warning and contribute nothing.
func (s *ReplayService) PlanReplay(ctx context.Context, seasonNumber int) (*ReplayPlan, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReplayService.PlanReplay")
	defer span.End()

	if s.matchRepo == nil || s.snapshotRepo == nil || s.statsRepo == nil {
		return nil, fmt.Errorf("%w: replay service is not fully configured", ErrDependencyUnavailable)
	}

	target, err := resolveSeason(ctx, s.seasonRepo, seasonNumber)
	if err != nil {
		return nil, err
	}

	matches, err := s.matchRepo.ListFinishedBySeason(ctx, target.Number)
	if err != nil {
		return nil, fmt.Errorf("list matches season=%d: %w", target.Number, err)
	}
	sortMatchesCanonical(matches)

	plan := &ReplayPlan{
		SeasonNumber: target.Number,
		MatchCount:   len(matches),
	}

	states := make(map[string]rating.State)
	for _, m := range matches {
		if !m.HasWinner() {
			s.logger.WarnContext(ctx, "skipping match without recorded winner",
				"match_id", m.ID,
				"season_number", m.SeasonNumber,
			)
			plan.SkippedMatches = append(plan.SkippedMatches, m.ID)
			continue
		}

		means := sideMeans(m.Participants, states, s.params.BaseRating)
		for _, p := range m.Participants {
			pre, ok := states[p.PlayerID]
			if !ok {
				pre = rating.State{Rating: s.params.BaseRating}
			}

			next, _ := s.params.Apply(pre, rating.Context{
				Won:          p.Side == m.Winner,
				SideMean:     means[p.Side],
				OpponentMean: means[p.Side.Opponent()],
				Double:       m.DoubleRating,
				MVP:          p.MVP,
				Captain:      p.Captain,
			})
			states[p.PlayerID] = next

			plan.snapshots = append(plan.snapshots, ratinghistory.Snapshot{
				PlayerID:     p.PlayerID,
				MatchID:      m.ID,
				SeasonNumber: target.Number,
				Rating:       next.Rating,
			})
		}
	}

	before, err := s.loadStoredStats(ctx, target.Number)
	if err != nil {
		return nil, err
	}

	playerIDs := make([]string, 0, len(states))
	for playerID := range states {
		playerIDs = append(playerIDs, playerID)
	}
	sort.Strings(playerIDs)

	plan.Players = make([]PlayerChange, 0, len(playerIDs))
	plan.stats = make([]seasonstats.PlayerStats, 0, len(playerIDs))
	for _, playerID := range playerIDs {
		after := states[playerID]
		beforeState, ok := before[playerID]
		if !ok {
			beforeState = rating.State{Rating: s.params.BaseRating}
		}
		plan.Players = append(plan.Players, PlayerChange{
			PlayerID: playerID,
			Before:   beforeState,
			After:    after,
		})
		plan.stats = append(plan.stats, statsFromState(playerID, target.Number, after))
	}

	return plan, nil
}

// ApplyReplay persists a plan. Both writes are keyed upserts, so applying
// the same plan twice converges on the same stored state.
func (s *ReplayService) ApplyReplay(ctx context.Context, plan *ReplayPlan) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReplayService.ApplyReplay")
	defer span.End()

	if plan == nil {
		return fmt.Errorf("%w: replay plan is required", ErrInvalidInput)
	}
	if s.snapshotRepo == nil || s.statsRepo == nil {
		return fmt.Errorf("%w: replay service is not fully configured", ErrDependencyUnavailable)
	}

	if len(plan.snapshots) > 0 {
		if err := s.snapshotRepo.UpsertSnapshots(ctx, plan.snapshots); err != nil {
			return fmt.Errorf("upsert snapshots season=%d: %w", plan.SeasonNumber, err)
		}
	}
	if len(plan.stats) > 0 {
		if err := s.statsRepo.UpsertMany(ctx, plan.stats); err != nil {
			return fmt.Errorf("upsert season stats season=%d: %w", plan.SeasonNumber, err)
		}
	}

	s.logger.InfoContext(ctx, "season replay applied",
		"season_number", plan.SeasonNumber,
		"match_count", plan.MatchCount,
		"player_count", len(plan.Players),
		"skipped_matches", len(plan.SkippedMatches),
	)
	return nil
}

func (s *ReplayService) loadStoredStats(ctx context.Context, seasonNumber int) (map[string]rating.State, error) {
	rows, err := s.statsRepo.ListBySeason(ctx, seasonNumber)
	if err != nil {
		return nil, fmt.Errorf("list season stats season=%d: %w", seasonNumber, err)
	}
	out := make(map[string]rating.State, len(rows))
	for _, row := range rows {
		out[row.PlayerID] = stateFromStats(row)
	}
	return out, nil
}

// sortMatchesCanonical orders matches by end time, then start time, then id.
// Repositories already return this order; replaying depends on it, so the
// engine does not rely on the storage layer alone.
func sortMatchesCanonical(matches []match.Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		if !matches[i].EndedAt.Equal(matches[j].EndedAt) {
			return matches[i].EndedAt.Before(matches[j].EndedAt)
		}
		if !matches[i].StartedAt.Equal(matches[j].StartedAt) {
			return matches[i].StartedAt.Before(matches[j].StartedAt)
		}
		return matches[i].ID < matches[j].ID
	})
}

// sideMeans averages the current ratings of each roster. Players without a
// prior state count at the base rating, as does an empty roster.
func sideMeans(participants []match.Participation, states map[string]rating.State, baseRating int) map[match.Side]float64 {
	sums := map[match.Side]float64{}
	counts := map[match.Side]int{}
	for _, p := range participants {
		r := baseRating
		if state, ok := states[p.PlayerID]; ok {
			r = state.Rating
		}
		sums[p.Side] += float64(r)
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

func statsFromState(playerID string, seasonNumber int, s rating.State) seasonstats.PlayerStats {
	return seasonstats.PlayerStats{
		PlayerID:       playerID,
		SeasonNumber:   seasonNumber,
		Rating:         s.Rating,
		Wins:           s.Wins,
		Losses:         s.Losses,
		WinStreak:      s.WinStreak,
		LoseStreak:     s.LoseStreak,
		BestWinStreak:  s.BestWinStreak,
		BestLoseStreak: s.BestLoseStreak,
	}
}

func stateFromStats(row seasonstats.PlayerStats) rating.State {
	return rating.State{
		Rating:         row.Rating,
		Wins:           row.Wins,
		Losses:         row.Losses,
		WinStreak:      row.WinStreak,
		LoseStreak:     row.LoseStreak,
		BestWinStreak:  row.BestWinStreak,
		BestLoseStreak: row.BestLoseStreak,
	}
}
