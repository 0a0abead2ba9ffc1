package usecase

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/playrank/inhouse-ratings/internal/domain/match"
	"github.com/playrank/inhouse-ratings/internal/domain/rating"
	"github.com/playrank/inhouse-ratings/internal/infrastructure/repository/memory"
	"github.com/playrank/inhouse-ratings/internal/platform/logging"
)

func newReplayService(store *memory.Store) *ReplayService {
	return NewReplayService(store, store, store, store, rating.DefaultParams(), logging.NewNop())
}

func TestPlanReplay_UnknownSeason(t *testing.T) {
	t.Parallel()

	svc := newReplayService(newSeededStore())
	if _, err := svc.PlanReplay(context.Background(), 99); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPlanReplay_ResolvesActiveSeason(t *testing.T) {
	t.Parallel()

	store := newSeededStore()
	store.AddMatch(teamMatch(1, match.SideHome, false, []string{"p1", "p2"}, []string{"p3", "p4"}))

	plan, err := newReplayService(store).PlanReplay(context.Background(), 0)
	if err != nil {
		t.Fatalf("plan replay: %v", err)
	}
	if plan.SeasonNumber != testSeason {
		t.Fatalf("unexpected season: got=%d want=%d", plan.SeasonNumber, testSeason)
	}
	if plan.MatchCount != 1 {
		t.Fatalf("unexpected match count: got=%d want=1", plan.MatchCount)
	}
}

func TestPlanReplay_SkipsMatchesWithoutWinner(t *testing.T) {
	t.Parallel()

	store := newSeededStore()
	store.AddMatch(teamMatch(1, match.SideHome, false, []string{"p1", "p2"}, []string{"p3", "p4"}))
	store.AddMatch(teamMatch(2, "", false, []string{"p1", "p2"}, []string{"p3", "p4"}))
	store.AddMatch(teamMatch(3, match.SideAway, false, []string{"p1", "p2"}, []string{"p3", "p4"}))

	plan, err := newReplayService(store).PlanReplay(context.Background(), testSeason)
	if err != nil {
		t.Fatalf("plan replay: %v", err)
	}

	if plan.MatchCount != 3 {
		t.Fatalf("unexpected match count: got=%d want=3", plan.MatchCount)
	}
	if len(plan.SkippedMatches) != 1 || plan.SkippedMatches[0] != 2 {
		t.Fatalf("unexpected skipped matches: %v", plan.SkippedMatches)
	}
	for _, p := range plan.Players {
		if got := p.After.Wins + p.After.Losses; got != 2 {
			t.Fatalf("player %s folded %d outcomes, want 2", p.PlayerID, got)
		}
	}
}

func TestReplay_Idempotence(t *testing.T) {
	t.Parallel()

	store := newSeededStore()
	store.AddMatch(teamMatch(1, match.SideHome, false, []string{"p1", "p2"}, []string{"p3", "p4"}))
	store.AddMatch(teamMatch(2, match.SideHome, true, []string{"p1", "p3"}, []string{"p2", "p4"}))
	store.AddMatch(teamMatch(3, match.SideAway, false, []string{"p1", "p2"}, []string{"p3", "p4"}))

	svc := newReplayService(store)
	ctx := context.Background()

	first, err := svc.PlanReplay(ctx, testSeason)
	if err != nil {
		t.Fatalf("plan first replay: %v", err)
	}
	if err := svc.ApplyReplay(ctx, first); err != nil {
		t.Fatalf("apply first replay: %v", err)
	}

	snapshotsAfterFirst := store.AllSnapshots()
	statsAfterFirst, err := store.ListBySeason(ctx, testSeason)
	if err != nil {
		t.Fatalf("list stats: %v", err)
	}

	second, err := svc.PlanReplay(ctx, testSeason)
	if err != nil {
		t.Fatalf("plan second replay: %v", err)
	}
	if err := svc.ApplyReplay(ctx, second); err != nil {
		t.Fatalf("apply second replay: %v", err)
	}

	snapshotsAfterSecond := store.AllSnapshots()
	statsAfterSecond, err := store.ListBySeason(ctx, testSeason)
	if err != nil {
		t.Fatalf("list stats: %v", err)
	}

	if !reflect.DeepEqual(snapshotsAfterFirst, snapshotsAfterSecond) {
		t.Fatalf("snapshots diverged across replays:\nfirst:  %+v\nsecond: %+v", snapshotsAfterFirst, snapshotsAfterSecond)
	}
	if !reflect.DeepEqual(statsAfterFirst, statsAfterSecond) {
		t.Fatalf("stats diverged across replays:\nfirst:  %+v\nsecond: %+v", statsAfterFirst, statsAfterSecond)
	}
}

func TestPlanReplay_MonotonicBestStreak(t *testing.T) {
	t.Parallel()

	store := newSeededStore()
	// p1 wins twice then loses.
	store.AddMatch(teamMatch(1, match.SideHome, false, []string{"p1", "p2"}, []string{"p3", "p4"}))
	store.AddMatch(teamMatch(2, match.SideHome, false, []string{"p1", "p2"}, []string{"p3", "p4"}))
	store.AddMatch(teamMatch(3, match.SideAway, false, []string{"p1", "p2"}, []string{"p3", "p4"}))

	plan, err := newReplayService(store).PlanReplay(context.Background(), testSeason)
	if err != nil {
		t.Fatalf("plan replay: %v", err)
	}

	for _, p := range plan.Players {
		if p.After.BestWinStreak < p.After.WinStreak {
			t.Fatalf("player %s: best win streak %d below current %d", p.PlayerID, p.After.BestWinStreak, p.After.WinStreak)
		}
	}

	var p1 PlayerChange
	for _, p := range plan.Players {
		if p.PlayerID == "p1" {
			p1 = p
		}
	}
	if p1.After.BestWinStreak != 2 || p1.After.WinStreak != 0 || p1.After.LoseStreak != 1 {
		t.Fatalf("unexpected p1 streaks: %+v", p1.After)
	}
}

func TestApplyReplay_RequiresPlan(t *testing.T) {
	t.Parallel()

	svc := newReplayService(newSeededStore())
	if err := svc.ApplyReplay(context.Background(), nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
