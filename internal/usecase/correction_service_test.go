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

func newCorrectionService(store *memory.Store) *CorrectionService {
	return NewCorrectionService(store, store, store, store, store, rating.DefaultParams(), 2, logging.NewNop())
}

// replayStore seeds a store with the given matches and applies a full
// season replay so derived state is populated.
func replayStore(t *testing.T, matches ...match.Match) *memory.Store {
	t.Helper()

	store := newSeededStore()
	for _, m := range matches {
		store.AddMatch(m)
	}

	svc := newReplayService(store)
	plan, err := svc.PlanReplay(context.Background(), testSeason)
	if err != nil {
		t.Fatalf("plan replay: %v", err)
	}
	if err := svc.ApplyReplay(context.Background(), plan); err != nil {
		t.Fatalf("apply replay: %v", err)
	}
	return store
}

func snapshotRatings(store *memory.Store) map[[2]interface{}]int {
	out := make(map[[2]interface{}]int)
	for _, snap := range store.AllSnapshots() {
		out[[2]interface{}{snap.PlayerID, snap.MatchID}] = snap.Rating
	}
	return out
}

func TestRevert_EquivalentToReplayWithoutMatch(t *testing.T) {
	t.Parallel()

	m1 := teamMatch(1, match.SideHome, false, []string{"p1", "p2"}, []string{"p3", "p4"})
	m2 := teamMatch(2, match.SideHome, true, []string{"p1", "p3"}, []string{"p2", "p4"})
	m3 := teamMatch(3, match.SideAway, false, []string{"p1", "p2"}, []string{"p3", "p4"})

	reverted := replayStore(t, m1, m2, m3)
	svc := newCorrectionService(reverted)
	ctx := context.Background()

	plan, err := svc.PlanRevert(ctx, RevertInput{})
	if err != nil {
		t.Fatalf("plan revert: %v", err)
	}
	if plan.Match.MatchID != 3 {
		t.Fatalf("revert targeted match %d, want latest (3)", plan.Match.MatchID)
	}
	if err := svc.ApplyRevert(ctx, plan); err != nil {
		t.Fatalf("apply revert: %v", err)
	}

	baseline := replayStore(t, m1, m2)

	gotStats, err := reverted.ListBySeason(ctx, testSeason)
	if err != nil {
		t.Fatalf("list reverted stats: %v", err)
	}
	wantStats, err := baseline.ListBySeason(ctx, testSeason)
	if err != nil {
		t.Fatalf("list baseline stats: %v", err)
	}
	if !reflect.DeepEqual(gotStats, wantStats) {
		t.Fatalf("reverted stats differ from replay without the match:\ngot:  %+v\nwant: %+v", gotStats, wantStats)
	}

	if got, want := snapshotRatings(reverted), snapshotRatings(baseline); !reflect.DeepEqual(got, want) {
		t.Fatalf("reverted snapshots differ from replay without the match:\ngot:  %v\nwant: %v", got, want)
	}

	if _, ok, err := reverted.GetByID(ctx, 3); err != nil || ok {
		t.Fatalf("expected match 3 deleted, ok=%t err=%v", ok, err)
	}
}

func TestRevert_RemovesStatsWhenNoParticipationRemains(t *testing.T) {
	t.Parallel()

	m1 := teamMatch(1, match.SideHome, false, []string{"p1", "p2"}, []string{"p3", "p4"})
	m2 := teamMatch(2, match.SideAway, false, []string{"p1", "p5"}, []string{"p3", "p4"})

	store := replayStore(t, m1, m2)
	svc := newCorrectionService(store)
	ctx := context.Background()

	plan, err := svc.PlanRevert(ctx, RevertInput{MatchID: 2})
	if err != nil {
		t.Fatalf("plan revert: %v", err)
	}
	if len(plan.RemovedStatsPlayerIDs) != 1 || plan.RemovedStatsPlayerIDs[0] != "p5" {
		t.Fatalf("unexpected removed players: %v", plan.RemovedStatsPlayerIDs)
	}
	if err := svc.ApplyRevert(ctx, plan); err != nil {
		t.Fatalf("apply revert: %v", err)
	}

	if _, ok, err := store.GetByPlayer(ctx, testSeason, "p5"); err != nil || ok {
		t.Fatalf("expected p5 stats removed, ok=%t err=%v", ok, err)
	}
	if _, ok, err := store.GetByPlayer(ctx, testSeason, "p1"); err != nil || !ok {
		t.Fatalf("expected p1 stats restored, ok=%t err=%v", ok, err)
	}
}

func TestRevert_RejectsNonLatestMatch(t *testing.T) {
	t.Parallel()

	store := replayStore(t,
		teamMatch(1, match.SideHome, false, []string{"p1", "p2"}, []string{"p3", "p4"}),
		teamMatch(2, match.SideAway, false, []string{"p1", "p2"}, []string{"p3", "p4"}),
	)

	_, err := newCorrectionService(store).PlanRevert(context.Background(), RevertInput{MatchID: 1})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestFixWinner_EquivalentToReplayWithCorrectedLog(t *testing.T) {
	t.Parallel()

	m1 := teamMatch(1, match.SideHome, false, []string{"p1", "p2"}, []string{"p3", "p4"})
	m2 := teamMatch(2, match.SideHome, true, []string{"p1", "p3"}, []string{"p2", "p4"})
	wrong := teamMatch(3, match.SideHome, false, []string{"p1", "p2"}, []string{"p3", "p4"})

	corrected := replayStore(t, m1, m2, wrong)
	svc := newCorrectionService(corrected)
	ctx := context.Background()

	plan, err := svc.PlanFixWinner(ctx, FixWinnerInput{Winner: "away"})
	if err != nil {
		t.Fatalf("plan fix-winner: %v", err)
	}
	if plan.Match.MatchID != 3 || plan.CorrectedWinner != "away" {
		t.Fatalf("unexpected plan target: %+v", plan.Match)
	}
	if err := svc.ApplyFixWinner(ctx, plan); err != nil {
		t.Fatalf("apply fix-winner: %v", err)
	}

	right := teamMatch(3, match.SideAway, false, []string{"p1", "p2"}, []string{"p3", "p4"})
	baseline := replayStore(t, m1, m2, right)

	gotStats, err := corrected.ListBySeason(ctx, testSeason)
	if err != nil {
		t.Fatalf("list corrected stats: %v", err)
	}
	wantStats, err := baseline.ListBySeason(ctx, testSeason)
	if err != nil {
		t.Fatalf("list baseline stats: %v", err)
	}
	if !reflect.DeepEqual(gotStats, wantStats) {
		t.Fatalf("corrected stats differ from replay of corrected log:\ngot:  %+v\nwant: %+v", gotStats, wantStats)
	}

	if got, want := snapshotRatings(corrected), snapshotRatings(baseline); !reflect.DeepEqual(got, want) {
		t.Fatalf("corrected snapshots differ from replay of corrected log:\ngot:  %v\nwant: %v", got, want)
	}

	stored, ok, err := corrected.GetByID(ctx, 3)
	if err != nil || !ok {
		t.Fatalf("expected match 3 present, ok=%t err=%v", ok, err)
	}
	if stored.Winner != match.SideAway {
		t.Fatalf("unexpected stored winner: %s", stored.Winner)
	}
	if len(stored.Participants) != len(wrong.Participants) {
		t.Fatalf("participations lost: got=%d want=%d", len(stored.Participants), len(wrong.Participants))
	}
}

func TestRevert_ThenReinsertRestoresCounters(t *testing.T) {
	t.Parallel()

	m1 := teamMatch(1, match.SideHome, false, []string{"p1", "p2"}, []string{"p3", "p4"})
	m2 := teamMatch(2, match.SideAway, true, []string{"p1", "p3"}, []string{"p2", "p4"})
	m3 := teamMatch(3, match.SideHome, false, []string{"p1", "p2"}, []string{"p3", "p4"})

	store := replayStore(t, m1, m2, m3)
	ctx := context.Background()

	wantStats, err := store.ListBySeason(ctx, testSeason)
	if err != nil {
		t.Fatalf("list stats before revert: %v", err)
	}

	svc := newCorrectionService(store)
	plan, err := svc.PlanRevert(ctx, RevertInput{MatchID: 3})
	if err != nil {
		t.Fatalf("plan revert: %v", err)
	}
	if err := svc.ApplyRevert(ctx, plan); err != nil {
		t.Fatalf("apply revert: %v", err)
	}

	// Re-record the same match and replay: the outcome sequence is back to
	// the original, so every counter must come back exactly.
	store.AddMatch(m3)
	replay := newReplayService(store)
	replayPlan, err := replay.PlanReplay(ctx, testSeason)
	if err != nil {
		t.Fatalf("plan replay after reinsert: %v", err)
	}
	if err := replay.ApplyReplay(ctx, replayPlan); err != nil {
		t.Fatalf("apply replay after reinsert: %v", err)
	}

	gotStats, err := store.ListBySeason(ctx, testSeason)
	if err != nil {
		t.Fatalf("list stats after reinsert: %v", err)
	}
	if !reflect.DeepEqual(gotStats, wantStats) {
		t.Fatalf("counters diverged across revert and reinsert:\ngot:  %+v\nwant: %+v", gotStats, wantStats)
	}
}

func TestFixWinner_RejectsNoOpCorrection(t *testing.T) {
	t.Parallel()

	store := replayStore(t,
		teamMatch(1, match.SideHome, false, []string{"p1", "p2"}, []string{"p3", "p4"}),
	)

	_, err := newCorrectionService(store).PlanFixWinner(context.Background(), FixWinnerInput{Winner: "home"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestFixWinner_ValidatesWinnerToken(t *testing.T) {
	t.Parallel()

	store := replayStore(t,
		teamMatch(1, match.SideHome, false, []string{"p1", "p2"}, []string{"p3", "p4"}),
	)

	for _, winner := range []string{"", "middle", "HOME"} {
		if _, err := newCorrectionService(store).PlanFixWinner(context.Background(), FixWinnerInput{Winner: winner}); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("winner %q: expected ErrInvalidInput, got %v", winner, err)
		}
	}
}

func TestApplyRevert_RequiresPlan(t *testing.T) {
	t.Parallel()

	svc := newCorrectionService(newSeededStore())
	if err := svc.ApplyRevert(context.Background(), nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if err := svc.ApplyFixWinner(context.Background(), nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
