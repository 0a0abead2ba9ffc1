package usecase

import (
	"context"
	"reflect"
	"testing"

	"github.com/playrank/inhouse-ratings/internal/domain/match"
	"github.com/playrank/inhouse-ratings/internal/domain/rating"
)

func TestPreMatchState_MatchesReplayPrefix(t *testing.T) {
	t.Parallel()

	m1 := teamMatch(1, match.SideHome, false, []string{"p1", "p2"}, []string{"p3", "p4"})
	m2 := teamMatch(2, match.SideAway, true, []string{"p1", "p3"}, []string{"p2", "p4"})
	m3 := teamMatch(3, match.SideHome, false, []string{"p1", "p2"}, []string{"p3", "p4"})

	full := replayStore(t, m1, m2, m3)
	prefix := replayStore(t, m1, m2)

	reconstructor := NewBaselineReconstructor(full, full, rating.DefaultParams())
	ctx := context.Background()

	for _, playerID := range []string{"p1", "p2", "p3", "p4"} {
		got, err := reconstructor.PreMatchState(ctx, testSeason, playerID, 3)
		if err != nil {
			t.Fatalf("reconstruct baseline player=%s: %v", playerID, err)
		}

		stats, ok, err := prefix.GetByPlayer(ctx, testSeason, playerID)
		if err != nil || !ok {
			t.Fatalf("prefix stats player=%s: ok=%t err=%v", playerID, ok, err)
		}
		want := stateFromStats(stats)

		if !reflect.DeepEqual(got, want) {
			t.Fatalf("baseline mismatch player=%s:\ngot:  %+v\nwant: %+v", playerID, got, want)
		}
	}
}

func TestPreMatchState_UnknownPlayerStartsAtBase(t *testing.T) {
	t.Parallel()

	store := replayStore(t,
		teamMatch(1, match.SideHome, false, []string{"p1", "p2"}, []string{"p3", "p4"}),
	)
	params := rating.DefaultParams()

	got, err := NewBaselineReconstructor(store, store, params).PreMatchState(context.Background(), testSeason, "ghost", 1)
	if err != nil {
		t.Fatalf("reconstruct baseline: %v", err)
	}
	if !reflect.DeepEqual(got, rating.State{Rating: params.BaseRating}) {
		t.Fatalf("unexpected baseline for unknown player: %+v", got)
	}
}
