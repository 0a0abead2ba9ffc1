package rating

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The K bands are calibration values carried over from production history.
// These cases pin the table itself; they are not recomputed from the curve.
func TestKFactorBands(t *testing.T) {
	t.Parallel()

	params := DefaultParams()

	cases := []struct {
		rating int
		want   float64
	}{
		{rating: 700, want: 48},
		{rating: 899, want: 48},
		{rating: 900, want: 44},
		{rating: 999, want: 44},
		{rating: 1000, want: 40},
		{rating: 1099, want: 40},
		{rating: 1100, want: 32},
		{rating: 1200, want: 24},
		{rating: 1299, want: 24},
		{rating: 1300, want: 16},
		{rating: 1800, want: 16},
	}
	for _, tc := range cases {
		assert.Equalf(t, tc.want, params.KFactor(tc.rating), "rating=%d", tc.rating)
	}
}

func TestApply_EvenMatchBaselineDelta(t *testing.T) {
	t.Parallel()

	params := DefaultParams()
	state := State{Rating: 1000}

	next, delta := params.Apply(state, Context{
		Won:          true,
		SideMean:     1000,
		OpponentMean: 1000,
	})

	// round(k(1000) * 0.5, 1) with the pinned table value k(1000)=40.
	require.Equal(t, 20.0, delta)
	require.Equal(t, 1020, next.Rating)
	assert.Equal(t, 1, next.Wins)
	assert.Equal(t, 1, next.WinStreak)
	assert.Equal(t, 1, next.BestWinStreak)
	assert.Equal(t, 0, next.LoseStreak)
}

func TestApply_LossMirrorsWinOnEvenMatch(t *testing.T) {
	t.Parallel()

	params := DefaultParams()

	next, delta := params.Apply(State{Rating: 1000}, Context{
		Won:          false,
		SideMean:     1000,
		OpponentMean: 1000,
	})

	require.Equal(t, 20.0, delta)
	require.Equal(t, 980, next.Rating)
	assert.Equal(t, 1, next.Losses)
	assert.Equal(t, 1, next.LoseStreak)
	assert.Equal(t, 1, next.BestLoseStreak)
	assert.Equal(t, 0, next.WinStreak)
}

func TestApply_StreakBonusBeatsNoStreak(t *testing.T) {
	t.Parallel()

	params := DefaultParams()
	ctx := Context{Won: true, SideMean: 1000, OpponentMean: 1000}

	onStreak, _ := params.Apply(State{Rating: 1000, WinStreak: 2}, ctx)
	noStreak, _ := params.Apply(State{Rating: 1000}, ctx)

	// Entering the 3rd consecutive win must pay strictly more.
	require.Greater(t, onStreak.Rating, noStreak.Rating)
	assert.Equal(t, 1022, onStreak.Rating) // 20.0 * 1.1 = 22.0
}

func TestApply_StreakFactorTable(t *testing.T) {
	t.Parallel()

	params := DefaultParams()

	cases := []struct {
		streak int
		want   float64
	}{
		{streak: 2, want: 1.1},
		{streak: 3, want: 1.2},
		{streak: 4, want: 1.3},
		{streak: 5, want: 1.5},
		{streak: 6, want: 1.65},
		{streak: 10, want: 2.25},
		{streak: 14, want: 2.25}, // clamped at the cap
	}
	for _, tc := range cases {
		assert.InDeltaf(t, tc.want, params.streakFactor(tc.streak), 1e-9, "streak=%d", tc.streak)
	}
}

func TestApply_UnderdogBoundary(t *testing.T) {
	t.Parallel()

	params := DefaultParams()

	// Gap of exactly 25: no adjustment. The winner's expected score is below
	// 0.5, so delta is just round(k * (1 - expected), 1).
	atBoundary, deltaAt := params.Apply(State{Rating: 1000}, Context{
		Won:          true,
		SideMean:     1000,
		OpponentMean: 1025,
	})

	expected := params.Expected(1000, 1025)
	base := 40 * (1 - expected)
	require.InDelta(t, base, deltaAt, 0.05+1e-9)

	// Gap of 24: the adjustment kicks in and boosts the underdog's win.
	inside, deltaIn := params.Apply(State{Rating: 1000}, Context{
		Won:          true,
		SideMean:     1000,
		OpponentMean: 1024,
	})
	require.Greater(t, deltaIn, deltaAt)
	assert.GreaterOrEqual(t, inside.Rating, atBoundary.Rating)
}

func TestApply_DoubleModifier(t *testing.T) {
	t.Parallel()

	params := DefaultParams()
	base := Context{SideMean: 1000, OpponentMean: 1000}

	winCtx := base
	winCtx.Won = true
	winCtx.Double = true
	win, _ := params.Apply(State{Rating: 1000}, winCtx)
	require.Equal(t, 1040, win.Rating)

	lossCtx := base
	lossCtx.Double = true
	loss, _ := params.Apply(State{Rating: 1000}, lossCtx)
	// losses are never doubled
	require.Equal(t, 980, loss.Rating)
}

func TestApply_MVPAndCaptainBonuses(t *testing.T) {
	t.Parallel()

	params := DefaultParams()
	ctx := Context{Won: true, SideMean: 1000, OpponentMean: 1000}

	mvp := ctx
	mvp.MVP = true
	got, _ := params.Apply(State{Rating: 1000}, mvp)
	assert.Equal(t, 1025, got.Rating)

	mvpDouble := mvp
	mvpDouble.Double = true
	got, _ = params.Apply(State{Rating: 1000}, mvpDouble)
	assert.Equal(t, 1050, got.Rating) // 1000 + 40 + 10

	captainDouble := ctx
	captainDouble.Captain = true
	captainDouble.Double = true
	got, _ = params.Apply(State{Rating: 1000}, captainDouble)
	// captain bonus stays flat under the double modifier
	assert.Equal(t, 1043, got.Rating)
}

func TestFoldOutcome_StreakBookkeeping(t *testing.T) {
	t.Parallel()

	var s State
	for i := 0; i < 3; i++ {
		s = s.FoldOutcome(true)
	}
	require.Equal(t, State{Wins: 3, WinStreak: 3, BestWinStreak: 3}, s)

	s = s.FoldOutcome(false)
	require.Equal(t, 0, s.WinStreak)
	require.Equal(t, 3, s.BestWinStreak)
	require.Equal(t, 1, s.LoseStreak)

	s = s.FoldOutcome(true)
	assert.Equal(t, 1, s.WinStreak)
	assert.Equal(t, 3, s.BestWinStreak)
	assert.Equal(t, 0, s.LoseStreak)
	assert.Equal(t, 1, s.BestLoseStreak)
}
