// Package rating holds the pure Elo-style rating computation. It performs
// no I/O: callers supply a player's pre-match state and the match context,
// and receive the folded post-match state back.
package rating

import "math"

// State is a player's folded standing at a point in a season.
type State struct {
	Rating         int `json:"rating"`
	Wins           int `json:"wins"`
	Losses         int `json:"losses"`
	WinStreak      int `json:"win_streak"`
	LoseStreak     int `json:"lose_streak"`
	BestWinStreak  int `json:"best_win_streak"`
	BestLoseStreak int `json:"best_lose_streak"`
}

// Context carries everything about one match that influences one player's
// rating change.
type Context struct {
	Won          bool
	SideMean     float64
	OpponentMean float64
	Double       bool
	MVP          bool
	Captain      bool
}

// Band maps ratings strictly below Below to the factor K.
type Band struct {
	Below int
	K     float64
}

// Params are the calibration constants of the rating curve. They are pinned
// by table-driven tests against known results; do not re-derive them.
type Params struct {
	BaseRating int
	Scale      float64
	Bands      []Band
	TopK       float64

	StreakMin      int
	StreakMid      int
	StreakCap      int
	StreakStepLow  float64
	StreakMidMult  float64
	StreakStepHigh float64

	UnderdogGap  float64
	UnderdogMult float64

	MVPBonus     int
	CaptainBonus int
}

func DefaultParams() Params {
	return Params{
		BaseRating: 1000,
		Scale:      400,
		Bands: []Band{
			{Below: 900, K: 48},
			{Below: 1000, K: 44},
			{Below: 1100, K: 40},
			{Below: 1200, K: 32},
			{Below: 1300, K: 24},
		},
		TopK:           16,
		StreakMin:      2,
		StreakMid:      5,
		StreakCap:      10,
		StreakStepLow:  0.1,
		StreakMidMult:  1.5,
		StreakStepHigh: 0.15,
		UnderdogGap:    25,
		UnderdogMult:   2,
		MVPBonus:       5,
		CaptainBonus:   3,
	}
}

// Expected is the logistic expected score of a side with mean rating
// sideMean against a side with mean rating opponentMean.
func (p Params) Expected(sideMean, opponentMean float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (opponentMean-sideMean)/p.Scale))
}

// KFactor returns the per-match sensitivity for a player at the given
// pre-match rating. Lower ratings swing harder.
func (p Params) KFactor(preRating int) float64 {
	for _, band := range p.Bands {
		if preRating < band.Below {
			return band.K
		}
	}
	return p.TopK
}

// Apply folds one match outcome into a player's state and returns the new
// state plus the delta that was applied (one-decimal precision, before the
// double modifier and flat bonuses).
func (p Params) Apply(s State, c Context) (State, float64) {
	expected := p.Expected(c.SideMean, c.OpponentMean)
	k := p.KFactor(s.Rating)

	actual := 0.0
	if c.Won {
		actual = 1.0
	}
	delta := math.Abs(k * (actual - expected))

	if c.Won && s.WinStreak >= p.StreakMin {
		delta *= p.streakFactor(s.WinStreak)
	}

	if math.Abs(c.SideMean-c.OpponentMean) < p.UnderdogGap {
		adj := (0.5 - expected) * p.UnderdogMult
		if c.Won {
			delta += delta * adj
		} else {
			delta += delta * -adj
		}
	}

	delta = math.Round(delta*10) / 10

	next := float64(s.Rating)
	if c.Won {
		mult := 1.0
		if c.Double {
			mult = 2.0
		}
		next += delta * mult
	} else {
		// losses are never doubled
		next -= delta
	}
	if c.MVP {
		bonus := float64(p.MVPBonus)
		if c.Double {
			bonus *= 2
		}
		next += bonus
	}
	if c.Captain {
		next += float64(p.CaptainBonus)
	}

	out := s.FoldOutcome(c.Won)
	out.Rating = int(math.Round(next))
	return out, delta
}

// streakFactor grows linearly from 1.0 up to StreakMid, then switches to a
// steeper slope on top of the fixed mid multiplier. The streak is clamped
// to StreakCap before lookup.
func (p Params) streakFactor(streak int) float64 {
	if streak > p.StreakCap {
		streak = p.StreakCap
	}
	if streak < p.StreakMid {
		return 1.0 + p.StreakStepLow*float64(streak-(p.StreakMin-1))
	}
	return p.StreakMidMult + p.StreakStepHigh*float64(streak-p.StreakMid)
}

// FoldOutcome advances the win/loss and streak counters for one outcome
// without touching the rating.
func (s State) FoldOutcome(won bool) State {
	out := s
	if won {
		out.Wins++
		out.WinStreak++
		out.LoseStreak = 0
		if out.WinStreak > out.BestWinStreak {
			out.BestWinStreak = out.WinStreak
		}
		return out
	}
	out.Losses++
	out.LoseStreak++
	out.WinStreak = 0
	if out.LoseStreak > out.BestLoseStreak {
		out.BestLoseStreak = out.LoseStreak
	}
	return out
}
