package main

import (
	"fmt"
	"io"

	"github.com/valyala/bytebufferpool"

	"github.com/playrank/inhouse-ratings/internal/usecase"
)

// Plan tables are rendered into a pooled buffer and flushed to the writer
// in one call.

func renderReplayPlan(w io.Writer, plan *usecase.ReplayPlan) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	fmt.Fprintf(buf, "replay plan: season %d, %d matches", plan.SeasonNumber, plan.MatchCount)
	if len(plan.SkippedMatches) > 0 {
		fmt.Fprintf(buf, " (%d skipped, no winner: %v)", len(plan.SkippedMatches), plan.SkippedMatches)
	}
	fmt.Fprintln(buf)
	renderPlayerChanges(buf, plan.Players)

	_, _ = w.Write(buf.Bytes())
}

func renderRevertPlan(w io.Writer, plan *usecase.RevertPlan) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	fmt.Fprintf(buf, "revert plan: match %d (season %d, winner=%s, ended %s)\n",
		plan.Match.MatchID, plan.Match.SeasonNumber, winnerLabel(plan.Match.Winner),
		plan.Match.EndedAt.Format("2006-01-02 15:04"))
	renderPlayerChanges(buf, plan.Players)
	for _, playerID := range plan.RemovedStatsPlayerIDs {
		fmt.Fprintf(buf, "  %-20s stats row will be removed (no matches left)\n", playerID)
	}

	_, _ = w.Write(buf.Bytes())
}

func renderFixWinnerPlan(w io.Writer, plan *usecase.FixWinnerPlan) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	fmt.Fprintf(buf, "fix-winner plan: match %d (season %d): winner %s -> %s, double %t -> %t\n",
		plan.Match.MatchID, plan.Match.SeasonNumber,
		winnerLabel(plan.Match.Winner), plan.CorrectedWinner,
		plan.Match.DoubleRating, plan.CorrectedDouble)
	renderPlayerChanges(buf, plan.Players)

	_, _ = w.Write(buf.Bytes())
}

func renderPlayerChanges(buf *bytebufferpool.ByteBuffer, players []usecase.PlayerChange) {
	if len(players) == 0 {
		fmt.Fprintln(buf, "  no player changes")
		return
	}

	fmt.Fprintf(buf, "  %-20s %9s %9s %7s %8s %8s\n", "player", "rating", "new", "delta", "w/l", "new w/l")
	for _, p := range players {
		fmt.Fprintf(buf, "  %-20s %9d %9d %+7d %8s %8s\n",
			p.PlayerID,
			p.Before.Rating, p.After.Rating, p.After.Rating-p.Before.Rating,
			fmt.Sprintf("%d/%d", p.Before.Wins, p.Before.Losses),
			fmt.Sprintf("%d/%d", p.After.Wins, p.After.Losses),
		)
	}
}

func winnerLabel(winner string) string {
	if winner == "" {
		return "none"
	}
	return winner
}
