package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/bytedance/sonic"

	"github.com/playrank/inhouse-ratings/internal/app"
	"github.com/playrank/inhouse-ratings/internal/config"
	"github.com/playrank/inhouse-ratings/internal/observability"
	"github.com/playrank/inhouse-ratings/internal/platform/logging"
	"github.com/playrank/inhouse-ratings/internal/usecase"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) < 1 {
		printUsage()
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return 2
	}

	logger := logging.NewJSON(cfg.LogLevel)
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		logger.Error("init tracing", "error", err)
		return 1
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(flushCtx)
	}()

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("build app", "error", err)
		return 1
	}
	defer func() {
		_ = application.Close()
	}()

	switch strings.ToLower(strings.TrimSpace(args[0])) {
	case "replay":
		return runReplay(ctx, application, args[1:])
	case "revert":
		return runRevert(ctx, application, args[1:])
	case "fix-winner":
		return runFixWinner(ctx, application, args[1:])
	default:
		printUsage()
		return 2
	}
}

func runReplay(ctx context.Context, application *app.App, args []string) int {
	fs := flag.NewFlagSet("replay", flag.ContinueOnError)
	seasonNumber := fs.Int("season", 0, "season number (0 = active season)")
	yes := fs.Bool("yes", false, "apply without confirmation")
	asJSON := fs.Bool("json", false, "print the plan as JSON")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	logger := application.Logger

	plan, err := application.Replay.PlanReplay(ctx, *seasonNumber)
	if err != nil {
		logger.ErrorContext(ctx, "plan replay", "season_number", *seasonNumber, "error", err)
		return 1
	}

	if err := printPlan(os.Stdout, *asJSON, plan, renderReplayPlan); err != nil {
		logger.Error("render replay plan", "error", err)
		return 1
	}

	if !*yes && !confirm(os.Stdin, os.Stdout) {
		fmt.Println("aborted, nothing written")
		return 0
	}

	if err := application.Replay.ApplyReplay(ctx, plan); err != nil {
		logger.ErrorContext(ctx, "apply replay", "season_number", plan.SeasonNumber, "error", err)
		return 1
	}
	fmt.Printf("season %d replayed: %d matches, %d players updated\n",
		plan.SeasonNumber, plan.MatchCount, len(plan.Players))
	return 0
}

func runRevert(ctx context.Context, application *app.App, args []string) int {
	fs := flag.NewFlagSet("revert", flag.ContinueOnError)
	seasonNumber := fs.Int("season", 0, "season number (0 = active season)")
	matchID := fs.Int64("match", 0, "match id (0 = latest finished match)")
	yes := fs.Bool("yes", false, "apply without confirmation")
	asJSON := fs.Bool("json", false, "print the plan as JSON")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	logger := application.Logger

	plan, err := application.Corrections.PlanRevert(ctx, usecase.RevertInput{
		SeasonNumber: *seasonNumber,
		MatchID:      *matchID,
	})
	if err != nil {
		logger.ErrorContext(ctx, "plan revert", "season_number", *seasonNumber, "match_id", *matchID, "error", err)
		return 1
	}

	if err := printPlan(os.Stdout, *asJSON, plan, renderRevertPlan); err != nil {
		logger.Error("render revert plan", "error", err)
		return 1
	}

	if !*yes && !confirm(os.Stdin, os.Stdout) {
		fmt.Println("aborted, nothing written")
		return 0
	}

	if err := application.Corrections.ApplyRevert(ctx, plan); err != nil {
		logger.ErrorContext(ctx, "apply revert", "match_id", plan.Match.MatchID, "error", err)
		return 1
	}
	fmt.Printf("match %d reverted, %d players restored\n", plan.Match.MatchID, len(plan.Players))
	return 0
}

func runFixWinner(ctx context.Context, application *app.App, args []string) int {
	fs := flag.NewFlagSet("fix-winner", flag.ContinueOnError)
	seasonNumber := fs.Int("season", 0, "season number (0 = active season)")
	matchID := fs.Int64("match", 0, "match id (0 = latest finished match)")
	winner := fs.String("winner", "", "corrected winner: home or away")
	double := fs.Bool("double", false, "corrected double-rating flag")
	yes := fs.Bool("yes", false, "apply without confirmation")
	asJSON := fs.Bool("json", false, "print the plan as JSON")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	logger := application.Logger

	plan, err := application.Corrections.PlanFixWinner(ctx, usecase.FixWinnerInput{
		SeasonNumber: *seasonNumber,
		MatchID:      *matchID,
		Winner:       strings.ToLower(strings.TrimSpace(*winner)),
		Double:       *double,
	})
	if err != nil {
		logger.ErrorContext(ctx, "plan fix-winner", "season_number", *seasonNumber, "match_id", *matchID, "winner", *winner, "error", err)
		return 1
	}

	if err := printPlan(os.Stdout, *asJSON, plan, renderFixWinnerPlan); err != nil {
		logger.Error("render fix-winner plan", "error", err)
		return 1
	}

	if !*yes && !confirm(os.Stdin, os.Stdout) {
		fmt.Println("aborted, nothing written")
		return 0
	}

	if err := application.Corrections.ApplyFixWinner(ctx, plan); err != nil {
		logger.ErrorContext(ctx, "apply fix-winner", "match_id", plan.Match.MatchID, "error", err)
		return 1
	}
	fmt.Printf("match %d outcome corrected to winner=%s double=%t\n",
		plan.Match.MatchID, plan.CorrectedWinner, plan.CorrectedDouble)
	return 0
}

func printPlan[T any](w io.Writer, asJSON bool, plan T, render func(io.Writer, T)) error {
	if asJSON {
		out, err := sonic.ConfigDefault.MarshalIndent(plan, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal plan: %w", err)
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	}
	render(w, plan)
	return nil
}

func confirm(in io.Reader, out io.Writer) bool {
	fmt.Fprint(out, "apply? [y/N] ")
	reader := bufio.NewReader(in)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func printUsage() {
	name := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, "usage: %s <replay|revert|fix-winner> [flags]\n", name)
	fmt.Fprintln(os.Stderr, "examples:")
	fmt.Fprintf(os.Stderr, "  %s replay -season 3\n", name)
	fmt.Fprintf(os.Stderr, "  %s revert -yes\n", name)
	fmt.Fprintf(os.Stderr, "  %s fix-winner -winner away -double -json\n", name)
}
