package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/udisondev/turnbattle/internal/ai"
	"github.com/udisondev/turnbattle/internal/battle"
	"github.com/udisondev/turnbattle/internal/config"
	"github.com/udisondev/turnbattle/internal/data"
	"github.com/udisondev/turnbattle/internal/db"
	"github.com/udisondev/turnbattle/internal/journal"
	"github.com/udisondev/turnbattle/internal/report"
	"github.com/udisondev/turnbattle/internal/simulate"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx, os.Args[1:]); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

type options struct {
	configPath string
	presetPath string
	auto       bool
	simulate   bool
	battles    int
	history    int
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("battle", flag.ContinueOnError)
	fs.StringVar(&opts.configPath, "config", config.Path(), "battle config file")
	fs.StringVar(&opts.presetPath, "preset", "", "preset file (overrides config)")
	fs.BoolVar(&opts.auto, "auto", false, "let the autopilot play the player side")
	fs.BoolVar(&opts.simulate, "simulate", false, "run a batch of autopilot battles")
	fs.IntVar(&opts.battles, "battles", 0, "number of simulated battles (implies -simulate)")
	fs.IntVar(&opts.history, "history", 0, "print the N most recent archived battles and exit")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.battles < 0 || opts.history < 0 {
		return opts, errors.New("-battles and -history must not be negative")
	}
	if opts.battles > 0 {
		opts.simulate = true
	}
	return opts, nil
}

func run(ctx context.Context, args []string) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}

	cfg, err := config.LoadBattle(opts.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := parseLogLevel(cfg.LogLevel)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))
	ai.EnableDebugLogging(logLevel == slog.LevelDebug)

	presetPath := cfg.PresetPath
	if opts.presetPath != "" {
		presetPath = opts.presetPath
	}
	preset, err := loadPreset(presetPath)
	if err != nil {
		return err
	}
	slog.Info("preset loaded", "preset", preset.Name, "characters", preset.TotalCharacters())

	archive, err := db.OpenArchive(ctx, cfg.Archive)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer func() {
		if err := archive.Close(); err != nil {
			slog.Error("closing archive", "err", err)
		}
	}()

	switch {
	case opts.history > 0:
		return printHistory(ctx, os.Stdout, archive, opts.history)
	case opts.simulate:
		n := cfg.Simulation.Battles
		if opts.battles > 0 {
			n = opts.battles
		}
		return runSimulation(ctx, os.Stdout, cfg, preset, archive, n)
	default:
		return playBattle(ctx, cfg, preset, archive, opts.auto)
	}
}

func loadPreset(path string) (*data.Preset, error) {
	if path == "" {
		return data.DefaultPreset(), nil
	}
	p, err := data.LoadPreset(path)
	if err != nil {
		return nil, fmt.Errorf("loading preset: %w", err)
	}
	return p, nil
}

func playBattle(ctx context.Context, cfg config.Battle, preset *data.Preset, archive db.Archive, auto bool) error {
	roster, err := data.BuildRoster(preset)
	if err != nil {
		return err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	rng := simulate.NewRand(seed)

	s := battle.New(simulate.SchedulerOptions(cfg, preset, rng))
	for _, p := range roster.Players {
		if err := s.AddParticipant(p, true); err != nil {
			return err
		}
	}
	for _, p := range roster.Enemies {
		if err := s.AddParticipant(p, false); err != nil {
			return err
		}
	}

	j, err := journal.Open(cfg.JournalPath)
	if err != nil {
		return err
	}
	j.Attach(s)
	defer func() {
		if err := j.Close(); err != nil {
			slog.Warn("closing journal", "err", err)
		}
	}()

	con := &console{out: os.Stdout, s: s, catalog: roster.Catalog, rng: rng}
	if auto {
		con.pilot = ai.NewAutopilot(rng)
	}
	s.Subscribe(con.onEvent)

	slog.Info("battle starting", "battle", s.ID(), "preset", preset.Name, "seed", seed, "auto", auto)

	runner := battle.NewRunner(s, cfg.TickInterval)
	if !auto {
		fmt.Fprintln(con.out, helpText)
		go readCommands(ctx, os.Stdin, runner, con)
	}

	started := time.Now()
	if err := runner.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}
	finished := time.Now()

	outcome, winner := simulate.OutcomeOf(s.State())
	var survivors []string
	for _, p := range roster.All() {
		if p.IsAlive() {
			survivors = append(survivors, p.Name())
		}
	}

	if err := archive.SaveResult(ctx, db.BattleResult{
		BattleID:   s.ID(),
		Preset:     preset.Name,
		Outcome:    outcome,
		Turns:      s.Turn(),
		WinnerSide: winner,
		StartedAt:  started,
		FinishedAt: finished,
		Survivors:  survivors,
	}); err != nil {
		return fmt.Errorf("archiving battle: %w", err)
	}

	if cfg.ReportPath != "" {
		if err := report.WriteFile(cfg.ReportPath, report.Summary{
			BattleID:     s.ID().String(),
			Preset:       preset.Name,
			Outcome:      s.State().String(),
			Turns:        s.Turn(),
			StartedAt:    started,
			FinishedAt:   finished,
			Participants: roster.All(),
			Lines:        j.Lines(),
		}); err != nil {
			return err
		}
		slog.Info("report written", "path", cfg.ReportPath)
	}
	return nil
}

// readCommands forwards console lines to the runner until input ends or the
// runner stops. Parse errors are printed from the runner goroutine too. When
// input ends the player side flees so Run returns.
func readCommands(ctx context.Context, in io.Reader, r *battle.Runner, con *console) {
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		cmd, err := parseCommand(sc.Text())
		if errors.Is(err, errEmptyCommand) {
			continue
		}

		var c battle.Command
		if err != nil {
			c = func(*battle.Scheduler) { fmt.Fprintf(con.out, "! %v\n> ", err) }
		} else {
			c = con.command(cmd)
		}
		if err := r.Submit(ctx, c); err != nil {
			return
		}
	}
	if err := sc.Err(); err != nil {
		slog.Warn("reading commands", "err", err)
	}
	slog.Info("console input closed")
	_ = r.Submit(ctx, con.endOfInput())
}

func runSimulation(ctx context.Context, out io.Writer, cfg config.Battle, preset *data.Preset, archive db.Archive, n int) error {
	results, err := simulate.Run(ctx, cfg, preset, n, cfg.Simulation.Concurrency)
	if err != nil {
		return fmt.Errorf("simulating: %w", err)
	}
	if err := simulate.Archive(ctx, archive, preset.Name, results); err != nil {
		return fmt.Errorf("archiving results: %w", err)
	}

	sum := simulate.Summarize(results)
	fmt.Fprintf(out, "%s: %d battles\n", preset.Name, sum.Battles)
	fmt.Fprintf(out, "  victories  %d\n", sum.Victories)
	fmt.Fprintf(out, "  defeats    %d\n", sum.Defeats)
	fmt.Fprintf(out, "  stalemates %d\n", sum.Stalemates)
	fmt.Fprintf(out, "  avg turns  %.1f\n", sum.AverageTurns)
	return nil
}

func printHistory(ctx context.Context, out io.Writer, archive db.Archive, limit int) error {
	results, err := archive.ListRecent(ctx, limit)
	if err != nil {
		return fmt.Errorf("listing history: %w", err)
	}
	if len(results) == 0 {
		fmt.Fprintln(out, "no archived battles")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FINISHED\tPRESET\tOUTCOME\tTURNS\tSURVIVORS")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%v\n",
			r.FinishedAt.Local().Format(time.DateTime), r.Preset, r.Outcome, r.Turns, r.Survivors)
	}
	return tw.Flush()
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
