// Package journal records everything that happens in a battle: scheduler
// events and stat changes. Entries are kept in memory for reports and
// optionally written as JSON lines through zap.
package journal

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/udisondev/turnbattle/internal/battle"
	"github.com/udisondev/turnbattle/internal/model"
)

// Entry is one journal line.
type Entry struct {
	Seq         int
	Time        time.Time
	Turn        int
	Kind        string
	State       string
	Participant string
	Current     int
	Max         int
}

// String renders the entry for humans.
func (e Entry) String() string {
	switch e.Kind {
	case "hp_changed":
		return fmt.Sprintf("turn %d: %s HP %d/%d", e.Turn, e.Participant, e.Current, e.Max)
	case "mp_changed":
		return fmt.Sprintf("turn %d: %s MP %d/%d", e.Turn, e.Participant, e.Current, e.Max)
	case "death":
		return fmt.Sprintf("turn %d: %s is defeated", e.Turn, e.Participant)
	case "participant_added":
		return fmt.Sprintf("turn %d: %s joins the battle", e.Turn, e.Participant)
	case "turn_started", "turn_ended":
		return fmt.Sprintf("turn %d: %s %s", e.Turn, e.Participant, e.Kind)
	default:
		return fmt.Sprintf("turn %d: %s (%s)", e.Turn, e.Kind, e.State)
	}
}

// Journal collects entries for one battle. Like the scheduler it observes,
// it is driven from a single goroutine.
type Journal struct {
	logger  *zap.Logger
	battle  *battle.Scheduler
	entries []Entry
	unsubs  []func()
	now     func() time.Time
}

// Open creates a journal writing JSON lines to path. An empty path keeps
// entries in memory only.
func Open(path string) (*Journal, error) {
	if path == "" {
		return New(zap.NewNop()), nil
	}

	cfg := zap.Config{
		Level:    zap.NewAtomicLevelAt(zap.InfoLevel),
		Encoding: "json",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "time",
			LevelKey:       "level",
			MessageKey:     "event",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
		},
		OutputPaths:      []string{path},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("opening journal %s: %w", path, err)
	}
	return New(logger), nil
}

// New creates a journal over an existing logger.
func New(logger *zap.Logger) *Journal {
	return &Journal{logger: logger, now: time.Now}
}

// Attach subscribes to the scheduler and to the stats of every participant
// currently in its rosters. Participants added to the scheduler later are
// tracked when their participant_added event arrives.
func (j *Journal) Attach(s *battle.Scheduler) {
	j.battle = s
	j.logger = j.logger.With(zap.String("battle", s.ID().String()))

	j.unsubs = append(j.unsubs, s.Subscribe(j.onBattleEvent))
	for _, p := range s.Players() {
		j.Track(p)
	}
	for _, p := range s.Enemies() {
		j.Track(p)
	}
}

// Track records stat changes of p.
func (j *Journal) Track(p *model.Participant) {
	j.unsubs = append(j.unsubs, p.Stats().Subscribe(func(ev model.StatsEvent) {
		j.add(Entry{
			Turn:        j.turn(),
			Kind:        ev.Kind.String(),
			Participant: p.Name(),
			Current:     ev.Current,
			Max:         ev.Max,
		}, zap.String("participant", p.Name()), zap.Int("current", ev.Current), zap.Int("max", ev.Max))
	}))
}

func (j *Journal) onBattleEvent(ev battle.Event) {
	e := Entry{Turn: ev.Turn, Kind: ev.Type.String(), State: ev.State.String()}
	fields := []zap.Field{zap.String("state", e.State)}
	if ev.Participant != nil {
		e.Participant = ev.Participant.Name()
		fields = append(fields, zap.String("participant", e.Participant))
	}
	j.add(e, fields...)

	if ev.Type == battle.EventParticipantAdded {
		j.Track(ev.Participant)
	}
}

func (j *Journal) add(e Entry, fields ...zap.Field) {
	e.Seq = len(j.entries) + 1
	e.Time = j.now()
	j.entries = append(j.entries, e)

	j.logger.Info(e.Kind, append(fields, zap.Int("seq", e.Seq), zap.Int("turn", e.Turn))...)
}

func (j *Journal) turn() int {
	if j.battle == nil {
		return 0
	}
	return j.battle.Turn()
}

// Entries returns a copy of the recorded entries.
func (j *Journal) Entries() []Entry {
	out := make([]Entry, len(j.entries))
	copy(out, j.entries)
	return out
}

// Lines renders every entry.
func (j *Journal) Lines() []string {
	out := make([]string, 0, len(j.entries))
	for _, e := range j.entries {
		out = append(out, e.String())
	}
	return out
}

// Close detaches all listeners and flushes the log.
func (j *Journal) Close() error {
	for _, unsub := range j.unsubs {
		unsub()
	}
	j.unsubs = nil

	if err := j.logger.Sync(); err != nil {
		return fmt.Errorf("syncing journal: %w", err)
	}
	return nil
}
