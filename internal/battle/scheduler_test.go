package battle

import (
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/turnbattle/internal/game/combat"
	"github.com/udisondev/turnbattle/internal/game/skill"
	"github.com/udisondev/turnbattle/internal/model"
)

func newHero() *model.Participant {
	return model.NewParticipant("hero", "Hero", model.SidePlayer, model.NewStats(100, 50, 15, 8, 12))
}

func newGoblin() *model.Participant {
	return model.NewParticipant("goblin", "Goblin", model.SideEnemy, model.NewStats(80, 30, 12, 5, 10))
}

func newTestScheduler(t *testing.T, opts Options, players, enemies []*model.Participant) *Scheduler {
	t.Helper()
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(7, 7))
	}
	s := New(opts)
	for _, p := range players {
		require.NoError(t, s.AddParticipant(p, true))
	}
	for _, e := range enemies {
		require.NoError(t, s.AddParticipant(e, false))
	}
	return s
}

func noop(_ *model.Participant, done func()) { done() }

type recorder struct {
	events []Event
}

func (r *recorder) listen(ev Event) { r.events = append(r.events, ev) }

func (r *recorder) count(typ EventType) int {
	n := 0
	for _, ev := range r.events {
		if ev.Type == typ {
			n++
		}
	}
	return n
}

func TestBuildTurnOrder_StableBySpeed(t *testing.T) {
	a := model.NewParticipant("a", "A", model.SidePlayer, model.NewStats(10, 0, 1, 0, 10))
	b := model.NewParticipant("b", "B", model.SidePlayer, model.NewStats(10, 0, 1, 0, 10))
	c := model.NewParticipant("c", "C", model.SideEnemy, model.NewStats(10, 0, 1, 0, 12))

	order := BuildTurnOrder([]*model.Participant{a, b}, []*model.Participant{c})
	require.Len(t, order, 3)
	assert.Equal(t, []string{"C", "A", "B"}, []string{order[0].Name(), order[1].Name(), order[2].Name()})
}

func TestBuildTurnOrder_PlayersWinTies(t *testing.T) {
	e := model.NewParticipant("e", "E", model.SideEnemy, model.NewStats(10, 0, 1, 0, 10))
	p := model.NewParticipant("p", "P", model.SidePlayer, model.NewStats(10, 0, 1, 0, 10))

	order := BuildTurnOrder([]*model.Participant{p}, []*model.Participant{e})
	assert.Same(t, p, order[0])
	assert.Same(t, e, order[1])
}

func TestStart_Errors(t *testing.T) {
	s := newTestScheduler(t, Options{}, []*model.Participant{newHero()}, nil)
	assert.ErrorIs(t, s.Start(), ErrEmptyRoster)
	assert.Equal(t, StateIdle, s.State())

	s = newTestScheduler(t, Options{}, []*model.Participant{newHero()}, []*model.Participant{newGoblin()})
	require.NoError(t, s.Start())
	assert.Equal(t, StateBattleStart, s.State())
	assert.ErrorIs(t, s.Start(), ErrBattleInProgress)
}

func TestAddParticipant_Errors(t *testing.T) {
	s := New(Options{})
	hero := newHero()

	assert.ErrorIs(t, s.AddParticipant(nil, true), ErrUnknownParticipant)
	assert.ErrorIs(t, s.AddParticipant(hero, false), ErrSideMismatch)
	require.NoError(t, s.AddParticipant(hero, true))
	assert.ErrorIs(t, s.AddParticipant(hero, true), ErrDuplicateParticipant)
	assert.Len(t, s.Players(), 1)
	assert.Empty(t, s.Enemies())
}

func TestHeroVsGoblin(t *testing.T) {
	hero, goblin := newHero(), newGoblin()
	rng := rand.New(rand.NewPCG(11, 11))
	s := newTestScheduler(t, Options{Timing: DefaultTiming(), Rand: rng},
		[]*model.Participant{hero}, []*model.Participant{goblin})

	require.NoError(t, s.Start())
	assert.Equal(t, []*model.Participant{hero, goblin}, s.TurnOrder())

	require.NoError(t, s.Advance(400*time.Millisecond))
	assert.Equal(t, StateBattleStart, s.State())
	require.NoError(t, s.Advance(100*time.Millisecond))
	require.Equal(t, StatePlayerTurn, s.State())
	assert.Same(t, hero, s.Current())

	require.NoError(t, s.RequestPlayerAction(goblin, combat.AttackAction(hero, rng)))
	assert.Equal(t, StatePlayerAction, s.State())
	assert.False(t, s.InFlight())
	hp := goblin.Stats().CurrentHP()
	assert.GreaterOrEqual(t, hp, 69)
	assert.LessOrEqual(t, hp, 71)

	require.NoError(t, s.Advance(500*time.Millisecond))
	assert.Equal(t, StateProcessing, s.State())
	assert.Equal(t, 1, s.Turn())

	require.NoError(t, s.Advance(800*time.Millisecond))
	require.Equal(t, StateEnemyTurn, s.State())
	assert.Same(t, goblin, s.Current())
	assert.ErrorIs(t, s.RequestPlayerAction(goblin, noop), ErrNotPlayerTurn)
	assert.Equal(t, StateEnemyTurn, s.State())

	require.NoError(t, s.Advance(time.Second))
	assert.Equal(t, StateEnemyAction, s.State())
	heroHP := hero.Stats().CurrentHP()
	assert.GreaterOrEqual(t, heroHP, 95)
	assert.LessOrEqual(t, heroHP, 97)

	require.NoError(t, s.Advance(500*time.Millisecond))
	assert.Equal(t, StateProcessing, s.State())
	require.NoError(t, s.Advance(800*time.Millisecond))
	assert.Equal(t, StatePlayerTurn, s.State())
	assert.Same(t, hero, s.Current())
	assert.Equal(t, 2, s.Turn())
}

func TestVictory(t *testing.T) {
	hero := newHero()
	weak := model.NewParticipant("imp", "Imp", model.SideEnemy, model.NewStats(1, 0, 1, 0, 1))
	s := newTestScheduler(t, Options{}, []*model.Participant{hero}, []*model.Participant{weak})
	rec := &recorder{}
	s.Subscribe(rec.listen)

	require.NoError(t, s.Start())
	require.NoError(t, s.Advance(0))
	require.Equal(t, StatePlayerTurn, s.State())
	require.NoError(t, s.RequestPlayerAction(weak, combat.AttackAction(hero, nil)))
	require.NoError(t, s.Advance(0))

	assert.Equal(t, StateVictory, s.State())
	assert.True(t, s.IsOver())
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Advance(time.Second))
	}
	assert.Equal(t, StateVictory, s.State())
	assert.Equal(t, 1, rec.count(EventBattleStarted))
	assert.Equal(t, 1, rec.count(EventBattleEnded))
}

func TestDefeat(t *testing.T) {
	hero := model.NewParticipant("hero", "Hero", model.SidePlayer, model.NewStats(1, 0, 1, 0, 1))
	ogre := model.NewParticipant("ogre", "Ogre", model.SideEnemy, model.NewStats(100, 0, 50, 0, 20))
	s := newTestScheduler(t, Options{}, []*model.Participant{hero}, []*model.Participant{ogre})

	require.NoError(t, s.Start())
	require.NoError(t, s.Advance(0))
	require.Equal(t, StateEnemyTurn, s.State())
	require.NoError(t, s.Advance(0))
	require.Equal(t, StateEnemyAction, s.State())
	assert.False(t, hero.IsAlive())
	require.NoError(t, s.Advance(0))
	assert.Equal(t, StateDefeat, s.State())
}

func TestProcessing_VictoryCheckedFirst(t *testing.T) {
	hero := model.NewParticipant("hero", "Hero", model.SidePlayer, model.NewStats(5, 0, 1, 0, 12))
	goblin := model.NewParticipant("goblin", "Goblin", model.SideEnemy, model.NewStats(5, 0, 1, 0, 10))
	hero.SetStartingEffects(skill.NewStatusEffect("Poison", skill.EffectPoison, 3, 10))
	goblin.SetStartingEffects(skill.NewStatusEffect("Poison", skill.EffectPoison, 3, 10))

	s := newTestScheduler(t, Options{}, []*model.Participant{hero}, []*model.Participant{goblin})
	require.NoError(t, s.Start())
	require.NoError(t, s.Advance(0))
	require.NoError(t, s.RequestPlayerAction(nil, noop))
	require.NoError(t, s.Advance(0))

	assert.False(t, hero.IsAlive())
	assert.False(t, goblin.IsAlive())
	assert.Equal(t, StateVictory, s.State())
}

func TestProcessing_TicksEffects(t *testing.T) {
	hero := newHero()
	goblin := model.NewParticipant("goblin", "Goblin", model.SideEnemy, model.NewStats(50, 0, 1, 0, 10))
	goblin.SetStartingEffects(skill.NewStatusEffect("Poison", skill.EffectPoison, 3, 5))

	s := newTestScheduler(t, Options{}, []*model.Participant{hero}, []*model.Participant{goblin})
	require.NoError(t, s.Start())

	for turn := 0; turn < 3; turn++ {
		for s.State() != StatePlayerTurn && s.State() != StateEnemyTurn {
			require.NoError(t, s.Advance(0))
		}
		if s.State() == StatePlayerTurn {
			require.NoError(t, s.RequestPlayerAction(nil, combat.DefendAction(hero)))
		}
		for s.State() != StateProcessing {
			require.NoError(t, s.Advance(0))
		}
	}

	assert.Equal(t, 35, goblin.Stats().CurrentHP())
	assert.Empty(t, goblin.StatusEffects())
}

func TestDeadEntriesSkipped(t *testing.T) {
	hero := newHero()
	fast := model.NewParticipant("fast", "Fast", model.SideEnemy, model.NewStats(10, 0, 1, 0, 11))
	slow := model.NewParticipant("slow", "Slow", model.SideEnemy, model.NewStats(10, 0, 1, 0, 5))
	s := newTestScheduler(t, Options{}, []*model.Participant{hero}, []*model.Participant{fast, slow})

	require.NoError(t, s.Start())
	fast.TakeDamage(100)

	require.NoError(t, s.Advance(0))
	require.Same(t, hero, s.Current())
	require.NoError(t, s.RequestPlayerAction(nil, noop))
	require.NoError(t, s.Advance(0))
	require.NoError(t, s.Advance(0))

	assert.Equal(t, StateEnemyTurn, s.State())
	assert.Same(t, slow, s.Current())
	assert.Len(t, s.TurnOrder(), 3, "dead entries stay in the turn order")
}

func TestHalt_NoLivingParticipant(t *testing.T) {
	hero, goblin := newHero(), newGoblin()
	s := newTestScheduler(t, Options{}, []*model.Participant{hero}, []*model.Participant{goblin})
	require.NoError(t, s.Start())
	hero.TakeDamage(1000)
	goblin.TakeDamage(1000)

	err := s.Advance(0)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoLivingParticipant)
	assert.Equal(t, StateBattleStart, s.State())
	assert.ErrorIs(t, s.Err(), ErrNoLivingParticipant)
	assert.ErrorIs(t, s.Advance(time.Second), ErrNoLivingParticipant)
	assert.ErrorIs(t, s.RequestFlee(), ErrNoLivingParticipant)
}

func TestHalt_EmptyTurnOrder(t *testing.T) {
	hero, goblin := newHero(), newGoblin()
	s := newTestScheduler(t, Options{}, []*model.Participant{hero}, []*model.Participant{goblin})
	require.NoError(t, s.Start())
	require.NoError(t, s.RemoveParticipant(hero))
	require.NoError(t, s.RemoveParticipant(goblin))

	assert.True(t, errors.Is(s.Advance(0), ErrEmptyTurnOrder))
	assert.Equal(t, StateBattleStart, s.State())
}

func TestRemoveParticipant_KeepsNext(t *testing.T) {
	a := model.NewParticipant("a", "A", model.SidePlayer, model.NewStats(10, 0, 1, 0, 14))
	b := model.NewParticipant("b", "B", model.SideEnemy, model.NewStats(10, 0, 1, 0, 12))
	c := model.NewParticipant("c", "C", model.SideEnemy, model.NewStats(10, 0, 1, 0, 10))
	s := newTestScheduler(t, Options{}, []*model.Participant{a}, []*model.Participant{b, c})
	require.NoError(t, s.Start())

	require.NoError(t, s.Advance(0))
	require.Same(t, a, s.Current())
	require.NoError(t, s.RemoveParticipant(b))
	assert.ErrorIs(t, s.RemoveParticipant(b), ErrUnknownParticipant)

	require.NoError(t, s.RequestPlayerAction(nil, noop))
	require.NoError(t, s.Advance(0))
	require.NoError(t, s.Advance(0))
	assert.Same(t, c, s.Current())
	assert.Equal(t, []*model.Participant{a, c}, s.TurnOrder())
}

func TestRemoveParticipant_BeforeIndex(t *testing.T) {
	a := model.NewParticipant("a", "A", model.SidePlayer, model.NewStats(10, 0, 1, 0, 14))
	b := model.NewParticipant("b", "B", model.SideEnemy, model.NewStats(10, 0, 1, 0, 12))
	c := model.NewParticipant("c", "C", model.SidePlayer, model.NewStats(10, 0, 1, 0, 10))
	s := newTestScheduler(t, Options{}, []*model.Participant{a, c}, []*model.Participant{b})
	require.NoError(t, s.Start())

	require.NoError(t, s.Advance(0))
	require.NoError(t, s.RequestPlayerAction(nil, noop))
	require.NoError(t, s.Advance(0))
	require.NoError(t, s.Advance(0))
	require.Same(t, b, s.Current())

	// a acted already; removing it must not make c lose its turn
	require.NoError(t, s.RemoveParticipant(a))
	require.NoError(t, s.Advance(0))
	require.NoError(t, s.Advance(0))
	require.NoError(t, s.Advance(0))
	assert.Same(t, c, s.Current())
	assert.Equal(t, StatePlayerTurn, s.State())
}

func TestAddParticipant_MidBattleResetsOrder(t *testing.T) {
	hero, goblin := newHero(), newGoblin()
	s := newTestScheduler(t, Options{}, []*model.Participant{hero}, []*model.Participant{goblin})
	require.NoError(t, s.Start())
	require.NoError(t, s.Advance(0))
	require.Same(t, hero, s.Current())

	wolf := model.NewParticipant("wolf", "Wolf", model.SideEnemy, model.NewStats(30, 0, 5, 0, 20))
	require.NoError(t, s.AddParticipant(wolf, false))
	assert.Same(t, wolf, s.TurnOrder()[0])

	require.NoError(t, s.RequestPlayerAction(nil, noop))
	require.NoError(t, s.Advance(0))
	require.NoError(t, s.Advance(0))
	assert.Same(t, wolf, s.Current(), "index restarts at the fastest participant")
}

func TestRequestFlee(t *testing.T) {
	hero, goblin := newHero(), newGoblin()
	s := newTestScheduler(t, Options{}, []*model.Participant{hero}, []*model.Participant{goblin})
	rec := &recorder{}
	s.Subscribe(rec.listen)

	assert.ErrorIs(t, s.RequestFlee(), ErrNotPlayerTurn)
	require.NoError(t, s.Start())
	require.NoError(t, s.Advance(0))
	require.NoError(t, s.RequestFlee())

	assert.Equal(t, StateFlee, s.State())
	assert.True(t, s.IsOver())
	assert.Equal(t, 1, rec.count(EventBattleEnded))
	assert.ErrorIs(t, s.RequestFlee(), ErrNotPlayerTurn)
}

func TestActionInFlight(t *testing.T) {
	hero, goblin := newHero(), newGoblin()
	s := newTestScheduler(t, Options{Timing: Timing{ActionDelay: 100 * time.Millisecond}},
		[]*model.Participant{hero}, []*model.Participant{goblin})
	require.NoError(t, s.Start())
	require.NoError(t, s.Advance(0))

	var done func()
	require.NoError(t, s.RequestPlayerAction(goblin, func(_ *model.Participant, d func()) { done = d }))
	for i := 0; i < 10; i++ {
		require.NoError(t, s.Advance(time.Second))
	}
	assert.Equal(t, StatePlayerAction, s.State())
	assert.True(t, s.InFlight())

	done()
	assert.False(t, s.InFlight())
	require.NoError(t, s.Advance(50*time.Millisecond))
	assert.Equal(t, StatePlayerAction, s.State(), "post-action delay not elapsed")
	require.NoError(t, s.Advance(50*time.Millisecond))
	assert.Equal(t, StateProcessing, s.State())

	done()
	assert.Equal(t, StateProcessing, s.State())
}

func TestActionTimeout(t *testing.T) {
	hero, goblin := newHero(), newGoblin()
	s := newTestScheduler(t, Options{Timing: Timing{ActionTimeout: time.Second}},
		[]*model.Participant{hero}, []*model.Participant{goblin})
	require.NoError(t, s.Start())
	require.NoError(t, s.Advance(0))

	var late func()
	require.NoError(t, s.RequestPlayerAction(goblin, func(_ *model.Participant, d func()) { late = d }))
	require.NoError(t, s.Advance(900*time.Millisecond))
	assert.True(t, s.InFlight())
	require.NoError(t, s.Advance(200*time.Millisecond))
	assert.False(t, s.InFlight(), "timed out action is force-completed")
	require.NoError(t, s.Advance(0))
	assert.Equal(t, StateProcessing, s.State())

	// goblin turn completes synchronously
	require.NoError(t, s.Advance(0))
	require.Equal(t, StateEnemyTurn, s.State())
	require.NoError(t, s.Advance(0))
	require.NoError(t, s.Advance(0))
	require.NoError(t, s.Advance(0))
	require.Equal(t, StatePlayerTurn, s.State())

	require.NoError(t, s.RequestPlayerAction(goblin, func(*model.Participant, func()) {}))
	late()
	assert.True(t, s.InFlight(), "stale completion must not finish a later action")
}

func TestStun(t *testing.T) {
	t.Run("does not gate by default", func(t *testing.T) {
		hero, goblin := newHero(), newGoblin()
		hero.SetStartingEffects(skill.NewStatusEffect("Stun", skill.EffectStun, 2, 0))
		s := newTestScheduler(t, Options{}, []*model.Participant{hero}, []*model.Participant{goblin})
		require.NoError(t, s.Start())
		require.NoError(t, s.Advance(0))

		assert.False(t, hero.CanAct())
		assert.Equal(t, StatePlayerTurn, s.State())
		assert.NoError(t, s.RequestPlayerAction(goblin, noop))
	})

	t.Run("skips turn when enabled", func(t *testing.T) {
		hero, goblin := newHero(), newGoblin()
		hero.SetStartingEffects(skill.NewStatusEffect("Stun", skill.EffectStun, 2, 0))
		s := newTestScheduler(t, Options{StunSkipsTurn: true}, []*model.Participant{hero}, []*model.Participant{goblin})
		rec := &recorder{}
		s.Subscribe(rec.listen)

		require.NoError(t, s.Start())
		require.NoError(t, s.Advance(0))

		assert.Equal(t, StateProcessing, s.State())
		assert.Equal(t, 1, s.Turn())
		assert.Equal(t, 1, rec.count(EventTurnStarted))
		assert.Equal(t, 1, rec.count(EventTurnEnded))
		assert.Equal(t, 80, goblin.Stats().CurrentHP())
	})
}

func TestEnemyWithoutTarget(t *testing.T) {
	hero := newHero()
	ogre := model.NewParticipant("ogre", "Ogre", model.SideEnemy, model.NewStats(100, 0, 1, 0, 20))
	ally := model.NewParticipant("ally", "Ally", model.SidePlayer, model.NewStats(10, 0, 1, 0, 1))
	s := newTestScheduler(t, Options{Controller: nobody{}}, []*model.Participant{hero, ally}, []*model.Participant{ogre})
	rec := &recorder{}
	s.Subscribe(rec.listen)

	require.NoError(t, s.Start())
	require.NoError(t, s.Advance(0))
	require.Equal(t, StateEnemyTurn, s.State())
	require.NoError(t, s.Advance(0))

	assert.Equal(t, StateProcessing, s.State())
	assert.Equal(t, 1, rec.count(EventTurnEnded))
	assert.Equal(t, 1, s.Turn())
}

type nobody struct{}

func (nobody) ChooseTarget([]*model.Participant) *model.Participant { return nil }

func TestSubscribe(t *testing.T) {
	hero, goblin := newHero(), newGoblin()
	s := newTestScheduler(t, Options{}, []*model.Participant{hero}, []*model.Participant{goblin})
	rec := &recorder{}
	unsubscribe := s.Subscribe(rec.listen)
	s.Subscribe(nil)

	require.NoError(t, s.Start())
	require.NoError(t, s.Advance(0))

	require.Len(t, rec.events, 4)
	assert.Equal(t, EventStateChanged, rec.events[0].Type)
	assert.Equal(t, StateBattleStart, rec.events[0].State)
	assert.Equal(t, EventBattleStarted, rec.events[1].Type)
	assert.Equal(t, EventStateChanged, rec.events[2].Type)
	assert.Equal(t, StatePlayerTurn, rec.events[2].State)
	assert.Equal(t, EventTurnStarted, rec.events[3].Type)
	assert.Same(t, hero, rec.events[3].Participant)

	unsubscribe()
	unsubscribe()
	require.NoError(t, s.RequestPlayerAction(goblin, noop))
	assert.Len(t, rec.events, 4)
}

func TestAddParticipant_NotifiesListeners(t *testing.T) {
	hero, goblin := newHero(), newGoblin()
	s := newTestScheduler(t, Options{}, []*model.Participant{hero}, []*model.Participant{goblin})
	rec := &recorder{}
	s.Subscribe(rec.listen)

	require.NoError(t, s.Start())
	require.NoError(t, s.Advance(0))
	wolf := model.NewParticipant("wolf", "Wolf", model.SideEnemy, model.NewStats(30, 0, 5, 0, 20))
	require.NoError(t, s.AddParticipant(wolf, false))

	require.Equal(t, 1, rec.count(EventParticipantAdded))
	last := rec.events[len(rec.events)-1]
	assert.Equal(t, EventParticipantAdded, last.Type)
	assert.Same(t, wolf, last.Participant)
	assert.Equal(t, StatePlayerTurn, last.State)

	assert.Error(t, s.AddParticipant(wolf, false))
	assert.Equal(t, 1, rec.count(EventParticipantAdded), "rejected adds are silent")
	assert.Equal(t, "participant_added", EventParticipantAdded.String())
}

func TestListenerReentry(t *testing.T) {
	hero := newHero()
	imp := model.NewParticipant("imp", "Imp", model.SideEnemy, model.NewStats(30, 0, 1, 0, 1))
	rng := rand.New(rand.NewPCG(3, 3))
	s := newTestScheduler(t, Options{Rand: rng}, []*model.Participant{hero}, []*model.Participant{imp})

	s.Subscribe(func(ev Event) {
		if ev.Type == EventTurnStarted && ev.Participant.IsPlayer() {
			require.NoError(t, s.RequestPlayerAction(imp, combat.AttackAction(hero, rng)))
		}
	})

	require.NoError(t, s.Start())
	for i := 0; i < 100 && !s.IsOver(); i++ {
		require.NoError(t, s.Advance(0))
	}
	assert.Equal(t, StateVictory, s.State())
}

func TestCombatState_String(t *testing.T) {
	assert.Equal(t, "PlayerTurn", StatePlayerTurn.String())
	assert.Equal(t, "Unknown", CombatState(42).String())
	assert.True(t, StateFlee.IsTerminal())
	assert.False(t, StateProcessing.IsTerminal())
	assert.Equal(t, "battle_ended", EventBattleEnded.String())
}
