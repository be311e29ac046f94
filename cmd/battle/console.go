package main

import (
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"

	"github.com/udisondev/turnbattle/internal/ai"
	"github.com/udisondev/turnbattle/internal/battle"
	"github.com/udisondev/turnbattle/internal/game/combat"
	"github.com/udisondev/turnbattle/internal/game/skill"
	"github.com/udisondev/turnbattle/internal/model"
)

type commandKind int

const (
	cmdAttack commandKind = iota
	cmdDefend
	cmdSkill
	cmdFlee
	cmdStatus
	cmdHelp
)

// command is one parsed console line. target is 1-based; 0 means default.
type command struct {
	kind    commandKind
	ability string
	target  int
}

var errEmptyCommand = errors.New("empty command")

const helpText = `commands:
  attack [n]         basic attack on enemy n
  defend             raise defense until your next turn
  skill <name> [n]   use an ability on target n (allies for support abilities)
  flee               leave the battle
  status             show both sides
  help               this text`

// parseCommand parses a console line.
func parseCommand(line string) (command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return command{}, errEmptyCommand
	}

	verb, args := strings.ToLower(fields[0]), fields[1:]
	switch verb {
	case "attack", "a":
		target, err := parseTarget(args)
		return command{kind: cmdAttack, target: target}, err
	case "defend", "d":
		return command{kind: cmdDefend}, nil
	case "skill", "s":
		if len(args) == 0 {
			return command{}, errors.New("skill needs an ability name")
		}
		target := 0
		if n, err := strconv.Atoi(args[len(args)-1]); err == nil {
			if n < 1 {
				return command{}, fmt.Errorf("target must be at least 1, got %d", n)
			}
			target, args = n, args[:len(args)-1]
		}
		if len(args) == 0 {
			return command{}, errors.New("skill needs an ability name")
		}
		return command{kind: cmdSkill, ability: strings.Join(args, " "), target: target}, nil
	case "flee", "f":
		return command{kind: cmdFlee}, nil
	case "status":
		return command{kind: cmdStatus}, nil
	case "help", "?":
		return command{kind: cmdHelp}, nil
	default:
		return command{}, fmt.Errorf("unknown command %q", verb)
	}
}

func parseTarget(args []string) (int, error) {
	if len(args) == 0 {
		return 0, nil
	}
	if len(args) > 1 {
		return 0, fmt.Errorf("expected one target, got %d", len(args))
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		return 0, fmt.Errorf("bad target %q", args[0])
	}
	return n, nil
}

// console prints battle progress and turns parsed commands into scheduler calls.
// Its methods run on the runner goroutine.
type console struct {
	out     io.Writer
	s       *battle.Scheduler
	catalog *skill.Catalog
	rng     *rand.Rand
	pilot   *ai.Autopilot // nil for interactive play

	// inputClosed makes the player side flee at its next turn.
	inputClosed bool
}

func (c *console) onEvent(ev battle.Event) {
	switch ev.Type {
	case battle.EventBattleStarted:
		fmt.Fprintln(c.out, "Battle started!")
	case battle.EventTurnStarted:
		fmt.Fprintf(c.out, "\n-- turn %d: %s --\n", ev.Turn+1, ev.Participant.Name())
		// a stunned participant's turn may already be over
		if c.s.State() != battle.StatePlayerTurn || c.s.Current() != ev.Participant {
			return
		}
		if c.pilot != nil {
			c.autoplay(ev.Participant)
			return
		}
		if c.inputClosed {
			c.flee(c.s)
			return
		}
		c.status(c.s)
		fmt.Fprint(c.out, "> ")
	case battle.EventBattleEnded:
		fmt.Fprintf(c.out, "\nBattle over: %s after %d turns\n", ev.State, ev.Turn)
		c.status(c.s)
	}
}

func (c *console) autoplay(actor *model.Participant) {
	target, action, ok := c.pilot.Decide(actor, c.s.Enemies())
	if !ok {
		return
	}
	fmt.Fprintf(c.out, "%s attacks %s\n", actor.Name(), target.Name())
	if err := c.s.RequestPlayerAction(target, action); err != nil {
		fmt.Fprintf(c.out, "! %v\n", err)
	}
}

func (c *console) status(s *battle.Scheduler) {
	fmt.Fprintln(c.out, "Players:")
	c.side(s.Players(), s.Current())
	fmt.Fprintln(c.out, "Enemies:")
	c.side(s.Enemies(), s.Current())
}

func (c *console) side(list []*model.Participant, current *model.Participant) {
	for i, p := range list {
		mark := " "
		if p == current {
			mark = "*"
		}
		st := p.Stats()
		line := fmt.Sprintf(" %s%d. %-12s HP %3d/%-3d MP %3d/%-3d", mark, i+1, p.Name(),
			st.CurrentHP(), st.MaxHP(), st.CurrentMP(), st.MaxMP())
		if !p.IsAlive() {
			line += " (defeated)"
		}
		var effects []string
		for _, e := range p.StatusEffects() {
			if timed, ok := e.(interface{ TurnsRemaining() int }); ok {
				effects = append(effects, fmt.Sprintf("%s:%d", e.Name(), timed.TurnsRemaining()))
				continue
			}
			effects = append(effects, e.Name())
		}
		if len(effects) > 0 {
			line += " [" + strings.Join(effects, " ") + "]"
		}
		fmt.Fprintln(c.out, line)
	}
}

// endOfInput is submitted once stdin is exhausted. The player side flees now
// if it is waiting for a command, otherwise at its next turn.
func (c *console) endOfInput() battle.Command {
	return func(s *battle.Scheduler) {
		c.inputClosed = true
		if s.State() == battle.StatePlayerTurn {
			c.flee(s)
		}
	}
}

func (c *console) flee(s *battle.Scheduler) {
	fmt.Fprintln(c.out, "\ninput closed, fleeing")
	if err := s.RequestFlee(); err != nil {
		fmt.Fprintf(c.out, "! %v\n", err)
	}
}

// command wraps cmd for the runner, reporting errors on the console.
func (c *console) command(cmd command) battle.Command {
	return func(s *battle.Scheduler) {
		if err := c.execute(s, cmd); err != nil {
			fmt.Fprintf(c.out, "! %v\n> ", err)
		}
	}
}

func (c *console) execute(s *battle.Scheduler, cmd command) error {
	switch cmd.kind {
	case cmdHelp:
		fmt.Fprintln(c.out, helpText)
		return nil
	case cmdStatus:
		c.status(s)
		return nil
	case cmdFlee:
		return s.RequestFlee()
	}

	if s.State() != battle.StatePlayerTurn {
		return battle.ErrNotPlayerTurn
	}
	actor := s.Current()

	switch cmd.kind {
	case cmdAttack:
		target, err := pick(s.Enemies(), cmd.target)
		if err != nil {
			return err
		}
		return s.RequestPlayerAction(target, combat.AttackAction(actor, c.rng))
	case cmdDefend:
		return s.RequestPlayerAction(actor, combat.DefendAction(actor))
	case cmdSkill:
		a, err := c.ability(actor, cmd.ability)
		if err != nil {
			return err
		}
		var target *model.Participant
		switch {
		case a.Targeting.TargetsAllies() && cmd.target == 0:
			target = actor
		case a.Targeting.TargetsAllies():
			target, err = pick(s.Players(), cmd.target)
		default:
			target, err = pick(s.Enemies(), cmd.target)
		}
		if err != nil {
			return err
		}
		return s.RequestPlayerAction(target, combat.AbilityAction(actor, a, c.rng))
	}
	return fmt.Errorf("unsupported command")
}

// ability finds one of actor's abilities by case-insensitive name.
func (c *console) ability(actor *model.Participant, name string) (*skill.Ability, error) {
	idx := slices.IndexFunc(actor.Abilities(), func(n string) bool {
		return strings.EqualFold(n, name)
	})
	if idx < 0 {
		return nil, fmt.Errorf("%s has no ability %q (known: %s)", actor.Name(), name, strings.Join(actor.Abilities(), ", "))
	}
	a := c.catalog.Get(actor.Abilities()[idx])
	if a == nil {
		return nil, fmt.Errorf("ability %q is not defined", name)
	}
	if !a.CanUse(actor) {
		return nil, fmt.Errorf("not enough MP for %s (%d needed)", a.Name, a.MPCost)
	}
	return a, nil
}

// pick returns participant n (1-based) or, for n == 0, the first living one.
func pick(list []*model.Participant, n int) (*model.Participant, error) {
	if n == 0 {
		for _, p := range list {
			if p.IsAlive() {
				return p, nil
			}
		}
		return nil, errors.New("no living target")
	}
	if n > len(list) {
		return nil, fmt.Errorf("no target %d", n)
	}
	p := list[n-1]
	if !p.IsAlive() {
		return nil, fmt.Errorf("%s is already defeated", p.Name())
	}
	return p, nil
}
